package cj

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/pkg/errors"
)

// SearchParams filters a provider product search.
type SearchParams struct {
	Keyword     string
	CategoryID  string
	Page        int
	Size        int
	MinPrice    float64
	MaxPrice    float64
	CountryCode string
}

// ProductResult is one provider search hit, enriched with the resolved
// warehouse identifier.
type ProductResult struct {
	ProductID   string                   `json:"pid"`
	Name        string                   `json:"productNameEn"`
	SKU         string                   `json:"productSku"`
	Image       string                   `json:"productImage"`
	SellPrice   float64                  `json:"sellPrice"`
	CategoryID  string                   `json:"categoryId"`
	Variants    []map[string]interface{} `json:"variants"`
	WarehouseID string                   `json:"warehouseId"`
	StorageID   string                   `json:"storageId"`
	StorageList []storageEntry           `json:"storageList"`
}

type storageEntry struct {
	ID string `json:"id"`
}

// SearchResult is a page of provider search hits.
type SearchResult struct {
	Total int             `json:"total"`
	List  []ProductResult `json:"list"`
}

// SearchProducts passes the query through to the provider's product search
// and resolves a warehouse identifier for each hit: explicit warehouse id,
// then storage id, then the first storage list entry, in that order.
func (c *Client) SearchProducts(ctx context.Context, params SearchParams) (*SearchResult, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	if params.Keyword != "" {
		q.Set("productNameEn", params.Keyword)
	}
	if params.CategoryID != "" {
		q.Set("categoryId", params.CategoryID)
	}
	page := params.Page
	if page <= 0 {
		page = 1
	}
	size := params.Size
	if size <= 0 {
		size = 20
	}
	q.Set("pageNum", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(size))
	if params.MinPrice > 0 {
		q.Set("minPrice", strconv.FormatFloat(params.MinPrice, 'f', 2, 64))
	}
	if params.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatFloat(params.MaxPrice, 'f', 2, 64))
	}
	if params.CountryCode != "" {
		q.Set("countryCode", params.CountryCode)
	}

	data, err := c.get(ctx, "/product/list", q, token)
	if err != nil {
		return nil, err
	}

	var result SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Internal("cj: malformed product search response", err)
	}

	for i := range result.List {
		result.List[i].WarehouseID = resolveWarehouseID(&result.List[i])
	}

	c.logger.Debug("CJ product search completed",
		zap.String("keyword", params.Keyword),
		zap.Int("total", result.Total),
		zap.Int("page_hits", len(result.List)),
	)

	return &result, nil
}

// resolveWarehouseID picks the warehouse by field precedence; empty when the
// hit carries no warehouse information at all.
func resolveWarehouseID(p *ProductResult) string {
	if p.WarehouseID != "" {
		return p.WarehouseID
	}
	if p.StorageID != "" {
		return p.StorageID
	}
	if len(p.StorageList) > 0 {
		return p.StorageList[0].ID
	}
	return ""
}
