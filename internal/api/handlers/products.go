package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/pkg/errors"
	"github.com/zahrastore/storeapi/pkg/response"
)

// ProductRequest is the admin create/update payload.
type ProductRequest struct {
	Slug        string                   `json:"slug" binding:"required"`
	Name        string                   `json:"name" binding:"required"`
	Description string                   `json:"description"`
	Image       *string                  `json:"image"`
	Price       float64                  `json:"price" binding:"required,gt=0"`
	Stock       int                      `json:"stock" binding:"min=0"`
	CJProductID string                   `json:"cj_product_id"`
	CJVariantID string                   `json:"cj_variant_id"`
	CJSKU       string                   `json:"cj_sku"`
	CJVariants  []map[string]interface{} `json:"cj_variants"`
}

// HandleListProducts handles GET /v1/products
func HandleListProducts(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := paginationParams(c)
		products, err := repos.Product.List(c.Request.Context(), limit, offset)
		if err != nil {
			logger.Error("Failed to list products", zap.Error(err))
			response.Error(c, errors.Internal("failed to list products", err))
			return
		}
		response.OK(c, http.StatusOK, products)
	}
}

// HandleGetProduct handles GET /v1/products/:slug
func HandleGetProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := repos.Product.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusOK, product)
	}
}

// HandleCreateProduct handles POST /v1/admin/products
func HandleCreateProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, &errors.ErrValidation{Message: err.Error()})
			return
		}

		now := time.Now()
		product := &domain.Product{
			ID:          uuid.New(),
			Slug:        req.Slug,
			Name:        req.Name,
			Description: req.Description,
			Image:       req.Image,
			Price:       req.Price,
			Stock:       req.Stock,
			InStock:     req.Stock > 0,
			CJ:          cjDataFromRequest(req),
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := repos.Product.Create(c.Request.Context(), product); err != nil {
			logger.Error("Failed to create product", zap.String("slug", req.Slug), zap.Error(err))
			response.Error(c, errors.Internal("failed to create product", err))
			return
		}

		response.OK(c, http.StatusCreated, product)
	}
}

// HandleUpdateProduct handles PUT /v1/admin/products/:id
func HandleUpdateProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.Error(c, &errors.ErrValidation{Message: "invalid product id"})
			return
		}

		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, &errors.ErrValidation{Message: err.Error()})
			return
		}

		product, err := repos.Product.GetByID(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}

		product.Slug = req.Slug
		product.Name = req.Name
		product.Description = req.Description
		product.Image = req.Image
		product.Price = req.Price
		product.Stock = req.Stock
		product.InStock = req.Stock > 0
		if cj := cjDataFromRequest(req); cj != nil {
			product.CJ = cj
		}
		product.UpdatedAt = time.Now()

		if err := repos.Product.Update(c.Request.Context(), product); err != nil {
			logger.Error("Failed to update product", zap.String("product_id", id.String()), zap.Error(err))
			response.Error(c, errors.Internal("failed to update product", err))
			return
		}

		response.OK(c, http.StatusOK, product)
	}
}

// HandleDeleteProduct handles DELETE /v1/admin/products/:id
func HandleDeleteProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.Error(c, &errors.ErrValidation{Message: "invalid product id"})
			return
		}

		if err := repos.Product.Delete(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}

		response.OK(c, http.StatusOK, gin.H{"deleted": id.String()})
	}
}

func cjDataFromRequest(req ProductRequest) *domain.CJData {
	if req.CJProductID == "" && req.CJVariantID == "" && req.CJSKU == "" {
		return nil
	}
	return &domain.CJData{
		ProductID: req.CJProductID,
		VariantID: req.CJVariantID,
		SKU:       req.CJSKU,
		Variants:  req.CJVariants,
	}
}
