package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/pkg/errors"
)

const productColumns = `
	id, slug, name, description, image, price, stock, in_stock,
	cj_product_id, cj_variant_id, cj_sku, cj_variants, cj_warehouse_id,
	cj_last_updated_at, cj_last_update_type, created_at, updated_at`

type productRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) *productRepository {
	return &productRepository{
		db:     db,
		logger: logger,
	}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (
			id, slug, name, description, image, price, stock, in_stock,
			cj_product_id, cj_variant_id, cj_sku, cj_variants, cj_warehouse_id,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	now := time.Now()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}
	// stock <= 0 implies not in stock
	if product.Stock <= 0 {
		product.InStock = false
	}

	var cjProductID, cjVariantID, cjSKU *string
	var cjVariantsJSON []byte
	var cjWarehouseID *string
	if product.CJ != nil {
		cjProductID = &product.CJ.ProductID
		cjVariantID = &product.CJ.VariantID
		cjSKU = &product.CJ.SKU
		cjWarehouseID = product.CJ.WarehouseID
		if product.CJ.Variants != nil {
			b, err := json.Marshal(product.CJ.Variants)
			if err != nil {
				return err
			}
			cjVariantsJSON = b
		}
	}

	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.Slug,
		product.Name,
		product.Description,
		product.Image,
		product.Price,
		product.Stock,
		product.InStock,
		cjProductID,
		cjVariantID,
		cjSKU,
		cjVariantsJSON,
		cjWarehouseID,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create product", zap.Error(err), zap.String("slug", product.Slug))
		return err
	}

	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id.String(), id)
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug, slug)
}

func (r *productRepository) GetByCJProductID(ctx context.Context, cjProductID string) (*domain.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE cj_product_id = $1 LIMIT 1`, cjProductID, cjProductID)
}

func (r *productRepository) GetByCJVariantID(ctx context.Context, cjVariantID string) (*domain.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE cj_variant_id = $1 LIMIT 1`, cjVariantID, cjVariantID)
}

func (r *productRepository) GetByCJSKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE cj_sku = $1 LIMIT 1`, sku, sku)
}

func (r *productRepository) getOne(ctx context.Context, query, notFoundID string, arg interface{}) (*domain.Product, error) {
	product, err := r.scanProduct(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: notFoundID}
	}
	if err != nil {
		r.logger.Error("Failed to get product", zap.Error(err))
		return nil, err
	}
	return product, nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET slug = $2, name = $3, description = $4, image = $5, price = $6,
			stock = $7, in_stock = $8, cj_product_id = $9, cj_variant_id = $10,
			cj_sku = $11, cj_variants = $12, cj_warehouse_id = $13, updated_at = $14
		WHERE id = $1
	`

	product.UpdatedAt = time.Now()
	if product.Stock <= 0 {
		product.InStock = false
	}

	var cjProductID, cjVariantID, cjSKU *string
	var cjVariantsJSON []byte
	var cjWarehouseID *string
	if product.CJ != nil {
		cjProductID = &product.CJ.ProductID
		cjVariantID = &product.CJ.VariantID
		cjSKU = &product.CJ.SKU
		cjWarehouseID = product.CJ.WarehouseID
		if product.CJ.Variants != nil {
			b, err := json.Marshal(product.CJ.Variants)
			if err != nil {
				return err
			}
			cjVariantsJSON = b
		}
	}

	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.Slug,
		product.Name,
		product.Description,
		product.Image,
		product.Price,
		product.Stock,
		product.InStock,
		cjProductID,
		cjVariantID,
		cjSKU,
		cjVariantsJSON,
		cjWarehouseID,
		product.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to update product", zap.Error(err), zap.String("product_id", product.ID.String()))
		return err
	}

	return nil
}

// ApplyProductUpdate overwrites only the fields present in the webhook event.
// COALESCE keeps stored values for absent fields; the CJ last-update stamp is
// always written so replays converge.
func (r *productRepository) ApplyProductUpdate(ctx context.Context, id uuid.UUID, upd domain.ProductFieldUpdate) error {
	var variantsJSON []byte
	if upd.Variants != nil {
		b, err := json.Marshal(upd.Variants)
		if err != nil {
			return err
		}
		variantsJSON = b
	}

	query := `
		UPDATE products
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			image = COALESCE($4, image),
			price = COALESCE($5, price),
			cj_variants = COALESCE($6, cj_variants),
			stock = CASE WHEN $7 THEN 0 ELSE stock END,
			in_stock = CASE WHEN $7 THEN false ELSE in_stock END,
			cj_last_updated_at = $8,
			cj_last_update_type = $9,
			updated_at = $8
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		id,
		upd.Name,
		upd.Description,
		upd.Image,
		upd.Price,
		variantsJSON,
		upd.Discontinue,
		upd.UpdatedAt,
		upd.UpdateType,
	)
	if err != nil {
		r.logger.Error("Failed to apply product update", zap.Error(err), zap.String("product_id", id.String()))
		return err
	}
	return nil
}

func (r *productRepository) ApplyStockUpdate(ctx context.Context, id uuid.UUID, stock int, inStock bool, warehouseID *string) error {
	query := `
		UPDATE products
		SET stock = $2, in_stock = $3,
			cj_warehouse_id = COALESCE($4, cj_warehouse_id),
			updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, stock, inStock, warehouseID, time.Now())
	if err != nil {
		r.logger.Error("Failed to apply stock update", zap.Error(err), zap.String("product_id", id.String()))
		return err
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete product", zap.Error(err), zap.String("product_id", id.String()))
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	return nil
}

func (r *productRepository) scanProduct(row rowScanner) (*domain.Product, error) {
	var product domain.Product
	var image sql.NullString
	var cjProductID sql.NullString
	var cjVariantID sql.NullString
	var cjSKU sql.NullString
	var cjVariantsJSON []byte
	var cjWarehouseID sql.NullString
	var cjLastUpdatedAt sql.NullTime
	var cjLastUpdateType sql.NullString

	err := row.Scan(
		&product.ID,
		&product.Slug,
		&product.Name,
		&product.Description,
		&image,
		&product.Price,
		&product.Stock,
		&product.InStock,
		&cjProductID,
		&cjVariantID,
		&cjSKU,
		&cjVariantsJSON,
		&cjWarehouseID,
		&cjLastUpdatedAt,
		&cjLastUpdateType,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if image.Valid {
		product.Image = &image.String
	}

	if cjProductID.Valid || cjVariantID.Valid || cjSKU.Valid {
		cj := &domain.CJData{
			ProductID: cjProductID.String,
			VariantID: cjVariantID.String,
			SKU:       cjSKU.String,
		}
		if len(cjVariantsJSON) > 0 {
			if err := json.Unmarshal(cjVariantsJSON, &cj.Variants); err != nil {
				return nil, err
			}
		}
		if cjWarehouseID.Valid {
			cj.WarehouseID = &cjWarehouseID.String
		}
		if cjLastUpdatedAt.Valid {
			cj.LastUpdatedAt = &cjLastUpdatedAt.Time
		}
		if cjLastUpdateType.Valid {
			cj.LastUpdateType = &cjLastUpdateType.String
		}
		product.CJ = cj
	}

	return &product, nil
}
