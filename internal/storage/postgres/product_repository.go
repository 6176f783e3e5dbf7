package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

const productColumns = `
	id, name, price, discount_price,
	stock_quantity, low_stock_threshold, sold_count,
	active, order_only, created_at, updated_at`

func (r *productRepository) Create(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		product.ID, product.Name, product.Price, product.DiscountPrice,
		product.StockQuantity, product.LowStockThreshold, product.SoldCount,
		product.Active, product.OrderOnly, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product %s already exists", product.ID)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *productRepository) Get(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	product, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

func (r *productRepository) List(limit int) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products ORDER BY name ASC, id ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

func (r *productRepository) Save(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1,
		    price = $2,
		    discount_price = $3,
		    low_stock_threshold = $4,
		    active = $5,
		    order_only = $6,
		    updated_at = $7
		WHERE id = $8
	`,
		product.Name, product.Price, product.DiscountPrice,
		product.LowStockThreshold, product.Active, product.OrderOnly,
		time.Now().UTC(), product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// AdjustStock атомарно меняет остаток и счётчик продаж одним UPDATE.
// Условие в WHERE не даёт остатку уйти в минус при конкурентных списаниях.
func (r *productRepository) AdjustStock(id string, stockDelta int32, soldDelta int64) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	product, err := scanProduct(r.db.QueryRowContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $1,
		    sold_count = GREATEST(sold_count + $2, 0),
		    updated_at = $3
		WHERE id = $4
		  AND stock_quantity + $1 >= 0
		RETURNING `+productColumns+`
	`, stockDelta, soldDelta, time.Now().UTC(), id))
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("adjust stock: %w", err)
	}

	// Либо товара нет, либо не хватило остатка.
	if _, getErr := r.Get(id); getErr != nil {
		return domain.Product{}, getErr
	}
	return domain.Product{}, domain.ErrInsufficientStock
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID, &product.Name, &product.Price, &product.DiscountPrice,
		&product.StockQuantity, &product.LowStockThreshold, &product.SoldCount,
		&product.Active, &product.OrderOnly, &product.CreatedAt, &product.UpdatedAt,
	); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
