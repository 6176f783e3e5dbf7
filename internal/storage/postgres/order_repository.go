package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

const orderColumns = `
	id, order_id,
	customer_name, customer_email, customer_phone,
	address_street, address_city, address_postal_code, address_text,
	subtotal, delivery_fee, total,
	delivery_zone, delivery_time_slot, delivery_express, delivery_date,
	status, payment_status, payment_method, notes,
	version, created_at, updated_at`

func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var street, city, postal sql.NullString
	if order.Customer.Address != nil {
		street = sql.NullString{String: order.Customer.Address.Street, Valid: true}
		city = sql.NullString{String: order.Customer.Address.City, Valid: true}
		postal = sql.NullString{String: order.Customer.Address.PostalCode, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
	`,
		order.ID, order.OrderID,
		order.Customer.Name, order.Customer.Email, order.Customer.Phone,
		street, city, postal, order.Customer.AddressText,
		order.Pricing.Subtotal, order.Pricing.DeliveryFee, order.Pricing.Total,
		order.Delivery.Zone, order.Delivery.TimeSlot, order.Delivery.Express, order.Delivery.Date,
		string(order.Status), string(order.PaymentStatus), string(order.PaymentMethod), order.Notes,
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderVersionConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product_id, name, unit_price, qty, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, order.ID, i, item.ProductID, item.Name, item.UnitPrice, item.Qty, item.Subtotal); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}
	return nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.getBy(ctx, "id", id)
}

func (r *orderRepository) GetByOrderID(orderID string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.getBy(ctx, "order_id", orderID)
}

func (r *orderRepository) getBy(ctx context.Context, column, value string) (domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE `+column+` = $1
	`, value)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) List(limit int) ([]domain.Order, error) {
	return r.list(`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`, nil, limit)
}

func (r *orderRepository) ListByEmail(email string, limit int) ([]domain.Order, error) {
	return r.list(`
		SELECT `+orderColumns+`
		FROM orders
		WHERE LOWER(customer_email) = LOWER($1)
		ORDER BY created_at DESC, id DESC
	`, []any{email}, limit)
}

func (r *orderRepository) list(query string, args []any, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) Save(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    payment_status = $2,
		    notes = $3,
		    delivery_zone = $4,
		    delivery_time_slot = $5,
		    delivery_express = $6,
		    delivery_date = $7,
		    version = version + 1,
		    updated_at = $8
		WHERE id = $9
		  AND version = $10
	`,
		string(order.Status), string(order.PaymentStatus), order.Notes,
		order.Delivery.Zone, order.Delivery.TimeSlot, order.Delivery.Express, order.Delivery.Date,
		order.UpdatedAt, order.ID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := r.exists(ctx, "id", order.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrOrderNotFound
		}
		return domain.ErrOrderVersionConflict
	}
	return nil
}

func (r *orderRepository) CountByCreatedDate(date time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	day := date.UTC().Truncate(24 * time.Hour)
	var count int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
	`, day, day.Add(24*time.Hour)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders by date: %w", err)
	}
	return count, nil
}

func (r *orderRepository) ExistsOrderID(orderID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.exists(ctx, "order_id", orderID)
}

func (r *orderRepository) exists(ctx context.Context, column, value string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE `+column+` = $1`, value).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check order exists: %w", err)
}

func (r *orderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, name, unit_price, qty, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY position ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.UnitPrice, &item.Qty, &item.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order                 domain.Order
		street, city, postal  sql.NullString
		status, payStatus     string
		payMethod             string
	)
	if err := row.Scan(
		&order.ID, &order.OrderID,
		&order.Customer.Name, &order.Customer.Email, &order.Customer.Phone,
		&street, &city, &postal, &order.Customer.AddressText,
		&order.Pricing.Subtotal, &order.Pricing.DeliveryFee, &order.Pricing.Total,
		&order.Delivery.Zone, &order.Delivery.TimeSlot, &order.Delivery.Express, &order.Delivery.Date,
		&status, &payStatus, &payMethod, &order.Notes,
		&order.Version, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return domain.Order{}, err
	}

	order.Status = domain.OrderStatus(status)
	order.PaymentStatus = domain.PaymentStatus(payStatus)
	order.PaymentMethod = domain.PaymentMethod(payMethod)
	if street.Valid || city.Valid || postal.Valid {
		order.Customer.Address = &domain.Address{
			Street:     street.String,
			City:       city.String,
			PostalCode: postal.String,
		}
	}
	return order, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
