package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
)

type customOrderRepository struct {
	db *sql.DB
}

// NewCustomOrderRepository создаёт PostgreSQL-реализацию CustomOrderRepository.
func NewCustomOrderRepository(store *Store) domain.CustomOrderRepository {
	return &customOrderRepository{db: store.DB()}
}

const customOrderColumns = `
	id, order_id, name, email, phone,
	event_type, event_date, cake_size, flavor, requirements,
	status, estimated_price, advance_amount, advance_status,
	admin_notes, customer_notes,
	version, created_at, updated_at`

func (r *customOrderRepository) Create(order domain.CustomOrder) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO custom_orders (`+customOrderColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`,
		order.ID, order.OrderID, order.Name, order.Email, order.Phone,
		order.EventType, order.EventDate, order.CakeSize, order.Flavor, order.Requirements,
		string(order.Status), order.EstimatedPrice, order.AdvanceAmount, string(order.AdvanceStatus),
		order.AdminNotes, order.CustomerNotes,
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderVersionConflict
		}
		return fmt.Errorf("insert custom order: %w", err)
	}
	return nil
}

func (r *customOrderRepository) Get(id string) (domain.CustomOrder, error) {
	return r.getBy("id", id)
}

func (r *customOrderRepository) GetByOrderID(orderID string) (domain.CustomOrder, error) {
	return r.getBy("order_id", orderID)
}

func (r *customOrderRepository) getBy(column, value string) (domain.CustomOrder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+customOrderColumns+`
		FROM custom_orders
		WHERE `+column+` = $1
	`, value)

	order, err := scanCustomOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CustomOrder{}, domain.ErrCustomOrderNotFound
		}
		return domain.CustomOrder{}, fmt.Errorf("select custom order: %w", err)
	}
	return order, nil
}

func (r *customOrderRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM custom_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete custom order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCustomOrderNotFound
	}
	return nil
}

func (r *customOrderRepository) List(limit int) ([]domain.CustomOrder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `SELECT ` + customOrderColumns + ` FROM custom_orders ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list custom orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.CustomOrder, 0)
	for rows.Next() {
		order, err := scanCustomOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan custom order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate custom order rows: %w", err)
	}
	return orders, nil
}

func (r *customOrderRepository) Save(order domain.CustomOrder) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE custom_orders
		SET status = $1,
		    estimated_price = $2,
		    advance_amount = $3,
		    advance_status = $4,
		    admin_notes = $5,
		    customer_notes = $6,
		    version = version + 1,
		    updated_at = $7
		WHERE id = $8
		  AND version = $9
	`,
		string(order.Status), order.EstimatedPrice, order.AdvanceAmount, string(order.AdvanceStatus),
		order.AdminNotes, order.CustomerNotes,
		order.UpdatedAt, order.ID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update custom order: %w", err)
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
			return domain.ErrCustomOrderNotFound
		}
		return domain.ErrOrderVersionConflict
	}
	return nil
}

func (r *customOrderRepository) CountByCreatedDate(date time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	day := date.UTC().Truncate(24 * time.Hour)
	var count int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM custom_orders
		WHERE created_at >= $1 AND created_at < $2
	`, day, day.Add(24*time.Hour)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count custom orders by date: %w", err)
	}
	return count, nil
}

func (r *customOrderRepository) ExistsOrderID(orderID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.exists(ctx, "order_id", orderID)
}

func (r *customOrderRepository) exists(ctx context.Context, column, value string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM custom_orders WHERE `+column+` = $1`, value).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check custom order exists: %w", err)
}

func scanCustomOrder(row rowScanner) (domain.CustomOrder, error) {
	var (
		order                 domain.CustomOrder
		status, advanceStatus string
	)
	if err := row.Scan(
		&order.ID, &order.OrderID, &order.Name, &order.Email, &order.Phone,
		&order.EventType, &order.EventDate, &order.CakeSize, &order.Flavor, &order.Requirements,
		&status, &order.EstimatedPrice, &order.AdvanceAmount, &advanceStatus,
		&order.AdminNotes, &order.CustomerNotes,
		&order.Version, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return domain.CustomOrder{}, err
	}
	order.Status = domain.CustomOrderStatus(status)
	order.AdvanceStatus = domain.AdvancePaymentStatus(advanceStatus)
	return order, nil
}

var _ domain.CustomOrderRepository = (*customOrderRepository)(nil)
