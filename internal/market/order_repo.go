package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type OrderRepo struct{ DB *pgxpool.Pool }

const orderCols = `id, product_id, seller_id, user_id, customer_name, address,
	quantity, total_price::text, customer_message, status, tracking_number, created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var total string
	err := row.Scan(&o.ID, &o.ProductID, &o.SellerID, &o.UserID, &o.CustomerName,
		&o.Address, &o.Quantity, &total, &o.CustomerMessage, &o.Status,
		&o.TrackingNumber, &o.CreatedAt)
	if err != nil {
		return Order{}, err
	}
	o.TotalPrice, err = decimal.NewFromString(total)
	return o, err
}

func (r *OrderRepo) GetOrder(ctx context.Context, id int64) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("%w: order", ErrNotFound)
	}
	return o, err
}

// PlaceOrders is the write side of checkout: one transaction that locks each
// product row, re-checks approval and stock, inserts one order per draft,
// decrements inventory and clears the cart. Either everything lands or
// nothing does.
func (r *OrderRepo) PlaceOrders(ctx context.Context, userID int64, drafts []OrderDraft) ([]Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	placed := make([]Order, 0, len(drafts))
	for _, d := range drafts {
		var stock int
		var status ProductStatus
		err := tx.QueryRow(ctx,
			`SELECT quantity, status FROM products WHERE id=$1 FOR UPDATE`, d.ProductID).
			Scan(&stock, &status)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, Invalidf("product with ID %d not found", d.ProductID)
		}
		if err != nil {
			return nil, err
		}
		if status != ProductApproved {
			return nil, Invalidf("product %s is not available for purchase", d.ProductName)
		}
		if stock < d.Quantity {
			return nil, Invalidf("product %s inventory has changed, only %d units available", d.ProductName, stock)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE products SET quantity = quantity - $2 WHERE id=$1`, d.ProductID, d.Quantity); err != nil {
			return nil, err
		}

		o := Order{
			ProductID:       d.ProductID,
			SellerID:        d.SellerID,
			UserID:          userID,
			CustomerName:    d.CustomerName,
			Address:         d.Address,
			Quantity:        d.Quantity,
			TotalPrice:      d.TotalPrice,
			CustomerMessage: d.CustomerMessage,
			Status:          OrderPlaced,
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO orders(product_id, seller_id, user_id, customer_name, address,
				quantity, total_price, customer_message, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'placed')
			RETURNING id, created_at`,
			o.ProductID, o.SellerID, o.UserID, o.CustomerName, o.Address,
			o.Quantity, o.TotalPrice, o.CustomerMessage,
		).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return nil, err
		}
		placed = append(placed, o)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET cart_data='{"items":[]}' WHERE id=$1`, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return placed, nil
}

// SetOrderStatus advances the status machine. The from-guard in the WHERE
// clause rejects stale transitions even under concurrent updates.
func (r *OrderRepo) SetOrderStatus(ctx context.Context, id int64, from, to OrderStatus) (Order, error) {
	ct, err := r.DB.Exec(ctx,
		`UPDATE orders SET status=$3 WHERE id=$1 AND status=$2`, id, from, to)
	if err != nil {
		return Order{}, err
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.GetOrder(ctx, id); err != nil {
			return Order{}, err
		}
		return Order{}, fmt.Errorf("%w: order is not in the %s status", ErrConflict, from)
	}
	return r.GetOrder(ctx, id)
}

// SetOrderTracking records the tracking number and marks the order fulfilled
// in a single update.
func (r *OrderRepo) SetOrderTracking(ctx context.Context, id int64, trackingNumber string) (Order, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET tracking_number=$2, status='fulfilled'
		WHERE id=$1 AND status='ready'`, id, trackingNumber)
	if err != nil {
		return Order{}, err
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.GetOrder(ctx, id); err != nil {
			return Order{}, err
		}
		return Order{}, fmt.Errorf("%w: order is not ready for fulfillment", ErrConflict)
	}
	return r.GetOrder(ctx, id)
}

const orderDetailQuery = `
	SELECT o.id, o.product_id, o.seller_id, o.user_id, o.customer_name, o.address,
		o.quantity, o.total_price::text, o.customer_message, o.status,
		o.tracking_number, o.created_at,
		COALESCE(p.name, 'Product not available'), COALESCE(p.image, ''),
		COALESCE(p.category, ''),
		COALESCE(s.business_name, 'Unknown Seller'), COALESCE(u.email, '')
	FROM orders o
	LEFT JOIN products p ON p.id = o.product_id
	LEFT JOIN sellers s ON s.id = o.seller_id
	LEFT JOIN users u ON u.id = o.user_id`

func (r *OrderRepo) collectDetails(rows pgx.Rows) ([]OrderDetail, error) {
	defer rows.Close()
	var out []OrderDetail
	for rows.Next() {
		var d OrderDetail
		var total string
		err := rows.Scan(&d.ID, &d.ProductID, &d.SellerID, &d.UserID, &d.CustomerName,
			&d.Address, &d.Quantity, &total, &d.CustomerMessage, &d.Status,
			&d.TrackingNumber, &d.CreatedAt,
			&d.ProductName, &d.ProductImage, &d.Category, &d.BusinessName, &d.CustomerEmail)
		if err != nil {
			return nil, err
		}
		if d.TotalPrice, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *OrderRepo) ListAll(ctx context.Context) ([]OrderDetail, error) {
	rows, err := r.DB.Query(ctx, orderDetailQuery+` ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.collectDetails(rows)
}

func (r *OrderRepo) ListByStatus(ctx context.Context, status OrderStatus) ([]OrderDetail, error) {
	rows, err := r.DB.Query(ctx, orderDetailQuery+` WHERE o.status=$1 ORDER BY o.created_at DESC`, status)
	if err != nil {
		return nil, err
	}
	return r.collectDetails(rows)
}

func (r *OrderRepo) ListBySeller(ctx context.Context, sellerID int64) ([]OrderDetail, error) {
	rows, err := r.DB.Query(ctx, orderDetailQuery+` WHERE o.seller_id=$1 ORDER BY o.created_at DESC`, sellerID)
	if err != nil {
		return nil, err
	}
	return r.collectDetails(rows)
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]OrderDetail, error) {
	rows, err := r.DB.Query(ctx, orderDetailQuery+` WHERE o.user_id=$1 ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return r.collectDetails(rows)
}

func (r *OrderRepo) GetOrderDetail(ctx context.Context, id int64) (OrderDetail, error) {
	rows, err := r.DB.Query(ctx, orderDetailQuery+` WHERE o.id=$1`, id)
	if err != nil {
		return OrderDetail{}, err
	}
	details, err := r.collectDetails(rows)
	if err != nil {
		return OrderDetail{}, err
	}
	if len(details) == 0 {
		return OrderDetail{}, fmt.Errorf("%w: order", ErrNotFound)
	}
	return details[0], nil
}
