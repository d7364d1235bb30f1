package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ProductRepo struct{ DB *pgxpool.Pool }

// price is cast to text so numeric(10,2) round-trips through decimal exactly.
const productCols = `id, seller_id, name, description, image, category, price::text, quantity, status, created_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var price string
	err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Image, &p.Category,
		&price, &p.Quantity, &p.Status, &p.CreatedAt)
	if err != nil {
		return Product{}, err
	}
	p.Price, err = decimal.NewFromString(price)
	return p, err
}

func (r *ProductRepo) GetProduct(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: product", ErrNotFound)
	}
	return p, err
}

func (r *ProductRepo) GetProducts(ctx context.Context, ids []int64) (map[int64]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *ProductRepo) collect(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) ListApproved(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+productCols+` FROM products WHERE status='approved' ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *ProductRepo) ListApprovedByCategory(ctx context.Context, category string) ([]Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+productCols+` FROM products WHERE status='approved' AND category=$1 ORDER BY created_at DESC`,
		category)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *ProductRepo) SearchApproved(ctx context.Context, query string) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+productCols+` FROM products
		WHERE status='approved' AND (name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
		ORDER BY created_at DESC`, query)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *ProductRepo) ListBySeller(ctx context.Context, sellerID int64) ([]Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+productCols+` FROM products WHERE seller_id=$1 ORDER BY created_at DESC`, sellerID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *ProductRepo) ListPending(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+productCols+` FROM products WHERE status='pending' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// CreateProduct inserts with status=pending regardless of what the caller set.
func (r *ProductRepo) CreateProduct(ctx context.Context, p Product) (Product, error) {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(seller_id, name, description, image, category, price, quantity, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'pending')
		RETURNING id, status, created_at`,
		p.SellerID, p.Name, p.Description, p.Image, p.Category, p.Price, p.Quantity,
	).Scan(&p.ID, &p.Status, &p.CreatedAt)
	return p, err
}

func (r *ProductRepo) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET name=$2, description=$3, image=$4, category=$5,
			price=$6, quantity=$7, status=$8
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Image, p.Category, p.Price, p.Quantity, p.Status)
	if err != nil {
		return Product{}, err
	}
	if ct.RowsAffected() == 0 {
		return Product{}, fmt.Errorf("%w: product", ErrNotFound)
	}
	return r.GetProduct(ctx, p.ID)
}

// SetProductStatus applies an approval decision. The guard in the WHERE clause
// keeps decisions off products that already left review.
func (r *ProductRepo) SetProductStatus(ctx context.Context, id int64, to ProductStatus) (Product, error) {
	ct, err := r.DB.Exec(ctx,
		`UPDATE products SET status=$2 WHERE id=$1 AND status='pending'`, id, to)
	if err != nil {
		return Product{}, err
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.GetProduct(ctx, id); err != nil {
			return Product{}, err
		}
		return Product{}, fmt.Errorf("%w: product is not pending review", ErrConflict)
	}
	return r.GetProduct(ctx, id)
}

// DeleteProduct refuses to remove a product any order references.
func (r *ProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	var n int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE product_id=$1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: cannot delete product referenced in orders", ErrConflict)
	}
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: product", ErrNotFound)
	}
	return nil
}
