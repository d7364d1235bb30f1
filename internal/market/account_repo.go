package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepo struct{ DB *pgxpool.Pool }

func wrapAccountErr(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: email already in use", ErrConflict)
	}
	return err
}

// ---- admins ----

const adminCols = `id, email, password, name, created_at`

func scanAdmin(row pgx.Row) (Admin, error) {
	var a Admin
	err := row.Scan(&a.ID, &a.Email, &a.Password, &a.Name, &a.CreatedAt)
	return a, err
}

func (r *AccountRepo) GetAdmin(ctx context.Context, id int64) (Admin, error) {
	a, err := scanAdmin(r.DB.QueryRow(ctx, `SELECT `+adminCols+` FROM admins WHERE id=$1`, id))
	if err != nil {
		return Admin{}, wrapAccountErr(err, "admin")
	}
	return a, nil
}

func (r *AccountRepo) GetAdminByEmail(ctx context.Context, email string) (Admin, error) {
	a, err := scanAdmin(r.DB.QueryRow(ctx, `SELECT `+adminCols+` FROM admins WHERE email=$1`, email))
	if err != nil {
		return Admin{}, wrapAccountErr(err, "admin")
	}
	return a, nil
}

func (r *AccountRepo) CreateAdmin(ctx context.Context, a Admin) (Admin, error) {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO admins(email, password, name)
		VALUES ($1,$2,$3)
		RETURNING id, created_at`,
		a.Email, a.Password, a.Name).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return Admin{}, wrapAccountErr(err, "admin")
	}
	return a, nil
}

func (r *AccountRepo) UpdateAdminPassword(ctx context.Context, id int64, hash string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE admins SET password=$2 WHERE id=$1`, id, hash)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: admin", ErrNotFound)
	}
	return nil
}

// ---- sellers ----

const sellerCols = `id, email, password, business_name, warehouse_address, business_address,
	zip_code, phone, gst, COALESCE(admin_id, 0), approved, rejected, created_at`

func scanSeller(row pgx.Row) (Seller, error) {
	var s Seller
	err := row.Scan(&s.ID, &s.Email, &s.Password, &s.BusinessName, &s.WarehouseAddress,
		&s.BusinessAddress, &s.ZipCode, &s.Phone, &s.GST, &s.AdminID, &s.Approved,
		&s.Rejected, &s.CreatedAt)
	return s, err
}

func (r *AccountRepo) GetSeller(ctx context.Context, id int64) (Seller, error) {
	s, err := scanSeller(r.DB.QueryRow(ctx, `SELECT `+sellerCols+` FROM sellers WHERE id=$1`, id))
	if err != nil {
		return Seller{}, wrapAccountErr(err, "seller")
	}
	return s, nil
}

func (r *AccountRepo) GetSellerByEmail(ctx context.Context, email string) (Seller, error) {
	s, err := scanSeller(r.DB.QueryRow(ctx, `SELECT `+sellerCols+` FROM sellers WHERE email=$1`, email))
	if err != nil {
		return Seller{}, wrapAccountErr(err, "seller")
	}
	return s, nil
}

func (r *AccountRepo) ListSellers(ctx context.Context) ([]Seller, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+sellerCols+` FROM sellers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Seller
	for rows.Next() {
		s, err := scanSeller(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *AccountRepo) CreateSeller(ctx context.Context, s Seller) (Seller, error) {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO sellers(email, password, business_name, warehouse_address,
			business_address, zip_code, phone, gst, admin_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NULLIF($9, 0))
		RETURNING id, created_at`,
		s.Email, s.Password, s.BusinessName, s.WarehouseAddress, s.BusinessAddress,
		s.ZipCode, s.Phone, s.GST, s.AdminID).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return Seller{}, wrapAccountErr(err, "seller")
	}
	return s, nil
}

// UpdateSellerProfile writes the seller-editable columns. Email and business
// name stay as stored; the profile endpoint does not accept them.
func (r *AccountRepo) UpdateSellerProfile(ctx context.Context, s Seller) (Seller, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE sellers SET warehouse_address=$2, business_address=$3, zip_code=$4,
			phone=$5, gst=$6, password=$7
		WHERE id=$1`,
		s.ID, s.WarehouseAddress, s.BusinessAddress, s.ZipCode, s.Phone, s.GST, s.Password)
	if err != nil {
		return Seller{}, err
	}
	if ct.RowsAffected() == 0 {
		return Seller{}, fmt.Errorf("%w: seller", ErrNotFound)
	}
	return r.GetSeller(ctx, s.ID)
}

// UpdateSeller writes the admin-editable columns, business name included.
func (r *AccountRepo) UpdateSeller(ctx context.Context, s Seller) (Seller, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE sellers SET business_name=$2, warehouse_address=$3, business_address=$4,
			zip_code=$5, phone=$6, gst=$7, password=$8
		WHERE id=$1`,
		s.ID, s.BusinessName, s.WarehouseAddress, s.BusinessAddress, s.ZipCode,
		s.Phone, s.GST, s.Password)
	if err != nil {
		return Seller{}, err
	}
	if ct.RowsAffected() == 0 {
		return Seller{}, fmt.Errorf("%w: seller", ErrNotFound)
	}
	return r.GetSeller(ctx, s.ID)
}

func (r *AccountRepo) SetSellerDecision(ctx context.Context, id int64, approved bool) (Seller, error) {
	ct, err := r.DB.Exec(ctx, `UPDATE sellers SET approved=$2, rejected=$3 WHERE id=$1`,
		id, approved, !approved)
	if err != nil {
		return Seller{}, err
	}
	if ct.RowsAffected() == 0 {
		return Seller{}, fmt.Errorf("%w: seller", ErrNotFound)
	}
	return r.GetSeller(ctx, id)
}

func (r *AccountRepo) UpdateSellerPassword(ctx context.Context, id int64, hash string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE sellers SET password=$2 WHERE id=$1`, id, hash)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: seller", ErrNotFound)
	}
	return nil
}

// ---- customers ----

const userCols = `id, name, email, password, address, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Address, &u.CreatedAt)
	return u, err
}

func (r *AccountRepo) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.DB.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
	if err != nil {
		return User{}, wrapAccountErr(err, "user")
	}
	return u, nil
}

func (r *AccountRepo) GetUserByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.DB.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email=$1`, email))
	if err != nil {
		return User{}, wrapAccountErr(err, "user")
	}
	return u, nil
}

func (r *AccountRepo) CreateUser(ctx context.Context, u User) (User, error) {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO users(name, email, password, address)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at`,
		u.Name, u.Email, u.Password, u.Address).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return User{}, wrapAccountErr(err, "user")
	}
	return u, nil
}

// UpdateUserProfile writes name, address and password. Email is not writable.
func (r *AccountRepo) UpdateUserProfile(ctx context.Context, u User) (User, error) {
	ct, err := r.DB.Exec(ctx, `UPDATE users SET name=$2, address=$3, password=$4 WHERE id=$1`,
		u.ID, u.Name, u.Address, u.Password)
	if err != nil {
		return User{}, err
	}
	if ct.RowsAffected() == 0 {
		return User{}, fmt.Errorf("%w: user", ErrNotFound)
	}
	return r.GetUser(ctx, u.ID)
}

func (r *AccountRepo) UpdateUserPassword(ctx context.Context, id int64, hash string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE users SET password=$2 WHERE id=$1`, id, hash)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return nil
}

// ---- cart document ----

func (r *AccountRepo) GetCart(ctx context.Context, userID int64) (Cart, error) {
	var raw []byte
	err := r.DB.QueryRow(ctx, `SELECT cart_data FROM users WHERE id=$1`, userID).Scan(&raw)
	if err != nil {
		return Cart{}, wrapAccountErr(err, "user")
	}
	var c Cart
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c); err != nil {
			return Cart{}, fmt.Errorf("decode cart: %w", err)
		}
	}
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	return c, nil
}

func (r *AccountRepo) SetCart(ctx context.Context, userID int64, c Cart) error {
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	ct, err := r.DB.Exec(ctx, `UPDATE users SET cart_data=$2 WHERE id=$1`, userID, raw)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return nil
}
