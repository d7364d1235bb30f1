package httpx

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shoply/marketplace/internal/auth"
	"github.com/shoply/marketplace/internal/market"
	"github.com/shoply/marketplace/internal/notify"
)

type AuthAccounts interface {
	GetAdminByEmail(ctx context.Context, email string) (market.Admin, error)
	CreateAdmin(ctx context.Context, a market.Admin) (market.Admin, error)
	UpdateAdminPassword(ctx context.Context, id int64, hash string) error

	GetSellerByEmail(ctx context.Context, email string) (market.Seller, error)
	CreateSeller(ctx context.Context, s market.Seller) (market.Seller, error)
	UpdateSellerPassword(ctx context.Context, id int64, hash string) error

	GetUserByEmail(ctx context.Context, email string) (market.User, error)
	CreateUser(ctx context.Context, u market.User) (market.User, error)
	UpdateUserPassword(ctx context.Context, id int64, hash string) error
}

type AuthHandler struct {
	Accounts AuthAccounts
	Tokens   *auth.Tokens
	Hasher   *auth.Hasher
	Mailer   notify.Mailer
	Log      *zap.Logger
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/admin/login", h.loginAdmin)
		r.Post("/admin/register", h.registerAdmin)
		r.Post("/admin/reset-password", h.resetAdmin)
		r.Post("/seller/login", h.loginSeller)
		r.Post("/seller/register", h.registerSeller)
		r.Post("/seller/reset-password", h.resetSeller)
		r.Post("/customer/login", h.loginCustomer)
		r.Post("/customer/register", h.registerCustomer)
		r.Post("/customer/reset-password", h.resetCustomer)
	})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    any    `json:"user"`
}

func (h *AuthHandler) issue(w http.ResponseWriter, code int, id auth.Identity, user any, msg string) {
	token, err := h.Tokens.Sign(id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, code, loginResp{Message: msg, Token: token, User: user})
}

func (h *AuthHandler) welcome(ctx context.Context, email, name string) {
	if h.Mailer == nil {
		return
	}
	_ = h.Mailer.Send(ctx, email, "Welcome to the marketplace",
		fmt.Sprintf("Hi %s, your account has been created.", name))
}

func (h *AuthHandler) resetMail(ctx context.Context, email, name, password string) {
	if h.Mailer == nil {
		return
	}
	_ = h.Mailer.Send(ctx, email, "Password reset",
		fmt.Sprintf("Hi %s, your new password is: %s", name, password))
}

// ---- admin ----

func (h *AuthHandler) loginAdmin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decode(r, &c); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if c.Email == "" || c.Password == "" {
		writeMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}
	admin, err := h.Accounts.GetAdminByEmail(r.Context(), c.Email)
	if err != nil || !h.Hasher.Compare(admin.Password, c.Password) {
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	id := auth.Identity{ID: admin.ID, Email: admin.Email, Role: auth.RoleAdmin}
	h.issue(w, http.StatusOK, id, map[string]any{
		"id": admin.ID, "email": admin.Email, "role": auth.RoleAdmin,
	}, "login successful")
}

func (h *AuthHandler) registerAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeMessage(w, http.StatusBadRequest, "email, password and name are required")
		return
	}
	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	admin, err := h.Accounts.CreateAdmin(r.Context(), market.Admin{
		Email: req.Email, Password: hash, Name: req.Name,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.welcome(r.Context(), admin.Email, admin.Name)
	id := auth.Identity{ID: admin.ID, Email: admin.Email, Role: auth.RoleAdmin}
	h.issue(w, http.StatusCreated, id, map[string]any{
		"id": admin.ID, "email": admin.Email, "role": auth.RoleAdmin,
	}, "admin account created successfully")
}

func (h *AuthHandler) resetAdmin(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, func(ctx context.Context, email, hash string) (string, string, error) {
		admin, err := h.Accounts.GetAdminByEmail(ctx, email)
		if err != nil {
			return "", "", err
		}
		return admin.Email, admin.Name, h.Accounts.UpdateAdminPassword(ctx, admin.ID, hash)
	})
}

// ---- seller ----

func (h *AuthHandler) loginSeller(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decode(r, &c); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if c.Email == "" || c.Password == "" {
		writeMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}
	seller, err := h.Accounts.GetSellerByEmail(r.Context(), c.Email)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if seller.Rejected {
		writeMessage(w, http.StatusForbidden, "your seller account has been rejected, please contact support")
		return
	}
	if !seller.Approved {
		writeMessage(w, http.StatusForbidden, "your seller account is pending approval")
		return
	}
	if !h.Hasher.Compare(seller.Password, c.Password) {
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	id := auth.Identity{ID: seller.ID, Email: seller.Email, Role: auth.RoleSeller}
	h.issue(w, http.StatusOK, id, map[string]any{
		"id": seller.ID, "email": seller.Email,
		"businessName": seller.BusinessName, "role": auth.RoleSeller,
	}, "login successful")
}

type sellerRegistration struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	BusinessName     string `json:"businessName"`
	WarehouseAddress string `json:"warehouseAddress"`
	BusinessAddress  string `json:"businessAddress"`
	ZipCode          string `json:"zipCode"`
	Phone            string `json:"phone"`
	GST              string `json:"gst"`
}

func (h *AuthHandler) registerSeller(w http.ResponseWriter, r *http.Request) {
	var req sellerRegistration
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if req.Email == "" || req.Password == "" || req.BusinessName == "" {
		writeMessage(w, http.StatusBadRequest, "email, password and business name are required")
		return
	}
	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	seller, err := h.Accounts.CreateSeller(r.Context(), market.Seller{
		Email:            req.Email,
		Password:         hash,
		BusinessName:     req.BusinessName,
		WarehouseAddress: req.WarehouseAddress,
		BusinessAddress:  req.BusinessAddress,
		ZipCode:          req.ZipCode,
		Phone:            req.Phone,
		GST:              req.GST,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.welcome(r.Context(), seller.Email, seller.BusinessName)
	// No token until an admin approves the application.
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "your seller application has been submitted for review",
		"user": map[string]any{
			"id": seller.ID, "email": seller.Email, "businessName": seller.BusinessName,
		},
	})
}

func (h *AuthHandler) resetSeller(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, func(ctx context.Context, email, hash string) (string, string, error) {
		seller, err := h.Accounts.GetSellerByEmail(ctx, email)
		if err != nil {
			return "", "", err
		}
		return seller.Email, seller.BusinessName, h.Accounts.UpdateSellerPassword(ctx, seller.ID, hash)
	})
}

// ---- customer ----

func (h *AuthHandler) loginCustomer(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decode(r, &c); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if c.Email == "" || c.Password == "" {
		writeMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}
	user, err := h.Accounts.GetUserByEmail(r.Context(), c.Email)
	if err != nil || !h.Hasher.Compare(user.Password, c.Password) {
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	id := auth.Identity{ID: user.ID, Email: user.Email, Role: auth.RoleCustomer}
	h.issue(w, http.StatusOK, id, map[string]any{
		"id": user.ID, "email": user.Email, "name": user.Name, "role": auth.RoleCustomer,
	}, "login successful")
}

func (h *AuthHandler) registerCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Address  string `json:"address"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeMessage(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	user, err := h.Accounts.CreateUser(r.Context(), market.User{
		Name: req.Name, Email: req.Email, Password: hash, Address: req.Address,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.welcome(r.Context(), user.Email, user.Name)
	id := auth.Identity{ID: user.ID, Email: user.Email, Role: auth.RoleCustomer}
	h.issue(w, http.StatusCreated, id, map[string]any{
		"id": user.ID, "email": user.Email, "name": user.Name, "role": auth.RoleCustomer,
	}, "account created successfully")
}

func (h *AuthHandler) resetCustomer(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, func(ctx context.Context, email, hash string) (string, string, error) {
		user, err := h.Accounts.GetUserByEmail(ctx, email)
		if err != nil {
			return "", "", err
		}
		return user.Email, user.Name, h.Accounts.UpdateUserPassword(ctx, user.ID, hash)
	})
}

// reset never reveals whether the account exists.
func (h *AuthHandler) reset(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, email, hash string) (string, string, error)) {

	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "email is required")
		return
	}
	const neutral = "if the email exists, a password reset will be sent"

	password := auth.RandomPassword()
	hash, err := h.Hasher.Hash(password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if email, name, err := apply(r.Context(), req.Email, hash); err == nil {
		h.resetMail(r.Context(), email, name, password)
	}
	writeMessage(w, http.StatusOK, neutral)
}
