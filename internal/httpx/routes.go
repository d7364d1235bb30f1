package httpx

import (
	"github.com/go-chi/chi/v5"

	"github.com/shoply/marketplace/internal/auth"
)

// API groups the handlers and mounts them under their role-scoped prefixes.
type API struct {
	Tokens   *auth.Tokens
	Auth     *AuthHandler
	Admin    *AdminHandler
	Seller   *SellerHandler
	Customer *CustomerHandler
	Product  *ProductHandler
	Order    *OrderHandler
}

func (a *API) Register(r *chi.Mux) {
	a.Auth.Register(r)
	a.Product.Register(r)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(a.Tokens.Authenticate, auth.RequireRole(auth.RoleAdmin))
		a.Admin.Register(r)
	})
	r.Route("/api/seller", func(r chi.Router) {
		r.Use(a.Tokens.Authenticate, auth.RequireRole(auth.RoleSeller))
		a.Seller.Register(r)
	})
	r.Route("/api/customer", func(r chi.Router) {
		r.Use(a.Tokens.Authenticate, auth.RequireRole(auth.RoleCustomer))
		a.Customer.Register(r)
	})
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(a.Tokens.Authenticate)
		r.Get("/{id}", a.Order.getOrder)
	})
}
