package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shoply/marketplace/internal/auth"
	"github.com/shoply/marketplace/internal/market"
)

type CustomerAccounts interface {
	GetUser(ctx context.Context, id int64) (market.User, error)
	UpdateUserProfile(ctx context.Context, u market.User) (market.User, error)
	GetCart(ctx context.Context, userID int64) (market.Cart, error)
	SetCart(ctx context.Context, userID int64, c market.Cart) error
}

type CartCatalog interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]market.Product, error)
}

type CustomerOrders interface {
	ListByUser(ctx context.Context, userID int64) ([]market.OrderDetail, error)
	GetOrderDetail(ctx context.Context, id int64) (market.OrderDetail, error)
}

type CustomerHandler struct {
	Accounts CustomerAccounts
	Products CartCatalog
	Orders   CustomerOrders
	Checkout *market.Checkout
	Hasher   *auth.Hasher
	Log      *zap.Logger
}

func (h *CustomerHandler) Register(r chi.Router) {
	r.Get("/profile", h.getProfile)
	r.Put("/profile", h.updateProfile)
	r.Get("/cart", h.getCart)
	r.Post("/cart", h.setCart)
	r.Post("/orders", h.placeOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.orderDetails)
}

func (h *CustomerHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	user, err := h.Accounts.GetUser(r.Context(), id.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *CustomerHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	user, err := h.Accounts.GetUser(r.Context(), id.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var req struct {
		Name            string `json:"name"`
		Address         string `json:"address"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	// Only name and address are writable; email is not.
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.NewPassword != "" {
		if !h.Hasher.Compare(user.Password, req.CurrentPassword) {
			writeMessage(w, http.StatusBadRequest, "current password is incorrect")
			return
		}
		hash, err := h.Hasher.Hash(req.NewPassword)
		if err != nil {
			writeError(w, h.Log, err)
			return
		}
		user.Password = hash
	}

	updated, err := h.Accounts.UpdateUserProfile(r.Context(), user)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "profile updated successfully",
		"user":    updated,
	})
}

type cartLine struct {
	market.CartItem
	Product *market.Product `json:"product,omitempty"`
}

// getCart denormalizes each line with the referenced product's current state.
func (h *CustomerHandler) getCart(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	cart, err := h.Accounts.GetCart(r.Context(), id.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	lines := make([]cartLine, 0, len(cart.Items))
	if len(cart.Items) > 0 {
		products, err := h.Products.GetProducts(r.Context(), cart.ProductIDs())
		if err != nil {
			writeError(w, h.Log, err)
			return
		}
		for _, it := range cart.Items {
			line := cartLine{CartItem: it}
			if p, ok := products[it.ProductID]; ok {
				line.Product = &p
			}
			lines = append(lines, line)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": lines})
}

// setCart replaces the whole cart after validating every line.
func (h *CustomerHandler) setCart(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var cart market.Cart
	if err := decode(r, &cart); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if len(cart.Items) > 0 {
		products, err := h.Products.GetProducts(r.Context(), cart.ProductIDs())
		if err != nil {
			writeError(w, h.Log, err)
			return
		}
		if err := market.ValidateItems(cart.Items, products); err != nil {
			writeError(w, h.Log, err)
			return
		}
	}
	if err := h.Accounts.SetCart(r.Context(), id.ID, cart); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "cart updated successfully",
		"cart":    cart,
	})
}

func (h *CustomerHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req struct {
		Address string `json:"address"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	orders, err := h.Checkout.PlaceOrder(r.Context(), id.ID, req.Address)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "orders placed successfully",
		"orders":  orders,
	})
}

func (h *CustomerHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	orders, err := h.Orders.ListByUser(r.Context(), id.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if orders == nil {
		orders = []market.OrderDetail{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *CustomerHandler) orderDetails(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	orderID, err := idParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	detail, err := h.Orders.GetOrderDetail(r.Context(), orderID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if detail.UserID != id.ID {
		writeMessage(w, http.StatusForbidden, "you do not have permission to view this order")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
