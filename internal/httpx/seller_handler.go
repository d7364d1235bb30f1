package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shoply/marketplace/internal/auth"
	"github.com/shoply/marketplace/internal/market"
)

type SellerAccounts interface {
	GetSeller(ctx context.Context, id int64) (market.Seller, error)
	UpdateSellerProfile(ctx context.Context, s market.Seller) (market.Seller, error)
}

type SellerProducts interface {
	GetProduct(ctx context.Context, id int64) (market.Product, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]market.Product, error)
	CreateProduct(ctx context.Context, p market.Product) (market.Product, error)
	UpdateProduct(ctx context.Context, p market.Product) (market.Product, error)
}

type SellerOrders interface {
	ListBySeller(ctx context.Context, sellerID int64) ([]market.OrderDetail, error)
}

type SellerHandler struct {
	Accounts SellerAccounts
	Products SellerProducts
	Orders   SellerOrders
	Checkout *market.Checkout
	Hasher   *auth.Hasher
	Log      *zap.Logger
}

func (h *SellerHandler) Register(r chi.Router) {
	r.Get("/profile", h.getProfile)
	r.Put("/profile", h.updateProfile)
	r.Get("/stats", h.stats)
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Get("/orders", h.listOrders)
	r.Put("/orders/{id}/ready", h.markReady)
}

func (h *SellerHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	seller, err := h.Accounts.GetSeller(r.Context(), id.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, seller)
}

func (h *SellerHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	seller, err := h.Accounts.GetSeller(r.Context(), id.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var req struct {
		WarehouseAddress string `json:"warehouseAddress"`
		BusinessAddress  string `json:"businessAddress"`
		ZipCode          string `json:"zipCode"`
		Phone            string `json:"phone"`
		GST              string `json:"gst"`
		CurrentPassword  string `json:"currentPassword"`
		NewPassword      string `json:"newPassword"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	// Business name and email are not writable through the profile.
	if req.WarehouseAddress != "" {
		seller.WarehouseAddress = req.WarehouseAddress
	}
	if req.BusinessAddress != "" {
		seller.BusinessAddress = req.BusinessAddress
	}
	if req.ZipCode != "" {
		seller.ZipCode = req.ZipCode
	}
	if req.Phone != "" {
		seller.Phone = req.Phone
	}
	if req.GST != "" {
		seller.GST = req.GST
	}
	if req.NewPassword != "" {
		if !h.Hasher.Compare(seller.Password, req.CurrentPassword) {
			writeMessage(w, http.StatusBadRequest, "current password is incorrect")
			return
		}
		hash, err := h.Hasher.Hash(req.NewPassword)
		if err != nil {
			writeError(w, h.Log, err)
			return
		}
		seller.Password = hash
	}

	updated, err := h.Accounts.UpdateSellerProfile(r.Context(), seller)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "profile updated successfully",
		"seller":  updated,
	})
}

func (h *SellerHandler) stats(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	products, err := h.Products.ListBySeller(r.Context(), id.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orders, err := h.Orders.ListBySeller(r.Context(), id.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	pending := 0
	for _, p := range products {
		if p.Status == market.ProductPending {
			pending++
		}
	}
	newOrders := 0
	revenue := decimal.Zero
	for _, o := range orders {
		switch o.Status {
		case market.OrderPlaced:
			newOrders++
		case market.OrderFulfilled:
			revenue = revenue.Add(o.TotalPrice)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalProducts":    len(products),
		"pendingApprovals": pending,
		"newOrders":        newOrders,
		"totalRevenue":     revenue,
	})
}

func (h *SellerHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	products, err := h.Products.ListBySeller(r.Context(), id.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmptyProducts(products))
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    *int            `json:"quantity"`
}

func (h *SellerHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req productRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if req.Name == "" || req.Category == "" {
		writeMessage(w, http.StatusBadRequest, "name and category are required")
		return
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		writeMessage(w, http.StatusBadRequest, "price must be positive")
		return
	}
	quantity := 0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 0 {
		writeMessage(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}

	product, err := h.Products.CreateProduct(r.Context(), market.Product{
		SellerID:    id.ID,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
		Price:       req.Price,
		Quantity:    quantity,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "product created successfully and pending approval",
		"product": product,
	})
}

// updateProduct lets the owning seller edit a listing. Changing name,
// description, price or image sends the product back through review.
func (h *SellerHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	productID, err := idParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	product, err := h.Products.GetProduct(r.Context(), productID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if product.SellerID != id.ID {
		writeMessage(w, http.StatusForbidden, "you do not have permission to update this product")
		return
	}

	var req productRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	reReview := false
	if req.Name != "" && req.Name != product.Name {
		product.Name = req.Name
		reReview = true
	}
	if req.Description != "" && req.Description != product.Description {
		product.Description = req.Description
		reReview = true
	}
	if req.Image != "" && req.Image != product.Image {
		product.Image = req.Image
		reReview = true
	}
	if req.Category != "" {
		product.Category = req.Category
	}
	if !req.Price.IsZero() && !req.Price.Equal(product.Price) {
		if req.Price.LessThanOrEqual(decimal.Zero) {
			writeMessage(w, http.StatusBadRequest, "price must be positive")
			return
		}
		product.Price = req.Price
		reReview = true
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			writeMessage(w, http.StatusBadRequest, "quantity must not be negative")
			return
		}
		product.Quantity = *req.Quantity
	}
	if reReview {
		product.Status = market.ProductPending
	}

	updated, err := h.Products.UpdateProduct(r.Context(), product)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	msg := "product updated successfully"
	if updated.Status == market.ProductPending {
		msg = "product updated successfully and pending approval"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": msg,
		"product": updated,
	})
}

func (h *SellerHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	orders, err := h.Orders.ListBySeller(r.Context(), id.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if orders == nil {
		orders = []market.OrderDetail{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *SellerHandler) markReady(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	orderID, err := idParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	order, err := h.Checkout.MarkReady(r.Context(), orderID, id.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "order marked as ready for pickup",
		"order":   order,
	})
}
