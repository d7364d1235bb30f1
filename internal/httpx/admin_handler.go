package httpx

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shoply/marketplace/internal/auth"
	"github.com/shoply/marketplace/internal/market"
	"github.com/shoply/marketplace/internal/notify"
)

type AdminAccounts interface {
	GetSeller(ctx context.Context, id int64) (market.Seller, error)
	ListSellers(ctx context.Context) ([]market.Seller, error)
	CreateSeller(ctx context.Context, s market.Seller) (market.Seller, error)
	UpdateSeller(ctx context.Context, s market.Seller) (market.Seller, error)
	SetSellerDecision(ctx context.Context, id int64, approved bool) (market.Seller, error)
}

type AdminProducts interface {
	GetProduct(ctx context.Context, id int64) (market.Product, error)
	ListPending(ctx context.Context) ([]market.Product, error)
	SetProductStatus(ctx context.Context, id int64, to market.ProductStatus) (market.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type AdminOrders interface {
	ListAll(ctx context.Context) ([]market.OrderDetail, error)
	ListByStatus(ctx context.Context, status market.OrderStatus) ([]market.OrderDetail, error)
}

type AdminHandler struct {
	Accounts AdminAccounts
	Products AdminProducts
	Orders   AdminOrders
	Checkout *market.Checkout
	Hasher   *auth.Hasher
	Mailer   notify.Mailer
	Log      *zap.Logger
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/stats", h.stats)
	r.Post("/sellers", h.createSeller)
	r.Get("/sellers", h.listSellers)
	r.Get("/sellers/{id}", h.getSeller)
	r.Put("/sellers/{id}", h.updateSeller)
	r.Put("/sellers/{id}/approve", h.approveSeller)
	r.Put("/sellers/{id}/reject", h.rejectSeller)
	r.Get("/products/pending", h.pendingProducts)
	r.Put("/products/{id}/approve", h.approveProduct)
	r.Put("/products/{id}/reject", h.rejectProduct)
	r.Delete("/products/{id}", h.deleteProduct)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/status/{status}", h.ordersByStatus)
	r.Put("/orders/{id}/tracking", h.addTracking)
}

func (h *AdminHandler) mail(ctx context.Context, to, subject, body string) {
	if h.Mailer == nil {
		return
	}
	_ = h.Mailer.Send(ctx, to, subject, body)
}

func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.Accounts.ListSellers(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	pending, err := h.Products.ListPending(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	ready, err := h.Orders.ListByStatus(r.Context(), market.OrderReady)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	all, err := h.Orders.ListAll(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	revenue := decimal.Zero
	for _, o := range all {
		if o.Status == market.OrderFulfilled {
			revenue = revenue.Add(o.TotalPrice)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalSellers":    len(sellers),
		"pendingProducts": len(pending),
		"readyOrders":     len(ready),
		"totalRevenue":    revenue,
	})
}

// ---- seller management ----

func (h *AdminHandler) createSeller(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req sellerRegistration
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if req.Email == "" || req.BusinessName == "" {
		writeMessage(w, http.StatusBadRequest, "email and business name are required")
		return
	}

	// Admin may omit the password; one is generated and returned once.
	generated := ""
	password := req.Password
	if password == "" {
		generated = auth.RandomPassword()
		password = generated
	}
	hash, err := h.Hasher.Hash(password)
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
		AdminID:          id.ID,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.mail(r.Context(), seller.Email, "Welcome to the marketplace",
		fmt.Sprintf("Hi %s, your seller account has been created.", seller.BusinessName))

	resp := map[string]any{
		"message": "seller account created successfully",
		"seller": map[string]any{
			"id": seller.ID, "email": seller.Email, "businessName": seller.BusinessName,
		},
	}
	if generated != "" {
		resp["password"] = generated
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AdminHandler) listSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.Accounts.ListSellers(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if sellers == nil {
		sellers = []market.Seller{}
	}
	writeJSON(w, http.StatusOK, sellers)
}

func (h *AdminHandler) getSeller(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	seller, err := h.Accounts.GetSeller(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, seller)
}

func (h *AdminHandler) updateSeller(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	seller, err := h.Accounts.GetSeller(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var req sellerRegistration
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if req.BusinessName != "" {
		seller.BusinessName = req.BusinessName
	}
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
	if req.Password != "" {
		hash, err := h.Hasher.Hash(req.Password)
		if err != nil {
			writeError(w, h.Log, err)
			return
		}
		seller.Password = hash
	}

	updated, err := h.Accounts.UpdateSeller(r.Context(), seller)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "seller updated successfully",
		"seller":  updated,
	})
}

func (h *AdminHandler) approveSeller(w http.ResponseWriter, r *http.Request) {
	h.decideSeller(w, r, true)
}

func (h *AdminHandler) rejectSeller(w http.ResponseWriter, r *http.Request) {
	h.decideSeller(w, r, false)
}

func (h *AdminHandler) decideSeller(w http.ResponseWriter, r *http.Request, approved bool) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	seller, err := h.Accounts.SetSellerDecision(r.Context(), id, approved)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if approved {
		h.mail(r.Context(), seller.Email, "Seller account approved",
			fmt.Sprintf("Hi %s, your seller account has been approved.", seller.BusinessName))
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "seller approved successfully", "seller": seller,
		})
		return
	}
	h.mail(r.Context(), seller.Email, "Seller account rejected",
		fmt.Sprintf("Hi %s, your seller application has been rejected.", seller.BusinessName))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "seller rejected successfully", "seller": seller,
	})
}

// ---- product approval ----

type pendingProduct struct {
	market.Product
	SellerBusinessName string `json:"sellerBusinessName"`
}

func (h *AdminHandler) pendingProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.ListPending(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out := make([]pendingProduct, 0, len(products))
	for _, p := range products {
		pp := pendingProduct{Product: p, SellerBusinessName: "Unknown Seller"}
		if seller, err := h.Accounts.GetSeller(r.Context(), p.SellerID); err == nil {
			pp.SellerBusinessName = seller.BusinessName
		}
		out = append(out, pp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) approveProduct(w http.ResponseWriter, r *http.Request) {
	h.decideProduct(w, r, market.ProductApproved, "product approved successfully")
}

func (h *AdminHandler) rejectProduct(w http.ResponseWriter, r *http.Request) {
	h.decideProduct(w, r, market.ProductRejected, "product rejected successfully")
}

func (h *AdminHandler) decideProduct(w http.ResponseWriter, r *http.Request, to market.ProductStatus, msg string) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	product, err := h.Products.SetProductStatus(r.Context(), id, to)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msg, "product": product})
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.Products.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "product deleted successfully"})
}

// ---- order management ----

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListAll(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if orders == nil {
		orders = []market.OrderDetail{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *AdminHandler) ordersByStatus(w http.ResponseWriter, r *http.Request) {
	status := market.OrderStatus(chi.URLParam(r, "status"))
	if !status.Valid() {
		writeMessage(w, http.StatusBadRequest, "invalid status parameter")
		return
	}
	orders, err := h.Orders.ListByStatus(r.Context(), status)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if orders == nil {
		orders = []market.OrderDetail{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *AdminHandler) addTracking(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var req struct {
		TrackingNumber string `json:"trackingNumber"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	order, err := h.Checkout.AddTracking(r.Context(), id, req.TrackingNumber)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "order fulfilled with tracking number",
		"order":   order,
	})
}
