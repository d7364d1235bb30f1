package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shoply/marketplace/internal/market"
	"github.com/shoply/marketplace/internal/redisx"
)

type Catalog interface {
	GetProduct(ctx context.Context, id int64) (market.Product, error)
	ListApproved(ctx context.Context) ([]market.Product, error)
	ListApprovedByCategory(ctx context.Context, category string) ([]market.Product, error)
	SearchApproved(ctx context.Context, query string) ([]market.Product, error)
}

type SellerDirectory interface {
	GetSeller(ctx context.Context, id int64) (market.Seller, error)
}

// ProductHandler serves the public catalog. Only approved products are
// visible here.
type ProductHandler struct {
	Products Catalog
	Sellers  SellerDirectory
	Redis    *redis.Client
	Log      *zap.Logger
}

func (h *ProductHandler) Register(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/search", h.search)
		r.Get("/category/{category}", h.byCategory)
		r.Get("/{id}", h.detail)
	})
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.ListApproved(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmptyProducts(products))
}

func (h *ProductHandler) byCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.ListApprovedByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmptyProducts(products))
}

func (h *ProductHandler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeMessage(w, http.StatusBadRequest, "search query is required")
		return
	}
	products, err := h.Products.SearchApproved(r.Context(), query)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmptyProducts(products))
}

type productDetail struct {
	market.Product
	Seller *sellerRef `json:"seller"`
}

type sellerRef struct {
	ID           int64  `json:"id"`
	BusinessName string `json:"businessName"`
}

func (h *ProductHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	key := fmt.Sprintf(redisx.KeyProduct, id)
	if h.Redis != nil {
		if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	p, err := h.Products.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if p.Status != market.ProductApproved {
		// Hidden from the public catalog, indistinguishable from absent.
		writeMessage(w, http.StatusNotFound, "product not found")
		return
	}

	detail := productDetail{Product: p}
	if seller, err := h.Sellers.GetSeller(r.Context(), p.SellerID); err == nil {
		detail.Seller = &sellerRef{ID: seller.ID, BusinessName: seller.BusinessName}
	}

	if h.Redis != nil {
		if b, err := json.Marshal(detail); err == nil {
			_ = h.Redis.Set(r.Context(), key, b, redisx.TTLProductCache).Err()
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

func orEmptyProducts(ps []market.Product) []market.Product {
	if ps == nil {
		return []market.Product{}
	}
	return ps
}
