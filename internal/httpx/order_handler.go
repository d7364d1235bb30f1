package httpx

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/shoply/marketplace/internal/auth"
	"github.com/shoply/marketplace/internal/market"
)

type OrderDetailSource interface {
	GetOrderDetail(ctx context.Context, id int64) (market.OrderDetail, error)
}

// OrderHandler serves the shared order-detail endpoint. Admins see every
// order; sellers and customers only their own.
type OrderHandler struct {
	Orders OrderDetailSource
	Log    *zap.Logger
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	detail, err := h.Orders.GetOrderDetail(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	switch caller.Role {
	case auth.RoleCustomer:
		if detail.UserID != caller.ID {
			writeMessage(w, http.StatusForbidden, "access denied")
			return
		}
	case auth.RoleSeller:
		if detail.SellerID != caller.ID {
			writeMessage(w, http.StatusForbidden, "access denied")
			return
		}
	}
	writeJSON(w, http.StatusOK, detail)
}
