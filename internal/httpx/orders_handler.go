package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-sneakers-store/internal/orders"
	"github.com/ariefcatur/go-sneakers-store/internal/postgres"
	"github.com/ariefcatur/go-sneakers-store/internal/redisx"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

type Placer interface {
	PlaceOrder(ctx context.Context, req orders.PlaceRequest) (orders.Outcome, error)
}

type OrderReader interface {
	ListRecent(ctx context.Context, limit int) ([]orders.Order, error)
	Get(ctx context.Context, id int64) (orders.Order, error)
}

type Idempotency interface {
	Begin(ctx context.Context, key string) (orderID int64, replay bool, err error)
	Complete(ctx context.Context, key string, orderID int64) error
	Abort(ctx context.Context, key string) error
}

type OrdersHandler struct {
	Orders Placer
	Reader OrderReader
	Idem   Idempotency // nil disables Idempotency-Key handling
	Log    *zap.Logger
}

type PlaceOrderReq struct {
	StockUnitID     int64  `json:"stock_unit_id"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`
	Quantity        int    `json:"quantity"`
}

type PlaceOrderResp struct {
	OrderID    int64         `json:"order_id"`
	Status     orders.Status `json:"status"`
	Idempotent bool          `json:"idempotent"`
}

type OrderResp struct {
	ID              int64         `json:"id"`
	StockUnitID     int64         `json:"stock_unit_id"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	CustomerAddress string        `json:"customer_address"`
	Quantity        int           `json:"quantity"`
	Status          orders.Status `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/order", h.placeOrder)
	r.Get("/orders", h.listRecent)
	r.Get("/orders/{id}", h.getOrder)
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.StockUnitID == 0 || req.CustomerName == "" || req.CustomerPhone == "" || req.CustomerAddress == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	key := r.Header.Get("Idempotency-Key")
	if h.Idem == nil {
		key = ""
	}
	if key != "" {
		orderID, replay, err := h.Idem.Begin(ctx, key)
		switch {
		case errors.Is(err, redisx.ErrInFlight):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "request with this idempotency key is in progress"})
			return
		case err != nil:
			// redis is a shortcut, not the source of truth
			h.Log.Warn("idempotency unavailable", zap.Error(err))
			key = ""
		case replay:
			writeJSON(w, http.StatusCreated, PlaceOrderResp{OrderID: orderID, Status: orders.StatusNew, Idempotent: true})
			return
		}
	}

	out, err := h.Orders.PlaceOrder(ctx, orders.PlaceRequest{
		StockUnitID:     req.StockUnitID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Quantity:        req.Quantity,
	})
	if err != nil {
		// an ambiguous commit keeps the claim until it expires so a blind retry
		// cannot order twice
		if !errors.Is(err, postgres.ErrCommitUnknown) {
			h.release(ctx, key)
		}
		writeFault(w, h.Log, "place order", err)
		return
	}
	if !out.Committed() {
		h.release(ctx, key)
		code, msg := rejectionStatus(out.Reason)
		writeJSON(w, code, map[string]string{"error": msg, "reason": string(out.Reason)})
		return
	}

	if key != "" {
		if err := h.Idem.Complete(context.WithoutCancel(ctx), key, out.OrderID); err != nil {
			h.Log.Warn("idempotency complete", zap.Error(err), zap.Int64("order_id", out.OrderID))
		}
	}
	writeJSON(w, http.StatusCreated, PlaceOrderResp{OrderID: out.OrderID, Status: orders.StatusNew})
}

func (h *OrdersHandler) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.Idem.Abort(context.WithoutCancel(ctx), key); err != nil {
		h.Log.Warn("idempotency abort", zap.Error(err))
	}
}

func (h *OrdersHandler) listRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
			return
		}
		limit = min(n, maxRecentLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Reader.ListRecent(ctx, limit)
	if err != nil {
		writeFault(w, h.Log, "list orders", err)
		return
	}
	out := make([]OrderResp, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResp(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Reader.Get(ctx, id)
	if errors.Is(err, orders.ErrOrderNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeFault(w, h.Log, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(o))
}

func toOrderResp(o orders.Order) OrderResp {
	return OrderResp{
		ID:              o.ID,
		StockUnitID:     o.StockUnitID,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Quantity:        o.Quantity,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
	}
}
