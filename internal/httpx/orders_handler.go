package httpx

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/storelab/orderd/internal/kafka"
	"github.com/storelab/orderd/internal/orders"
	"github.com/storelab/orderd/internal/redisx"
)

type OrdersHandler struct {
	Store   orders.Store
	Created *kafkax.Producer // order.created
	Paid    *kafkax.Producer // order.paid
	Redis   *redis.Client
	Service string
}

type PlaceOrderReq struct {
	Items []orders.ItemInput `json:"items"`
}

type PlaceOrderResp struct {
	OrderID    string `json:"order_id"`
	TotalCents int    `json:"total_cents"`
}

type SetStatusReq struct {
	Status orders.Status `json:"status"`
}

type SetStatusResp struct {
	OrderID string        `json:"order_id"`
	From    orders.Status `json:"from"`
	Status  orders.Status `json:"status"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.placeOrder)
	r.Put("/orders/{id}/status", h.setStatus)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/total", h.getTotal)
	r.Get("/orders/{id}/lines", h.getLines)
	r.Get("/orders/{id}/lines.csv", h.getLinesCSV)
	r.Get("/products", h.listProducts)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the engine's error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a plain 500.
func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, orders.ErrUnauthenticated):
		code = http.StatusUnauthorized
	case errors.Is(err, orders.ErrCustomerNotFound), errors.Is(err, orders.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, orders.ErrInvalidQuantity):
		code = http.StatusBadRequest
	case errors.Is(err, orders.ErrProductUnavailable), errors.Is(err, orders.ErrInvalidTransition):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, orders.ErrInsufficientStock):
		code = http.StatusConflict
	case errors.Is(err, orders.ErrOrderNotFound):
		code = http.StatusNotFound
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r)

	var req PlaceOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	placed, err := h.Store.PlaceOrder(ctx, p, req.Items)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.publish(h.Created, r, orders.EventOrderCreated, placed.OrderID, orders.OrderCreatedPayload{
		OrderID:    placed.OrderID,
		CustomerID: placed.CustomerID,
		Items:      placed.Items,
		TotalCents: placed.TotalCents,
	})

	writeJSON(w, http.StatusCreated, PlaceOrderResp{OrderID: placed.OrderID, TotalCents: placed.TotalCents})
}

func (h *OrdersHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r)
	orderID := chi.URLParam(r, "id")

	var req SetStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sc, err := h.Store.SetStatus(ctx, p, orderID, req.Status)
	if err != nil {
		writeErr(w, err)
		return
	}

	// the status moved; drop the stale cache entry
	if h.Redis != nil {
		_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
	}

	if sc.Enqueued {
		h.publish(h.Paid, r, orders.EventOrderPaid, orderID, orders.OrderPaidPayload{
			OrderID:    orderID,
			TotalCents: sc.TotalCents,
		})
	}

	writeJSON(w, http.StatusOK, SetStatusResp{OrderID: orderID, From: sc.From, Status: sc.To})
}

// cachedStatus carries the owner alongside the status so the visibility
// predicate can run against a cache hit without touching the database.
type cachedStatus struct {
	Status      orders.Status `json:"status"`
	PrincipalID string        `json:"principal_id"`
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r)
	orderID := chi.URLParam(r, "id")
	if !p.Authenticated() {
		writeErr(w, orders.ErrUnauthenticated)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			var c cachedStatus
			if json.Unmarshal([]byte(s), &c) == nil {
				if !orders.CanReadOrder(p, c.PrincipalID) {
					writeErr(w, orders.ErrOrderNotFound)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"status": c.Status})
				return
			}
		}
	}

	o, owner, err := h.Store.GetOrder(ctx, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !orders.CanReadOrder(p, owner) {
		writeErr(w, orders.ErrOrderNotFound)
		return
	}
	if h.Redis != nil {
		b, _ := json.Marshal(cachedStatus{Status: o.Status, PrincipalID: owner})
		_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": o.Status})
}

func (h *OrdersHandler) getTotal(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r)
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	total, err := h.Store.ComputeTotal(ctx, p, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order_id": orderID, "total_cents": total})
}

func (h *OrdersHandler) getLines(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r)
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	lines, err := h.Store.OrderLines(ctx, p, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if lines == nil {
		lines = []orders.OrderLine{}
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *OrdersHandler) getLinesCSV(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r)
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	lines, err := h.Store.OrderLines(ctx, p, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="order-%s.csv"`, orderID))
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"sku", "name", "quantity", "unit_price_cents", "subtotal_cents"})
	for _, l := range lines {
		_ = cw.Write([]string{
			l.SKU, l.Name,
			strconv.Itoa(l.Quantity),
			strconv.Itoa(l.UnitPriceCents),
			strconv.Itoa(l.SubtotalCents),
		})
	}
	cw.Flush()
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Store.ListProducts(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	if ps == nil {
		ps = []orders.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *OrdersHandler) publish(p *kafkax.Producer, r *http.Request, eventType, orderID string, payload any) {
	if p == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
