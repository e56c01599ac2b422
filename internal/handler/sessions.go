package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/cart"
	"github.com/tavolo-pos/api/internal/catalog"
	"github.com/tavolo-pos/api/internal/middleware"
	"github.com/tavolo-pos/api/internal/session"
	"github.com/tavolo-pos/api/internal/ws"
)

// SessionStore defines the session-manager methods needed by cart handlers.
// Satisfied by *session.Manager; narrow interface for testability.
type SessionStore interface {
	Create(userID string) *session.Session
	Load(userID string, order cart.OrderSnapshot) *session.Session
	Get(id uuid.UUID) (*session.Session, bool)
	Close(id uuid.UUID) bool
}

// MenuLookup resolves product, variant and modifier snapshots when items are
// added. Satisfied by *catalog.Menu.
type MenuLookup interface {
	FindProduct(id string) (catalog.Product, bool)
	ResolveModifier(id string) cart.ItemModifier
}

// Broadcaster pushes live events to terminals watching a session.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToSession(id uuid.UUID, event ws.Event)
}

// SessionHandler handles order-cart session endpoints.
type SessionHandler struct {
	sessions SessionStore
	menu     MenuLookup
	hub      Broadcaster
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions SessionStore, menu MenuLookup, hub Broadcaster) *SessionHandler {
	return &SessionHandler{sessions: sessions, menu: menu, hub: hub}
}

// RegisterRoutes registers session endpoints on the given Chi router.
// Mounted at /sessions.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Close)
	r.Post("/{id}/reset", h.Reset)
	r.Post("/{id}/confirm", h.Confirm)

	r.Post("/{id}/items", h.AddItem)
	r.Put("/{id}/items/{itemID}", h.UpdateItem)
	r.Patch("/{id}/items/{itemID}/quantity", h.UpdateItemQuantity)
	r.Delete("/{id}/items/{itemID}", h.RemoveItem)

	r.Put("/{id}/form", h.UpdateForm)

	r.Post("/{id}/adjustments", h.AddAdjustment)
	r.Patch("/{id}/adjustments/{adjID}", h.UpdateAdjustment)
	r.Delete("/{id}/adjustments/{adjID}", h.RemoveAdjustment)
	r.Post("/{id}/adjustments/{adjID}/restore", h.RestoreAdjustment)

	r.Put("/{id}/prepayment", h.SetPrepayment)
	r.Delete("/{id}/prepayment", h.ClearPrepayment)
}

// --- Request / Response types ---

type createSessionRequest struct {
	// Order, when present, seeds an edit-mode session from an existing
	// order; otherwise a creation-mode session is opened.
	Order *cart.OrderSnapshot `json:"order,omitempty"`
}

type addItemRequest struct {
	ProductID           string                    `json:"product_id"`
	VariantID           string                    `json:"variant_id,omitempty"`
	Quantity            float64                   `json:"quantity"`
	ModifierIDs         []string                  `json:"modifier_ids,omitempty"`
	PreparationNotes    string                    `json:"preparation_notes,omitempty"`
	PizzaCustomizations []cart.PizzaCustomization `json:"pizza_customizations,omitempty"`
	PizzaExtraCost      float64                   `json:"pizza_extra_cost,omitempty"`
}

type updateItemRequest struct {
	Quantity            float64                   `json:"quantity"`
	ModifierIDs         []string                  `json:"modifier_ids"`
	PreparationNotes    *string                   `json:"preparation_notes,omitempty"`
	VariantID           *string                   `json:"variant_id,omitempty"`
	UnitPrice           *float64                  `json:"unit_price,omitempty"`
	PizzaCustomizations []cart.PizzaCustomization `json:"pizza_customizations,omitempty"`
	PizzaExtraCost      *float64                  `json:"pizza_extra_cost,omitempty"`
}

type updateQuantityRequest struct {
	Quantity float64 `json:"quantity"`
}

type updateFormRequest struct {
	OrderType      *string `json:"order_type,omitempty"`
	TableID        *string `json:"table_id,omitempty"`
	AreaID         *string `json:"area_id,omitempty"`
	TemporaryTable *struct {
		AreaID string `json:"area_id"`
		Name   string `json:"name"`
	} `json:"temporary_table,omitempty"`
	// ScheduledAt is RFC3339; an explicit empty string clears the schedule.
	ScheduledAt  *string            `json:"scheduled_at,omitempty"`
	DeliveryInfo *cart.DeliveryInfo `json:"delivery_info,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
}

type adjustmentRequest struct {
	Name         string  `json:"name"`
	IsPercentage bool    `json:"is_percentage"`
	Value        float64 `json:"value"`
	Amount       float64 `json:"amount"`
}

type prepaymentRequest struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
}

type sessionResponse struct {
	ID                uuid.UUID         `json:"id"`
	Mode              cart.Mode         `json:"mode"`
	OrderID           string            `json:"order_id,omitempty"`
	Items             []cart.Item       `json:"items"`
	Form              cart.FormState    `json:"form"`
	Adjustments       []cart.Adjustment `json:"adjustments"`
	Totals            cart.Totals       `json:"totals"`
	Prepayment        *cart.Prepayment  `json:"prepayment,omitempty"`
	HasUnsavedChanges bool              `json:"has_unsaved_changes"`
}

type confirmResponse struct {
	Payload *cart.Payload `json:"payload"`
}

// --- Handlers ---

// Create handles POST /sessions. Without a body order it opens a
// creation-mode session; with one it loads the order into edit mode.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	var sess *session.Session
	if req.Order != nil {
		if req.Order.ID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order.id is required to edit an order"})
			return
		}
		sess = h.sessions.Load(claims.UserID.String(), *req.Order)
	} else {
		sess = h.sessions.Create(claims.UserID.String())
	}

	writeJSON(w, http.StatusCreated, h.view(sess))
}

// Get handles GET /sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.view(sess))
}

// Close handles DELETE /sessions/{id}.
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}
	if !h.sessions.Close(id) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reset handles POST /sessions/{id}/reset: discard local edits and restore
// the original snapshot.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	sess.With(func(c *cart.Cart) error {
		c.ResetToOriginal()
		return nil
	})
	h.broadcastUpdate(sess)
	writeJSON(w, http.StatusOK, h.view(sess))
}

// AddItem handles POST /sessions/{id}/items.
func (h *SessionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id is required"})
		return
	}

	product, found := h.menu.FindProduct(req.ProductID)
	if !found {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product not found in menu"})
		return
	}

	unitPrice, _ := product.Price.Float64()
	variantName := ""
	if req.VariantID != "" {
		variant, found := product.FindVariant(req.VariantID)
		if !found {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "variant not found for product"})
			return
		}
		unitPrice, _ = variant.Price.Float64()
		variantName = variant.Name
	}

	modifiers := make([]cart.ItemModifier, len(req.ModifierIDs))
	for i, id := range req.ModifierIDs {
		modifiers[i] = h.menu.ResolveModifier(id)
	}

	var added cart.Item
	sess.With(func(c *cart.Cart) error {
		added = c.AddItem(cart.AddItemParams{
			ProductID:           product.ID,
			ProductName:         product.Name,
			VariantID:           req.VariantID,
			VariantName:         variantName,
			Quantity:            cart.SanitizeQuantity(req.Quantity),
			UnitPrice:           unitPrice,
			Modifiers:           modifiers,
			PreparationNotes:    req.PreparationNotes,
			PizzaCustomizations: req.PizzaCustomizations,
			PizzaExtraCost:      req.PizzaExtraCost,
		})
		return nil
	})

	h.broadcastUpdate(sess)
	writeJSON(w, http.StatusCreated, added)
}

// UpdateItem handles PUT /sessions/{id}/items/{itemID}: full field
// replacement after re-customizing through the product editor.
func (h *SessionHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	itemID := chi.URLParam(r, "itemID")

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	modifiers := make([]cart.ItemModifier, len(req.ModifierIDs))
	for i, id := range req.ModifierIDs {
		modifiers[i] = h.menu.ResolveModifier(id)
	}

	err := sess.With(func(c *cart.Cart) error {
		return c.UpdateItem(itemID, cart.UpdateItemParams{
			Quantity:            cart.SanitizeQuantity(req.Quantity),
			Modifiers:           modifiers,
			PreparationNotes:    req.PreparationNotes,
			VariantID:           req.VariantID,
			UnitPrice:           req.UnitPrice,
			PizzaCustomizations: req.PizzaCustomizations,
			PizzaExtraCost:      req.PizzaExtraCost,
		})
	})
	if err != nil {
		writeCartError(w, err)
		return
	}

	h.broadcastUpdate(sess)
	writeJSON(w, http.StatusOK, h.view(sess))
}

// UpdateItemQuantity handles PATCH /sessions/{id}/items/{itemID}/quantity.
// A quantity of zero removes the item.
func (h *SessionHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	itemID := chi.URLParam(r, "itemID")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	quantity := 0
	if req.Quantity > 0 {
		quantity = cart.SanitizeQuantity(req.Quantity)
	}

	err := sess.With(func(c *cart.Cart) error {
		return c.UpdateItemQuantity(itemID, quantity)
	})
	if err != nil {
		writeCartError(w, err)
		return
	}

	h.broadcastUpdate(sess)
	writeJSON(w, http.StatusOK, h.view(sess))
}

// RemoveItem handles DELETE /sessions/{id}/items/{itemID}.
func (h *SessionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	itemID := chi.URLParam(r, "itemID")

	err := sess.With(func(c *cart.Cart) error {
		return c.RemoveItem(itemID)
	})
	if err != nil {
		writeCartError(w, err)
		return
	}

	h.broadcastUpdate(sess)
	writeJSON(w, http.StatusOK, h.view(sess))
}

// UpdateForm handles PUT /sessions/{id}/form. Only the provided fields are
// applied.
func (h *SessionHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req updateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var scheduledAt *time.Time
	clearSchedule := false
	if req.ScheduledAt != nil {
		if *req.ScheduledAt == "" {
			clearSchedule = true
		} else {
			t, err := time.Parse(time.RFC3339, *req.ScheduledAt)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scheduled_at format, use RFC3339"})
				return
			}
			scheduledAt = &t
		}
	}

	sess.With(func(c *cart.Cart) error {
		if req.OrderType != nil {
			c.SetOrderType(*req.OrderType)
		}
		if req.TemporaryTable != nil {
			c.SetTemporaryTable(req.TemporaryTable.AreaID, req.TemporaryTable.Name)
		} else if req.TableID != nil {
			areaID := ""
			if req.AreaID != nil {
				areaID = *req.AreaID
			}
			c.SetTable(areaID, *req.TableID)
		}
		if scheduledAt != nil || clearSchedule {
			c.SetScheduledAt(scheduledAt)
		}
		if req.DeliveryInfo != nil {
			c.SetDeliveryInfo(*req.DeliveryInfo)
		}
		if req.Notes != nil {
			c.SetNotes(*req.Notes)
		}
		return nil
	})

	h.broadcastUpdate(sess)
	writeJSON(w, http.StatusOK, h.view(sess))
}

// AddAdjustment handles POST /sessions/{id}/adjustments.
func (h *SessionHandler) AddAdjustment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	var added cart.Adjustment
	sess.With(func(c *cart.Cart) error {
		added = c.AddAdjustment(cart.Adjustment{
			Name:         req.Name,
			IsPercentage: req.IsPercentage,
			Value:        decimal.NewFromFloat(req.Value),
			Amount:       decimal.NewFromFloat(req.Amount),
		})
		return nil
	})

	h.broadcastUpdate(sess)
	writeJSON(w, http.StatusCreated, added)
}

// UpdateAdjustment handles PATCH /sessions/{id}/adjustments/{adjID}.
func (h *SessionHandler) UpdateAdjustment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	adjID := chi.URLParam(r, "adjID")

	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	err := sess.With(func(c *cart.Cart) error {
		return c.UpdateAdjustment(adjID, req.Name, req.IsPercentage, req.Value, req.Amount)
	})
	if err != nil {
		writeCartError(w, err)
		return
	}

	h.broadcastUpdate(sess)
	writeJSON(w, http.StatusOK, h.view(sess))
}

// RemoveAdjustment handles DELETE /sessions/{id}/adjustments/{adjID}.
func (h *SessionHandler) RemoveAdjustment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	adjID := chi.URLParam(r, "adjID")

	err := sess.With(func(c *cart.Cart) error {
		return c.RemoveAdjustment(adjID)
	})
	if err != nil {
		writeCartError(w, err)
		return
	}

	h.broadcastUpdate(sess)
	writeJSON(w, http.StatusOK, h.view(sess))
}

// RestoreAdjustment handles POST /sessions/{id}/adjustments/{adjID}/restore.
func (h *SessionHandler) RestoreAdjustment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	adjID := chi.URLParam(r, "adjID")

	err := sess.With(func(c *cart.Cart) error {
		return c.RestoreAdjustment(adjID)
	})
	if err != nil {
		writeCartError(w, err)
		return
	}

	h.broadcastUpdate(sess)
	writeJSON(w, http.StatusOK, h.view(sess))
}

// SetPrepayment handles PUT /sessions/{id}/prepayment.
func (h *SessionHandler) SetPrepayment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req prepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}

	sess.With(func(c *cart.Cart) error {
		c.SetPrepayment(req.ID, req.Amount)
		return nil
	})

	h.broadcastUpdate(sess)
	writeJSON(w, http.StatusOK, h.view(sess))
}

// ClearPrepayment handles DELETE /sessions/{id}/prepayment.
func (h *SessionHandler) ClearPrepayment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	sess.With(func(c *cart.Cart) error {
		c.ClearPrepayment()
		return nil
	})

	h.broadcastUpdate(sess)
	writeJSON(w, http.StatusOK, h.view(sess))
}

// Confirm handles POST /sessions/{id}/confirm: validate, build the outbound
// payload and re-capture the diff baseline. Transport of the payload to the
// order service happens outside this API's boundary, so the built payload is
// returned to the caller.
func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	payload, err := sess.Confirm(r.Context(), nil)
	if err != nil {
		var verr *session.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, verr.Result)
		case errors.Is(err, session.ErrConfirmInProgress):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, session.ErrMissingUser):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("confirm session")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	if data, err := json.Marshal(payload); err == nil {
		h.hub.BroadcastToSession(sess.ID, ws.Event{Type: "order.confirmed", Payload: data})
	}

	writeJSON(w, http.StatusOK, confirmResponse{Payload: payload})
}

// --- Helpers ---

// lookup parses the session id and resolves the session, writing the error
// response itself when either step fails.
func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return nil, false
	}
	sess, ok := h.sessions.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

// view snapshots the session state into a response.
func (h *SessionHandler) view(sess *session.Session) sessionResponse {
	var resp sessionResponse
	sess.With(func(c *cart.Cart) error {
		resp = sessionResponse{
			ID:                sess.ID,
			Mode:              c.Mode(),
			OrderID:           c.OrderID(),
			Items:             c.Items(),
			Form:              c.Form(),
			Adjustments:       c.Adjustments(),
			Totals:            c.Totals(),
			Prepayment:        c.Prepayment(),
			HasUnsavedChanges: c.HasUnsavedChanges(),
		}
		return nil
	})
	return resp
}

// broadcastUpdate pushes the refreshed totals to every terminal watching the
// session.
func (h *SessionHandler) broadcastUpdate(sess *session.Session) {
	var update struct {
		SessionID         uuid.UUID   `json:"session_id"`
		Totals            cart.Totals `json:"totals"`
		ItemCount         int         `json:"item_count"`
		HasUnsavedChanges bool        `json:"has_unsaved_changes"`
	}
	sess.With(func(c *cart.Cart) error {
		update.SessionID = sess.ID
		update.Totals = c.Totals()
		update.ItemCount = len(c.Items())
		update.HasUnsavedChanges = c.HasUnsavedChanges()
		return nil
	})
	if data, err := json.Marshal(update); err == nil {
		h.hub.BroadcastToSession(sess.ID, ws.Event{Type: "cart.updated", Payload: data})
	}
}

// writeCartError maps engine errors to HTTP status codes.
func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrItemNotFound), errors.Is(err, cart.ErrAdjustmentNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, cart.ErrItemLocked):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("cart mutation")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}
