package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tavolo-pos/api/internal/catalog"
)

// MenuHandler serves the read-only catalog tree to terminals.
type MenuHandler struct {
	menu *catalog.Menu
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(menu *catalog.Menu) *MenuHandler {
	return &MenuHandler{menu: menu}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
// Mounted at /menu.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Get("/products/{id}", h.GetProduct)
}

// Get handles GET /menu.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.menu)
}

// GetProduct handles GET /menu/products/{id}.
func (h *MenuHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, found := h.menu.FindProduct(chi.URLParam(r, "id"))
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	writeJSON(w, http.StatusOK, product)
}
