package directory

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ksb/portal/libs/shared/httpx"
)

// Handler exposes read-only directory endpoints.
type Handler struct {
	repo Repository
}

// NewHandler creates a new directory Handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Mount registers /departments and /licenses on the router.
func (h *Handler) Mount(router chi.Router) {
	router.Get("/departments", h.listDepartments)
	router.Get("/licenses", h.listLicenses)
	router.Get("/licenses/{id}", h.getLicense)
}

func (h *Handler) listDepartments(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListDepartments(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		httpx.Error(w, r, http.StatusInternalServerError, "repository_error", "unable to list departments")
		return
	}
	if items == nil {
		items = []Department{}
	}
	httpx.Data(w, http.StatusOK, items)
}

func (h *Handler) listLicenses(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListLicenses(r.Context(), strings.ToUpper(r.URL.Query().Get("type")))
	if err != nil {
		httpx.Error(w, r, http.StatusInternalServerError, "repository_error", "unable to list licenses")
		return
	}
	if items == nil {
		items = []License{}
	}
	httpx.Data(w, http.StatusOK, items)
}

func (h *Handler) getLicense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		httpx.Error(w, r, http.StatusNotFound, "not_found", "license not found")
		return
	}

	entity, err := h.repo.FindLicense(r.Context(), id)
	if err != nil {
		if IsNotFound(err) {
			httpx.Error(w, r, http.StatusNotFound, "not_found", "license not found")
			return
		}
		httpx.Error(w, r, http.StatusInternalServerError, "repository_error", "unable to load license")
		return
	}
	httpx.Data(w, http.StatusOK, entity)
}
