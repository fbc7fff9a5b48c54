package workflow

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ksb/portal/libs/shared/httpx"
)

// Handler exposes workflow template HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds a workflow Handler backed by the given service.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Mount registers the template routes under the provided base path.
func (h *Handler) Mount(router chi.Router, basePath string) {
	path := strings.TrimSpace(basePath)
	if path == "" {
		path = "/workflow-templates"
	}

	router.Route(path, func(r chi.Router) {
		r.Get("/", h.listTemplates)
		r.Post("/", h.createTemplate)
		r.Get("/stats", h.stats)
		r.Get("/predefined", h.listPredefined)
		r.Post("/predefined/{key}", h.instantiatePredefined)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(requireTemplateID)
			r.Get("/", h.getTemplate)
			r.Put("/", h.updateTemplate)
			r.Delete("/", h.deleteTemplate)
			r.Post("/duplicate", h.duplicateTemplate)
			r.Post("/steps", h.addStep)
			r.Route("/steps/{stepId}", func(r chi.Router) {
				r.Put("/", h.updateStep)
				r.Delete("/", h.removeStep)
				r.Post("/move", h.moveStep)
			})
		})
	})
}

// requireTemplateID answers 404 for ids that cannot name a stored template.
func requireTemplateID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := uuid.Validate(chi.URLParam(r, "id")); err != nil {
			httpx.Error(w, r, http.StatusNotFound, "not_found", "workflow template not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type templateRequest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	LicenseType     LicenseType     `json:"licenseType"`
	LicenseCategory LicenseCategory `json:"licenseCategory"`
	LicenseID       *string         `json:"licenseId"`
	Steps           []Step          `json:"steps"`
	IsActive        *bool           `json:"isActive"`
}

func (p templateRequest) template() Template {
	t := Template{
		Name:            strings.TrimSpace(p.Name),
		Description:     strings.TrimSpace(p.Description),
		LicenseType:     p.LicenseType,
		LicenseCategory: p.LicenseCategory,
		Steps:           p.Steps,
		IsActive:        true,
	}
	if p.LicenseID != nil && strings.TrimSpace(*p.LicenseID) != "" {
		id := strings.TrimSpace(*p.LicenseID)
		t.LicenseID = &id
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
	return t
}

type moveRequest struct {
	Direction Direction `json:"direction"`
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid_request", "invalid page")
		return
	}
	pageSize, err := queryInt(r, "pageSize")
	if err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid_request", "invalid pageSize")
		return
	}

	result, err := h.svc.List(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]map[string]any, 0, len(result.Items))
	for _, entity := range result.Items {
		items = append(items, entity.ToDTO())
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":     result.Page,
			"pageSize": result.PageSize,
			"total":    result.Total,
		},
	})
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var payload templateRequest
	if err := decodeJSON(r, &payload); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	entity, err := h.svc.SubmitCreate(r.Context(), payload.template())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeTemplate(w, http.StatusCreated, *entity)
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	entity, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	dto := entity.ToDTO()
	if license := h.svc.License(r.Context(), *entity); license != nil {
		dto["license"] = license
	}
	httpx.Data(w, http.StatusOK, dto)
}

func (h *Handler) updateTemplate(w http.ResponseWriter, r *http.Request) {
	var payload templateRequest
	if err := decodeJSON(r, &payload); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	entity, err := h.svc.SubmitUpdate(r.Context(), chi.URLParam(r, "id"), payload.template())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeTemplate(w, http.StatusOK, *entity)
}

func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) duplicateTemplate(w http.ResponseWriter, r *http.Request) {
	draft, err := h.svc.DuplicateByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.Data(w, http.StatusOK, draftDTO(draft))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.Data(w, http.StatusOK, stats)
}

func (h *Handler) listPredefined(w http.ResponseWriter, r *http.Request) {
	keys, err := PredefinedKeys()
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Data(w, http.StatusOK, keys)
}

func (h *Handler) instantiatePredefined(w http.ResponseWriter, r *http.Request) {
	draft, err := h.svc.InstantiateFromPredefined(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.Data(w, http.StatusOK, draftDTO(draft))
}

func (h *Handler) addStep(w http.ResponseWriter, r *http.Request) {
	var draft StepDraft
	if err := decodeJSON(r, &draft); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	entity, step, err := h.svc.AddStep(r.Context(), chi.URLParam(r, "id"), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{"data": entity.ToDTO(), "step": step})
}

func (h *Handler) updateStep(w http.ResponseWriter, r *http.Request) {
	var draft StepDraft
	if err := decodeJSON(r, &draft); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	entity, step, err := h.svc.UpdateStep(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "stepId"), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"data": entity.ToDTO(), "step": step})
}

func (h *Handler) removeStep(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	entity, refs, err := h.svc.RemoveStep(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "stepId"), confirmed)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payload := map[string]any{"data": entity.ToDTO()}
	if len(refs) > 0 {
		payload["warnings"] = referenceWarnings(refs)
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) moveStep(w http.ResponseWriter, r *http.Request) {
	var payload moveRequest
	if err := decodeJSON(r, &payload); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	entity, err := h.svc.ReorderStep(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "stepId"), payload.Direction)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.Data(w, http.StatusOK, entity.ToDTO())
}

func writeTemplate(w http.ResponseWriter, status int, t Template) {
	payload := map[string]any{"data": t.ToDTO()}
	if refs := DanglingReferences(t.Steps); len(refs) > 0 {
		payload["warnings"] = referenceWarnings(refs)
	}
	httpx.JSON(w, status, payload)
}

// draftDTO renders an unsaved template: no id or timestamps.
func draftDTO(t Template) map[string]any {
	dto := t.ToDTO()
	delete(dto, "id")
	delete(dto, "createdAt")
	delete(dto, "updatedAt")
	return dto
}

func referenceWarnings(refs []Reference) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, "step "+ref.StepID+" "+ref.Field+" references missing step "+ref.Target)
	}
	return out
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		p := httpx.NewProblem(r, http.StatusBadRequest, "validation_error", verr.Error())
		for _, f := range verr.Fields {
			p.Errors = append(p.Errors, httpx.FieldProblem{Field: f.Field, Reason: f.Reason})
		}
		httpx.WriteProblem(w, p)
	case IsNotFound(err):
		httpx.Error(w, r, http.StatusNotFound, "not_found", "workflow template not found")
	case errors.Is(err, ErrStepNotFound):
		httpx.Error(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrUnknownPredefined):
		httpx.Error(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrDuplicateStepID):
		httpx.Error(w, r, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ErrConfirmationRequired):
		httpx.Error(w, r, http.StatusPreconditionRequired, "confirmation_required", "repeat the request with confirm=true")
	default:
		var rerr *RepositoryError
		if errors.As(err, &rerr) {
			httpx.Error(w, r, http.StatusInternalServerError, "repository_error", "unable to "+rerr.Op+" workflow template")
			return
		}
		httpx.Error(w, r, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func queryInt(r *http.Request, key string) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}
