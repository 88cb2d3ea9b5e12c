package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tooling-procurement/internal/app"
	"tooling-procurement/internal/core"
)

// apiListPRs handles GET /api/purchase-requisitions?status=&project_id=&page=&page_size=.
func (h *Handler) apiListPRs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.PRFilter{Status: core.PRStatus(q.Get("status"))}
	for name, dst := range map[string]*int{
		"project_id": &filter.ProjectID,
		"page":       &filter.Page,
		"page_size":  &filter.PageSize,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, name+" must be a non-negative integer", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		*dst = n
	}

	page, err := h.svc.ListPRs(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, page)
}

func (h *Handler) apiGetPR(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetPR(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiPreviewPR handles POST /api/purchase-requisitions/preview. Nothing is stored.
func (h *Handler) apiPreviewPR(w http.ResponseWriter, r *http.Request) {
	var body app.PRRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.PreviewPR(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreatePR handles POST /api/purchase-requisitions.
// Body: { project_id, pr_type, mod_ref_reason?, bom_selections?, manual_items?, suppliers, critical_spares? }
func (h *Handler) apiCreatePR(w http.ResponseWriter, r *http.Request) {
	var body app.PRRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CreatePR(r.Context(), body, actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

func (h *Handler) apiUpdatePR(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body app.PRRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.UpdatePR(r.Context(), id, body, actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) apiDeletePR(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePR(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// prAction returns the handler for POST /api/purchase-requisitions/{id}/<action>.
// Body (optional): { comments?, supplier?, confirm? }
func (h *Handler) prAction(action core.PRAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var body app.PRActionRequest
		if !decodeOptionalJSON(w, r, &body) {
			return
		}
		result, err := h.svc.ApplyPRAction(r.Context(), id, action, body, actor(r))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, result)
	}
}

// apiRecordQuotation handles PUT /api/purchase-requisitions/{id}/quotations/{supplier}.
// Body: { unit_prices: {item_id: "price"}, delivery_terms, delivery_date, notes? }
func (h *Handler) apiRecordQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body app.QuotationRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.RecordQuotation(r.Context(), id, chi.URLParam(r, "supplier"), body, actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) apiComparePR(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	cmp, err := h.svc.ComparePR(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, cmp)
}
