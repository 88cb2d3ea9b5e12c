package web

import (
	"net/http"

	"tooling-procurement/internal/app"
	"tooling-procurement/internal/core"
)

// apiListHandovers handles GET /api/handovers?status=.
func (h *Handler) apiListHandovers(w http.ResponseWriter, r *http.Request) {
	handovers, err := h.svc.ListHandovers(r.Context(), core.HandoverStatus(r.URL.Query().Get("status")))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, handovers)
}

// apiSyncHandovers handles POST /api/handovers/sync and returns only new records.
func (h *Handler) apiSyncHandovers(w http.ResponseWriter, r *http.Request) {
	created, err := h.svc.SyncHandovers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, created)
}

// inspect returns the handler for POST /api/handovers/{id}/{approve|reject}.
// Body: { remarks }
func (h *Handler) inspect(decision core.InspectionDecision) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var body app.InspectionRequest
		if !decodeOptionalJSON(w, r, &body) {
			return
		}
		handover, err := h.svc.InspectHandover(r.Context(), id, decision, body.Remarks, actor(r))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, handover)
	}
}

func (h *Handler) apiGetStock(w http.ResponseWriter, r *http.Request) {
	stock, err := h.svc.GetStock(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stock)
}

// apiListSparesRequests handles GET /api/spares-requests. Indentors only see
// their own requests.
func (h *Handler) apiListSparesRequests(w http.ResponseWriter, r *http.Request) {
	requestedBy := r.URL.Query().Get("requested_by")
	if c := authFromContext(r.Context()); c != nil && c.Role == core.RoleIndentor {
		requestedBy = c.Username
	}
	requests, err := h.svc.ListSparesRequests(r.Context(), requestedBy)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, requests)
}

// apiCreateSparesRequest handles POST /api/spares-requests.
// Body: { item_name, part_number, tool_number, quantity_requested, project_id?, purpose? }
func (h *Handler) apiCreateSparesRequest(w http.ResponseWriter, r *http.Request) {
	var body app.SparesRequestRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	req, err := h.svc.CreateSparesRequest(r.Context(), body, actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, req)
}

func (h *Handler) apiEditSparesRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body app.SparesEditRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	req, err := h.svc.EditSparesRequest(r.Context(), id, body, actor(r), isAdmin(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, req)
}

func (h *Handler) apiDeleteSparesRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSparesRequest(r.Context(), id, actor(r), isAdmin(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiFulfillSparesRequest handles POST /api/spares-requests/{id}/fulfill.
// Body: { status, quantity_fulfilled }
func (h *Handler) apiFulfillSparesRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body app.FulfillRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	req, err := h.svc.FulfillSparesRequest(r.Context(), id, body, actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, req)
}
