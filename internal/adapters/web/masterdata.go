package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tooling-procurement/internal/app"
)

// apiListBOMTools handles GET /api/bom.
func (h *Handler) apiListBOMTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]string{"tool_numbers": h.svc.ListBOMTools(r.Context())})
}

// apiResolveBOM handles GET /api/bom/{toolNumber}. Unknown tools return no lines.
func (h *Handler) apiResolveBOM(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ResolveBOM(r.Context(), chi.URLParam(r, "toolNumber"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) apiListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.ListProjects(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, projects)
}

func (h *Handler) apiGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	project, err := h.svc.GetProject(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, project)
}

// apiCreateProject handles POST /api/projects.
// Body: { customer_po, part_number, tool_number, price, target_date? }
func (h *Handler) apiCreateProject(w http.ResponseWriter, r *http.Request) {
	var body app.CreateProjectRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	project, err := h.svc.CreateProject(r.Context(), body, actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, project)
}

func (h *Handler) apiListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.svc.ListSuppliers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, suppliers)
}

// apiCreateSupplier handles POST /api/suppliers.
// Body: { code, name, contact_person?, email?, phone?, address? }
func (h *Handler) apiCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var body app.CreateSupplierRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Code == "" || body.Name == "" {
		writeError(w, r, "code and name are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	supplier, err := h.svc.CreateSupplier(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, supplier)
}
