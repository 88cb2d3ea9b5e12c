package web

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"

	"tooling-procurement/internal/app"
)

// requestSchemas reflects every request body once at startup.
func requestSchemas() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	bodies := map[string]any{
		"user":           app.CreateUserRequest{},
		"project":        app.CreateProjectRequest{},
		"supplier":       app.CreateSupplierRequest{},
		"pr":             app.PRRequest{},
		"pr-action":      app.PRActionRequest{},
		"quotation":      app.QuotationRequest{},
		"inspection":     app.InspectionRequest{},
		"spares-request": app.SparesRequestRequest{},
		"spares-edit":    app.SparesEditRequest{},
		"spares-fulfill": app.FulfillRequest{},
	}
	out := make(map[string]any, len(bodies))
	for name, v := range bodies {
		out[name] = reflector.Reflect(v)
	}
	return out
}

// schema handles GET /api/schema/{name}.
func (h *Handler) schema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s, ok := h.schemas[name]
	if !ok {
		names := make([]string, 0, len(h.schemas))
		for n := range h.schemas {
			names = append(names, n)
		}
		sort.Strings(names)
		writeError(w, r, "unknown schema "+name+"; known: "+strings.Join(names, ", "), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, s)
}
