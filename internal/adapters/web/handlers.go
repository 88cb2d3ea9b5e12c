package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tooling-procurement/internal/app"
	"tooling-procurement/internal/core"
	"tooling-procurement/internal/logger"
)

// Handler holds the ApplicationService, the chi router and auth settings.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	log       *logger.Logger
	jwtSecret string
	tokenTTL  time.Duration
	schemas   map[string]any
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, log *logger.Logger, allowedOrigins, jwtSecret string, tokenTTL time.Duration) http.Handler {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	h := &Handler{
		svc:       svc,
		log:       log,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		schemas:   requestSchemas(),
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Get("/api/schema/{name}", h.schema)
	r.With(middleware.RequestSize(1<<16)).Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes (401 JSON if unauthenticated) ───────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(middleware.RequestSize(1 << 20))

		r.Get("/api/auth/me", h.me)

		// Master data
		r.Get("/api/bom", h.apiListBOMTools)
		r.Get("/api/bom/{toolNumber}", h.apiResolveBOM)
		r.Get("/api/projects", h.apiListProjects)
		r.Get("/api/projects/{id}", h.apiGetProject)
		r.Get("/api/suppliers", h.apiListSuppliers)
		r.With(RequireRole(core.RoleNPD)).Post("/api/projects", h.apiCreateProject)
		r.With(RequireRole(core.RoleNPD)).Post("/api/suppliers", h.apiCreateSupplier)

		// Purchase requisitions
		r.Route("/api/purchase-requisitions", func(r chi.Router) {
			r.Get("/", h.apiListPRs)
			r.Get("/{id}", h.apiGetPR)
			r.Get("/{id}/comparison", h.apiComparePR)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(core.RoleNPD))
				r.Post("/preview", h.apiPreviewPR)
				r.Post("/", h.apiCreatePR)
				r.Put("/{id}", h.apiUpdatePR)
				r.Delete("/{id}", h.apiDeletePR)
				r.Put("/{id}/quotations/{supplier}", h.apiRecordQuotation)
				r.Post("/{id}/send-to-suppliers", h.prAction(core.ActionSendToSuppliers))
				r.Post("/{id}/reopen", h.prAction(core.ActionReopen))
				r.Post("/{id}/submit-for-approval", h.prAction(core.ActionSubmitForApproval))
				r.Post("/{id}/items-received", h.prAction(core.ActionMarkItemsReceived))
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(core.RoleApprover))
				r.Post("/{id}/approve", h.prAction(core.ActionApprove))
				r.Post("/{id}/reject", h.prAction(core.ActionReject))
				r.Post("/{id}/award", h.prAction(core.ActionAward))
			})
		})

		// Handovers and inventory
		r.Get("/api/handovers", h.apiListHandovers)
		r.With(RequireRole(core.RoleNPD, core.RoleMaintenance)).Post("/api/handovers/sync", h.apiSyncHandovers)
		r.With(RequireRole(core.RoleMaintenance)).Post("/api/handovers/{id}/approve", h.inspect(core.InspectionApprove))
		r.With(RequireRole(core.RoleMaintenance)).Post("/api/handovers/{id}/reject", h.inspect(core.InspectionReject))
		r.Get("/api/inventory", h.apiGetStock)

		// Spares requests
		r.Get("/api/spares-requests", h.apiListSparesRequests)
		r.With(RequireRole(core.RoleIndentor)).Post("/api/spares-requests", h.apiCreateSparesRequest)
		r.With(RequireRole(core.RoleIndentor)).Put("/api/spares-requests/{id}", h.apiEditSparesRequest)
		r.With(RequireRole(core.RoleIndentor)).Delete("/api/spares-requests/{id}", h.apiDeleteSparesRequest)
		r.With(RequireRole(core.RoleSpares)).Post("/api/spares-requests/{id}/fulfill", h.apiFulfillSparesRequest)
	})

	h.router = r
	return r
}

// health reports whether the database answers.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	if err := h.svc.CheckHealth(r.Context()); err != nil {
		h.log.Warn("health check failed", "error", err)
		writeJSONStatus(w, http.StatusServiceUnavailable, response{Status: "degraded", Database: "unreachable"})
		return
	}
	writeJSON(w, response{Status: "ok", Database: "ok"})
}

// idParam parses the {id} URL parameter, writing 400 on failure.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "id must be a positive integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by the RequestSize middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// decodeOptionalJSON accepts an empty body as the zero value.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	return decodeJSON(w, r, v)
}
