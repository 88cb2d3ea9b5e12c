package app

import (
	"context"

	"tooling-procurement/internal/core"
)

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println and no display logic of any kind.
type ApplicationService interface {
	// CheckHealth pings the database.
	CheckHealth(ctx context.Context) error

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns user profile by ID.
	GetUser(ctx context.Context, userID int) (*UserResult, error)

	// CreateUser adds a user with a bcrypt-hashed password.
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResult, error)

	// ResolveBOM returns the catalog lines of a tool. Unknown tools yield no lines.
	ResolveBOM(ctx context.Context, toolNumber string) (*BOMResult, error)

	// ListBOMTools returns every tool number in the catalog.
	ListBOMTools(ctx context.Context) []string

	// ListProjects returns all projects, newest first.
	ListProjects(ctx context.Context) ([]core.Project, error)

	// GetProject returns a project by ID.
	GetProject(ctx context.Context, id int) (*core.Project, error)

	// CreateProject records a new customer tooling order.
	CreateProject(ctx context.Context, req CreateProjectRequest, actor string) (*core.Project, error)

	// ListSuppliers returns all active suppliers.
	ListSuppliers(ctx context.Context) ([]core.Supplier, error)

	// CreateSupplier adds a supplier to the master.
	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*core.Supplier, error)

	// PreviewPR builds the PR lines and cost breakdown without storing anything.
	PreviewPR(ctx context.Context, req PRRequest) (*PRPreviewResult, error)

	// CreatePR builds and stores a Submitted PR.
	CreatePR(ctx context.Context, req PRRequest, actor string) (*PRResult, error)

	// UpdatePR rebuilds the lines of a Submitted PR.
	UpdatePR(ctx context.Context, id int, req PRRequest, actor string) (*PRResult, error)

	// DeletePR removes a Submitted or Rejected PR.
	DeletePR(ctx context.Context, id int) error

	// GetPR returns a PR with its cost breakdown and the actions legal in its status.
	GetPR(ctx context.Context, id int) (*PRResult, error)

	// ListPRs returns one page of PRs.
	ListPRs(ctx context.Context, filter core.PRFilter) (*core.PRPage, error)

	// ApplyPRAction runs a workflow action. Marking items received creates the handover.
	ApplyPRAction(ctx context.Context, id int, action core.PRAction, req PRActionRequest, actor string) (*PRResult, error)

	// RecordQuotation upserts one supplier's quotation on a PR.
	RecordQuotation(ctx context.Context, id int, supplier string, req QuotationRequest, actor string) (*PRResult, error)

	// ComparePR returns the quotation comparison at the current tax rate.
	ComparePR(ctx context.Context, id int) (*core.Comparison, error)

	// ListHandovers returns handovers, optionally filtered by status.
	ListHandovers(ctx context.Context, status core.HandoverStatus) ([]core.ToolHandoverRecord, error)

	// SyncHandovers creates missing handovers for Items Received PRs.
	SyncHandovers(ctx context.Context) ([]core.ToolHandoverRecord, error)

	// InspectHandover records the Maintenance decision; approval stocks the items.
	InspectHandover(ctx context.Context, id int, decision core.InspectionDecision, remarks, inspector string) (*core.ToolHandoverRecord, error)

	// GetStock returns the spares inventory with derived status.
	GetStock(ctx context.Context) ([]core.StockView, error)

	// ListSparesRequests returns spares requests; requestedBy narrows to one Indentor.
	ListSparesRequests(ctx context.Context, requestedBy string) ([]core.SparesRequest, error)

	// CreateSparesRequest raises a Pending request.
	CreateSparesRequest(ctx context.Context, req SparesRequestRequest, actor string) (*core.SparesRequest, error)

	// EditSparesRequest changes a Pending request.
	EditSparesRequest(ctx context.Context, id int, req SparesEditRequest, actor string, privileged bool) (*core.SparesRequest, error)

	// DeleteSparesRequest removes a Pending request.
	DeleteSparesRequest(ctx context.Context, id int, actor string, privileged bool) error

	// FulfillSparesRequest sets the outcome and issues stock.
	FulfillSparesRequest(ctx context.Context, id int, req FulfillRequest, actor string) (*core.SparesRequest, error)
}
