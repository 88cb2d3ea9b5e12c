package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tooling-procurement/internal/core"
	"tooling-procurement/internal/logger"
)

// Services groups the core services the application layer orchestrates.
type Services struct {
	Users     core.UserService
	Projects  core.ProjectService
	Suppliers core.SupplierService
	PRs       core.PurchaseRequisitionService
	Handovers core.ToolHandoverService
	Inventory core.InventoryService
	Spares    core.SparesRequestService
	Rates     core.RateResolver
}

type appService struct {
	pool *pgxpool.Pool
	log  *logger.Logger
	Services
}

// NewAppService constructs an appService that satisfies ApplicationService.
// pool may be nil in tests; CheckHealth then reports the database as missing.
func NewAppService(pool *pgxpool.Pool, log *logger.Logger, services Services) ApplicationService {
	return &appService{pool: pool, log: log, Services: services}
}

func (s *appService) CheckHealth(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("no database pool")
	}
	return s.pool.Ping(ctx)
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	user, err := s.Users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s.log.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return &UserSession{UserID: user.ID, Username: user.Username, Role: string(user.Role)}, nil
}

func (s *appService) GetUser(ctx context.Context, userID int) (*UserResult, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return userResult(user), nil
}

func (s *appService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResult, error) {
	user, err := s.Users.CreateUser(ctx, core.UserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     core.Role(req.Role),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return userResult(user), nil
}

func userResult(u *core.User) *UserResult {
	return &UserResult{UserID: u.ID, Username: u.Username, Email: u.Email, Role: string(u.Role), IsActive: u.IsActive}
}

// ── Master data ───────────────────────────────────────────────────────────────

func (s *appService) ResolveBOM(ctx context.Context, toolNumber string) (*BOMResult, error) {
	lines := core.ResolveBOM(strings.TrimSpace(toolNumber))
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return &BOMResult{ToolNumber: toolNumber, Lines: lines, Total: total}, nil
}

func (s *appService) ListBOMTools(ctx context.Context) []string {
	return core.BOMToolNumbers()
}

func (s *appService) ListProjects(ctx context.Context) ([]core.Project, error) {
	return s.Projects.GetProjects(ctx)
}

func (s *appService) GetProject(ctx context.Context, id int) (*core.Project, error) {
	return s.Projects.GetProject(ctx, id)
}

func (s *appService) CreateProject(ctx context.Context, req CreateProjectRequest, actor string) (*core.Project, error) {
	return s.Projects.CreateProject(ctx, core.ProjectInput{
		CustomerPO: strings.TrimSpace(req.CustomerPO),
		PartNumber: strings.TrimSpace(req.PartNumber),
		ToolNumber: strings.TrimSpace(req.ToolNumber),
		Price:      req.Price,
		TargetDate: strings.TrimSpace(req.TargetDate),
		CreatedBy:  actor,
	})
}

func (s *appService) ListSuppliers(ctx context.Context) ([]core.Supplier, error) {
	return s.Suppliers.GetSuppliers(ctx)
}

func (s *appService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*core.Supplier, error) {
	return s.Suppliers.CreateSupplier(ctx, core.SupplierInput{
		Code:          req.Code,
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	})
}

// ── Purchase requisitions ────────────────────────────────────────────────────

// buildDraft turns the builder request into a PR draft. The project's tool
// number selects the BOM; a missing project is reported as a field problem.
func (s *appService) buildDraft(ctx context.Context, req PRRequest, actor string) (core.PRDraft, error) {
	draft := core.PRDraft{
		ProjectID:    req.ProjectID,
		PRType:       core.PRType(req.PRType),
		ModRefReason: req.ModRefReason,
		Suppliers:    make([]string, 0, len(req.Suppliers)),
		CreatedBy:    actor,
	}
	for _, code := range req.Suppliers {
		draft.Suppliers = append(draft.Suppliers, strings.TrimSpace(code))
	}

	var lines []core.BOMLine
	if req.ProjectID > 0 {
		project, err := s.Projects.GetProject(ctx, req.ProjectID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return draft, &core.ValidationError{Problems: []string{fmt.Sprintf("project %d does not exist", req.ProjectID)}}
			}
			return draft, err
		}
		lines = core.ResolveBOM(project.ToolNumber)
	}

	selections := make([]core.BOMSelection, 0, len(req.BOMSelections))
	for _, sel := range req.BOMSelections {
		selections = append(selections, core.BOMSelection{LineID: sel.LineID, Quantity: sel.Quantity})
	}
	var items []core.PRItem
	var err error
	if draft.PRType == core.PRTypeNewSet {
		items, err = core.OverrideQuantities(core.BuildNewSetItems(lines), selections)
	} else {
		items, err = core.BuildSelectedItems(lines, selections)
	}
	if err != nil {
		return draft, err
	}
	draft.Items = items

	for _, m := range req.ManualItems {
		draft.Items = append(draft.Items, core.ManualItem(draft.Items, m.Name, m.Specification, m.Quantity, m.Requirements))
	}

	for _, cs := range req.CriticalSpares {
		draft.CriticalSpares = append(draft.CriticalSpares, core.CriticalSpare{ItemID: cs.ItemID, Quantity: cs.Quantity})
	}
	return draft, nil
}

func (s *appService) PreviewPR(ctx context.Context, req PRRequest) (*PRPreviewResult, error) {
	draft, err := s.buildDraft(ctx, req, "")
	if err != nil {
		return nil, err
	}
	rate, err := s.Rates.TaxRate(ctx)
	if err != nil {
		return nil, err
	}

	res := &PRPreviewResult{
		Items:          draft.Items,
		CriticalSpares: draft.CriticalSpares,
		Cost:           core.ComputeCost(draft.PRType, draft.Items, draft.CriticalSpares, rate),
		Problems:       []string{},
	}
	if res.Items == nil {
		res.Items = []core.PRItem{}
	}
	if res.CriticalSpares == nil {
		res.CriticalSpares = []core.CriticalSpare{}
	}
	var ve *core.ValidationError
	if err := core.ValidateForSubmission(draft); errors.As(err, &ve) {
		res.Problems = ve.Problems
	}
	return res, nil
}

func (s *appService) CreatePR(ctx context.Context, req PRRequest, actor string) (*PRResult, error) {
	draft, err := s.buildDraft(ctx, req, actor)
	if err != nil {
		return nil, err
	}
	pr, err := s.PRs.CreatePR(ctx, draft)
	if err != nil {
		return nil, err
	}
	return s.prResult(ctx, pr)
}

func (s *appService) UpdatePR(ctx context.Context, id int, req PRRequest, actor string) (*PRResult, error) {
	draft, err := s.buildDraft(ctx, req, actor)
	if err != nil {
		return nil, err
	}
	pr, err := s.PRs.UpdatePR(ctx, id, draft)
	if err != nil {
		return nil, err
	}
	return s.prResult(ctx, pr)
}

func (s *appService) DeletePR(ctx context.Context, id int) error {
	return s.PRs.DeletePR(ctx, id)
}

func (s *appService) GetPR(ctx context.Context, id int) (*PRResult, error) {
	pr, err := s.PRs.GetPR(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.prResult(ctx, pr)
}

func (s *appService) ListPRs(ctx context.Context, filter core.PRFilter) (*core.PRPage, error) {
	return s.PRs.GetPRs(ctx, filter)
}

func (s *appService) ApplyPRAction(ctx context.Context, id int, action core.PRAction, req PRActionRequest, actor string) (*PRResult, error) {
	pr, err := s.PRs.Apply(ctx, id, action, core.ActionInput{
		Actor:    actor,
		Comments: strings.TrimSpace(req.Comments),
		Supplier: strings.TrimSpace(req.Supplier),
		Confirm:  req.Confirm,
	})
	if err != nil {
		return nil, err
	}
	return s.prResult(ctx, pr)
}

func (s *appService) RecordQuotation(ctx context.Context, id int, supplier string, req QuotationRequest, actor string) (*PRResult, error) {
	pr, err := s.PRs.RecordQuotation(ctx, id, core.QuotationInput{
		Supplier:      strings.TrimSpace(supplier),
		UnitPrices:    req.UnitPrices,
		DeliveryTerms: req.DeliveryTerms,
		DeliveryDate:  req.DeliveryDate,
		Notes:         req.Notes,
		Actor:         actor,
	})
	if err != nil {
		return nil, err
	}
	return s.prResult(ctx, pr)
}

func (s *appService) ComparePR(ctx context.Context, id int) (*core.Comparison, error) {
	pr, err := s.PRs.GetPR(ctx, id)
	if err != nil {
		return nil, err
	}
	rate, err := s.Rates.TaxRate(ctx)
	if err != nil {
		return nil, err
	}
	cmp := core.Compare(*pr, rate)
	return &cmp, nil
}

func (s *appService) prResult(ctx context.Context, pr *core.PurchaseRequisition) (*PRResult, error) {
	rate, err := s.Rates.TaxRate(ctx)
	if err != nil {
		return nil, err
	}
	return &PRResult{
		PR:             pr,
		Cost:           core.ComputeCost(pr.PRType, pr.Items, pr.CriticalSpares, rate),
		AllowedActions: core.AllowedActions(pr.Status),
	}, nil
}

// ── Handovers & inventory ────────────────────────────────────────────────────

func (s *appService) ListHandovers(ctx context.Context, status core.HandoverStatus) ([]core.ToolHandoverRecord, error) {
	return s.Handovers.GetHandovers(ctx, status)
}

func (s *appService) SyncHandovers(ctx context.Context) ([]core.ToolHandoverRecord, error) {
	created, err := s.Handovers.SyncHandovers(ctx)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = []core.ToolHandoverRecord{}
	}
	return created, nil
}

func (s *appService) InspectHandover(ctx context.Context, id int, decision core.InspectionDecision, remarks, inspector string) (*core.ToolHandoverRecord, error) {
	return s.Handovers.Inspect(ctx, id, decision, inspector, remarks)
}

func (s *appService) GetStock(ctx context.Context) ([]core.StockView, error) {
	return s.Inventory.GetStock(ctx)
}

// ── Spares requests ──────────────────────────────────────────────────────────

func (s *appService) ListSparesRequests(ctx context.Context, requestedBy string) ([]core.SparesRequest, error) {
	return s.Spares.GetRequests(ctx, requestedBy)
}

func (s *appService) CreateSparesRequest(ctx context.Context, req SparesRequestRequest, actor string) (*core.SparesRequest, error) {
	return s.Spares.CreateRequest(ctx, core.SparesRequestInput{
		RequestedBy:       actor,
		ItemName:          req.ItemName,
		PartNumber:        req.PartNumber,
		ToolNumber:        req.ToolNumber,
		QuantityRequested: req.QuantityRequested,
		ProjectID:         req.ProjectID,
		Purpose:           req.Purpose,
	})
}

func (s *appService) EditSparesRequest(ctx context.Context, id int, req SparesEditRequest, actor string, privileged bool) (*core.SparesRequest, error) {
	return s.Spares.EditRequest(ctx, id, actor, privileged, core.SparesRequestEdit{
		QuantityRequested: req.QuantityRequested,
		Purpose:           req.Purpose,
	})
}

func (s *appService) DeleteSparesRequest(ctx context.Context, id int, actor string, privileged bool) error {
	return s.Spares.DeleteRequest(ctx, id, actor, privileged)
}

func (s *appService) FulfillSparesRequest(ctx context.Context, id int, req FulfillRequest, actor string) (*core.SparesRequest, error) {
	return s.Spares.Fulfill(ctx, id, core.SparesRequestStatus(req.Status), req.QuantityFulfilled, actor)
}
