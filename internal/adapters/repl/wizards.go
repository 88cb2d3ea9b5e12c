package repl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tooling-procurement/internal/app"
	"tooling-procurement/internal/core"
)

// newPRWizard collects a PR interactively, previews its cost and creates it
// after confirmation.
func (s *session) newPRWizard(projectID int, prType core.PRType) error {
	project, err := s.svc.GetProject(s.ctx, projectID)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Creating %s PR for project %d (%s / %s)\n", prType, project.ID, project.ToolNumber, project.PartNumber)

	req := app.PRRequest{ProjectID: projectID, PRType: string(prType)}

	bom, err := s.svc.ResolveBOM(s.ctx, project.ToolNumber)
	if err != nil {
		return err
	}
	if len(bom.Lines) > 0 {
		printBOMLines(s.out, bom.Lines)
		if prType == core.PRTypeNewSet {
			fmt.Fprintln(s.out, "Every BOM line is included. Edit quantities with: <line-id> <quantity>. Type 'done' when finished, 'cancel' to abort.")
		} else {
			fmt.Fprintln(s.out, "Select BOM lines. Format: <line-id> [quantity]. Type 'done' when finished, 'cancel' to abort.")
		}
		for {
			raw := s.prompt("  BOM line: ")
			switch strings.ToLower(raw) {
			case "cancel":
				fmt.Fprintln(s.out, "PR creation cancelled.")
				return nil
			case "done":
			case "":
				continue
			default:
				parts := strings.Fields(raw)
				sel := app.BOMSelectionInput{LineID: parts[0]}
				if len(parts) > 1 {
					qty, err := strconv.Atoi(parts[1])
					if err != nil || qty <= 0 {
						fmt.Fprintln(s.out, "  Invalid quantity.")
						continue
					}
					sel.Quantity = qty
				}
				req.BOMSelections = append(req.BOMSelections, sel)
				continue
			}
			break
		}
	}
	if prType != core.PRTypeNewSet {
		req.ModRefReason = s.prompt("Reason for the modification or refurbishment: ")
	}

	fmt.Fprintln(s.out, "Manual items. Format: <quantity> <name>. Type 'done' when finished, 'cancel' to abort.")
	for {
		raw := s.prompt("  Item: ")
		if strings.EqualFold(raw, "cancel") {
			fmt.Fprintln(s.out, "PR creation cancelled.")
			return nil
		}
		if strings.EqualFold(raw, "done") {
			break
		}
		if raw == "" {
			continue
		}
		parts := strings.Fields(raw)
		qty, err := strconv.Atoi(parts[0])
		if err != nil || qty <= 0 || len(parts) < 2 {
			fmt.Fprintln(s.out, "  Invalid format. Use: <quantity> <name>")
			continue
		}
		req.ManualItems = append(req.ManualItems, app.ManualItemInput{Name: strings.Join(parts[1:], " "), Quantity: qty})
	}

	for _, code := range strings.Split(s.prompt("Supplier codes (comma separated): "), ",") {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			req.Suppliers = append(req.Suppliers, code)
		}
	}

	preview, err := s.svc.PreviewPR(s.ctx, req)
	if err != nil {
		return err
	}

	if prType == core.PRTypeNewSet {
		printPreviewItems(s.out, preview.Items)
		fmt.Fprintln(s.out, "Critical spares. Format: <item-id> <quantity>. Type 'done' when finished.")
		for {
			raw := s.prompt("  Spare: ")
			if strings.EqualFold(raw, "done") || raw == "" {
				break
			}
			parts := strings.Fields(raw)
			if len(parts) < 2 {
				fmt.Fprintln(s.out, "  Invalid format. Use: <item-id> <quantity>")
				continue
			}
			qty, err := strconv.Atoi(parts[1])
			if err != nil || qty <= 0 {
				fmt.Fprintln(s.out, "  Invalid quantity.")
				continue
			}
			req.CriticalSpares = append(req.CriticalSpares, app.CriticalSpareInput{ItemID: parts[0], Quantity: qty})
		}
		if len(req.CriticalSpares) > 0 {
			if preview, err = s.svc.PreviewPR(s.ctx, req); err != nil {
				return err
			}
		}
	}

	printPreview(s.out, preview)
	if len(preview.Problems) > 0 {
		fmt.Fprintln(s.out, "The PR cannot be submitted until these are fixed.")
		return nil
	}
	if !s.confirm("Create this PR?") {
		fmt.Fprintln(s.out, "PR creation cancelled.")
		return nil
	}

	result, err := s.svc.CreatePR(s.ctx, req, s.user.Username)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "\nPR %s created (ID: %d, Status: %s)\n", result.PR.PRNumber, result.PR.ID, result.PR.Status)
	fmt.Fprintf(s.out, "Use '/send %d' to request quotations.\n", result.PR.ID)
	return nil
}

// quotationWizard keys in one supplier's offer, one unit price per PR item.
func (s *session) quotationWizard(prID int, supplier string) error {
	pr, err := s.svc.GetPR(s.ctx, prID)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Quotation from %s for %s. Enter a unit price per item, 'cancel' to abort.\n", supplier, pr.PR.PRNumber)

	req := app.QuotationRequest{UnitPrices: map[string]decimal.Decimal{}}
	for _, it := range pr.PR.Items {
		for {
			raw := s.prompt(fmt.Sprintf("  %s %s x%d: ", it.ID, it.Name, it.Quantity))
			if strings.EqualFold(raw, "cancel") {
				fmt.Fprintln(s.out, "Quotation cancelled.")
				return nil
			}
			price, err := decimal.NewFromString(raw)
			if err != nil || price.IsNegative() {
				fmt.Fprintln(s.out, "  Invalid price.")
				continue
			}
			req.UnitPrices[it.ID] = price
			break
		}
	}

	req.DeliveryTerms = s.prompt("Delivery terms: ")
	req.DeliveryDate = s.prompt("Delivery date (YYYY-MM-DD, leave blank for today): ")
	if req.DeliveryDate == "" {
		req.DeliveryDate = time.Now().Format("2006-01-02")
	}
	req.Notes = s.prompt("Notes (optional): ")

	result, err := s.svc.RecordQuotation(s.ctx, prID, supplier, req, s.user.Username)
	if err != nil {
		return err
	}
	for _, q := range result.PR.Quotations {
		if q.Supplier == supplier {
			fmt.Fprintf(s.out, "Quotation recorded: %s total %s.\n", supplier, q.Price.StringFixed(2))
		}
	}
	return nil
}
