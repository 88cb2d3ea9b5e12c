package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"tooling-procurement/internal/app"
	"tooling-procurement/internal/core"
)

func rule(out io.Writer, ch string) {
	fmt.Fprintln(out, strings.Repeat(ch, 70))
}

func printBanner(out io.Writer, user *app.UserSession) {
	fmt.Fprintln(out, "Tooling Procurement")
	fmt.Fprintf(out, "Signed in as %s (%s)\n", user.Username, user.Role)
	fmt.Fprintln(out, "Use /help for commands.")
	rule(out, "-")
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `
Master data
  /tools                          BOM tool numbers
  /bom <tool-number>              Bill of material with prices

Purchase requisitions
  /prs [status]                   List PRs, optionally by status
  /pr <id>                        PR detail with cost and allowed actions
  /new-pr <project-id> <type>     Interactive PR builder (new-set, modification, refurbished)
  /send <id>                      Send to suppliers for quotation
  /quote <id> <supplier>          Key in a supplier quotation
  /compare <id>                   Quotation comparison against the BOM
  /submit <id>                    Submit quotations for approval
  /approve <id> [comments]        Approve (Approver)
  /reject <id> <comments>         Reject with comments (Approver)
  /award <id> <supplier>          Award a supplier (Approver)
  /reopen <id>                    Reopen a rejected PR
  /received <id>                  Mark all items received

Custody and stock
  /handovers [status]             Tool handovers
  /sync                           Create missing handovers
  /inspect <id> <approve|reject> <remarks>
  /stock                          Inventory with stock status
  /spares [mine]                  Spares requests
  /indent <tool> <part> <qty> <name>
  /fulfill <id> <full|partial|reject> <qty>

  /whoami  /help  /exit`)
}

func printBOMLines(out io.Writer, lines []core.BOMLine) {
	fmt.Fprintf(out, "  %-12s %-24s %5s %12s\n", "LINE", "NAME", "QTY", "UNIT PRICE")
	rule(out, "-")
	for _, l := range lines {
		fmt.Fprintf(out, "  %-12s %-24s %5d %12s\n", l.ID, l.Name, l.Quantity, l.UnitPrice.StringFixed(2))
	}
}

func printPreviewItems(out io.Writer, items []core.PRItem) {
	fmt.Fprintf(out, "  %-12s %-24s %5s %12s\n", "ITEM", "NAME", "QTY", "UNIT PRICE")
	rule(out, "-")
	for _, it := range items {
		price := "-"
		if it.Price != nil {
			price = it.Price.StringFixed(2)
		}
		fmt.Fprintf(out, "  %-12s %-24s %5d %12s\n", it.ID, it.Name, it.Quantity, price)
	}
}

func printPreview(out io.Writer, p *app.PRPreviewResult) {
	rule(out, "=")
	fmt.Fprintln(out, "  PR PREVIEW")
	rule(out, "=")
	printPreviewItems(out, p.Items)
	rule(out, "-")
	c := p.Cost
	pct := c.TaxRate.Mul(decimal.NewFromInt(100)).String()
	fmt.Fprintf(out, "  %-40s %14s\n", "Subtotal", c.OverallSubtotal.StringFixed(2))
	fmt.Fprintf(out, "  %-40s %14s\n", "Tax @ "+pct+"%", c.Tax.StringFixed(2))
	fmt.Fprintf(out, "  %-40s %14s\n", "GRAND TOTAL", c.GrandTotal.StringFixed(2))
	for _, problem := range p.Problems {
		fmt.Fprintf(out, "  ! %s\n", problem)
	}
}

func printSparesRequests(out io.Writer, requests []core.SparesRequest) {
	if len(requests) == 0 {
		fmt.Fprintln(out, "No spares requests.")
		return
	}
	fmt.Fprintf(out, "  %-5s %-12s %-10s %-22s %5s %5s %-20s\n", "ID", "BY", "TOOL", "ITEM", "REQ", "ISSUED", "STATUS")
	rule(out, "-")
	for _, r := range requests {
		fmt.Fprintf(out, "  %-5d %-12s %-10s %-22s %5d %5d %-20s\n",
			r.ID, r.RequestedBy, r.ToolNumber, r.ItemName, r.QuantityRequested, r.QuantityFulfilled, r.Status)
	}
}
