package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tooling-procurement/internal/app"
	"tooling-procurement/internal/core"
)

const usage = `Available: bom <tool>, tools, prs [status], pr <id>, compare <id>, stock,
           handovers [status], sync, user-add <username> <role> [email]`

// Run executes a one-shot CLI command, printing to out.
// args is os.Args[1:]; the first element is the subcommand name. in supplies
// the password for user-add.
func Run(ctx context.Context, svc app.ApplicationService, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given\n%s", usage)
	}

	switch args[0] {
	case "bom":
		if len(args) < 2 {
			return fmt.Errorf("usage: app bom <tool-number>")
		}
		result, err := svc.ResolveBOM(ctx, args[1])
		if err != nil {
			return err
		}
		printBOM(out, result)

	case "tools":
		for _, tn := range svc.ListBOMTools(ctx) {
			fmt.Fprintln(out, tn)
		}

	case "prs":
		filter := core.PRFilter{PageSize: 100}
		if len(args) > 1 {
			filter.Status = core.PRStatus(strings.Join(args[1:], " "))
		}
		page, err := svc.ListPRs(ctx, filter)
		if err != nil {
			return err
		}
		printPRs(out, page)

	case "pr":
		id, err := idArg(args, "pr")
		if err != nil {
			return err
		}
		result, err := svc.GetPR(ctx, id)
		if err != nil {
			return err
		}
		printPR(out, result)

	case "compare", "cmp":
		id, err := idArg(args, "compare")
		if err != nil {
			return err
		}
		cmp, err := svc.ComparePR(ctx, id)
		if err != nil {
			return err
		}
		printComparison(out, cmp)

	case "stock":
		stock, err := svc.GetStock(ctx)
		if err != nil {
			return err
		}
		printStock(out, stock)

	case "handovers":
		var status core.HandoverStatus
		if len(args) > 1 {
			status = core.HandoverStatus(strings.Join(args[1:], " "))
		}
		handovers, err := svc.ListHandovers(ctx, status)
		if err != nil {
			return err
		}
		printHandovers(out, handovers)

	case "sync":
		created, err := svc.SyncHandovers(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d handover(s) created.\n", len(created))
		printHandovers(out, created)

	case "user-add":
		if len(args) < 3 {
			return fmt.Errorf("usage: app user-add <username> <role> [email]  (password on stdin)")
		}
		password, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read password: %w", err)
		}
		req := app.CreateUserRequest{Username: args[1], Role: args[2], Password: strings.TrimRight(password, "\r\n")}
		if len(args) > 3 {
			req.Email = args[3]
		}
		user, err := svc.CreateUser(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "User %s (%s) created with id %d.\n", user.Username, user.Role, user.UserID)

	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
	return nil
}

func idArg(args []string, cmd string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: app %s <id>", cmd)
	}
	id, err := strconv.Atoi(args[1])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[1])
	}
	return id, nil
}

func rule(out io.Writer, ch string) {
	fmt.Fprintln(out, strings.Repeat(ch, 78))
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func printBOM(out io.Writer, result *app.BOMResult) {
	rule(out, "=")
	fmt.Fprintf(out, "  BILL OF MATERIAL  %s\n", result.ToolNumber)
	rule(out, "=")
	if len(result.Lines) == 0 {
		fmt.Fprintln(out, "  No BOM lines for this tool.")
		return
	}
	fmt.Fprintf(out, "  %-12s %-22s %5s %12s %14s\n", "LINE", "NAME", "QTY", "UNIT PRICE", "AMOUNT")
	rule(out, "-")
	for _, l := range result.Lines {
		amount := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		fmt.Fprintf(out, "  %-12s %-22s %5d %12s %14s\n", l.ID, l.Name, l.Quantity, money(l.UnitPrice), money(amount))
	}
	rule(out, "-")
	fmt.Fprintf(out, "  %-54s %14s\n", "TOTAL", money(result.Total))
}

func printPRs(out io.Writer, page *core.PRPage) {
	fmt.Fprintf(out, "  %-16s %-8s %-13s %-24s %-10s\n", "PR NUMBER", "PROJECT", "TYPE", "STATUS", "AWARDED")
	rule(out, "-")
	for _, pr := range page.Items {
		fmt.Fprintf(out, "  %-16s %-8d %-13s %-24s %-10s\n", pr.PRNumber, pr.ProjectID, pr.PRType, pr.Status, pr.AwardedSupplier)
	}
	fmt.Fprintf(out, "  %d of %d shown\n", len(page.Items), page.Total)
}

func printPR(out io.Writer, result *app.PRResult) {
	pr := result.PR
	rule(out, "=")
	fmt.Fprintf(out, "  %s  (%s)  project %d  status: %s\n", pr.PRNumber, pr.PRType, pr.ProjectID, pr.Status)
	fmt.Fprintf(out, "  Suppliers: %s\n", strings.Join(pr.Suppliers, ", "))
	rule(out, "=")
	fmt.Fprintf(out, "  %-12s %-22s %5s %5s %12s\n", "ITEM", "NAME", "QTY", "SPARE", "UNIT PRICE")
	rule(out, "-")
	for _, it := range pr.Items {
		price := "-"
		if it.Price != nil {
			price = money(*it.Price)
		}
		fmt.Fprintf(out, "  %-12s %-22s %5d %5d %12s\n", it.ID, it.Name, it.Quantity, pr.SpareQuantity(it.ID), price)
	}
	rule(out, "-")
	c := result.Cost
	if pr.PRType == core.PRTypeNewSet {
		fmt.Fprintf(out, "  %-40s %14s\n", "BOM subtotal", money(c.BOMSubtotal))
		fmt.Fprintf(out, "  %-40s %14s\n", "Critical spares subtotal", money(c.CriticalSparesSubtotal))
	} else {
		fmt.Fprintf(out, "  %-40s %14s\n", "Items subtotal", money(c.ModRefSubtotal))
	}
	fmt.Fprintf(out, "  %-40s %14s\n", "Tax @ "+c.TaxRate.Mul(decimal.NewFromInt(100)).String()+"%", money(c.Tax))
	fmt.Fprintf(out, "  %-40s %14s\n", "GRAND TOTAL", money(c.GrandTotal))
	if len(result.AllowedActions) > 0 {
		names := make([]string, len(result.AllowedActions))
		for i, a := range result.AllowedActions {
			names[i] = string(a)
		}
		fmt.Fprintf(out, "  Next: %s\n", strings.Join(names, ", "))
	}
}

func printComparison(out io.Writer, cmp *core.Comparison) {
	rule(out, "=")
	fmt.Fprintf(out, "  QUOTATION COMPARISON  PR %d  (%s)\n", cmp.PRID, cmp.Status)
	rule(out, "=")
	for _, row := range cmp.Items {
		lowest := "N/A"
		if row.LowestPrice != nil {
			lowest = money(*row.LowestPrice) + " " + row.LowestSupplier
		}
		fmt.Fprintf(out, "  %-22s qty %3d  lowest %s\n", row.Name, row.Quantity, lowest)
	}
	rule(out, "-")
	fmt.Fprintf(out, "  %-10s %14s %12s %14s %12s %s\n", "SUPPLIER", "TOTAL", "TAX", "GRAND TOTAL", "VS BOM", "")
	for _, s := range cmp.Suppliers {
		flag := ""
		if s.IsLowest {
			flag = "lowest"
		}
		if !s.Complete {
			flag = "incomplete"
		}
		fmt.Fprintf(out, "  %-10s %14s %12s %14s %12s %s\n", s.Supplier, money(s.Total), money(s.Tax), money(s.GrandTotal), money(s.SavingsVsBOM), flag)
	}
	rule(out, "-")
	fmt.Fprintf(out, "  BOM total %s; award possible: %t\n", money(cmp.BOMTotal), cmp.CanAward)
}

func printStock(out io.Writer, stock []core.StockView) {
	fmt.Fprintf(out, "  %-8s %-10s %-22s %6s %6s %6s  %s\n", "TOOL", "PART", "NAME", "QTY", "LEVEL", "MIN", "STATUS")
	rule(out, "-")
	for _, s := range stock {
		fmt.Fprintf(out, "  %-8s %-10s %-22s %6d %6d %6d  %s\n", s.ToolNumber, s.PartNumber, s.Name, s.Quantity, s.StockLevel, s.MinStockLevel, s.Status)
	}
}

func printHandovers(out io.Writer, handovers []core.ToolHandoverRecord) {
	for _, h := range handovers {
		fmt.Fprintf(out, "  %-16s PR %-5d %-34s %s\n", h.HandoverNumber, h.PRID, h.ToolSet, h.Status)
	}
}
