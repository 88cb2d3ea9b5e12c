package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tooling-procurement/internal/adapters/cli"
	"tooling-procurement/internal/app"
	"tooling-procurement/internal/core"
)

var errExit = errors.New("exit")

// commandRoles gates the mutating commands the same way the web API does.
// Commands not listed are open to every signed-in user; Admin passes all.
var commandRoles = map[string][]core.Role{
	"sync":     {core.RoleNPD, core.RoleMaintenance},
	"new-pr":   {core.RoleNPD},
	"quote":    {core.RoleNPD},
	"send":     {core.RoleNPD},
	"submit":   {core.RoleNPD},
	"reopen":   {core.RoleNPD},
	"received": {core.RoleNPD},
	"approve":  {core.RoleApprover},
	"reject":   {core.RoleApprover},
	"award":    {core.RoleApprover},
	"inspect":  {core.RoleMaintenance},
	"indent":   {core.RoleIndentor},
	"fulfill":  {core.RoleSpares},
}

// readOnly commands are forwarded unchanged to the one-shot CLI.
var readOnly = map[string]bool{
	"bom": true, "tools": true, "prs": true, "pr": true, "compare": true,
	"cmp": true, "stock": true, "handovers": true, "sync": true,
}

type session struct {
	ctx    context.Context
	svc    app.ApplicationService
	reader *bufio.Reader
	out    io.Writer
	user   *app.UserSession
}

// Run signs the operator in and then serves slash commands until /exit or EOF.
func Run(ctx context.Context, svc app.ApplicationService, in io.Reader, out io.Writer) error {
	s := &session{ctx: ctx, svc: svc, reader: bufio.NewReader(in), out: out}

	username := s.prompt("Username: ")
	password := s.prompt("Password: ")
	user, err := svc.AuthenticateUser(ctx, username, password)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	s.user = user
	printBanner(out, user)

	for {
		fmt.Fprint(out, "\n> ")
		input, err := s.reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if err != nil {
				return nil
			}
			continue
		}

		if !strings.HasPrefix(input, "/") {
			fmt.Fprintln(out, "Commands start with '/'. Type /help for the list.")
			continue
		}
		if derr := s.dispatch(input); derr != nil {
			if errors.Is(derr, errExit) {
				fmt.Fprintln(out, "Goodbye!")
				return nil
			}
			fmt.Fprintf(out, "Error: %v\n", derr)
		}
		if err != nil {
			return nil
		}
	}
}

func (s *session) prompt(label string) string {
	fmt.Fprint(s.out, label)
	line, _ := s.reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func (s *session) confirm(label string) bool {
	choice := strings.ToLower(s.prompt(label + " (y/n): "))
	return choice == "y" || choice == "yes"
}

func (s *session) allowed(cmd string) bool {
	roles, gated := commandRoles[cmd]
	if !gated || core.Role(s.user.Role) == core.RoleAdmin {
		return true
	}
	for _, r := range roles {
		if core.Role(s.user.Role) == r {
			return true
		}
	}
	return false
}

func (s *session) dispatch(input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	if !s.allowed(cmd) {
		return fmt.Errorf("/%s is not available to role %s", cmd, s.user.Role)
	}
	if readOnly[cmd] {
		return cli.Run(s.ctx, s.svc, append([]string{cmd}, args...), s.reader, s.out)
	}

	switch cmd {
	case "new-pr":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: /new-pr <project-id> <new-set|modification|refurbished>")
			return nil
		}
		projectID, err := positiveInt(args[0])
		if err != nil {
			return err
		}
		prType, err := parsePRType(args[1])
		if err != nil {
			return err
		}
		return s.newPRWizard(projectID, prType)

	case "quote":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: /quote <pr-id> <supplier-code>")
			return nil
		}
		id, err := positiveInt(args[0])
		if err != nil {
			return err
		}
		return s.quotationWizard(id, strings.ToUpper(args[1]))

	case "send", "submit", "reopen", "approve":
		if len(args) < 1 {
			fmt.Fprintf(s.out, "Usage: /%s <pr-id> [comments]\n", cmd)
			return nil
		}
		action := map[string]core.PRAction{
			"send":    core.ActionSendToSuppliers,
			"submit":  core.ActionSubmitForApproval,
			"reopen":  core.ActionReopen,
			"approve": core.ActionApprove,
		}[cmd]
		return s.applyAction(args[0], action, app.PRActionRequest{Comments: strings.Join(args[1:], " ")})

	case "reject":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: /reject <pr-id> <comments>")
			return nil
		}
		return s.applyAction(args[0], core.ActionReject, app.PRActionRequest{Comments: strings.Join(args[1:], " ")})

	case "award":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: /award <pr-id> <supplier-code> [comments]")
			return nil
		}
		return s.applyAction(args[0], core.ActionAward, app.PRActionRequest{
			Supplier: strings.ToUpper(args[1]),
			Comments: strings.Join(args[2:], " "),
		})

	case "received":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Usage: /received <pr-id>")
			return nil
		}
		if !s.confirm("Confirm every item of the PR has been received?") {
			fmt.Fprintln(s.out, "Cancelled.")
			return nil
		}
		return s.applyAction(args[0], core.ActionMarkItemsReceived, app.PRActionRequest{Confirm: true})

	case "inspect":
		if len(args) < 3 {
			fmt.Fprintln(s.out, "Usage: /inspect <handover-id> <approve|reject> <remarks>")
			return nil
		}
		id, err := positiveInt(args[0])
		if err != nil {
			return err
		}
		decision := core.InspectionDecision(strings.ToLower(args[1]))
		h, err := s.svc.InspectHandover(s.ctx, id, decision, strings.Join(args[2:], " "), s.user.Username)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Handover %s is now %s.\n", h.HandoverNumber, h.Status)

	case "spares":
		requestedBy := ""
		if core.Role(s.user.Role) == core.RoleIndentor || (len(args) > 0 && args[0] == "mine") {
			requestedBy = s.user.Username
		}
		requests, err := s.svc.ListSparesRequests(s.ctx, requestedBy)
		if err != nil {
			return err
		}
		printSparesRequests(s.out, requests)

	case "indent":
		if len(args) < 4 {
			fmt.Fprintln(s.out, "Usage: /indent <tool-number> <part-number> <qty> <item name>")
			return nil
		}
		qty, err := positiveInt(args[2])
		if err != nil {
			return err
		}
		r, err := s.svc.CreateSparesRequest(s.ctx, app.SparesRequestRequest{
			ToolNumber:        args[0],
			PartNumber:        args[1],
			QuantityRequested: qty,
			ItemName:          strings.Join(args[3:], " "),
		}, s.user.Username)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Spares request %d raised for %d x %s.\n", r.ID, r.QuantityRequested, r.ItemName)

	case "fulfill":
		if len(args) < 3 {
			fmt.Fprintln(s.out, "Usage: /fulfill <request-id> <full|partial|reject> <quantity-fulfilled>")
			return nil
		}
		id, err := positiveInt(args[0])
		if err != nil {
			return err
		}
		status, err := parseFulfillStatus(args[1])
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		r, err := s.svc.FulfillSparesRequest(s.ctx, id, app.FulfillRequest{Status: string(status), QuantityFulfilled: qty}, s.user.Username)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Spares request %d: %s, %d of %d issued.\n", r.ID, r.Status, r.QuantityFulfilled, r.QuantityRequested)

	case "whoami":
		fmt.Fprintf(s.out, "%s (%s)\n", s.user.Username, s.user.Role)

	case "help", "h":
		printHelp(s.out)

	case "exit", "quit", "e", "q":
		return errExit

	default:
		fmt.Fprintf(s.out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

func (s *session) applyAction(rawID string, action core.PRAction, req app.PRActionRequest) error {
	id, err := positiveInt(rawID)
	if err != nil {
		return err
	}
	result, err := s.svc.ApplyPRAction(s.ctx, id, action, req, s.user.Username)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s is now %s.\n", result.PR.PRNumber, result.PR.Status)
	return nil
}

func positiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return n, nil
}

func parsePRType(raw string) (core.PRType, error) {
	switch strings.ToLower(raw) {
	case "new-set", "newset", "new":
		return core.PRTypeNewSet, nil
	case "modification", "mod":
		return core.PRTypeModification, nil
	case "refurbished", "ref":
		return core.PRTypeRefurbished, nil
	}
	return "", fmt.Errorf("unknown PR type %q", raw)
}

func parseFulfillStatus(raw string) (core.SparesRequestStatus, error) {
	switch strings.ToLower(raw) {
	case "full", "fulfilled":
		return core.SparesFulfilled, nil
	case "partial":
		return core.SparesPartiallyFulfilled, nil
	case "reject", "rejected":
		return core.SparesRejected, nil
	}
	return "", fmt.Errorf("unknown fulfillment status %q", raw)
}
