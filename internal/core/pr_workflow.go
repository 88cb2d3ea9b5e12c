package core

import (
	"strings"
	"time"
)

// PRAction is a workflow command against a purchase requisition.
type PRAction string

const (
	ActionSendToSuppliers   PRAction = "send_to_suppliers"
	ActionApprove           PRAction = "approve"
	ActionReject            PRAction = "reject"
	ActionReopen            PRAction = "reopen"
	ActionSubmitForApproval PRAction = "submit_for_approval"
	ActionAward             PRAction = "award"
	ActionMarkItemsReceived PRAction = "mark_items_received"
)

// actionOrder fixes the order AllowedActions reports in.
var actionOrder = []PRAction{
	ActionApprove,
	ActionReject,
	ActionReopen,
	ActionSendToSuppliers,
	ActionSubmitForApproval,
	ActionAward,
	ActionMarkItemsReceived,
}

type prEdge struct {
	from   PRStatus
	action PRAction
}

// prTransitions is the complete PR state machine. Anything not listed is illegal.
var prTransitions = map[prEdge]PRStatus{
	{PRStatusSubmitted, ActionApprove}:                PRStatusApproved,
	{PRStatusSubmitted, ActionReject}:                 PRStatusRejected,
	{PRStatusSubmitted, ActionSendToSuppliers}:        PRStatusSentToSupplier,
	{PRStatusApproved, ActionSendToSuppliers}:         PRStatusSentToSupplier,
	{PRStatusSentToSupplier, ActionSendToSuppliers}:   PRStatusSentToSupplier,
	{PRStatusRejected, ActionReopen}:                  PRStatusSentToSupplier,
	{PRStatusApproved, ActionSubmitForApproval}:       PRStatusSubmittedForApproval,
	{PRStatusSentToSupplier, ActionSubmitForApproval}: PRStatusSubmittedForApproval,
	{PRStatusSubmittedForApproval, ActionApprove}:     PRStatusEvaluationPending,
	{PRStatusSubmittedForApproval, ActionReject}:      PRStatusSentToSupplier,
	{PRStatusEvaluationPending, ActionAward}:          PRStatusAwarded,
	{PRStatusApproved, ActionAward}:                   PRStatusAwarded,
	{PRStatusAwarded, ActionMarkItemsReceived}:        PRStatusItemsReceived,
}

// NextStatus looks up the target status of an action, if the action is legal.
func NextStatus(from PRStatus, action PRAction) (PRStatus, bool) {
	to, ok := prTransitions[prEdge{from, action}]
	return to, ok
}

// AllowedActions lists the actions legal from a status.
func AllowedActions(from PRStatus) []PRAction {
	var out []PRAction
	for _, a := range actionOrder {
		if _, ok := prTransitions[prEdge{from, a}]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Transition applies action to pr and returns the new PR. The input PR is
// never modified; on error it is returned unchanged.
func Transition(pr PurchaseRequisition, action PRAction, in ActionInput, now time.Time) (PurchaseRequisition, error) {
	from := pr.Status
	to, ok := NextStatus(from, action)
	if !ok {
		return pr, &PreconditionError{Entity: "purchase requisition", ID: pr.ID, Action: string(action), Status: string(from)}
	}

	out := pr.Clone()
	comments := strings.TrimSpace(in.Comments)

	switch action {
	case ActionReject:
		if comments == "" {
			return pr, &ValidationError{Problems: []string{"comments are required to reject"}}
		}
		out.ApproverComments = comments
		if from == PRStatusSubmittedForApproval {
			setQuotationStatus(&out, QuotationPending)
		}

	case ActionApprove:
		if comments != "" {
			out.ApproverComments = comments
		}
		if from == PRStatusSubmittedForApproval {
			setQuotationStatus(&out, QuotationApproved)
		}

	case ActionSubmitForApproval:
		if err := checkQuotationsComplete(out); err != nil {
			return pr, err
		}
		setQuotationStatus(&out, QuotationEvaluated)

	case ActionAward:
		awarded, err := Award(out, in.Supplier, now)
		if err != nil {
			return pr, err
		}
		out = awarded

	case ActionMarkItemsReceived:
		if !in.Confirm {
			return pr, &ValidationError{Problems: []string{"receipt must be confirmed"}}
		}
		t := now
		out.ItemsReceivedDate = &t

	case ActionReopen:
		if comments != "" {
			out.ApproverComments = comments
		}
	}

	out.Status = to
	out.UpdatedAt = now
	return out, nil
}

func setQuotationStatus(pr *PurchaseRequisition, s QuotationStatus) {
	for i := range pr.Quotations {
		pr.Quotations[i].Status = s
	}
}

func checkQuotationsComplete(pr PurchaseRequisition) error {
	ve := &ValidationError{}
	if len(pr.Quotations) == 0 {
		ve.add("at least one quotation is required")
	}
	for _, q := range pr.Quotations {
		for _, p := range QuotationProblems(pr, q) {
			ve.add("%s: %s", q.Supplier, p)
		}
	}
	return ve.orNil()
}
