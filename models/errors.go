package models

import "fmt"

// ValidationError reports malformed input: a negative amount, an unknown
// path, an empty team name. It is surfaced to the caller synchronously and
// never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports that a referenced supporter or team does not exist.
type NotFoundError struct {
	Kind string // "supporter", "team", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// AlreadyMemberError reports a join attempt by a supporter who already
// belongs to a team. Membership is exclusive system-wide.
type AlreadyMemberError struct {
	UserID string
	TeamID string // the team the supporter already belongs to, if known
}

func (e *AlreadyMemberError) Error() string {
	if e.TeamID == "" {
		return fmt.Sprintf("supporter %q already belongs to a team", e.UserID)
	}
	return fmt.Sprintf("supporter %q already belongs to team %q", e.UserID, e.TeamID)
}

// NotAMemberError reports a leave attempt by a supporter with no team.
type NotAMemberError struct {
	UserID string
}

func (e *NotAMemberError) Error() string {
	return fmt.Sprintf("supporter %q has no team", e.UserID)
}

// ConditionEvaluationError wraps a badge rule that could not be evaluated.
// A failing rule is isolated: the rest of the catalog still runs.
type ConditionEvaluationError struct {
	BadgeID string
	Err     error
}

func (e *ConditionEvaluationError) Error() string {
	return fmt.Sprintf("badge %s: condition evaluation failed: %v", e.BadgeID, e.Err)
}

func (e *ConditionEvaluationError) Unwrap() error { return e.Err }
