package rotate

import (
	"fmt"

	"github.com/backrot/backrot/internal/domain"
)

// ActionType represents the kind of rotation action
type ActionType string

const (
	ActionPromote    ActionType = "promote"
	ActionQuarantine ActionType = "quarantine"
	ActionReap       ActionType = "reap"
)

// Action represents a single decided operation in a rotation plan
type Action struct {
	// Type of action to perform
	Type ActionType

	// File the action applies to
	File domain.DatedFile

	// Source tier the file currently sits in
	Source domain.Tier

	// Target tier for moves (empty for reaps)
	Target domain.Tier

	// TargetName the file carries after a move (empty for reaps)
	TargetName string

	// Reason explains why this action was chosen
	Reason string
}

// String renders the action the way the dry-run listing prints it.
func (a Action) String() string {
	switch a.Type {
	case ActionReap:
		return fmt.Sprintf("reap %s/%s (%s)", a.Source, a.File.Name, a.Reason)
	default:
		return fmt.Sprintf("%s %s/%s -> %s/%s (%s)",
			a.Type, a.Source, a.File.Name, a.Target, a.TargetName, a.Reason)
	}
}
