package core

import (
	"fmt"
	"strings"
	"time"
)

// TaskPlan is the full DAG of tasks produced by the upstream planning phase
// for one query. CompletedAt is stamped exactly once, after every task has
// reached a terminal status.
type TaskPlan struct {
	ID          string     `json:"id"`
	Query       string     `json:"query"`
	Tasks       []*Task    `json:"tasks"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TaskPlanValidation is the result of the structural checks performed by
// BuildTaskGraph: id uniqueness, dependency resolution and acyclicity.
type TaskPlanValidation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// PlanValidationError is returned when a plan fails structural validation.
// It is fatal: an invalid plan is never scheduled.
type PlanValidationError struct {
	Validation TaskPlanValidation
}

func (e *PlanValidationError) Error() string {
	return fmt.Sprintf("invalid task plan: %s", strings.Join(e.Validation.Errors, "; "))
}
