package graph

import "github.com/ecograph/backend/pkg/validate"

// OutcomeOp states what a submission did to the graph.
type OutcomeOp string

const (
	// OpCreated means no record matched the natural key and a new one was
	// written.
	OpCreated OutcomeOp = "created"
	// OpUpdated means the submission merged into an existing record.
	OpUpdated OutcomeOp = "updated"
	// OpRejected means validation or a graph-state check failed; nothing
	// was written.
	OpRejected OutcomeOp = "rejected"
)

// Outcome is the result of one submission. ID is set for created and updated
// outcomes; Violations is set for rejected ones.
type Outcome struct {
	Op         OutcomeOp            `json:"op"`
	ID         string               `json:"id,omitempty"`
	Violations []validate.Violation `json:"violations,omitempty"`
}

// Rejected reports whether the submission was turned away.
func (o Outcome) Rejected() bool {
	return o.Op == OpRejected
}

func rejected(violations []validate.Violation) Outcome {
	return Outcome{Op: OpRejected, Violations: violations}
}
