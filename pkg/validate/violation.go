// Package validate implements the stateless record validator for entity and
// relationship submissions. It coerces raw attribute maps into normalized
// records and accumulates violations against the registered schema; it never
// touches the graph store. Graph-state checks (stage progression, equity
// budget, acquired status) live with the upsert coordinator.
package validate

// ViolationKind classifies a validation failure.
type ViolationKind string

const (
	ViolationMissing         ViolationKind = "missing"
	ViolationType            ViolationKind = "type"
	ViolationRange           ViolationKind = "range"
	ViolationEnum            ViolationKind = "enum"
	ViolationOrdering        ViolationKind = "ordering"
	ViolationConditional     ViolationKind = "conditional"
	ViolationEndpoint        ViolationKind = "endpoint"
	ViolationStageRegression ViolationKind = "stage_regression"
	ViolationEquityBudget    ViolationKind = "equity_budget"
)

// Violation is a single field-level validation failure, surfaced to the
// operator for correction. Violations are values, not errors: a submission
// with violations is rejected, not failed.
type Violation struct {
	Field   string        `json:"field"`
	Kind    ViolationKind `json:"kind"`
	Message string        `json:"message"`
}

// Result is the outcome of validating one submission. Record holds the
// coerced attributes that were actually submitted; Defaults holds the kind's
// default values for attributes the submission left out, applied by the
// caller on create only so that merges never overwrite untouched attributes.
type Result struct {
	Record     map[string]any
	Defaults   map[string]any
	Violations []Violation
}

// OK reports whether the submission passed with no violations.
func (r Result) OK() bool {
	return len(r.Violations) == 0
}

func (r *Result) add(field string, kind ViolationKind, message string) {
	r.Violations = append(r.Violations, Violation{Field: field, Kind: kind, Message: message})
}
