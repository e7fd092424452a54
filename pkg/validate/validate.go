package validate

import (
	"fmt"
	"time"

	"github.com/ecograph/backend/internal/util"
	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/schema"
)

// Validator checks entity and relationship submissions against the schema
// registries. It is stateless and safe for concurrent use.
type Validator struct {
	now func() time.Time
}

type NewValidatorParams struct {
	// Now supplies the clock for current-year bounds. Defaults to time.Now.
	Now func() time.Time
}

func NewValidator(params NewValidatorParams) *Validator {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Entity validates an entity submission. The returned error is non-nil only
// for an unknown kind; all per-field failures are reported as violations.
func (v *Validator) Entity(kind string, attrs map[string]any) (Result, error) {
	s, err := schema.LookupEntity(kind)
	if err != nil {
		return Result{}, err
	}

	res := v.buildRecord(s.Fields, attrs)
	if name, ok := res.Record["name"].(string); ok {
		res.Record["name"] = util.NormalizeName(name)
	}
	v.checkOrderedPairs(&res, s.OrderedPairs)
	return res, nil
}

// Relationship validates a relationship submission, including the legality
// of the endpoint pair. The returned error is non-nil only for an unknown
// relationship kind or an unknown entity kind in one of the refs.
func (v *Validator) Relationship(kind string, source, target common.EntityRef, attrs map[string]any) (Result, error) {
	s, err := schema.LookupRelationship(kind)
	if err != nil {
		return Result{}, err
	}
	if _, err := schema.LookupEntity(source.Kind); err != nil {
		return Result{}, err
	}
	if _, err := schema.LookupEntity(target.Kind); err != nil {
		return Result{}, err
	}

	res := v.buildRecord(s.Fields, attrs)

	if util.NormalizeName(source.Name) == "" {
		res.add("source", ViolationMissing, "is required")
	}
	if util.NormalizeName(target.Name) == "" {
		res.add("target", ViolationMissing, "is required")
	}
	if !s.AllowsEndpoints(source.Kind, target.Kind) {
		res.add("endpoints", ViolationEndpoint,
			fmt.Sprintf("%s may not link %s to %s", kind, source.Kind, target.Kind))
	}
	if s.NoSelfLoop && source.Kind == target.Kind && util.NormalizeName(source.Name) != "" &&
		util.NormalizeName(source.Name) == util.NormalizeName(target.Name) {
		res.add("target", ViolationEndpoint, "must differ from source")
	}

	v.checkOrderedPairs(&res, s.OrderedPairs)
	v.checkConditionals(&res, s.Conditionals)
	return res, nil
}

// buildRecord coerces the submitted attributes against the field specs.
// Attributes that are absent, nil, or blank strings count as not submitted:
// required ones yield a missing violation, defaulted ones land in Defaults.
// Submitted attributes outside the registered field set are ignored.
func (v *Validator) buildRecord(fields []schema.Attr, attrs map[string]any) Result {
	res := Result{
		Record:   map[string]any{},
		Defaults: map[string]any{},
	}
	now := v.now()

	for _, f := range fields {
		raw, present := attrs[f.Name]
		if !present || isBlank(raw) {
			if f.Required {
				res.add(f.Name, ViolationMissing, "is required")
			} else if f.Default != nil {
				res.Defaults[f.Name] = f.Default
			}
			continue
		}

		value, ok, msg := coerce(f, raw)
		if !ok {
			res.add(f.Name, ViolationType, msg)
			continue
		}
		if s, isStr := value.(string); isStr && s == "" {
			// Blank after trimming: same as not submitted.
			if f.Required {
				res.add(f.Name, ViolationMissing, "is required")
			} else if f.Default != nil {
				res.Defaults[f.Name] = f.Default
			}
			continue
		}
		if kind, msg, valid := checkAttr(f, value, now); !valid {
			res.add(f.Name, kind, msg)
			continue
		}
		res.Record[f.Name] = value
	}
	return res
}

func (v *Validator) checkOrderedPairs(res *Result, pairs []schema.OrderedPair) {
	for _, p := range pairs {
		first, firstOK := res.Record[p.First]
		second, secondOK := res.Record[p.Second]
		if !firstOK || !secondOK {
			continue
		}
		if !ordered(first, second) {
			res.add(p.First, ViolationOrdering, fmt.Sprintf("must not be after %s", p.Second))
		}
	}
}

// checkConditionals enforces flag-driven presence rules. The effective flag
// value is the submitted one, falling back to the kind default, so an
// unstated flag behaves the way a freshly created record would.
func (v *Validator) checkConditionals(res *Result, conditionals []schema.Conditional) {
	for _, c := range conditionals {
		flag, known := effectiveBool(res, c.Flag)
		if !known {
			continue
		}
		if flag && c.TrueForbids != "" {
			if _, present := res.Record[c.TrueForbids]; present {
				res.add(c.TrueForbids, ViolationConditional,
					fmt.Sprintf("must be absent when %s is true", c.Flag))
			}
		}
		if !flag && c.FalseRequires != "" {
			if _, present := res.Record[c.FalseRequires]; !present {
				res.add(c.FalseRequires, ViolationConditional,
					fmt.Sprintf("is required when %s is false", c.Flag))
			}
		}
	}
}

func effectiveBool(res *Result, field string) (bool, bool) {
	if raw, ok := res.Record[field]; ok {
		b, isBool := raw.(bool)
		return b, isBool
	}
	if raw, ok := res.Defaults[field]; ok {
		b, isBool := raw.(bool)
		return b, isBool
	}
	return false, false
}

// ordered reports first ≤ second for two coerced values of the same type.
// Canonical date strings compare lexicographically, numbers numerically.
func ordered(first, second any) bool {
	if a, ok := first.(string); ok {
		b, ok := second.(string)
		return ok && a <= b
	}
	a, aok := asFloat64(first)
	b, bok := asFloat64(second)
	return aok && bok && a <= b
}

func isBlank(raw any) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok {
		for _, r := range s {
			if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
				return false
			}
		}
		return true
	}
	return false
}
