// Package schema holds the static registries describing the ecosystem
// ontology: the seven entity kinds, the eleven relationship kinds, and the
// attribute specification of each. The registries are purely data; validation
// and persistence interpret them but never extend them at runtime.
package schema

import "errors"

var (
	// ErrUnknownEntityKind is returned when a kind is not one of the seven
	// registered entity kinds.
	ErrUnknownEntityKind = errors.New("unknown entity kind")
	// ErrUnknownRelationshipKind is returned when a kind is not one of the
	// eleven registered relationship kinds.
	ErrUnknownRelationshipKind = errors.New("unknown relationship kind")
)

// Entity kind labels. These are the node labels used by the graph store and
// the kind discriminators accepted by the API.
const (
	KindPerson           = "Person"
	KindStartup          = "Startup"
	KindVCFirm           = "VC_Firm"
	KindVCFund           = "VC_Fund"
	KindOtherInvestor    = "Other_Investor"
	KindOtherInstitution = "Other_Institution"
	KindCorporate        = "Corporate"
)

// Relationship kind labels.
const (
	RelFounded        = "FOUNDED"
	RelWorksAt        = "WORKS_AT"
	RelAngelInvestsIn = "ANGEL_INVESTS_IN"
	RelManages        = "MANAGES"
	RelInvestsIn      = "INVESTS_IN"
	RelParticipatedIn = "PARTICIPATED_IN"
	RelAcceleratedBy  = "ACCELERATED_BY"
	RelAcquired       = "ACQUIRED"
	RelPartnersWith   = "PARTNERS_WITH"
	RelMentors        = "MENTORS"
	RelSpunOffFrom    = "SPUN_OFF_FROM"
)

// FieldType is the semantic type of an attribute. It decides how raw input is
// coerced and which range rules apply.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeText     FieldType = "text"
	TypeCategory FieldType = "category"
	TypeYear     FieldType = "year"
	TypeDate     FieldType = "date"
	TypeAmount   FieldType = "amount"
	TypePercent  FieldType = "percent"
	TypeInt      FieldType = "int"
	TypeBool     FieldType = "bool"
)

// Attr specifies a single attribute of an entity or relationship kind.
//
// Min and Max bound numeric types when set; unset bounds fall back to the
// defaults of the field type (amounts are non-negative, percentages live in
// [0, 100]). MaxIsCurrentYear marks year fields whose upper bound follows the
// clock rather than a fixed constant.
type Attr struct {
	Name             string
	Type             FieldType
	Required         bool
	Default          any
	Values           []string
	Min              *float64
	Max              *float64
	ExclusiveMin     bool
	MaxIsCurrentYear bool
}

// OrderedPair names two attributes of the same record where the first must
// not exceed the second when both are present. Dates compare chronologically,
// numbers numerically.
type OrderedPair struct {
	First  string
	Second string
}

// Conditional ties a boolean flag to the presence of another attribute:
// when the flag is true TrueForbids must be absent, when it is false
// FalseRequires must be present.
type Conditional struct {
	Flag          string
	TrueForbids   string
	FalseRequires string
}

// EndpointPair is one legal (source kind, target kind) combination for a
// relationship kind.
type EndpointPair struct {
	Source string
	Target string
}

// Cardinality states how many edges of one kind may exist between an ordered
// entity pair.
type Cardinality string

const (
	// CardinalitySingle permits at most one edge per ordered pair;
	// resubmission merges into the existing edge.
	CardinalitySingle Cardinality = "single"
	// CardinalityMultiple permits repeated edges per pair, told apart by the
	// kind's disambiguating attribute.
	CardinalityMultiple Cardinality = "multiple"
)

// EntitySchema is the full attribute specification of one entity kind.
type EntitySchema struct {
	Kind         string
	Fields       []Attr
	OrderedPairs []OrderedPair
}

// RelationshipSchema is the full specification of one relationship kind:
// its legal endpoint pairs, cardinality policy, and attribute set.
// Disambiguator names the attribute that keys repeated edges apart and is
// empty for single-cardinality kinds. NoSelfLoop forbids edges where source
// and target resolve to the same entity.
type RelationshipSchema struct {
	Kind          string
	Endpoints     []EndpointPair
	Cardinality   Cardinality
	Disambiguator string
	Fields        []Attr
	OrderedPairs  []OrderedPair
	Conditionals  []Conditional
	NoSelfLoop    bool
}

// AllowsEndpoints reports whether the (source kind, target kind) pair is
// legal for this relationship kind.
func (r RelationshipSchema) AllowsEndpoints(source, target string) bool {
	for _, p := range r.Endpoints {
		if p.Source == source && p.Target == target {
			return true
		}
	}
	return false
}

// Field returns the attribute spec with the given name, if registered.
func (r RelationshipSchema) Field(name string) (Attr, bool) {
	return fieldByName(r.Fields, name)
}

// Field returns the attribute spec with the given name, if registered.
func (e EntitySchema) Field(name string) (Attr, bool) {
	return fieldByName(e.Fields, name)
}

func fieldByName(fields []Attr, name string) (Attr, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Attr{}, false
}

// LookupEntity returns the schema of an entity kind, or ErrUnknownEntityKind.
func LookupEntity(kind string) (EntitySchema, error) {
	s, ok := entitySchemas[kind]
	if !ok {
		return EntitySchema{}, ErrUnknownEntityKind
	}
	return s, nil
}

// EntityFields returns the ordered attribute specification of an entity kind.
func EntityFields(kind string) ([]Attr, error) {
	s, err := LookupEntity(kind)
	if err != nil {
		return nil, err
	}
	return s.Fields, nil
}

// LookupRelationship returns the schema of a relationship kind, or
// ErrUnknownRelationshipKind.
func LookupRelationship(kind string) (RelationshipSchema, error) {
	s, ok := relationshipSchemas[kind]
	if !ok {
		return RelationshipSchema{}, ErrUnknownRelationshipKind
	}
	return s, nil
}

// EntityKinds returns the registered entity kinds in presentation order.
func EntityKinds() []string {
	return []string{
		KindPerson,
		KindStartup,
		KindVCFirm,
		KindVCFund,
		KindOtherInvestor,
		KindOtherInstitution,
		KindCorporate,
	}
}

// RelationshipKinds returns the registered relationship kinds in
// presentation order.
func RelationshipKinds() []string {
	return []string{
		RelFounded,
		RelWorksAt,
		RelAngelInvestsIn,
		RelManages,
		RelInvestsIn,
		RelParticipatedIn,
		RelAcceleratedBy,
		RelAcquired,
		RelPartnersWith,
		RelMentors,
		RelSpunOffFrom,
	}
}

// StartupStages lists the funding stages in progression order. The ordering
// backs the round-stage regression check on investments.
var StartupStages = []string{
	"pre_seed",
	"seed",
	"series_a",
	"series_b",
	"series_c",
	"growth",
	"exit",
}

// StageOrder returns the position of a funding stage in the fixed
// progression, with false for unknown stages.
func StageOrder(stage string) (int, bool) {
	for i, s := range StartupStages {
		if s == stage {
			return i, true
		}
	}
	return 0, false
}
