package schema

var foundedSchema = RelationshipSchema{
	Kind:        RelFounded,
	Endpoints:   []EndpointPair{{Source: KindPerson, Target: KindStartup}},
	Cardinality: CardinalitySingle,
	Fields: []Attr{
		{Name: "role", Type: TypeCategory, Required: true, Values: []string{
			"CEO", "CTO", "Co-founder", "Founder", "Other",
		}},
		{Name: "founding_date", Type: TypeDate, Required: true},
		{Name: "equity_percentage", Type: TypePercent},
		{Name: "is_current", Type: TypeBool, Default: true},
		{Name: "exit_date", Type: TypeDate},
	},
	OrderedPairs: []OrderedPair{
		{First: "founding_date", Second: "exit_date"},
	},
}

var worksAtSchema = RelationshipSchema{
	Kind: RelWorksAt,
	Endpoints: []EndpointPair{
		{Source: KindPerson, Target: KindVCFirm},
		{Source: KindPerson, Target: KindOtherInstitution},
		{Source: KindPerson, Target: KindCorporate},
	},
	Cardinality:   CardinalityMultiple,
	Disambiguator: "start_date",
	Fields: []Attr{
		{Name: "role", Type: TypeString, Required: true},
		{Name: "start_date", Type: TypeDate, Required: true},
		{Name: "end_date", Type: TypeDate},
		{Name: "seniority_level", Type: TypeString},
		{Name: "is_current", Type: TypeBool, Default: true},
	},
	OrderedPairs: []OrderedPair{
		{First: "start_date", Second: "end_date"},
	},
	Conditionals: []Conditional{
		{Flag: "is_current", TrueForbids: "end_date", FalseRequires: "end_date"},
	},
}

var angelInvestsInSchema = RelationshipSchema{
	Kind:          RelAngelInvestsIn,
	Endpoints:     []EndpointPair{{Source: KindPerson, Target: KindStartup}},
	Cardinality:   CardinalityMultiple,
	Disambiguator: "investment_date",
	Fields: []Attr{
		{Name: "investment_date", Type: TypeDate, Required: true},
		{Name: "round_stage", Type: TypeCategory, Required: true, Values: StartupStages},
		{Name: "amount", Type: TypeAmount, Required: true},
		{Name: "lead_investor", Type: TypeBool, Default: false},
		{Name: "board_seat", Type: TypeBool, Default: false},
	},
}

var managesSchema = RelationshipSchema{
	Kind:        RelManages,
	Endpoints:   []EndpointPair{{Source: KindVCFirm, Target: KindVCFund}},
	Cardinality: CardinalitySingle,
	Fields: []Attr{
		{Name: "start_date", Type: TypeDate, Required: true},
		{Name: "management_fee", Type: TypePercent, Min: bound(0), Max: bound(10)},
		{Name: "carried_interest", Type: TypePercent, Min: bound(0), Max: bound(50)},
	},
}

var investsInSchema = RelationshipSchema{
	Kind: RelInvestsIn,
	Endpoints: []EndpointPair{
		{Source: KindVCFund, Target: KindStartup},
		{Source: KindOtherInvestor, Target: KindStartup},
		{Source: KindCorporate, Target: KindStartup},
	},
	Cardinality:   CardinalityMultiple,
	Disambiguator: "round_date",
	Fields: []Attr{
		{Name: "round_stage", Type: TypeCategory, Required: true, Values: StartupStages},
		{Name: "round_date", Type: TypeDate, Required: true},
		{Name: "amount", Type: TypeAmount, Required: true},
		{Name: "valuation_pre", Type: TypeAmount},
		{Name: "valuation_post", Type: TypeAmount},
		{Name: "is_lead_investor", Type: TypeBool, Default: false},
		{Name: "board_seats", Type: TypeInt, Min: bound(0)},
		{Name: "equity_percentage", Type: TypePercent},
	},
}

var participatedInSchema = RelationshipSchema{
	Kind: RelParticipatedIn,
	Endpoints: []EndpointPair{
		{Source: KindPerson, Target: KindVCFund},
		{Source: KindOtherInstitution, Target: KindVCFund},
		{Source: KindVCFirm, Target: KindVCFund},
	},
	Cardinality:   CardinalityMultiple,
	Disambiguator: "commitment_date",
	Fields: []Attr{
		{Name: "commitment_amount", Type: TypeAmount, Required: true, ExclusiveMin: true},
		{Name: "commitment_date", Type: TypeDate, Required: true},
		{Name: "investor_type", Type: TypeCategory, Required: true, Values: []string{
			"institutional", "hnwi", "family_office", "corporate",
			"government", "pension_fund", "sovereign_fund", "other",
		}},
	},
}

var acceleratedBySchema = RelationshipSchema{
	Kind:          RelAcceleratedBy,
	Endpoints:     []EndpointPair{{Source: KindStartup, Target: KindOtherInstitution}},
	Cardinality:   CardinalityMultiple,
	Disambiguator: "start_date",
	Fields: []Attr{
		{Name: "program_name", Type: TypeString, Required: true},
		{Name: "batch_name", Type: TypeString},
		{Name: "start_date", Type: TypeDate, Required: true},
		{Name: "end_date", Type: TypeDate},
		{Name: "equity_taken", Type: TypePercent},
		{Name: "funding_received", Type: TypeAmount},
		{Name: "demo_day_date", Type: TypeDate},
	},
	OrderedPairs: []OrderedPair{
		{First: "start_date", Second: "end_date"},
	},
}

var acquiredSchema = RelationshipSchema{
	Kind:        RelAcquired,
	Endpoints:   []EndpointPair{{Source: KindCorporate, Target: KindStartup}},
	Cardinality: CardinalitySingle,
	Fields: []Attr{
		{Name: "acquisition_date", Type: TypeDate, Required: true},
		{Name: "acquisition_value", Type: TypeAmount, ExclusiveMin: true},
		{Name: "acquisition_type", Type: TypeCategory, Required: true, Values: []string{
			"full_acquisition", "majority_stake", "minority_stake",
		}},
		{Name: "strategic_rationale", Type: TypeText},
		{Name: "integration_status", Type: TypeCategory, Values: []string{
			"planned", "in_progress", "completed", "standalone",
		}},
	},
}

var partnersWithSchema = RelationshipSchema{
	Kind: RelPartnersWith,
	Endpoints: []EndpointPair{
		{Source: KindCorporate, Target: KindVCFirm},
		{Source: KindCorporate, Target: KindOtherInstitution},
	},
	Cardinality:   CardinalityMultiple,
	Disambiguator: "start_date",
	Fields: []Attr{
		{Name: "partnership_type", Type: TypeCategory, Required: true, Values: []string{
			"strategic", "commercial", "investment", "program",
		}},
		{Name: "start_date", Type: TypeDate, Required: true},
		{Name: "description", Type: TypeText},
		{Name: "is_active", Type: TypeBool, Default: true},
	},
}

var mentorsSchema = RelationshipSchema{
	Kind:          RelMentors,
	Endpoints:     []EndpointPair{{Source: KindPerson, Target: KindPerson}},
	Cardinality:   CardinalityMultiple,
	Disambiguator: "start_date",
	NoSelfLoop:    true,
	Fields: []Attr{
		{Name: "start_date", Type: TypeDate, Required: true},
		{Name: "end_date", Type: TypeDate},
		{Name: "relationship_type", Type: TypeCategory, Required: true, Values: []string{
			"formal_mentor", "advisor", "informal",
		}},
		{Name: "context", Type: TypeText},
	},
	OrderedPairs: []OrderedPair{
		{First: "start_date", Second: "end_date"},
	},
}

var spunOffFromSchema = RelationshipSchema{
	Kind: RelSpunOffFrom,
	Endpoints: []EndpointPair{
		{Source: KindStartup, Target: KindCorporate},
		{Source: KindStartup, Target: KindOtherInstitution},
	},
	Cardinality:   CardinalityMultiple,
	Disambiguator: "spinoff_date",
	Fields: []Attr{
		{Name: "spinoff_date", Type: TypeDate, Required: true},
		{Name: "technology_transferred", Type: TypeText},
		{Name: "initial_equity", Type: TypePercent},
		{Name: "support_provided", Type: TypeText},
	},
}

var relationshipSchemas = map[string]RelationshipSchema{
	RelFounded:        foundedSchema,
	RelWorksAt:        worksAtSchema,
	RelAngelInvestsIn: angelInvestsInSchema,
	RelManages:        managesSchema,
	RelInvestsIn:      investsInSchema,
	RelParticipatedIn: participatedInSchema,
	RelAcceleratedBy:  acceleratedBySchema,
	RelAcquired:       acquiredSchema,
	RelPartnersWith:   partnersWithSchema,
	RelMentors:        mentorsSchema,
	RelSpunOffFrom:    spunOffFromSchema,
}
