package schema

// bound is a shorthand for the optional numeric bounds in the registries.
func bound(v float64) *float64 {
	return &v
}

var personSchema = EntitySchema{
	Kind: KindPerson,
	Fields: []Attr{
		{Name: "name", Type: TypeString, Required: true},
		{Name: "surname", Type: TypeString},
		{Name: "role_type", Type: TypeCategory, Required: true, Values: []string{
			"founder", "gp", "lp", "angel_investor", "executive", "advisor", "other",
		}},
		{Name: "linkedin_url", Type: TypeString},
		{Name: "twitter_handle", Type: TypeString},
		{Name: "biography", Type: TypeText},
		{Name: "location", Type: TypeString},
		{Name: "education", Type: TypeString},
		{Name: "previous_experience", Type: TypeText},
		{Name: "specialization", Type: TypeString},
		{Name: "birth_year", Type: TypeYear, Min: bound(1900), Max: bound(2010)},
		{Name: "reputation_score", Type: TypeInt, Min: bound(1), Max: bound(100)},
	},
}

var startupSchema = EntitySchema{
	Kind: KindStartup,
	Fields: []Attr{
		{Name: "name", Type: TypeString, Required: true},
		{Name: "description", Type: TypeText},
		{Name: "website", Type: TypeString},
		{Name: "founded_year", Type: TypeYear, Min: bound(1990), MaxIsCurrentYear: true},
		{Name: "stage", Type: TypeCategory, Values: StartupStages},
		{Name: "sector", Type: TypeString},
		{Name: "business_model", Type: TypeString},
		{Name: "headquarters", Type: TypeString},
		{Name: "employee_count", Type: TypeInt, Min: bound(0)},
		{Name: "status", Type: TypeCategory, Default: "active", Values: []string{
			"active", "acquired", "closed", "ipo",
		}},
		{Name: "total_funding", Type: TypeAmount},
		{Name: "last_funding_date", Type: TypeDate},
		{Name: "exit_date", Type: TypeDate},
		{Name: "exit_value", Type: TypeAmount},
	},
}

var vcFirmSchema = EntitySchema{
	Kind: KindVCFirm,
	Fields: []Attr{
		{Name: "name", Type: TypeString, Required: true},
		{Name: "description", Type: TypeText},
		{Name: "website", Type: TypeString},
		{Name: "founded_year", Type: TypeYear, Min: bound(1900), MaxIsCurrentYear: true},
		{Name: "headquarters", Type: TypeString},
		{Name: "type", Type: TypeCategory, Required: true, Values: []string{
			"independent", "corporate_vc", "government", "family_office",
		}},
		{Name: "investment_focus", Type: TypeString},
		{Name: "stage_focus", Type: TypeString},
		{Name: "geographic_focus", Type: TypeString},
		{Name: "team_size", Type: TypeInt, Min: bound(1)},
		{Name: "assets_under_management", Type: TypeAmount},
		{Name: "portfolio_companies_count", Type: TypeInt, Min: bound(0)},
	},
}

var vcFundSchema = EntitySchema{
	Kind: KindVCFund,
	Fields: []Attr{
		{Name: "name", Type: TypeString, Required: true},
		{Name: "fund_size", Type: TypeAmount},
		{Name: "vintage_year", Type: TypeYear, Min: bound(2000), Max: bound(2030)},
		{Name: "fund_number", Type: TypeString},
		{Name: "status", Type: TypeString},
		{Name: "target_sectors", Type: TypeString},
		{Name: "target_stages", Type: TypeString},
		{Name: "geographic_focus", Type: TypeString},
		{Name: "first_close_date", Type: TypeDate},
		{Name: "final_close_date", Type: TypeDate},
		{Name: "investment_period", Type: TypeInt, Min: bound(1), Max: bound(10)},
		{Name: "fund_life", Type: TypeInt, Min: bound(5), Max: bound(15)},
		{Name: "deployed_capital", Type: TypeAmount},
	},
	OrderedPairs: []OrderedPair{
		{First: "first_close_date", Second: "final_close_date"},
	},
}

var otherInvestorSchema = EntitySchema{
	Kind: KindOtherInvestor,
	Fields: []Attr{
		{Name: "name", Type: TypeString, Required: true},
		{Name: "type", Type: TypeCategory, Required: true, Values: []string{
			"angel_syndicate", "family_office", "crowdfunding_platform", "other",
		}},
		{Name: "description", Type: TypeText},
		{Name: "website", Type: TypeString},
		{Name: "founded_year", Type: TypeYear, Min: bound(1990), MaxIsCurrentYear: true},
		{Name: "headquarters", Type: TypeString},
		{Name: "members_count", Type: TypeInt, Min: bound(1)},
		{Name: "investment_focus", Type: TypeString},
		{Name: "stage_focus", Type: TypeString},
		{Name: "ticket_size_min", Type: TypeAmount},
		{Name: "ticket_size_max", Type: TypeAmount},
		{Name: "total_investments", Type: TypeInt, Min: bound(0)},
	},
	OrderedPairs: []OrderedPair{
		{First: "ticket_size_min", Second: "ticket_size_max"},
	},
}

var otherInstitutionSchema = EntitySchema{
	Kind: KindOtherInstitution,
	Fields: []Attr{
		{Name: "name", Type: TypeString, Required: true},
		{Name: "type", Type: TypeCategory, Required: true, Values: []string{
			"incubator", "accelerator", "venture_builder", "university", "research_center",
		}},
		{Name: "description", Type: TypeText},
		{Name: "website", Type: TypeString},
		{Name: "founded_year", Type: TypeYear, Min: bound(1900), MaxIsCurrentYear: true},
		{Name: "headquarters", Type: TypeString},
		{Name: "program_duration", Type: TypeInt, Min: bound(1), Max: bound(24)},
		{Name: "batch_size", Type: TypeInt, Min: bound(1)},
		{Name: "sectors_focus", Type: TypeString},
		{Name: "equity_taken", Type: TypePercent},
		{Name: "funding_provided", Type: TypeAmount},
		{Name: "portfolio_companies_count", Type: TypeInt, Min: bound(0)},
		{Name: "success_rate", Type: TypePercent},
	},
}

var corporateSchema = EntitySchema{
	Kind: KindCorporate,
	Fields: []Attr{
		{Name: "name", Type: TypeString, Required: true},
		{Name: "description", Type: TypeText},
		{Name: "website", Type: TypeString},
		{Name: "founded_year", Type: TypeYear, Min: bound(1800), MaxIsCurrentYear: true},
		{Name: "headquarters", Type: TypeString},
		{Name: "sector", Type: TypeString},
		{Name: "size", Type: TypeCategory, Values: []string{
			"startup", "sme", "large_enterprise", "multinational",
		}},
		{Name: "revenue", Type: TypeAmount},
		{Name: "employee_count", Type: TypeInt, Min: bound(1)},
		{Name: "stock_exchange", Type: TypeString},
		{Name: "ticker", Type: TypeString},
		{Name: "has_cvc_arm", Type: TypeBool, Default: false},
		{Name: "innovation_programs", Type: TypeBool, Default: false},
	},
}

var entitySchemas = map[string]EntitySchema{
	KindPerson:           personSchema,
	KindStartup:          startupSchema,
	KindVCFirm:           vcFirmSchema,
	KindVCFund:           vcFundSchema,
	KindOtherInvestor:    otherInvestorSchema,
	KindOtherInstitution: otherInstitutionSchema,
	KindCorporate:        corporateSchema,
}
