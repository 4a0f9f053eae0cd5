package domain

// DefaultAuthorityWeight is returned for sources matching no rule.
const DefaultAuthorityWeight = 10

// Authority tiers, highest first.
const (
	AuthorityRegulatory   = 100
	AuthorityStandard     = 80
	AuthorityGuidance     = 60
	AuthorityCertifier    = 40
	AuthorityManufacturer = 20
)

// AuthorityRule maps a source-name substring to a precedence weight.
type AuthorityRule struct {
	// Pattern is matched case-insensitively as a substring of the source name.
	Pattern string `yaml:"pattern" json:"pattern"`

	// Weight is the precedence weight. Higher is more authoritative.
	Weight int `yaml:"weight" json:"weight"`

	// Tier is an optional label for display.
	Tier string `yaml:"tier,omitempty" json:"tier,omitempty"`
}

// DefaultAuthorityRules returns the built-in authority table.
func DefaultAuthorityRules() []AuthorityRule {
	return []AuthorityRule{
		{Pattern: "nzbc", Weight: AuthorityRegulatory, Tier: "regulatory"},
		{Pattern: "building code", Weight: AuthorityRegulatory, Tier: "regulatory"},
		{Pattern: "building act", Weight: AuthorityRegulatory, Tier: "regulatory"},
		{Pattern: "acceptable solution", Weight: AuthorityRegulatory, Tier: "regulatory"},
		{Pattern: "verification method", Weight: AuthorityRegulatory, Tier: "regulatory"},
		{Pattern: "nzs", Weight: AuthorityStandard, Tier: "standard"},
		{Pattern: "as/nzs", Weight: AuthorityStandard, Tier: "standard"},
		{Pattern: "standards nz", Weight: AuthorityStandard, Tier: "standard"},
		{Pattern: "mbie", Weight: AuthorityGuidance, Tier: "guidance"},
		{Pattern: "branz", Weight: AuthorityGuidance, Tier: "guidance"},
		{Pattern: "codemark", Weight: AuthorityCertifier, Tier: "certifier"},
		{Pattern: "appraisal", Weight: AuthorityCertifier, Tier: "certifier"},
		{Pattern: "nzmrm", Weight: AuthorityCertifier, Tier: "certifier"},
		{Pattern: "installation guide", Weight: AuthorityManufacturer, Tier: "manufacturer"},
		{Pattern: "technical manual", Weight: AuthorityManufacturer, Tier: "manufacturer"},
		{Pattern: "data sheet", Weight: AuthorityManufacturer, Tier: "manufacturer"},
		{Pattern: "datasheet", Weight: AuthorityManufacturer, Tier: "manufacturer"},
	}
}
