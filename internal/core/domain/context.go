package domain

// FieldRequirement is one piece of information a query must mention.
type FieldRequirement struct {
	// Key identifies the field, e.g. "climate_zone".
	Key string `yaml:"key" json:"key"`

	// Pattern is a regular expression that detects the field in a query.
	Pattern string `yaml:"pattern" json:"pattern"`

	// Prompt is the follow-up question asked when the field is missing.
	Prompt string `yaml:"prompt" json:"prompt"`
}

// ContextRequirement lists the fields a category of question needs
// before it can be answered safely.
type ContextRequirement struct {
	// Category is the requirement key, e.g. "h1_insulation".
	Category string `yaml:"category" json:"category"`

	// Trigger is a regular expression that selects this requirement
	// when the intent is a gated intent rather than the category itself.
	Trigger string `yaml:"trigger" json:"trigger"`

	// Fields are checked in order.
	Fields []FieldRequirement `yaml:"fields" json:"fields"`
}

// GateConfig is the static configuration of the missing-context gate.
type GateConfig struct {
	// GatedIntents are intents that require complete context.
	GatedIntents []string `yaml:"gated_intents" json:"gated_intents"`

	// Requirements are evaluated in order. The first one with missing
	// fields wins.
	Requirements []ContextRequirement `yaml:"requirements" json:"requirements"`
}

// MissingContext is the gate's verdict when a query lacks information.
type MissingContext struct {
	Category        string   `json:"category"`
	MissingFields   []string `json:"missing_fields"`
	FollowUpPrompts []string `json:"follow_up_prompts"`
}

// DefaultGateConfig returns the built-in context requirements.
func DefaultGateConfig() GateConfig {
	windZone := FieldRequirement{
		Key:     "wind_zone",
		Pattern: `(?i)\b(low|medium|high|very\s+high|extra\s+high|specific\s+design)\s+wind(\s+zone)?\b|\bwind\s+zone\b`,
		Prompt:  "What is the site's wind zone (low, medium, high, very high or extra high)?",
	}
	return GateConfig{
		GatedIntents: []string{"compliance", "code_compliance"},
		Requirements: []ContextRequirement{
			{
				Category: "h1_insulation",
				Trigger:  `(?i)\bh1\b|insulation|r-?value|thermal`,
				Fields: []FieldRequirement{
					{
						Key:     "climate_zone",
						Pattern: `(?i)\b(climate\s+)?zone\s*[1-6]\b`,
						Prompt:  "Which climate zone (1 to 6) is the building in?",
					},
					{
						Key:     "building_element",
						Pattern: `(?i)\b(roof|wall|walls|floor|ceiling|window|windows|glazing|slab|skylight)s?\b`,
						Prompt:  "Which building element is this for (roof, wall, floor, window or slab)?",
					},
				},
			},
			{
				Category: "e2_weathertightness",
				Trigger:  `(?i)\be2\b|weathertight|cladding|flashing`,
				Fields: []FieldRequirement{
					windZone,
					{
						Key:     "risk_score",
						Pattern: `(?i)\brisk\s+(score|matrix)\b|\b(low|medium|high|very\s+high)\s+risk\b`,
						Prompt:  "What is the E2/AS1 risk score for the wall?",
					},
				},
			},
			{
				Category: "b1_structure",
				Trigger:  `(?i)\bb1\b|nzs\s*3604|bracing|structur|span`,
				Fields: []FieldRequirement{
					windZone,
					{
						Key:     "earthquake_zone",
						Pattern: `(?i)\bearthquake\s+zone\s*[1-4]\b|\bseismic\s+zone\b`,
						Prompt:  "Which earthquake zone (1 to 4) is the site in?",
					},
				},
			},
		},
	}
}

// IsGated reports whether the intent requires complete context.
func (c GateConfig) IsGated(intent string) bool {
	for _, g := range c.GatedIntents {
		if g == intent {
			return true
		}
	}
	return false
}

// Requirement returns the requirement for a category, or nil.
func (c GateConfig) Requirement(category string) *ContextRequirement {
	for i := range c.Requirements {
		if c.Requirements[i].Category == category {
			return &c.Requirements[i]
		}
	}
	return nil
}
