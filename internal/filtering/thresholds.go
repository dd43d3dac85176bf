package filtering

// Default tunables for the clause filter. Their values come from field use
// on Moroccan employment contracts and have no formal derivation.
const (
	DefaultPersonalInfoRatio = 0.25
	DefaultTrivialWordLimit  = 6
)

// Thresholds holds the tunable parameters of the clause filter
type Thresholds struct {
	// PersonalInfoRatio is the minimum ratio of identifier matches to word tokens
	// for a clause to be treated as personal information.
	PersonalInfoRatio float64 `json:"personal_info_ratio" validate:"gt=0,lte=1"`
	// TrivialWordLimit is the maximum number of words of an all-caps clause treated as a heading.
	TrivialWordLimit int `json:"trivial_word_limit" validate:"gte=0"`
	// ContractKeywords override the personal-info classification when present (lowercase).
	ContractKeywords []string `json:"contract_keywords,omitempty"`
	// HeaderKeywords are known heading words (uppercase) giving a fast path to the trivial check.
	HeaderKeywords []string `json:"header_keywords,omitempty"`
}

// DefaultContractKeywords are substantive terms of French employment contracts
func DefaultContractKeywords() []string {
	return []string{
		"contrat", "salaire", "préavis", "période", "horaire",
		"heures", "congé", "maternité", "non-concurrence",
	}
}

// DefaultHeaderKeywords are heading words commonly mis-segmented as clauses
func DefaultHeaderKeywords() []string {
	return []string{
		"EMPLOYEUR", "EMPLOYER", "SALARIÉ", "SALARIE", "CONDITIONS",
		"HORAIRES", "RÉMUNÉRATION", "CONGÉS", "AVANTAGES", "CONDITIONS PARTICULIÈRES",
	}
}

// DefaultThresholds returns the default filter configuration
func DefaultThresholds() Thresholds {
	return Thresholds{
		PersonalInfoRatio: DefaultPersonalInfoRatio,
		TrivialWordLimit:  DefaultTrivialWordLimit,
		ContractKeywords:  DefaultContractKeywords(),
		HeaderKeywords:    DefaultHeaderKeywords(),
	}
}

// withDefaults fills zero values from DefaultThresholds
func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.PersonalInfoRatio <= 0 {
		t.PersonalInfoRatio = d.PersonalInfoRatio
	}
	if t.TrivialWordLimit <= 0 {
		t.TrivialWordLimit = d.TrivialWordLimit
	}
	if t.ContractKeywords == nil {
		t.ContractKeywords = d.ContractKeywords
	}
	if t.HeaderKeywords == nil {
		t.HeaderKeywords = d.HeaderKeywords
	}
	return t
}
