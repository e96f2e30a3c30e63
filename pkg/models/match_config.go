package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// Algorithm identifies the string comparison used for a field
type Algorithm int

const (
	AlgorithmExactMatch  Algorithm = iota // Exact string equality
	AlgorithmJaroWinkler                  // Jaro-Winkler similarity
	AlgorithmLCS                          // Longest common subsequence similarity
	AlgorithmLevenshtein                  // Edit distance similarity
	AlgorithmDice                         // Bigram Dice coefficient
)

var algorithmNames = map[Algorithm]string{
	AlgorithmExactMatch:  "exact",
	AlgorithmJaroWinkler: "jwc",
	AlgorithmLCS:         "lcs",
	AlgorithmLevenshtein: "lev",
	AlgorithmDice:        "dice",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// Valid reports whether a is one of the known algorithms
func (a Algorithm) Valid() bool {
	_, ok := algorithmNames[a]
	return ok
}

// ParseAlgorithm converts a configured algorithm name into an Algorithm
func ParseAlgorithm(name string) (Algorithm, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for alg, algName := range algorithmNames {
		if algName == n {
			return alg, nil
		}
	}
	return 0, NewConfigurationErrorf("unknown algorithm %q", name)
}

func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, NewConfigurationErrorf("unknown algorithm %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Algorithm) UnmarshalText(text []byte) error {
	alg, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = alg
	return nil
}

const (
	DefaultMultiFieldDelimiter      = ";"
	DefaultIdentifierPrefix         = "(Identifier)"
	DefaultInterchangeableThreshold = 0.85
	DefaultAgreement                = 0.9
	DefaultNonAgreement             = 0.1
)

// MatchingConfigRow defines how one demographic participates in a comparison
type MatchingConfigRow struct {
	Name         string    `json:"name" validate:"required"`
	Algorithm    Algorithm `json:"algorithm"`
	Threshold    float64   `json:"threshold" validate:"gte=0,lte=1"`
	Include      bool      `json:"include"`
	MultiValued  bool      `json:"multi_valued"`                         // value holds several delimited identifiers
	Agreement    float64   `json:"agreement" validate:"gte=0,lte=1"`     // m probability
	NonAgreement float64   `json:"non_agreement" validate:"gte=0,lte=1"` // u probability
	Normalizers  []string  `json:"normalizers,omitempty"`
}

// NewMatchingConfigRow creates an included row with default m/u probabilities
func NewMatchingConfigRow(name string, alg Algorithm, threshold float64) MatchingConfigRow {
	return MatchingConfigRow{
		Name:         name,
		Algorithm:    alg,
		Threshold:    threshold,
		Include:      true,
		Agreement:    DefaultAgreement,
		NonAgreement: DefaultNonAgreement,
	}
}

// InterchangeableGroup is a concatenated comparison field and the fields it is built from
type InterchangeableGroup struct {
	ComparisonField string   `json:"comparison_field" validate:"required"`
	Fields          []string `json:"fields" validate:"required,min=1,dive,required"`
}

// MatchingConfig is the full set of rules used to score a record pair
type MatchingConfig struct {
	Name                     string                 `json:"name"`
	Rows                     []MatchingConfigRow    `json:"rows" validate:"dive"`
	InterchangeableGroups    []InterchangeableGroup `json:"interchangeable_groups" validate:"dive"`
	MultiFieldDelimiter      string                 `json:"multi_field_delimiter"`
	IdentifierPrefix         string                 `json:"identifier_prefix"`
	InterchangeableThreshold float64                `json:"interchangeable_threshold" validate:"gte=0,lte=1"`
}

// NewMatchingConfig creates a config with default delimiter, prefix and thresholds
func NewMatchingConfig(name string, rows ...MatchingConfigRow) *MatchingConfig {
	return &MatchingConfig{
		Name:                     name,
		Rows:                     rows,
		MultiFieldDelimiter:      DefaultMultiFieldDelimiter,
		IdentifierPrefix:         DefaultIdentifierPrefix,
		InterchangeableThreshold: DefaultInterchangeableThreshold,
	}
}

// Clone returns a deep copy so callers can adjust settings without touching c
func (c *MatchingConfig) Clone() *MatchingConfig {
	out := *c
	out.Rows = make([]MatchingConfigRow, len(c.Rows))
	for i, row := range c.Rows {
		row.Normalizers = append([]string(nil), row.Normalizers...)
		out.Rows[i] = row
	}
	out.InterchangeableGroups = make([]InterchangeableGroup, len(c.InterchangeableGroups))
	for i, g := range c.InterchangeableGroups {
		g.Fields = append([]string(nil), g.Fields...)
		out.InterchangeableGroups[i] = g
	}
	return &out
}

// IncludedRows returns the rows that participate in scoring, in configuration order
func (c *MatchingConfig) IncludedRows() []MatchingConfigRow {
	rows := make([]MatchingConfigRow, 0, len(c.Rows))
	for _, row := range c.Rows {
		if row.Include {
			rows = append(rows, row)
		}
	}
	return rows
}

// IsMultiValued reports whether row holds delimited identifiers.
// Rows migrated from prefix-named configurations are still recognized by name.
func (c *MatchingConfig) IsMultiValued(row MatchingConfigRow) bool {
	if row.MultiValued {
		return true
	}
	return c.IdentifierPrefix != "" && strings.HasPrefix(row.Name, c.IdentifierPrefix)
}

// ConcatenatedFields returns the constituent fields of the group compared through comparisonField
func (c *MatchingConfig) ConcatenatedFields(comparisonField string) []string {
	for _, g := range c.InterchangeableGroups {
		if g.ComparisonField == comparisonField {
			return g.Fields
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration before it is used for scoring
func (c *MatchingConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return validationError(c, err)
	}

	seen := make(map[string]bool, len(c.Rows))
	for _, row := range c.Rows {
		if !row.Algorithm.Valid() {
			return NewConfigurationError("unrecognized algorithm").AddConfig(c.Name).AddField(row.Name).AddAlgorithm(row.Algorithm)
		}
		if seen[row.Name] {
			return NewConfigurationError("duplicate row").AddConfig(c.Name).AddField(row.Name)
		}
		seen[row.Name] = true
		if _, err := normalizers.Compile(row.Normalizers...); err != nil {
			return NewConfigurationError(err.Error()).AddConfig(c.Name).AddField(row.Name)
		}
	}

	for _, row := range c.IncludedRows() {
		if c.IsMultiValued(row) && c.MultiFieldDelimiter == "" {
			return NewConfigurationError("multi-valued field requires a delimiter").AddConfig(c.Name).AddField(row.Name)
		}
	}

	return nil
}

func validationError(c *MatchingConfig, err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return NewConfigurationError(err.Error()).AddConfig(c.Name)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed rule '%s' (param '%s', got '%v')", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return NewConfigurationError(strings.Join(msgs, "; ")).AddConfig(c.Name)
}
