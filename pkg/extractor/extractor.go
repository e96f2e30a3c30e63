// Package extractor builds demographic records from nested JSON documents
// using one JMESPath expression per demographic
package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/jmespath/go-jmespath"

	"github.com/Ramsey-B/clover/pkg/models"
)

type compiledField struct {
	name       string
	expression string
	query      *jmespath.JMESPath
}

// Extractor maps documents onto DemographicRecords. It is safe for concurrent use.
type Extractor struct {
	fields    []compiledField
	delimiter string
}

// New compiles mappings (demographic name -> JMESPath expression). Array
// results are joined with delimiter so they can feed multi-valued rows.
func New(mappings map[string]string, delimiter string) (*Extractor, error) {
	names := make([]string, 0, len(mappings))
	for name := range mappings {
		names = append(names, name)
	}
	sort.Strings(names)

	e := &Extractor{delimiter: delimiter}
	for _, name := range names {
		expr := mappings[name]
		query, err := jmespath.Compile(expr)
		if err != nil {
			return nil, models.NewConfigurationErrorf("invalid expression %q: %v", expr, err).AddField(name)
		}
		e.fields = append(e.fields, compiledField{name: name, expression: expr, query: query})
	}
	return e, nil
}

// ForConfig creates an extractor for the included rows of cfg, using
// paths[row] when present and the row name as a top-level key otherwise
func ForConfig(cfg *models.MatchingConfig, paths map[string]string) (*Extractor, error) {
	mappings := make(map[string]string)
	for _, row := range cfg.IncludedRows() {
		expr, ok := paths[row.Name]
		if !ok {
			expr = strconv.Quote(row.Name)
		}
		mappings[row.Name] = expr
	}
	for _, group := range cfg.InterchangeableGroups {
		expr, ok := paths[group.ComparisonField]
		if !ok {
			expr = strconv.Quote(group.ComparisonField)
		}
		mappings[group.ComparisonField] = expr
	}

	e, err := New(mappings, cfg.MultiFieldDelimiter)
	if err != nil {
		var ce *models.ConfigurationError
		if errors.As(err, &ce) {
			ce.AddConfig(cfg.Name)
		}
		return nil, err
	}
	return e, nil
}

// Extract builds a record from doc. Demographics whose expression finds
// nothing are left unset and mark the record as carrying nulls.
func (e *Extractor) Extract(uid string, doc any) (*models.DemographicRecord, error) {
	rec := models.NewDemographicRecord(uid, nil)
	for _, f := range e.fields {
		result, err := f.query.Search(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %q for %s: %w", f.expression, f.name, err)
		}

		value, ok := e.stringify(result)
		if !ok {
			rec.ForceNulls = true
			continue
		}
		rec.SetDemographic(f.name, value)
	}
	return rec, nil
}

// ExtractJSON decodes data and extracts a record from it
func (e *Extractor) ExtractJSON(uid string, data []byte) (*models.DemographicRecord, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", uid, err)
	}
	return e.Extract(uid, doc)
}

func (e *Extractor) stringify(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	case []any:
		parts := ectolinq.Filter(ectolinq.Map(val, func(item any) string {
			s, _ := e.stringify(item)
			return s
		}), func(s string) bool {
			return !models.IsBlank(s)
		})
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, e.delimiter), true
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
