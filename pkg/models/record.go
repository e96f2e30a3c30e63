package models

import "strings"

// Record is a bag of named demographic values for one person.
type Record interface {
	// GetDemographic returns the value stored under name and whether it exists.
	GetDemographic(name string) (string, bool)
	// HasNullValues reports whether any demographic on the record is blank.
	HasNullValues() bool
}

// DemographicRecord is an in-memory Record
type DemographicRecord struct {
	UID          string            `json:"uid"`
	Demographics map[string]string `json:"demographics"`
	// ForceNulls marks the record as carrying null values even when every
	// stored demographic is populated (e.g. configured columns missing upstream).
	ForceNulls bool `json:"force_nulls,omitempty"`
}

// NewDemographicRecord creates a record from a copy of values
func NewDemographicRecord(uid string, values map[string]string) *DemographicRecord {
	demographics := make(map[string]string, len(values))
	for k, v := range values {
		demographics[k] = v
	}
	return &DemographicRecord{
		UID:          uid,
		Demographics: demographics,
	}
}

// GetDemographic returns the value for a demographic
func (r *DemographicRecord) GetDemographic(name string) (string, bool) {
	if r == nil || r.Demographics == nil {
		return "", false
	}
	v, ok := r.Demographics[name]
	return v, ok
}

// SetDemographic sets a demographic value
func (r *DemographicRecord) SetDemographic(name, value string) {
	if r.Demographics == nil {
		r.Demographics = make(map[string]string)
	}
	r.Demographics[name] = value
}

// HasNullValues reports true when any value is blank
func (r *DemographicRecord) HasNullValues() bool {
	if r == nil {
		return true
	}
	if r.ForceNulls {
		return true
	}
	for _, v := range r.Demographics {
		if IsBlank(v) {
			return true
		}
	}
	return false
}

// IsBlank reports whether a demographic value carries no information.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
