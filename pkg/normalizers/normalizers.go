// Package normalizers provides demographic value normalization applied before field comparison
package normalizers

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalizer is a function that normalizes a demographic value
type Normalizer func(string) string

// registry is read-only after package initialization
var registry = map[string]Normalizer{
	"lowercase":          Lowercase,
	"uppercase":          Uppercase,
	"trim":               Trim,
	"remove_whitespace":  RemoveWhitespace,
	"remove_punctuation": RemovePunctuation,
	"digits_only":        DigitsOnly,
	"alphanumeric":       Alphanumeric,
	"nfkc":               NFKC,
	"fold":               FoldDiacritics,
	"nname":              NormalizeName,
	"nssn":               NormalizeSSN,
	"nzip":               NormalizeZipCode,
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Chain is an ordered list of normalizers applied one after another
type Chain []Normalizer

// Compile resolves names into a Chain, failing on the first unknown name
func Compile(names ...string) (Chain, error) {
	chain := make(Chain, 0, len(names))
	for _, name := range names {
		fn, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown normalizer %q", name)
		}
		chain = append(chain, fn)
	}
	return chain, nil
}

// Apply runs every normalizer in the chain over value
func (c Chain) Apply(value string) string {
	for _, fn := range c {
		value = fn(value)
	}
	return value
}

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Uppercase converts string to uppercase
func Uppercase(s string) string {
	return strings.ToUpper(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// RemoveWhitespace removes all whitespace characters
func RemoveWhitespace(s string) string {
	return keep(s, func(r rune) bool { return !unicode.IsSpace(r) })
}

// RemovePunctuation removes all punctuation characters
func RemovePunctuation(s string) string {
	return keep(s, func(r rune) bool { return !unicode.IsPunct(r) })
}

// DigitsOnly keeps only digit characters
func DigitsOnly(s string) string {
	return keep(s, unicode.IsDigit)
}

// Alphanumeric keeps only letters and digits
func Alphanumeric(s string) string {
	return keep(s, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) })
}

var nameSuffixes = []string{" jr.", " jr", " sr.", " sr", " iii", " ii", " iv"}

// NFKC applies compatibility composition, so full-width and ligature forms
// compare equal to their plain equivalents, and drops control characters
func NFKC(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, norm.NFKC.String(s))
}

// FoldDiacritics strips combining marks: "José" becomes "Jose"
func FoldDiacritics(s string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, norm.NFD.String(s))
	return norm.NFC.String(stripped)
}

// NormalizeName folds accents, lowercases a person name, drops generational suffixes and
// punctuation, and collapses runs of whitespace
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(FoldDiacritics(s)))
	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = s[:len(s)-len(suffix)]
			break
		}
	}

	var b strings.Builder
	prevSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-':
			if !prevSpace {
				b.WriteRune(' ')
				prevSpace = true
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// NormalizeSSN returns the nine digits of a US social security number, or "" when malformed
func NormalizeSSN(s string) string {
	digits := DigitsOnly(s)
	if len(digits) == 9 {
		return digits
	}
	return ""
}

// NormalizeZipCode returns the five-digit prefix of a US zip code, or "" when malformed
func NormalizeZipCode(s string) string {
	digits := DigitsOnly(s)
	if len(digits) == 5 || len(digits) == 9 {
		return digits[:5]
	}
	return ""
}

func keep(s string, pred func(rune) bool) string {
	var b strings.Builder
	for _, r := range s {
		if pred(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
