// Package guestname canonicalizes the free-text guest names delivered by the
// hotel source system. Labels arrive in several shapes ("AGRAWAL MR. 25357",
// "charu ms. 25375", "Rahul Kumar Mr. 123"); every caller that needs a stable
// lookup key for a guest must go through Normalize so the same physical guest
// always maps to the same canonical string.
//
// All functions are pure and never fail: unusable input degrades to the empty
// string and the caller decides whether that is a validation error.
package guestname

import "strings"

// titles maps every accepted honorific spelling to its canonical dotted form.
var titles = map[string]string{
	"MR":   "MR.",
	"MR.":  "MR.",
	"MS":   "MS.",
	"MS.":  "MS.",
	"MRS":  "MRS.",
	"MRS.": "MRS.",
	"DR":   "DR.",
	"DR.":  "DR.",
}

// NormalizeWhitespace collapses runs of whitespace to single spaces and trims.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Normalize turns a raw guest label into its canonical form: whitespace
// collapsed, a trailing pure-numeric token (the source system's guest id)
// dropped, the honorific moved to the front in dotted form, and everything
// upper-cased.
//
//	Normalize("AGRAWAL MR. 25357") == "MR. AGRAWAL"
//	Normalize("charu ms. 25375")   == "MS. CHARU"
//	Normalize("Rahul Kumar Mr. 123") == "MR. RAHUL KUMAR"
//
// Input without a title or numeric suffix is upper-cased with token order
// unchanged. Empty or whitespace-only input returns "".
func Normalize(raw string) string {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return ""
	}

	if len(tokens) > 1 && isNumeric(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}

	title := ""
	for i, tok := range tokens {
		if canon, ok := titles[strings.ToUpper(tok)]; ok {
			title = canon
			tokens = append(tokens[:i], tokens[i+1:]...)
			break
		}
	}

	for i, tok := range tokens {
		tokens[i] = strings.ToUpper(tok)
	}
	if title != "" {
		tokens = append([]string{title}, tokens...)
	}

	return strings.Join(tokens, " ")
}

// NormalizeLastName upper-cases the input, drops title tokens and returns the
// last remaining token, or "" if nothing remains.
func NormalizeLastName(raw string) string {
	var kept []string
	for _, tok := range strings.Fields(strings.ToUpper(raw)) {
		if _, ok := titles[tok]; ok {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		return ""
	}
	return kept[len(kept)-1]
}

// LastName canonicalizes the label first, then returns the last non-title
// token of the canonical name. LastName("AGRAWAL MR. 25357") == "AGRAWAL".
func LastName(raw string) string {
	name := Normalize(raw)
	if name == "" {
		return ""
	}
	tokens := strings.Split(name, " ")
	if _, ok := titles[tokens[0]]; ok {
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}

// NormalizeRoomNumber collapses whitespace only; room numbers keep their case.
func NormalizeRoomNumber(raw string) string {
	return NormalizeWhitespace(raw)
}

// NormalizePassword is the canonical comparable form of any password-like
// string: whitespace collapsed, then lower-cased. It must be applied
// identically when hashing and when comparing, and is idempotent.
func NormalizePassword(raw string) string {
	return strings.ToLower(NormalizeWhitespace(raw))
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
