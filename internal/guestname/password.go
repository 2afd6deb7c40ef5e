package guestname

import "strings"

// SchemePassword derives the canonical password issued for a guest: the room
// number joined to the guest's last name with an underscore, in comparable
// form. SchemePassword("101", "MR. AGRAWAL") == "101_agrawal".
func SchemePassword(roomNumber, canonicalName string) string {
	return NormalizePassword(NormalizeRoomNumber(roomNumber) + "_" + LastName(canonicalName))
}

// PasswordCandidates returns the comparable forms a raw password entry is
// checked under, in the fixed order they are tried. Every entry is a standing
// backward-compatibility commitment, so the list stays short:
//
//  1. the canonical form (whitespace collapsed, lower-cased)
//  2. internal whitespace converted to underscores, then canonicalized —
//     guests who type "101 agrawal" instead of "101_agrawal"
//  3. legacy: whitespace collapsed but case preserved, for hashes minted
//     before password comparison became case-insensitive
//
// Duplicates are removed so callers never verify the same form twice.
func PasswordCandidates(raw string) []string {
	direct := NormalizePassword(raw)
	underscored := NormalizePassword(strings.ReplaceAll(NormalizeWhitespace(raw), " ", "_"))
	legacy := NormalizeWhitespace(raw)

	out := make([]string, 0, 3)
	for _, c := range []string{direct, underscored, legacy} {
		if c == "" || contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// LoginPasswordCandidates is the subset of PasswordCandidates used by the
// room + last-name (QR) login, which never accepted legacy-cased passwords.
func LoginPasswordCandidates(raw string) []string {
	direct := NormalizePassword(raw)
	underscored := NormalizePassword(strings.ReplaceAll(NormalizeWhitespace(raw), " ", "_"))
	if underscored == direct || underscored == "" {
		if direct == "" {
			return nil
		}
		return []string{direct}
	}
	return []string{direct, underscored}
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
