package guestname_test

import (
	"testing"

	"github.com/diagnosis/luxstay-hotel/internal/guestname"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"title after surname with guest id", "AGRAWAL MR. 25357", "MR. AGRAWAL"},
		{"lowercase with dotted title", "charu ms. 25375", "MS. CHARU"},
		{"two-part name", "Rahul Kumar Mr. 123", "MR. RAHUL KUMAR"},
		{"undotted title", "agrawal mr 25357", "MR. AGRAWAL"},
		{"mrs title", "Sharma Mrs. 900", "MRS. SHARMA"},
		{"dr title", "gupta dr 42", "DR. GUPTA"},
		{"no title no suffix", "rahul kumar", "RAHUL KUMAR"},
		{"no title with suffix", "kumar 25357", "KUMAR"},
		{"title already fronted", "MR. AGRAWAL", "MR. AGRAWAL"},
		{"single numeric token kept", "123", "123"},
		{"extra whitespace", "  agrawal   mr.   25357  ", "MR. AGRAWAL"},
		{"empty", "", ""},
		{"whitespace only", "   \t ", ""},
		{"title only", "mr.", "MR."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := guestname.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"AGRAWAL MR. 25357",
		"charu ms. 25375",
		"Rahul Kumar Mr. 123",
		"rahul kumar",
		"123",
		"",
		"mrs sharma",
	}
	for _, in := range inputs {
		once := guestname.Normalize(in)
		twice := guestname.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestLastName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MR. RAHUL KUMAR", "KUMAR"},
		{"AGRAWAL MR. 25357", "AGRAWAL"},
		{"charu ms. 25375", "CHARU"},
		{"rahul kumar", "KUMAR"},
		{"mr.", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := guestname.LastName(tt.in); got != tt.want {
			t.Errorf("LastName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeLastName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  mr agrawal ", "AGRAWAL"},
		{"rahul kumar", "KUMAR"},
		{"MRS. SHARMA", "SHARMA"},
		{"mr.", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := guestname.NormalizeLastName(tt.in); got != tt.want {
			t.Errorf("NormalizeLastName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePassword(t *testing.T) {
	if guestname.NormalizePassword("Foo_Bar") != guestname.NormalizePassword("foo_bar") {
		t.Error("NormalizePassword should be case-insensitive")
	}
	once := guestname.NormalizePassword("  101   Agrawal ")
	if once != guestname.NormalizePassword(once) {
		t.Error("NormalizePassword should be idempotent")
	}
	if got := guestname.NormalizePassword(" 101_Agrawal "); got != "101_agrawal" {
		t.Errorf("NormalizePassword = %q, want %q", got, "101_agrawal")
	}
}

func TestSchemePassword(t *testing.T) {
	if got := guestname.SchemePassword("101", "MR. AGRAWAL"); got != "101_agrawal" {
		t.Errorf("SchemePassword = %q, want %q", got, "101_agrawal")
	}
	if got := guestname.SchemePassword(" 204 ", "ms. charu"); got != "204_charu" {
		t.Errorf("SchemePassword = %q, want %q", got, "204_charu")
	}
}

func TestPasswordCandidates(t *testing.T) {
	got := guestname.PasswordCandidates("101 Agrawal")
	want := []string{"101 agrawal", "101_agrawal", "101 Agrawal"}
	if len(got) != len(want) {
		t.Fatalf("PasswordCandidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PasswordCandidates = %v, want %v", got, want)
		}
	}

	// Already-canonical input collapses to a single candidate.
	got = guestname.PasswordCandidates("101_agrawal")
	if len(got) != 1 || got[0] != "101_agrawal" {
		t.Errorf("PasswordCandidates(%q) = %v, want single canonical entry", "101_agrawal", got)
	}
}

func TestLoginPasswordCandidates(t *testing.T) {
	got := guestname.LoginPasswordCandidates("101 Agrawal")
	if len(got) != 2 || got[0] != "101 agrawal" || got[1] != "101_agrawal" {
		t.Errorf("LoginPasswordCandidates = %v", got)
	}
	if got := guestname.LoginPasswordCandidates(""); got != nil {
		t.Errorf("LoginPasswordCandidates(\"\") = %v, want nil", got)
	}
}
