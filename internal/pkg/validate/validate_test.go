package validate

import (
	"strings"
	"testing"
)

func TestUserID(t *testing.T) {
	cases := map[string]bool{
		"u1":                          true,
		"Xq9fV2kLmN0pRsT4uVwXyZ12ab3": true,
		"":                            false,
		" u1":                         false,
		"u 1":                         false,
		"u1\n":                        false,
		"a_b":                         false,
		"_":                           false,
		"Zq7P-aXk9.x":                 true,
		strings.Repeat("a", 128):      true,
		strings.Repeat("a", 129):      false,
	}

	for value, want := range cases {
		if got := UserID(value); got != want {
			t.Fatalf("UserID(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestRequired(t *testing.T) {
	if Required("  ") {
		t.Fatalf("blank value must not pass")
	}
	if !Required("x") {
		t.Fatalf("non-blank value must pass")
	}
}
