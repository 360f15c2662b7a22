package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCommonInterest(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want bool
	}{
		{name: "one shared interest", a: []string{"JavaScript", "Cybersecurity"}, b: []string{"Cybersecurity", "DataStructures"}, want: true},
		{name: "no shared interest", a: []string{"Java"}, b: []string{"React"}, want: false},
		{name: "empty list", a: []string{}, b: []string{"X"}, want: false},
		{name: "both missing", a: nil, b: nil, want: false},
		{name: "duplicates tolerated", a: []string{"Go", "Go"}, b: []string{"Go", "Go"}, want: true},
		{name: "blank tags never match", a: []string{"", "Go"}, b: []string{"", "Rust"}, want: false},
		{name: "surrounding spaces ignored", a: []string{" Calculus"}, b: []string{"Calculus "}, want: true},
		{name: "case sensitive", a: []string{"physics"}, b: []string{"Physics"}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HasCommonInterest(tc.a, tc.b))
			assert.Equal(t, tc.want, HasCommonInterest(tc.b, tc.a))
		})
	}
}
