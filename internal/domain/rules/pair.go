package rules

import "strings"

const pairSeparator = "_"

// PairID is the canonical match identity: both user ids sorted and joined with
// "_". User ids never contain the separator.
func PairID(userA, userB string) string {
	users := SortedPair(userA, userB)
	return strings.Join(users[:], pairSeparator)
}

// SortedPair orders ids by byte value, so "Zq7P" sorts before "aXk9". SQL that
// compares stored pairs must use the "C" collation.
func SortedPair(userA, userB string) [2]string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return [2]string{userA, userB}
}
