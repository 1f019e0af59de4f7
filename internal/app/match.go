package app

import "strings"

// ValuesMatch reports whether two cell values should be considered the
// same for name-like comparisons: exact match, match after collapsing
// whitespace, or one name being an abbreviated form of the other
// ("John Smith" vs "J Smith" or "John S").
//
// Note: the forward-propagation gate deliberately uses exact equality,
// not this helper. Wiring fuzzy matching into propagation would let an
// edit overwrite future values that only resemble the old one.
func ValuesMatch(value1, value2 string) bool {
	if value1 == value2 {
		return true
	}

	clean1 := strings.Join(strings.Fields(value1), " ")
	clean2 := strings.Join(strings.Fields(value2), " ")
	if clean1 == clean2 {
		return true
	}

	words1 := strings.Fields(strings.ToLower(clean1))
	words2 := strings.Fields(strings.ToLower(clean2))
	return isNameSubset(words1, words2) || isNameSubset(words2, words1)
}

// isNameSubset reports whether every word in a prefixes (or is prefixed
// by) some word in b.
func isNameSubset(a, b []string) bool {
	if len(a) == 0 {
		return false
	}
	for _, word := range a {
		found := false
		for _, other := range b {
			if strings.HasPrefix(other, word) || strings.HasPrefix(word, other) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
