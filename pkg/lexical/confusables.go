package lexical

import "strings"

// confusables maps visually confusable code points to the canonical Latin
// letter they imitate. Covers the Cyrillic/Greek look-alikes, the full-width
// form, and the digit/letter pairs seen in observed spoofing campaigns.
//
// None of the mapped-to letters appear as keys, which is what makes
// NormalizeConfusables idempotent.
var confusables = map[rune]rune{
	'а': 'a', // Cyrillic small a
	'α': 'a', // Greek alpha
	'е': 'e', // Cyrillic ie
	'ε': 'e', // Greek epsilon
	'о': 'o', // Cyrillic o
	'ο': 'o', // Greek omicron
	'ｏ': 'o', // full-width o
	'ı': 'i', // dotless i
	'і': 'i', // Cyrillic Byelorussian-Ukrainian i
	'0':      'o',
	'1':      'l',
}

// NormalizeConfusables replaces every confusable character in s with its
// canonical Latin form and passes all other characters through unchanged.
// Idempotent: normalizing an already-normalized string returns it as-is.
func NormalizeConfusables(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if canonical, ok := confusables[r]; ok {
			b.WriteRune(canonical)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
