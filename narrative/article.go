package narrative

import (
	"regexp"
	"strings"
)

// Article selection follows the usual vowel-sound heuristics: a handful of silent-h words,
// numbers read aloud (eight, eleven, eighteen), letters spelled out, and vowels that sound
// like consonants ("a unit", "a one-off").
var (
	explicitAnRegex     = regexp.MustCompile(`^(?:euler|hour|heir|honest|hono)`)
	leadingDigitsRegex  = regexp.MustCompile(`^\d+`)
	letterAnRegex       = regexp.MustCompile(`^[aefhilmnorsx](?:$|[.-])`)
	letterARegex        = regexp.MustCompile(`^[a-z](?:$|[.-])`)
	consonantRegex      = regexp.MustCompile(`^[^aeiouy]`)
	consonantSoundRegex = regexp.MustCompile(`^(?:e[uw]|onc?e\b|onetime\b|uni(?:[^nmd]|mo)|u[bcfghjkqrst][aeiou]|ukr)`)
	vowelRegex          = regexp.MustCompile(`^[aeiou]`)
	yVowelRegex         = regexp.MustCompile(`^y(?:b[lor]|cl[ea]|fere|gg|p[ios]|rou|tt)`)
)

// IndefiniteArticle returns "a" or "an" for the first word of phrase
func IndefiniteArticle(phrase string) string {
	word := strings.ToLower(strings.TrimSpace(phrase))
	if word == "" {
		return "a"
	}

	if explicitAnRegex.MatchString(word) {
		return "an"
	}

	if digits := leadingDigitsRegex.FindString(word); digits != "" {
		// eight, eighty, eight hundred...; eleven and eighteen only when followed by
		// whole groups of three digits (eleven thousand, eighteen million)
		if digits[0] == '8' {
			return "an"
		}
		if (strings.HasPrefix(digits, "11") || strings.HasPrefix(digits, "18")) && len(digits)%3 == 2 {
			return "an"
		}
		return "a"
	}

	switch {
	case letterAnRegex.MatchString(word):
		return "an"
	case letterARegex.MatchString(word):
		return "a"
	case consonantRegex.MatchString(word):
		return "a"
	case consonantSoundRegex.MatchString(word):
		return "a"
	case vowelRegex.MatchString(word):
		return "an"
	case yVowelRegex.MatchString(word):
		return "an"
	}

	return "a"
}

// withArticle prefixes phrase with its indefinite article
func withArticle(phrase string) string {
	return IndefiniteArticle(phrase) + " " + phrase
}
