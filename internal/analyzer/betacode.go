package analyzer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var betaLetters = map[rune]string{
	'α': "a", 'β': "b", 'γ': "g", 'δ': "d", 'ε': "e", 'ζ': "z", 'η': "h", 'θ': "q",
	'ι': "i", 'κ': "k", 'λ': "l", 'μ': "m", 'ν': "n", 'ξ': "c", 'ο': "o", 'π': "p",
	'ρ': "r", 'σ': "s", 'ς': "s", 'τ': "t", 'υ': "u", 'φ': "f", 'χ': "x", 'ψ': "y",
	'ω': "w", 'ϝ': "v", 'ϲ': "s",
}

var betaMarks = map[rune]string{
	'\u0313': ")",  // smooth breathing
	'\u0314': "(",  // rough breathing
	'\u0301': "/",  // acute
	'\u0300': "\\", // grave
	'\u0342': "=",  // circumflex
	'\u0308': "+",  // diaeresis
	'\u0345': "|",  // iota subscript
	'\u0304': "",   // macron
	'\u0306': "",   // breve
}

// Keys are in NFD form: ano teleia and the Greek question mark decompose to
// U+00B7 and ';'.
var betaPunct = map[rune]string{
	'\u00b7': ":",
	'\u2019': "'",
	'\u1fbd': "'",
}

// IsGreek reports whether lang selects the Greek analyzer, which expects beta code.
func IsGreek(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "greek", "grc", "gr":
		return true
	default:
		return false
	}
}

// ToBetaCode transliterates polytonic Greek into lower-case beta code. Capitals are
// written as '*' followed by their diacritics and the letter. Runes outside the Greek
// block pass through unchanged.
func ToBetaCode(word string) string {
	decomposed := []rune(norm.NFD.String(word))

	var b strings.Builder
	b.Grow(len(decomposed) + 4)

	for i := 0; i < len(decomposed); i++ {
		r := decomposed[i]
		if s, ok := betaPunct[r]; ok {
			b.WriteString(s)
			continue
		}
		lower := unicode.ToLower(r)
		letter, ok := betaLetters[lower]
		if !ok {
			if s, isMark := betaMarks[r]; isMark {
				b.WriteString(s)
				continue
			}
			b.WriteRune(r)
			continue
		}

		j := i + 1
		for j < len(decomposed) {
			if _, isMark := betaMarks[decomposed[j]]; !isMark {
				break
			}
			j++
		}
		marks := betaMarkString(decomposed[i+1 : j])

		if lower != r {
			b.WriteString("*")
			b.WriteString(marks)
			b.WriteString(letter)
		} else {
			b.WriteString(letter)
			b.WriteString(marks)
		}
		i = j - 1
	}
	return b.String()
}

func betaMarkString(marks []rune) string {
	var b strings.Builder
	for _, m := range marks {
		b.WriteString(betaMarks[m])
	}
	return b.String()
}
