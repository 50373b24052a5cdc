package search

import (
	"strings"
	"unicode"
)

// cjkBigramWindow is the n-gram window used for scripts without word
// boundaries.
const cjkBigramWindow = 2

// cjkRanges covers the scripts that trigger n-gram tokenization: Han,
// Hiragana, Katakana and Hangul.
var cjkRanges = []*unicode.RangeTable{
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Hangul,
}

// isCJK reports whether r belongs to a CJK script.
func isCJK(r rune) bool {
	for _, rt := range cjkRanges {
		if unicode.Is(rt, r) {
			return true
		}
	}
	return false
}

// containsCJK reports whether any code point in s belongs to a CJK script.
func containsCJK(s string) bool {
	for _, r := range s {
		if isCJK(r) {
			return true
		}
	}
	return false
}

// Tokenize converts raw text into comparable terms. Text containing any
// CJK code point takes the n-gram path; everything else is treated as
// whitespace-delimited. Pure and deterministic: identical input always
// yields the identical token sequence.
func Tokenize(text string) []string {
	if containsCJK(text) {
		return tokenizeCJK(text)
	}
	return tokenizeLatin(text)
}

// tokenizeLatin lowercases, strips everything that is not a letter,
// number or whitespace, and splits on whitespace.
func tokenizeLatin(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r):
			return unicode.ToLower(r)
		default:
			return -1
		}
	}, text)

	return strings.Fields(cleaned)
}

// tokenizeCJK lowercases, strips all whitespace and emits overlapping
// character bigrams plus a unigram for every individual CJK character.
// The unigrams keep single-character words findable; the bigrams give
// phrase-level precision in scripts without word boundaries. Input
// shorter than the bigram window is emitted whole.
func tokenizeCJK(text string) []string {
	var b strings.Builder
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}

	runes := []rune(b.String())
	if len(runes) == 0 {
		return nil
	}
	if len(runes) < cjkBigramWindow {
		return []string{string(runes)}
	}

	tokens := make([]string, 0, 2*len(runes))
	for i := 0; i+cjkBigramWindow <= len(runes); i++ {
		tokens = append(tokens, string(runes[i:i+cjkBigramWindow]))
	}
	for _, r := range runes {
		if isCJK(r) {
			tokens = append(tokens, string(r))
		}
	}
	return tokens
}

// normalizeText lowercases text and strips punctuation for exact-match
// comparison: only letters, numbers and single spaces survive.
func normalizeText(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, text)

	return strings.Join(strings.Fields(cleaned), " ")
}
