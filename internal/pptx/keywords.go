package pptx

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var englishStopwords = toSet(strings.Fields(`
a an and are as at be but by for if in into is it no not of on or s such t
that the their then there these they this to was will with you your from we
our us`))

var englishWord = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_'-]*`)

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// isCJK reports whether r is a CJK unified, extension A or compatibility
// ideograph.
func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0xF900 && r <= 0xFAFF)
}

func hasCJK(s string) bool {
	return strings.IndexFunc(s, isCJK) >= 0
}

func tokenizeEnglish(text string) []string {
	var out []string
	for _, w := range englishWord.FindAllString(strings.ToLower(text), -1) {
		if _, stop := englishStopwords[w]; stop || len(w) < 2 {
			continue
		}
		out = append(out, w)
	}
	return out
}

// tokenizeCJK joins every ideograph in text into one run and returns its
// character 2-grams followed by its 3-grams.
func tokenizeCJK(text string) []string {
	var chars []rune
	for _, r := range text {
		if r >= 0x3400 && r <= 0x9FFF {
			chars = append(chars, r)
		}
	}

	var out []string
	for _, n := range []int{2, 3} {
		for i := 0; i+n <= len(chars); i++ {
			out = append(out, string(chars[i:i+n]))
		}
	}
	return out
}

// Keywords returns up to limit tokens of text, most frequent first. Ties go
// to the longer token, then to the one seen first. English words are always
// collected; CJK n-grams are added when the text has any ideographs.
func Keywords(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	var tokens []string
	if hasCJK(text) {
		tokens = append(tokens, tokenizeCJK(text)...)
	}
	tokens = append(tokens, tokenizeEnglish(text)...)

	counts := make(map[string]int, len(tokens))
	var order []string
	for _, t := range tokens {
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		return utf8.RuneCountInString(a) > utf8.RuneCountInString(b)
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}
