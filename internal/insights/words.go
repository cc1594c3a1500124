package insights

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"diario/internal/models"
)

const (
	topWordsLimit  = 10
	highlightFloor = 3
)

var stopWords = map[string]struct{}{
	"o": {}, "a": {}, "de": {}, "da": {}, "do": {}, "e": {}, "para": {}, "com": {}, "em": {},
	"um": {}, "uma": {}, "que": {}, "é": {}, "os": {}, "as": {}, "dos": {}, "das": {},
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Tokenize lower-cases text and splits it into letter and digit runs.
func Tokenize(text string) []string {
	text = norm.NFC.String(cases.Lower(language.BrazilianPortuguese).String(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TopWords ranks the words of every free-text field by frequency. Words of
// three runes or fewer and stop words are ignored; equal counts keep the
// order in which the words first appear.
func TopWords(entries []models.DailyEntry) []WordCount {
	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		for _, text := range e.Texts() {
			for _, w := range Tokenize(text) {
				if utf8.RuneCountInString(w) <= 3 {
					continue
				}
				if _, stop := stopWords[w]; stop {
					continue
				}
				if counts[w] == 0 {
					order = append(order, w)
				}
				counts[w]++
			}
		}
	}

	out := make([]WordCount, 0, len(order))
	for _, w := range order {
		out = append(out, WordCount{Word: w, Count: counts[w]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > topWordsLimit {
		out = out[:topWordsLimit]
	}
	return out
}

// Highlight returns the top word when it is frequent enough to call out.
func Highlight(top []WordCount) (WordCount, bool) {
	if len(top) == 0 || top[0].Count < highlightFloor {
		return WordCount{}, false
	}
	return top[0], true
}
