package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jengzang/riskdash-backend/internal/models"
	"github.com/jengzang/riskdash-backend/internal/repository"
)

// Normalize lowercases s and strips diacritics
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

type candidate struct {
	value string
	norm  string
}

// EntityDetector finds snapshot categorical values mentioned in free text
type EntityDetector struct {
	subRegions []candidate
	crimeTypes []candidate
	ageGroups  []candidate
	timeSlots  []candidate
	genders    []candidate
}

// NewEntityDetector collects the distinct values of each category
func NewEntityDetector(table *repository.FeatureTable) *EntityDetector {
	collect := func(field func(models.FeatureRow) string) []candidate {
		var out []candidate
		for _, v := range table.Distinct(field) {
			if n := Normalize(v); strings.TrimSpace(n) != "" {
				out = append(out, candidate{value: v, norm: n})
			}
		}
		return out
	}
	return &EntityDetector{
		subRegions: collect(func(r models.FeatureRow) string { return r.SubRegion }),
		crimeTypes: collect(func(r models.FeatureRow) string { return r.CrimeType }),
		ageGroups:  collect(func(r models.FeatureRow) string { return r.AgeGroup }),
		timeSlots:  collect(func(r models.FeatureRow) string { return r.TimeSlot }),
		genders:    collect(func(r models.FeatureRow) string { return r.Gender }),
	}
}

// Detect scans the question for each category in order. A value matches
// only as a whole word sequence; the longest match wins.
func (d *EntityDetector) Detect(question string) models.Entities {
	text := Normalize(question)
	return models.Entities{
		SubRegion: bestMatch(d.subRegions, text),
		CrimeType: bestMatch(d.crimeTypes, text),
		AgeGroup:  bestMatch(d.ageGroups, text),
		TimeSlot:  bestMatch(d.timeSlots, text),
		Gender:    bestMatch(d.genders, text),
	}
}

func bestMatch(cands []candidate, text string) string {
	best := -1
	for i, c := range cands {
		if !containsWord(text, c.norm) {
			continue
		}
		if best < 0 || len(c.norm) > len(cands[best].norm) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return cands[best].value
}

// containsWord reports whether needle occurs in text bounded by non-word
// characters or the ends of text
func containsWord(text, needle string) bool {
	for from := 0; from <= len(text)-len(needle); {
		i := strings.Index(text[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		if !isWordBefore(text, start) && !isWordAt(text, end) {
			return true
		}
		from = start + 1
	}
	return false
}

func isWordBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isWordRune(r)
}

func isWordAt(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
