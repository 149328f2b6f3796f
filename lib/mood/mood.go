// Package mood holds the fixed mapping from moods to catalog queries.
package mood

import "strings"

// Default is shown when no mood has been picked.
const Default = "joy"

type Mood struct {
	Key         string
	Label       string
	Emoji       string
	GenreID     int
	GenreName   string
	BookSubject string
	// Theme is the CSS class applied to the page for this mood.
	Theme string
	// Headline completes "I WANT TO ..." on the landing page.
	Headline string
}

var table = []Mood{
	{Key: "joy", Label: "Joie", Emoji: "😄", GenreID: 35, GenreName: "Comédie", BookSubject: "humor", Theme: "theme-joy", Headline: "LAUGH"},
	{Key: "sadness", Label: "Tristesse", Emoji: "😢", GenreID: 18, GenreName: "Drame", BookSubject: "drama", Theme: "theme-sadness", Headline: "CRY"},
	{Key: "disgust", Label: "Dégoût", Emoji: "🤢", GenreID: 27, GenreName: "Horreur", BookSubject: "horror", Theme: "theme-disgust", Headline: "BE SHOCKED"},
	{Key: "fear", Label: "Peur", Emoji: "😱", GenreID: 53, GenreName: "Thriller", BookSubject: "thrillers", Theme: "theme-fear", Headline: "BE SCARED"},
	{Key: "anger", Label: "Colère", Emoji: "😠", GenreID: 28, GenreName: "Action", BookSubject: "action", Theme: "theme-anger", Headline: "FEEL ENERGIZED"},
	{Key: "surprise", Label: "Surprise", Emoji: "😲", GenreID: 9648, GenreName: "Mystère", BookSubject: "mystery", Theme: "theme-surprise", Headline: "BE SURPRISED"},
}

// All returns the moods in display order.
func All() []Mood {
	out := make([]Mood, len(table))
	copy(out, table)
	return out
}

// Lookup finds a mood by key, case-insensitively.
func Lookup(key string) (Mood, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, m := range table {
		if m.Key == key {
			return m, true
		}
	}
	return Mood{}, false
}

// MustLookup is Lookup falling back to the default mood.
func MustLookup(key string) Mood {
	if m, ok := Lookup(key); ok {
		return m
	}
	m, _ := Lookup(Default)
	return m
}

// Keys lists the valid mood keys.
func Keys() []string {
	keys := make([]string, 0, len(table))
	for _, m := range table {
		keys = append(keys, m.Key)
	}
	return keys
}
