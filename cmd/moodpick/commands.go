package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/icco/moodpick/lib/mood"
	"github.com/icco/moodpick/lib/selection"
	"github.com/icco/moodpick/lib/tmdb"
	"github.com/icco/moodpick/models"
	"github.com/urfave/cli/v2"
)

func listMoods(c *cli.Context) error {
	w := c.App.Writer
	for _, m := range mood.All() {
		def := ""
		if m.Key == mood.Default {
			def = " (default)"
		}
		fmt.Fprintf(w, "%s %-9s I WANT TO %-15s movies: %s, books: %s%s\n",
			m.Emoji, m.Key, m.Headline, m.GenreName, m.BookSubject, def)
	}
	return nil
}

func lookupMood(key string) (mood.Mood, error) {
	m, ok := mood.Lookup(key)
	if !ok {
		return mood.Mood{}, fmt.Errorf("unknown mood %q, expected one of: %s", key, strings.Join(mood.Keys(), ", "))
	}
	return m, nil
}

var showMovies = withSession(func(c *cli.Context, s *session) error {
	m, err := lookupMood(c.String("mood"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "I WANT TO %s · %s\n", m.Headline, m.GenreName)

	sel := s.planner.SelectMovies(c.Context, s.proxy, m.GenreID, s.lastPage(c.Context, m.GenreID), c.Bool("refresh"))
	if sel.Err != nil {
		s.logger.WarnContext(c.Context, "Movie selection failed", slog.Any("error", sel.Err))
	}
	if sel.State != selection.StatePopulated {
		fmt.Fprintln(w, "No movies found. Check the server's TMDB API key, or try --refresh.")
		return nil
	}
	s.rememberPage(c.Context, m.GenreID, sel.Page)

	fmt.Fprintf(w, "page %d · %s\n\n", sel.Page, sel.Sort)
	for i, mv := range sel.Movies {
		star := " "
		if s.favorites.IsFavorite(c.Context, mv.ID) {
			star = "♥"
		}
		fmt.Fprintf(w, "%2d. %s %-40s %s  ★ %.1f  [id %d]\n", i+1, star, mv.Title, mv.Year(), mv.VoteAverage, mv.ID)
		if poster := tmdb.GetPosterURL(mv.PosterPath); poster != "" && c.Bool("verbose") {
			fmt.Fprintf(w, "      %s\n", poster)
		}
	}
	return nil
})

var showBooks = withSession(func(c *cli.Context, s *session) error {
	m, err := lookupMood(c.String("mood"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "I WANT TO %s · %s\n", m.Headline, m.BookSubject)

	sel := s.planner.SelectBooks(c.Context, s.proxy, m.BookSubject)
	if sel.Err != nil {
		s.logger.WarnContext(c.Context, "Book selection failed", slog.Any("error", sel.Err))
	}
	if sel.State != selection.StatePopulated {
		fmt.Fprintln(w, "No books found 😔.")
		return nil
	}

	fmt.Fprintf(w, "order: %s\n\n", sel.OrderBy)
	for i, b := range sel.Books {
		authors := strings.Join(b.Authors, ", ")
		if authors == "" {
			authors = "unknown author"
		}
		published := b.PublishedDate
		if published == "" {
			published = "N/A"
		}
		fmt.Fprintf(w, "%2d. %s by %s (%s)  [id %s]\n", i+1, b.Title, authors, published, b.ID)
		if b.InfoLink != "" {
			fmt.Fprintf(w, "      info: %s\n", b.InfoLink)
		}
		if b.PreviewLink != "" {
			fmt.Fprintf(w, "      preview: %s\n", b.PreviewLink)
		}
	}
	return nil
})

var showProviders = withSession(func(c *cli.Context, s *session) error {
	country := strings.ToUpper(c.String("country"))
	if country == "" {
		country = s.cfg.Country
	}

	wp, err := s.proxy.Providers(c.Context, c.Int("movie-id"))
	if err != nil {
		return fmt.Errorf("failed to fetch providers: %w", err)
	}

	w := c.App.Writer
	cp, err := selection.ProvidersFor(wp, country)
	if err != nil {
		fmt.Fprintln(w, err.Error())
		return nil
	}

	fmt.Fprintf(w, "Where to watch in %s:\n", selection.CountryName(country))
	for _, group := range []struct {
		label string
		names []string
	}{
		{"stream", providerNames(cp.Flatrate)},
		{"rent", providerNames(cp.Rent)},
		{"buy", providerNames(cp.Buy)},
	} {
		if len(group.names) > 0 {
			fmt.Fprintf(w, "  %-7s %s\n", group.label+":", strings.Join(group.names, ", "))
		}
	}
	if cp.Link != "" {
		fmt.Fprintf(w, "  %s\n", cp.Link)
	}
	return nil
})

func providerNames(providers []models.Provider) []string {
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.ProviderName)
	}
	return names
}
