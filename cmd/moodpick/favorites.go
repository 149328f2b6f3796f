package main

import (
	"errors"
	"fmt"

	"github.com/icco/moodpick/lib/favorites"
	"github.com/icco/moodpick/models"
	"github.com/urfave/cli/v2"
)

func favoritesCommand() *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorite movies and books",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List favorites",
				Action: withSession(listFavorites),
			},
			{
				Name:   "add-movie",
				Usage:  "Add a movie to favorites",
				Flags:  movieFlags(),
				Action: withSession(addMovie),
			},
			{
				Name:   "add-book",
				Usage:  "Add a book to favorites",
				Flags:  bookFlags(),
				Action: withSession(addBook),
			},
			{
				Name:      "toggle",
				Usage:     "Add a movie or book if absent, remove it otherwise",
				ArgsUsage: "(--id ID | --book-id ID) --title TITLE",
				Flags:     toggleFlags(),
				Action:    withSession(toggleFavorite),
			},
			{
				Name:  "remove",
				Usage: "Remove a favorite",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "id", Usage: "favorite id as shown by list"},
					&cli.StringFlag{Name: "book-id", Usage: "Google Books volume id"},
				},
				Action: withSession(removeFavorite),
			},
			{
				Name:   "clear",
				Usage:  "Remove all favorites",
				Action: withSession(clearFavorites),
			},
		},
	}
}

func movieFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "id", Usage: "TMDB movie id", Required: true},
		&cli.StringFlag{Name: "title", Required: true},
		&cli.StringFlag{Name: "poster", Usage: "TMDB poster path"},
		&cli.Float64Flag{Name: "rating"},
		&cli.StringFlag{Name: "release-date", Usage: "YYYY-MM-DD"},
		&cli.StringFlag{Name: "overview"},
	}
}

func bookFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "book-id", Usage: "Google Books volume id", Required: true},
		&cli.StringFlag{Name: "title", Required: true},
		&cli.StringFlag{Name: "cover", Usage: "cover image URL"},
		&cli.Float64Flag{Name: "rating"},
		&cli.StringFlag{Name: "published"},
		&cli.StringFlag{Name: "description"},
	}
}

func toggleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "id", Usage: "TMDB movie id"},
		&cli.StringFlag{Name: "book-id", Usage: "Google Books volume id"},
		&cli.StringFlag{Name: "title", Required: true},
		&cli.StringFlag{Name: "poster", Usage: "poster path or cover URL"},
		&cli.Float64Flag{Name: "rating"},
		&cli.StringFlag{Name: "date", Usage: "release or publication date"},
	}
}

var errMovieID = errors.New("--id must be a positive TMDB movie id; use --book-id for books")

func movieID(c *cli.Context) (int, error) {
	id := c.Int("id")
	if id <= 0 {
		return 0, errMovieID
	}
	return id, nil
}

func movieEntry(c *cli.Context) (favorites.Entry, error) {
	id, err := movieID(c)
	if err != nil {
		return favorites.Entry{}, err
	}
	m := models.Movie{
		ID:          id,
		Title:       c.String("title"),
		VoteAverage: c.Float64("rating"),
		ReleaseDate: c.String("release-date"),
		Overview:    c.String("overview"),
	}
	if p := c.String("poster"); p != "" {
		m.PosterPath = &p
	}
	return favorites.FromMovie(m), nil
}

func bookEntry(c *cli.Context, cover, published string) favorites.Entry {
	b := models.Book{
		ID:            c.String("book-id"),
		Title:         c.String("title"),
		PublishedDate: published,
		Description:   c.String("description"),
	}
	if c.IsSet("rating") {
		r := c.Float64("rating")
		b.AverageRating = &r
	}
	if cover != "" {
		b.ImageLinks = &models.ImageLinks{Thumbnail: cover}
	}
	return favorites.FromBook(b)
}

func listFavorites(c *cli.Context, s *session) error {
	w := c.App.Writer
	entries := s.favorites.Get(c.Context)
	if len(entries) == 0 {
		fmt.Fprintln(w, "No favorites yet.")
		return nil
	}
	for _, e := range entries {
		kind, ref := "movie", fmt.Sprintf("id %d", e.ID)
		if e.IsBook() {
			kind, ref = "book ", fmt.Sprintf("id %d, book %s", e.ID, e.BookID)
		}
		date := e.ReleaseDate
		if date == "" {
			date = "N/A"
		}
		fmt.Fprintf(w, "%s  %-40s %-10s ★ %.1f  [%s]\n", kind, e.Title, date, e.VoteAverage, ref)
	}
	return nil
}

func addMovie(c *cli.Context, s *session) error {
	e, err := movieEntry(c)
	if err != nil {
		return err
	}
	if err := s.favorites.Add(c.Context, e); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Added %q to favorites.\n", e.Title)
	return nil
}

func addBook(c *cli.Context, s *session) error {
	e := bookEntry(c, c.String("cover"), c.String("published"))
	if err := s.favorites.Add(c.Context, e); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Added %q to favorites.\n", e.Title)
	return nil
}

func toggleFavorite(c *cli.Context, s *session) error {
	var e favorites.Entry
	switch {
	case c.IsSet("book-id") && c.IsSet("id"):
		return errors.New("use either --id or --book-id, not both")
	case c.IsSet("book-id"):
		e = bookEntry(c, c.String("poster"), c.String("date"))
	case c.IsSet("id"):
		id, err := movieID(c)
		if err != nil {
			return err
		}
		e = favorites.FromMovie(models.Movie{
			ID:          id,
			Title:       c.String("title"),
			VoteAverage: c.Float64("rating"),
			ReleaseDate: c.String("date"),
		})
		if p := c.String("poster"); p != "" {
			e.PosterPath = &p
		}
	default:
		return errors.New("--id or --book-id is required")
	}

	result, err := s.favorites.Toggle(c.Context, e)
	if err != nil {
		return err
	}
	if result == favorites.Added {
		fmt.Fprintf(c.App.Writer, "Added %q to favorites.\n", e.Title)
	} else {
		fmt.Fprintf(c.App.Writer, "Removed %q from favorites.\n", e.Title)
	}
	return nil
}

func removeFavorite(c *cli.Context, s *session) error {
	var id int
	switch {
	case c.IsSet("book-id"):
		id = favorites.BookFavoriteID(c.String("book-id"))
	case c.IsSet("id"):
		var err error
		if id, err = movieID(c); err != nil {
			return err
		}
	default:
		return errors.New("--id or --book-id is required")
	}
	if !s.favorites.IsFavorite(c.Context, id) {
		fmt.Fprintln(c.App.Writer, "Not in favorites.")
		return nil
	}
	if err := s.favorites.Remove(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Removed from favorites.")
	return nil
}

func clearFavorites(c *cli.Context, s *session) error {
	if err := s.favorites.Clear(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Favorites cleared.")
	return nil
}
