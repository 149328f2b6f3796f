// Command moodpick is the terminal client: it picks movies and books for a
// mood through a moodpick server and keeps favorites in a local store.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "moodpick",
		Usage:     "Pick a movie or a book for your mood",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"MOODPICK_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "moodpick server `URL` (overrides config)",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "local store `PATH` (overrides config)",
			},
			// -v is taken by --version.
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug output to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "moods",
				Usage:  "List the available moods",
				Action: listMoods,
			},
			{
				Name:  "movies",
				Usage: "Show a selection of movies for a mood",
				Flags: []cli.Flag{
					moodFlag(),
					&cli.BoolFlag{
						Name:    "refresh",
						Aliases: []string{"r"},
						Usage:   "Draw a new page, different from the last one shown",
					},
				},
				Action: showMovies,
			},
			{
				Name:   "books",
				Usage:  "Show a selection of books for a mood",
				Flags:  []cli.Flag{moodFlag()},
				Action: showBooks,
			},
			{
				Name:  "providers",
				Usage: "Show where a movie can be watched",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "movie-id",
						Usage:    "TMDB movie id",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "country",
						Usage: "Country code (CA or US); defaults to the configured country",
					},
				},
				Action: showProviders,
			},
			favoritesCommand(),
		},
	}
}

func moodFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "mood",
		Aliases: []string{"m"},
		Usage:   "joy, sadness, disgust, fear, anger or surprise",
		Value:   "joy",
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
