// Package selection decides which page of the catalog to show and trims the
// results down to what gets rendered.
package selection

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/icco/moodpick/models"
)

const (
	MinPage      = 1
	MaxPage      = 40
	MovieLimit   = 10
	BookLimit    = 10
	BookRequest  = 15
	dailyCycle   = 25
	pageJitter   = 5
	defaultOrder = "relevance"
)

// Sorts are the movie orderings a selection picks from.
var Sorts = []string{"popularity.desc", "vote_average.desc", "release_date.desc", "revenue.desc"}

// BookOrders are the book orderings a selection picks from.
var BookOrders = []string{defaultOrder, "newest"}

// State is what a list should render as.
type State string

const (
	StateLoading   State = "loading"
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
)

// StateOf maps a finished fetch to its render state. Any error renders as
// empty, the same as zero results.
func StateOf(count int, err error) State {
	if err != nil || count == 0 {
		return StateEmpty
	}
	return StatePopulated
}

// Source is anything that can list movies and books: the proxy over HTTP or
// the catalog service in-process.
type Source interface {
	Movies(ctx context.Context, q models.MovieQuery) (*models.MovieList, error)
	Books(ctx context.Context, q models.BookQuery) (*models.BookList, error)
}

// Planner picks pages and orderings. It is safe for concurrent use.
type Planner struct {
	mu     sync.Mutex
	rng    *rand.Rand
	now    func() time.Time
	logger *slog.Logger
}

// NewPlanner returns a Planner. A nil rng or clock gets a time-seeded source
// and time.Now.
func NewPlanner(rng *rand.Rand, now func() time.Time, logger *slog.Logger) *Planner {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		seed := uint64(now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{rng: rng, now: now, logger: logger}
}

func (p *Planner) intN(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

// DailyOffset is in [1,25] and changes once a day.
func (p *Planner) DailyOffset() int {
	return p.now().YearDay()%dailyCycle + 1
}

// InitialPage is the first page shown for a genre: the daily offset plus a
// little jitter, clamped to [MinPage, MaxPage].
func (p *Planner) InitialPage() int {
	return clamp(p.DailyOffset()+p.intN(pageJitter), MinPage, MaxPage)
}

// RefreshPage picks a uniform page in [MinPage, MaxPage] other than current.
func (p *Planner) RefreshPage(current int) int {
	span := MaxPage - MinPage + 1
	if current < MinPage || current > MaxPage {
		return MinPage + p.intN(span)
	}
	// Draw from the span minus one slot and skip over current.
	page := MinPage + p.intN(span-1)
	if page >= current {
		page++
	}
	return page
}

func (p *Planner) Sort() string {
	return Sorts[p.intN(len(Sorts))]
}

func (p *Planner) BookOrder() string {
	return BookOrders[p.intN(len(BookOrders))]
}

// MovieSelection is one rendered batch of movies.
type MovieSelection struct {
	GenreID int
	Page    int
	Sort    string
	Movies  []models.Movie
	State   State
	Err     error
	// Retried is set when the first page failed and another was tried.
	Retried bool
}

// SelectMovies fetches a batch for genreID. With refresh set, the page is
// drawn away from current; otherwise the daily page is used and a failed or
// empty first fetch is retried once on a different page.
func (p *Planner) SelectMovies(ctx context.Context, src Source, genreID, current int, refresh bool) MovieSelection {
	page := p.InitialPage()
	if refresh {
		page = p.RefreshPage(current)
	}

	sel := p.fetchMovies(ctx, src, genreID, page, p.Sort())
	if refresh || sel.State == StatePopulated {
		return sel
	}

	p.logger.WarnContext(ctx, "Initial movie fetch came back empty, retrying",
		slog.Int("genre_id", genreID),
		slog.Int("page", page),
		slog.Any("error", sel.Err))
	retry := p.fetchMovies(ctx, src, genreID, p.RefreshPage(page), p.Sort())
	retry.Retried = true
	return retry
}

// KeepMovies fetches the batch already on screen again, so the movie list
// stays put while only the books are redrawn. An unknown page or sort falls
// back to an initial selection.
func (p *Planner) KeepMovies(ctx context.Context, src Source, genreID, page int, sort string) MovieSelection {
	if page < MinPage || page > MaxPage || !slices.Contains(Sorts, sort) {
		return p.SelectMovies(ctx, src, genreID, 0, false)
	}
	return p.fetchMovies(ctx, src, genreID, page, sort)
}

func (p *Planner) fetchMovies(ctx context.Context, src Source, genreID, page int, sort string) MovieSelection {
	sel := MovieSelection{GenreID: genreID, Page: page, Sort: sort}
	list, err := src.Movies(ctx, models.MovieQuery{GenreID: genreID, Page: page, Sort: sel.Sort})
	if err != nil {
		sel.Err = fmt.Errorf("failed to fetch movies: %w", err)
		sel.State = StateEmpty
		return sel
	}
	results := list.Results
	if len(results) > MovieLimit {
		results = results[:MovieLimit]
	}
	sel.Movies = results
	sel.State = StateOf(len(results), nil)
	return sel
}

// BookSelection is one rendered batch of books.
type BookSelection struct {
	Subject string
	OrderBy string
	Books   []models.Book
	State   State
	Err     error
}

// SelectBooks fetches a fresh batch for subject with a random ordering.
func (p *Planner) SelectBooks(ctx context.Context, src Source, subject string) BookSelection {
	sel := BookSelection{Subject: subject, OrderBy: p.BookOrder()}
	list, err := src.Books(ctx, models.BookQuery{
		Subject:    subject,
		MaxResults: BookRequest,
		OrderBy:    sel.OrderBy,
		CacheBust:  p.now().UnixMilli(),
	})
	if err != nil {
		sel.Err = fmt.Errorf("failed to fetch books: %w", err)
		sel.State = StateEmpty
		return sel
	}
	sel.Books = FilterBooks(list.Items, BookLimit)
	sel.State = StateOf(len(sel.Books), nil)
	return sel
}

// FilterBooks keeps, in order, up to limit books that have a title and a cover.
func FilterBooks(books []models.Book, limit int) []models.Book {
	out := make([]models.Book, 0, min(len(books), limit))
	for _, b := range books {
		if len(out) == limit {
			break
		}
		if b.Title == "" || b.CoverURL() == "" {
			continue
		}
		out = append(out, b)
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
