package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/icco/moodpick/models"
)

const (
	DefaultPage       = "1"
	DefaultSort       = "popularity.desc"
	DefaultMaxResults = "20"
	DefaultOrderBy    = "relevance"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// MovieParams are the raw /api/movies query parameters.
type MovieParams struct {
	GenreID string `label:"Genre ID" validate:"required,number"`
	Page    string `label:"Page" validate:"required,number"`
	Sort    string `label:"Sort" validate:"required,max=64"`
}

func MovieParamsFrom(q url.Values) MovieParams {
	return MovieParams{
		GenreID: q.Get("genreId"),
		Page:    withDefault(q.Get("page"), DefaultPage),
		Sort:    withDefault(q.Get("sort"), DefaultSort),
	}
}

// Query validates the parameters and converts them.
func (p MovieParams) Query() (models.MovieQuery, error) {
	if err := check(p); err != nil {
		return models.MovieQuery{}, err
	}
	genreID, err := atoi("Genre ID", p.GenreID)
	if err != nil {
		return models.MovieQuery{}, err
	}
	page, err := atoi("Page", p.Page)
	if err != nil {
		return models.MovieQuery{}, err
	}
	return models.MovieQuery{GenreID: genreID, Page: page, Sort: p.Sort}, nil
}

// ProviderParams are the raw /api/movies/providers query parameters.
type ProviderParams struct {
	MovieID string `label:"Movie ID" validate:"required,number"`
}

func ProviderParamsFrom(q url.Values) ProviderParams {
	return ProviderParams{MovieID: q.Get("movieId")}
}

func (p ProviderParams) MovieIDValue() (int, error) {
	if err := check(p); err != nil {
		return 0, err
	}
	return atoi("Movie ID", p.MovieID)
}

// BookParams are the raw /api/books query parameters.
type BookParams struct {
	Subject    string `label:"Subject" validate:"required,max=128"`
	MaxResults string `label:"Max results" validate:"required,number"`
	OrderBy    string `label:"Order" validate:"required,oneof=relevance newest"`
}

func BookParamsFrom(q url.Values) BookParams {
	return BookParams{
		Subject:    q.Get("subject"),
		MaxResults: withDefault(q.Get("maxResults"), DefaultMaxResults),
		OrderBy:    withDefault(q.Get("orderBy"), DefaultOrderBy),
	}
}

func (p BookParams) Query() (models.BookQuery, error) {
	if err := check(p); err != nil {
		return models.BookQuery{}, err
	}
	maxResults, err := atoi("Max results", p.MaxResults)
	if err != nil {
		return models.BookQuery{}, err
	}
	return models.BookQuery{Subject: p.Subject, MaxResults: maxResults, OrderBy: p.OrderBy}, nil
}

// check runs the struct rules and turns the first failure into a readable
// message such as "Genre ID is required".
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "number":
		return fmt.Errorf("%s must be a positive integer", fe.Field())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	case "max":
		return fmt.Errorf("%s is too long", fe.Field())
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}

func atoi(label, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s is out of range", label)
	}
	return n, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// WriteJSON writes v as the JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

// WriteError writes a {"error": "..."} response.
func WriteError(w http.ResponseWriter, err error, status int) {
	WriteJSON(w, status, map[string]string{
		"error": err.Error(),
	})
}
