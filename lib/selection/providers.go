package selection

import (
	"fmt"

	"github.com/icco/moodpick/models"
)

// DefaultCountry is the country watch providers are shown for first.
const DefaultCountry = "CA"

type Country struct {
	Code string
	Name string
}

// Countries lists the countries watch providers can be shown for.
var Countries = []Country{
	{Code: "CA", Name: "Canada"},
	{Code: "US", Name: "États-Unis"},
}

// CountryName returns the display name for code, or code itself.
func CountryName(code string) string {
	for _, c := range Countries {
		if c.Code == code {
			return c.Name
		}
	}
	return code
}

// ProvidersFor picks the providers for one country. It errors when the
// country has no entry or the entry lists nothing to stream, rent or buy.
func ProvidersFor(wp *models.WatchProviders, country string) (models.CountryProviders, error) {
	if wp != nil {
		if cp, ok := wp.Results[country]; ok && HasAny(cp) {
			return cp, nil
		}
	}
	return models.CountryProviders{}, fmt.Errorf("no provider available for this movie in %s", CountryName(country))
}

// HasAny reports whether cp lists at least one provider.
func HasAny(cp models.CountryProviders) bool {
	return len(cp.Flatrate) > 0 || len(cp.Rent) > 0 || len(cp.Buy) > 0
}
