package offers

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rannerhq/ranner/internal/amadeus"
	"github.com/rannerhq/ranner/internal/domain"
)

const providerDateLayout = "2006-01-02"

// SearchCriteria is the raw, user-supplied shape. Adults stays a string
// so a missing or garbage value can fall back to 1 instead of failing.
type SearchCriteria struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        string
	Currency      string
}

// normalize turns criteria into the exact shape the provider expects:
// upper-cased IATA codes, YYYY-MM-DD dates, adults defaulting to 1 and
// currency to USD.
func (c SearchCriteria) normalize() (amadeus.SearchParams, error) {
	origin := strings.ToUpper(strings.TrimSpace(c.Origin))
	destination := strings.ToUpper(strings.TrimSpace(c.Destination))
	if origin == "" || destination == "" {
		return amadeus.SearchParams{}, fmt.Errorf("origin and destination are required: %w", domain.ErrInvalidInput)
	}

	departure, err := normalizeDate(c.DepartureDate)
	if err != nil {
		return amadeus.SearchParams{}, fmt.Errorf("departure date %q: %w", c.DepartureDate, domain.ErrInvalidInput)
	}

	returnDate := ""
	if strings.TrimSpace(c.ReturnDate) != "" {
		returnDate, err = normalizeDate(c.ReturnDate)
		if err != nil {
			return amadeus.SearchParams{}, fmt.Errorf("return date %q: %w", c.ReturnDate, domain.ErrInvalidInput)
		}
	}

	adults := 1
	if n, err := strconv.Atoi(strings.TrimSpace(c.Adults)); err == nil && n > 0 {
		adults = n
	}

	currency := strings.ToUpper(strings.TrimSpace(c.Currency))
	if currency == "" {
		currency = "USD"
	}

	return amadeus.SearchParams{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: departure,
		ReturnDate:    returnDate,
		Adults:        adults,
		Currency:      currency,
	}, nil
}

func normalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{providerDateLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(providerDateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", raw)
}

func cacheKey(params amadeus.SearchParams) string {
	raw := fmt.Sprintf("%s:%s:%s:%s:%d:%s",
		params.Origin, params.Destination, params.DepartureDate, params.ReturnDate, params.Adults, params.Currency)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", sum[:16])
}
