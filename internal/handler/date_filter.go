package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	return parseDate(value)
}

// parseDate accepts a plain date or an RFC 3339 timestamp.
func parseDate(value string) (*time.Time, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, value)
		if tsErr != nil {
			return nil, err
		}
		parsed = ts
	}
	return &parsed, nil
}

func parseBoolQuery(r *http.Request, key string) (*bool, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func parseDecimalQuery(r *http.Request, key string) (*decimal.Decimal, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseIDQuery(r *http.Request, key string) (*int64, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// priceRange reads minPrice and maxPrice, writing a 400 on a bad value.
func priceRange(w http.ResponseWriter, r *http.Request) (lo, hi *decimal.Decimal, ok bool) {
	lo, err := parseDecimalQuery(r, "minPrice")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid minPrice")
		return nil, nil, false
	}
	hi, err = parseDecimalQuery(r, "maxPrice")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid maxPrice")
		return nil, nil, false
	}
	return lo, hi, true
}

func activeFilter(w http.ResponseWriter, r *http.Request) (*bool, bool) {
	active, err := parseBoolQuery(r, "isActive")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid isActive")
		return nil, false
	}
	return active, true
}
