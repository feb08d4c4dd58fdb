package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/types"
)

const (
	DefaultLimit = 200
	MaxLimit     = 500
)

const dateLayout = "2006-01-02"

// ParseFilterFromQuery разбирает search, sort[...], filter[...], limit/page/offset.
// Диапазон дат разбирается отдельно, см. ParseDateRange.
func ParseFilterFromQuery(values url.Values) types.Filter {
	filterReq := types.Filter{
		Sort:   make(map[string]string),
		Filter: make(map[string]interface{}),
		Limit:  DefaultLimit,
		Page:   1,
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filterReq.Limit = min(l, MaxLimit)
		}
	}

	if pageStr := values.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filterReq.Page = p
		}
	}

	if offsetStr := values.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filterReq.Offset = o
		}
	} else {
		filterReq.Offset = (filterReq.Page - 1) * filterReq.Limit
	}

	filterReq.WithPagination = values.Get("withPagination") != "false"

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}

		if key == "search" {
			filterReq.Search = vals[0]
			continue
		}

		if strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]") {
			field := key[5 : len(key)-1]
			direction := strings.ToLower(vals[0])
			if direction == "asc" || direction == "desc" {
				filterReq.Sort[field] = direction
			}
			continue
		}

		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			field := key[7 : len(key)-1]
			filterReq.Filter[field] = strings.Join(vals, ",")
		}
	}

	return filterReq
}

// ParseDateRange читает date_from / date_to (YYYY-MM-DD или RFC3339), обе границы включительно.
// Дата без времени в date_to означает конец этого дня.
func ParseDateRange(values url.Values, loc *time.Location) (from, to *time.Time, err error) {
	if raw := values.Get("date_from"); raw != "" {
		t, _, perr := ParseDate(raw, loc)
		if perr != nil {
			return nil, nil, apperrors.NewValidationError("неверный формат date_from: %s", raw)
		}
		from = &t
	}
	if raw := values.Get("date_to"); raw != "" {
		t, dateOnly, perr := ParseDate(raw, loc)
		if perr != nil {
			return nil, nil, apperrors.NewValidationError("неверный формат date_to: %s", raw)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, apperrors.NewValidationError("date_from позже date_to")
	}
	return from, to, nil
}

// ParseDate разбирает YYYY-MM-DD в loc или RFC3339. Второй результат истинен для даты без времени.
func ParseDate(raw string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return t, false, nil
}
