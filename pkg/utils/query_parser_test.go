package utils

import (
	"net/url"
	"testing"
	"time"

	apperrors "gear-guard/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("filter[stage]", "NEW,IN_PROGRESS")
	values.Set("filter[team_id]", "1")
	values.Set("sort[scheduled_date]", "ASC")
	values.Set("sort[bogus]", "sideways")
	values.Set("limit", "1000")
	values.Set("page", "3")
	values.Set("search", "pump")

	f := ParseFilterFromQuery(values)

	assert.Equal(t, "NEW,IN_PROGRESS", f.Filter["stage"])
	assert.Equal(t, "1", f.Filter["team_id"])
	assert.Equal(t, map[string]string{"scheduled_date": "asc"}, f.Sort)
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 2*MaxLimit, f.Offset)
	assert.Equal(t, "pump", f.Search)
	assert.True(t, f.WithPagination)
}

func TestParseDateRange(t *testing.T) {
	values := url.Values{}
	values.Set("date_from", "2025-03-01")
	values.Set("date_to", "2025-03-31")

	from, to, err := ParseDateRange(values, time.UTC)
	require.NoError(t, err)
	require.NotNil(t, from)
	require.NotNil(t, to)

	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2025, 3, 31, 23, 59, 59, 999999999, time.UTC), *to)
}

func TestParseDateRange_Empty(t *testing.T) {
	from, to, err := ParseDateRange(url.Values{}, time.UTC)
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestParseDateRange_Invalid(t *testing.T) {
	values := url.Values{}
	values.Set("date_from", "вчера")

	_, _, err := ParseDateRange(values, time.UTC)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	values = url.Values{}
	values.Set("date_from", "2025-04-02")
	values.Set("date_to", "2025-04-01")
	_, _, err = ParseDateRange(values, time.UTC)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
