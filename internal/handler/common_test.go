package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestGetUserIDAcceptsCommonNumericShapes(t *testing.T) {
	for name, value := range map[string]interface{}{
		"uint64":  uint64(7),
		"int":     7,
		"int64":   int64(7),
		"float64": float64(7), // JWT claims decode numbers as float64
		"string":  "7",
	} {
		t.Run(name, func(t *testing.T) {
			c := testContext(t)
			c.Set("user_id", value)
			id, err := getUserID(c)
			require.NoError(t, err)
			assert.Equal(t, uint64(7), id)
		})
	}
}

func TestGetUserIDRejectsMissingOrGarbage(t *testing.T) {
	c := testContext(t)
	_, err := getUserID(c)
	assert.Error(t, err)

	c = testContext(t)
	c.Set("user_id", "not-a-number")
	_, err = getUserID(c)
	assert.Error(t, err)
}

func TestParseIDParam(t *testing.T) {
	c := testContext(t)
	c.SetParamNames("id")
	c.SetParamValues("42")
	id, ok := parseIDParam(c, "id")
	require.True(t, ok)
	assert.Equal(t, uint64(42), id)

	for _, bad := range []string{"", "0", "-5", "abc"} {
		c := testContext(t)
		c.SetParamNames("id")
		c.SetParamValues(bad)
		_, ok := parseIDParam(c, "id")
		assert.False(t, ok, "value %q", bad)
	}
}

func TestParsePlayDate(t *testing.T) {
	canonical, parsed, ok := parsePlayDate(" 2026-09-06 ")
	require.True(t, ok)
	assert.Equal(t, "2026-09-06", canonical)
	assert.Equal(t, "Sunday", parsed.Weekday().String())

	for _, bad := range []string{"", "06-09-2026", "2026/09/06", "2026-13-01", "tomorrow"} {
		_, _, ok := parsePlayDate(bad)
		assert.False(t, ok, "value %q", bad)
	}
}

func TestNormalizeSport(t *testing.T) {
	assert.Equal(t, "cricket", normalizeSport("  Cricket "))
	assert.Equal(t, "football", normalizeSport("FOOTBALL"))
	assert.Equal(t, "", normalizeSport("   "))
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []uint64{3, 1, 2}, dedupeIDs([]uint64{3, 1, 3, 0, 2, 1}))
	assert.Empty(t, dedupeIDs([]uint64{0, 0}))
	assert.Empty(t, dedupeIDs(nil))
}
