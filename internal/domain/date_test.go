package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2024, time.February, 28)

	require.Equal(t, "2024-02-28", d.String())
	require.Equal(t, "2024-02-29", d.AddDays(1).String())
	require.Equal(t, "2024-03-01", d.AddDays(2).String())
	require.Equal(t, 2, d.AddDays(2).DaysSince(d))
	require.Equal(t, time.Wednesday, d.Weekday())
	require.False(t, d.IsWeekend())
	require.True(t, NewDate(2024, time.March, 2).IsWeekend())
}

func TestDate_DateOfIgnoresClock(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	morning := time.Date(2024, time.May, 1, 1, 0, 0, 0, loc)
	night := time.Date(2024, time.May, 1, 23, 59, 0, 0, loc)

	require.Equal(t, DateOf(morning), DateOf(night))
	require.Equal(t, NewDate(2024, time.May, 1), DateOf(night))
}

func TestDate_JSON(t *testing.T) {
	t.Run("as value", func(t *testing.T) {
		data, err := json.Marshal(NewDate(2024, time.July, 4))
		require.NoError(t, err)
		require.JSONEq(t, `"2024-07-04"`, string(data))

		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"2024-07-04"`), &d))
		require.Equal(t, NewDate(2024, time.July, 4), d)
	})

	t.Run("as map key", func(t *testing.T) {
		m := ExceptionMap{7: {NewDate(2024, time.July, 4): "L"}}
		data, err := json.Marshal(m)
		require.NoError(t, err)
		require.JSONEq(t, `{"7":{"2024-07-04":"L"}}`, string(data))

		var back ExceptionMap
		require.NoError(t, json.Unmarshal(data, &back))
		code, ok := back.Get(7, NewDate(2024, time.July, 4))
		require.True(t, ok)
		require.Equal(t, "L", code)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		var d Date
		require.Error(t, json.Unmarshal([]byte(`"07/04/2024"`), &d))
	})
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "2024-01-02", d.String())

	require.NoError(t, d.Scan("2024-01-03"))
	require.Equal(t, "2024-01-03", d.String())

	require.Error(t, d.Scan(42))
}
