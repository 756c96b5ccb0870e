package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthPrev(t *testing.T) {
	tests := []struct {
		in, want Month
	}{
		{Month{2024, time.September}, Month{2024, time.August}},
		{Month{2024, time.January}, Month{2023, time.December}},
		{Month{2024, time.December}, Month{2024, time.November}},
	}
	for _, tc := range tests {
		t.Run(tc.in.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Prev())
		})
	}
}

func TestDateAddDays(t *testing.T) {
	assert.Equal(t, Date{2023, time.December, 31}, Date{2024, time.January, 1}.AddDays(-1))
	assert.Equal(t, Date{2024, time.February, 29}, Date{2024, time.March, 1}.AddDays(-1))
	assert.Equal(t, Date{2024, time.March, 1}, Date{2024, time.February, 29}.AddDays(1))
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2024, time.September, 1, 23, 30, 0, 0, time.UTC).In(loc)
	assert.Equal(t, Date{2024, time.September, 2}, DateOf(ts))
}

func TestDateJSON(t *testing.T) {
	d := Date{2024, time.September, 1}
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-09-01"`, string(data))

	var got Date
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, d, got)

	assert.Error(t, json.Unmarshal([]byte(`"2024-9-1"`), &got))
	assert.Error(t, json.Unmarshal([]byte(`20240901`), &got))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date{2024, time.February, 29}, d)

	_, err = ParseDate("2023-02-29")
	assert.Error(t, err)
}

func TestMonthJSON(t *testing.T) {
	m := Month{2023, time.December}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"2023-12"`, string(data))

	var got Month
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, m, got)

	data, err = json.Marshal(Month{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
