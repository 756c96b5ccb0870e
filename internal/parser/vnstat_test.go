package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhaobenny/vnstat-notify/internal/model"
)

const sampleV2 = `{
  "vnstatversion": "2.6",
  "jsonversion": "2",
  "interfaces": [
    {
      "name": "eth0",
      "alias": "uplink",
      "traffic": {
        "total": {"rx": 242920913679, "tx": 192091433958},
        "day": [
          {"id": 29, "date": {"year": 2024, "month": 9, "day": 11}, "rx": 5094408961, "tx": 3151798436},
          {"id": 30, "date": {"year": 2024, "month": 9, "day": 12}, "rx": 1743913561, "tx": 862805062}
        ],
        "month": [
          {"id": 2, "date": {"year": 2024, "month": 8}, "rx": 7821185928, "tx": 5401883104}
        ]
      }
    },
    {"name": "wg0", "traffic": {}}
  ]
}`

func TestDecodeSnapshot(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(sampleV2))
	require.NoError(t, err)
	require.Len(t, snap.Interfaces, 2)

	eth0, ok := snap.Interface("eth0")
	require.True(t, ok)
	assert.Equal(t, "uplink", eth0.Alias)
	assert.Equal(t, []model.DayEntry{
		{Date: model.Date{Year: 2024, Month: time.September, Day: 11}, Rx: 5094408961, Tx: 3151798436},
		{Date: model.Date{Year: 2024, Month: time.September, Day: 12}, Rx: 1743913561, Tx: 862805062},
	}, eth0.Traffic.Day)
	assert.Equal(t, []model.MonthEntry{
		{Month: model.Month{Year: 2024, Month: time.August}, Rx: 7821185928, Tx: 5401883104},
	}, eth0.Traffic.Month)

	wg0, ok := snap.Interface("wg0")
	require.True(t, ok)
	assert.Empty(t, wg0.Traffic.Day)
	assert.Empty(t, wg0.Traffic.Month)
}

func TestDecodeSnapshot_JSONVersion1(t *testing.T) {
	data := `{"jsonversion":"1","interfaces":[{"id":"eth0","nick":"eth0","traffic":{
		"days":[{"id":0,"date":{"year":2024,"month":9,"day":11},"rx":10,"tx":20}],
		"months":[{"id":0,"date":{"year":2024,"month":9},"rx":100,"tx":200}]}}]}`

	snap, err := DecodeSnapshot([]byte(data))
	require.NoError(t, err)

	eth0, ok := snap.Interface("eth0")
	require.True(t, ok)
	require.Len(t, eth0.Traffic.Day, 1)
	assert.Equal(t, uint64(10*1024), eth0.Traffic.Day[0].Rx)
	assert.Equal(t, uint64(200*1024), eth0.Traffic.Month[0].Tx)
}

func TestDecodeSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "  \n", "empty document"},
		{"not json", "Error: database not found", "invalid character"},
		{"negative counter", `{"interfaces":[{"name":"eth0","traffic":{"day":[{"date":{"year":2024,"month":9,"day":1},"rx":-5,"tx":1}]}}]}`, "cannot unmarshal"},
		{"bad month", `{"interfaces":[{"name":"eth0","traffic":{"month":[{"date":{"year":2024,"month":13},"rx":1,"tx":1}]}}]}`, "invalid month 2024-13"},
		{"missing day", `{"interfaces":[{"name":"eth0","traffic":{"day":[{"date":{"year":2024,"month":9},"rx":1,"tx":1}]}}]}`, "invalid date 2024-09-00"},
		{"impossible day", `{"interfaces":[{"name":"eth0","traffic":{"day":[{"date":{"year":2024,"month":2,"day":30},"rx":1,"tx":1}]}}]}`, "invalid date 2024-02-30"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeSnapshot([]byte(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestReadSnapshot(t *testing.T) {
	snap, err := ReadSnapshot(strings.NewReader(sampleV2))
	require.NoError(t, err)
	assert.Len(t, snap.Interfaces, 2)
}
