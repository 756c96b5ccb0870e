package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zhaobenny/vnstat-notify/internal/model"
)

var statDate = model.Date{Year: 2024, Month: time.September, Day: 2}

func TestSum(t *testing.T) {
	records := []model.TrafficRecord{
		model.NewRecord("local", "", statDate, model.Bytes(8246207397), model.Bytes(13223069032), statDate.MonthOf()),
		model.NewRecord("remote", "", statDate, model.Bytes(100), model.Bytes(1000), statDate.MonthOf()),
	}

	total := Sum(records)

	assert.Equal(t, uint64(8246207497), total.Day.Value())
	assert.Equal(t, uint64(13223070032), total.Month.Value())
	assert.Zero(t, total.Failed)
}

func TestSumSkipsFailedSystems(t *testing.T) {
	records := []model.TrafficRecord{
		model.NewRecord("local", "", statDate, model.Bytes(500), model.Bytes(700), statDate.MonthOf()),
		model.ErrorRecord("remote", "", statDate, "ssh connection failed"),
	}

	total := Sum(records)

	assert.Equal(t, uint64(500), total.Day.Value())
	assert.Equal(t, uint64(700), total.Month.Value())
	assert.Equal(t, 1, total.Failed)
}

func TestSumAbsent(t *testing.T) {
	tests := []struct {
		name    string
		records []model.TrafficRecord
		failed  int
	}{
		{name: "no records"},
		{
			name: "all failed",
			records: []model.TrafficRecord{
				model.ErrorRecord("local", "", statDate, "boom"),
				model.ErrorRecord("remote", "", statDate, "boom"),
			},
			failed: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := Sum(tt.records)
			assert.False(t, total.Day.Valid())
			assert.False(t, total.Month.Valid())
			assert.Equal(t, tt.failed, total.Failed)
		})
	}
}
