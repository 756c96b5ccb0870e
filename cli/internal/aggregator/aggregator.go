package aggregator

import (
	"github.com/zhaobenny/vnstat-notify/internal/model"
)

// Totals is the combined traffic of several systems
type Totals struct {
	Day   model.ByteCount
	Month model.ByteCount

	// Failed counts records that carry an error; they add nothing.
	Failed int
}

// Sum adds up the traffic of records. A total stays absent when no record
// has a value for it.
func Sum(records []model.TrafficRecord) Totals {
	var (
		t                  Totals
		day, month         uint64
		haveDay, haveMonth bool
	)

	for _, r := range records {
		if !r.OK() {
			t.Failed++
			continue
		}
		if n, ok := r.DayTraffic.Get(); ok {
			day += n
			haveDay = true
		}
		if n, ok := r.MonthTraffic.Get(); ok {
			month += n
			haveMonth = true
		}
	}

	if haveDay {
		t.Day = model.Bytes(day)
	}
	if haveMonth {
		t.Month = model.Bytes(month)
	}
	return t
}
