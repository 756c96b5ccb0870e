package vnstat

import (
	"fmt"

	"github.com/zhaobenny/vnstat-notify/internal/model"
)

// Granularity selects the day or the month history of an interface.
type Granularity int

const (
	Day Granularity = iota + 1
	Month
)

func (g Granularity) String() string {
	switch g {
	case Day:
		return "day"
	case Month:
		return "month"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// MonthKeyPolicy decides which month a MONTH lookup uses for a target date.
type MonthKeyPolicy int

const (
	// MonthKeyPreviousOnFirst looks up the previous month when the target is
	// the 1st, since the new month has almost nothing accumulated yet.
	MonthKeyPreviousOnFirst MonthKeyPolicy = iota
	// MonthKeySame always looks up the target's own month.
	//
	// Deprecated: superseded by MonthKeyPreviousOnFirst.
	MonthKeySame
)

// ParseMonthKeyPolicy maps a config value to a policy.
func ParseMonthKeyPolicy(s string) (MonthKeyPolicy, error) {
	switch s {
	case "", "previous-on-first":
		return MonthKeyPreviousOnFirst, nil
	case "same":
		return MonthKeySame, nil
	default:
		return 0, fmt.Errorf("unknown month key policy %q", s)
	}
}

// MonthKey returns the month a MONTH lookup for target uses.
func (p MonthKeyPolicy) MonthKey(target model.Date) model.Month {
	m := target.MonthOf()
	if p == MonthKeyPreviousOnFirst && target.Day == 1 {
		return m.Prev()
	}
	return m
}

// Resolution is the outcome of a successful period lookup.
// Day is set for DAY lookups, Month for MONTH lookups.
type Resolution struct {
	Total model.ByteCount
	Day   model.Date
	Month model.Month
}

// ResolvePeriod finds the entry of interface iface matching target at the
// given granularity and returns rx+tx for it. The first matching entry wins.
func ResolvePeriod(snap *model.Snapshot, iface string, g Granularity, target model.Date, policy MonthKeyPolicy) (Resolution, error) {
	if g != Day && g != Month {
		return Resolution{}, newError(KindInvalidModifier, fmt.Sprintf("invalid modifier %s", g), nil)
	}

	if snap == nil || len(snap.Interfaces) == 0 {
		return Resolution{}, newError(KindMissingInterface, "no interfaces found in vnstat data", nil)
	}
	data, ok := snap.Interface(iface)
	if !ok {
		return Resolution{}, newError(KindMissingInterface, fmt.Sprintf("interface %s not found in vnstat data", iface), nil)
	}

	if g == Day {
		return resolveDay(data, target)
	}
	return resolveMonth(data, policy.MonthKey(target))
}

func resolveDay(iface model.Interface, target model.Date) (Resolution, error) {
	days := iface.Traffic.Day
	if len(days) == 0 {
		return Resolution{}, noPeriodData(iface.Name, Day)
	}
	for _, e := range days {
		if e.Date == target {
			return Resolution{Total: model.Bytes(e.Rx + e.Tx), Day: e.Date}, nil
		}
	}
	latest := days[len(days)-1].Date
	return Resolution{}, missingTarget(target.String(), Day, latest.String())
}

func resolveMonth(iface model.Interface, key model.Month) (Resolution, error) {
	months := iface.Traffic.Month
	if len(months) == 0 {
		return Resolution{}, noPeriodData(iface.Name, Month)
	}
	for _, e := range months {
		if e.Month == key {
			return Resolution{Total: model.Bytes(e.Rx + e.Tx), Month: e.Month}, nil
		}
	}
	latest := months[len(months)-1].Month
	return Resolution{}, missingTarget(key.String(), Month, latest.String())
}

func noPeriodData(iface string, g Granularity) *Error {
	return newError(KindNoPeriodData, fmt.Sprintf("no %s data for interface %s in vnstat data", g, iface), nil)
}

func missingTarget(target string, g Granularity, latest string) *Error {
	return newError(KindMissingTargetDate, fmt.Sprintf(
		"Target date %s not found in traffic data. Latest available %s is %s. "+
			"Please check if the vnstat service is running.", target, g, latest), nil)
}
