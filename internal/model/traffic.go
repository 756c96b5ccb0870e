package model

import (
	"encoding/json"
	"strconv"
)

// ByteCount is an optional, non-negative number of bytes.
// The zero value means no data.
type ByteCount struct {
	n     uint64
	valid bool
}

// Bytes returns a present ByteCount holding n.
func Bytes(n uint64) ByteCount {
	return ByteCount{n: n, valid: true}
}

// Get returns the count and whether it is present.
func (b ByteCount) Get() (uint64, bool) {
	return b.n, b.valid
}

// Value returns the count, or 0 when absent.
func (b ByteCount) Value() uint64 {
	return b.n
}

func (b ByteCount) Valid() bool {
	return b.valid
}

func (b ByteCount) String() string {
	if !b.valid {
		return "none"
	}
	return strconv.FormatUint(b.n, 10)
}

func (b ByteCount) MarshalJSON() ([]byte, error) {
	if !b.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatUint(b.n, 10)), nil
}

func (b *ByteCount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = ByteCount{}
		return nil
	}
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*b = Bytes(n)
	return nil
}

// TrafficRecord is the normalized traffic report for one system.
// Records are built once by NewRecord or ErrorRecord and passed by value.
type TrafficRecord struct {
	SystemName    string    `json:"system_name"`
	ServiceStatus string    `json:"service_status,omitempty"`
	StatDate      Date      `json:"stat_date"`
	DayTraffic    ByteCount `json:"day_traffic"`
	MonthTraffic  ByteCount `json:"month_traffic"`
	MonthPeriod   Month     `json:"month_period"`
	Error         string    `json:"error,omitempty"`
}

// NewRecord returns a successful record.
func NewRecord(systemName, serviceStatus string, statDate Date, day, month ByteCount, period Month) TrafficRecord {
	return TrafficRecord{
		SystemName:    systemName,
		ServiceStatus: serviceStatus,
		StatDate:      statDate,
		DayTraffic:    day,
		MonthTraffic:  month,
		MonthPeriod:   period,
	}
}

// ErrorRecord returns a record for a system whose retrieval failed.
// Traffic fields are left absent.
func ErrorRecord(systemName, serviceStatus string, statDate Date, msg string) TrafficRecord {
	return TrafficRecord{
		SystemName:    systemName,
		ServiceStatus: serviceStatus,
		StatDate:      statDate,
		Error:         msg,
	}
}

// OK reports whether the record was collected without error.
func (r TrafficRecord) OK() bool {
	return r.Error == ""
}
