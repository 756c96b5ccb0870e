package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/zhaobenny/vnstat-notify/internal/model"
)

// ErrEmptyDocument is returned when there is nothing to decode.
var ErrEmptyDocument = errors.New("empty document")

// rawSnapshot represents the JSON document printed by `vnstat --json`
type rawSnapshot struct {
	JSONVersion string         `json:"jsonversion"`
	Interfaces  []rawInterface `json:"interfaces"`
}

type rawInterface struct {
	Name    string `json:"name"`
	Alias   string `json:"alias"`
	Nick    string `json:"nick"` // jsonversion 1
	ID      string `json:"id"`   // jsonversion 1
	Traffic struct {
		Day    []rawEntry `json:"day"`
		Month  []rawEntry `json:"month"`
		Days   []rawEntry `json:"days"`   // jsonversion 1
		Months []rawEntry `json:"months"` // jsonversion 1
	} `json:"traffic"`
}

type rawEntry struct {
	Date struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Day   int `json:"day"`
	} `json:"date"`
	Rx uint64 `json:"rx"`
	Tx uint64 `json:"tx"`
}

// DecodeSnapshot decodes vnstat JSON output into a typed snapshot.
// All structural validation happens here so lookups downstream can rely
// on well-formed dates.
func DecodeSnapshot(data []byte) (*model.Snapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	// jsonversion 1 reports KiB, version 2 reports bytes
	var scale uint64 = 1
	if raw.JSONVersion == "1" {
		scale = 1024
	}

	snap := &model.Snapshot{Interfaces: make([]model.Interface, 0, len(raw.Interfaces))}
	for _, ri := range raw.Interfaces {
		iface := model.Interface{Name: ri.Name, Alias: ri.Alias}
		if iface.Name == "" {
			iface.Name = ri.ID
		}
		if iface.Alias == "" {
			iface.Alias = ri.Nick
		}

		days := ri.Traffic.Day
		if len(days) == 0 {
			days = ri.Traffic.Days
		}
		for i, e := range days {
			d, err := entryDate(e)
			if err != nil {
				return nil, fmt.Errorf("interface %s: day entry %d: %w", iface.Name, i, err)
			}
			iface.Traffic.Day = append(iface.Traffic.Day, model.DayEntry{
				Date: d,
				Rx:   e.Rx * scale,
				Tx:   e.Tx * scale,
			})
		}

		months := ri.Traffic.Month
		if len(months) == 0 {
			months = ri.Traffic.Months
		}
		for i, e := range months {
			m, err := entryMonth(e)
			if err != nil {
				return nil, fmt.Errorf("interface %s: month entry %d: %w", iface.Name, i, err)
			}
			iface.Traffic.Month = append(iface.Traffic.Month, model.MonthEntry{
				Month: m,
				Rx:    e.Rx * scale,
				Tx:    e.Tx * scale,
			})
		}

		snap.Interfaces = append(snap.Interfaces, iface)
	}

	return snap, nil
}

// ReadSnapshot decodes a snapshot from r.
func ReadSnapshot(r io.Reader) (*model.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeSnapshot(data)
}

func entryMonth(e rawEntry) (model.Month, error) {
	if e.Date.Year <= 0 || e.Date.Month < 1 || e.Date.Month > 12 {
		return model.Month{}, fmt.Errorf("invalid month %04d-%02d", e.Date.Year, e.Date.Month)
	}
	return model.Month{Year: e.Date.Year, Month: time.Month(e.Date.Month)}, nil
}

func entryDate(e rawEntry) (model.Date, error) {
	m, err := entryMonth(e)
	if err != nil {
		return model.Date{}, err
	}
	d := model.Date{Year: m.Year, Month: m.Month, Day: e.Date.Day}
	if e.Date.Day < 1 || model.DateOf(d.Time()) != d {
		return model.Date{}, fmt.Errorf("invalid date %04d-%02d-%02d", e.Date.Year, e.Date.Month, e.Date.Day)
	}
	return d, nil
}
