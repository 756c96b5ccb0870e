package parser

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/zhaobenny/vnstat-notify/internal/model"
)

// ErrUnknownDocument is returned when a document is neither a saved
// record nor vnstat output.
var ErrUnknownDocument = errors.New("document is neither a traffic record nor vnstat output")

// probe detects which kind of document a file holds
type probe struct {
	Interfaces json.RawMessage `json:"interfaces"`
	SystemName *string         `json:"system_name"`
}

// DecodeRecord decodes a persisted traffic record.
func DecodeRecord(data []byte) (model.TrafficRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return model.TrafficRecord{}, ErrEmptyDocument
	}

	var rec model.TrafficRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.TrafficRecord{}, err
	}
	return rec, nil
}

// Document is either a saved record or a raw snapshot; exactly one is set.
type Document struct {
	Record   *model.TrafficRecord
	Snapshot *model.Snapshot
}

// DecodeDocument decodes data as a saved record or as vnstat output,
// whichever it looks like.
func DecodeDocument(data []byte) (Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Document{}, ErrEmptyDocument
	}

	var p probe
	if err := json.Unmarshal(data, &p); err != nil {
		return Document{}, err
	}

	switch {
	case p.SystemName != nil:
		rec, err := DecodeRecord(data)
		if err != nil {
			return Document{}, err
		}
		return Document{Record: &rec}, nil
	case p.Interfaces != nil:
		snap, err := DecodeSnapshot(data)
		if err != nil {
			return Document{}, err
		}
		return Document{Snapshot: snap}, nil
	default:
		return Document{}, ErrUnknownDocument
	}
}
