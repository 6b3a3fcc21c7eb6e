package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/giygas/narratives-api/entities"
)

// DecodeJSON reads records from a JSON array of flat objects, or from the
// {"data": [...]} envelope sent by the paste page. Numbers keep their source text.
func DecodeJSON(r io.Reader) ([]entities.Record, error) {
	body, err := decodeSingleValue(r)
	if err != nil {
		return nil, err
	}

	rows := bytes.TrimSpace(body)
	if len(rows) > 0 && rows[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(rows, &envelope); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		data, ok := envelope["data"]
		if !ok {
			return nil, fmt.Errorf("%w: expected an array of records or a \"data\" field", ErrNotTabular)
		}
		rows = bytes.TrimSpace(data)
	}

	if len(rows) == 0 || bytes.Equal(rows, []byte("null")) {
		return nil, ErrNoRecords
	}
	if rows[0] != '[' {
		return nil, fmt.Errorf("%w: expected an array of records", ErrNotTabular)
	}

	dec := json.NewDecoder(bytes.NewReader(rows))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("invalid JSON records: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNoRecords
	}

	records := make([]entities.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: row %d is not an object", ErrNotTabular, i)
		}

		for key, value := range obj {
			switch value.(type) {
			case nil, string, json.Number, bool:
			default:
				return nil, fmt.Errorf("%w: row %d field %q is not a scalar value", ErrNotTabular, i, key)
			}
		}

		records = append(records, entities.Record(obj))
	}

	return records, nil
}

// decodeSingleValue reads exactly one JSON value and rejects anything after it
func decodeSingleValue(r io.Reader) (json.RawMessage, error) {
	dec := json.NewDecoder(r)

	var body json.RawMessage
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return body, nil
	case err != nil:
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	default:
		return nil, errors.New("invalid JSON body: unexpected data after top-level value")
	}
}
