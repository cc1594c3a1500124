// Package codec turns persisted text into records and back.
//
// Absent or empty text is an empty collection, never an error. Fields missing
// from the stored JSON decode to their zero values, which is the default
// policy for every record type: empty string, 0, false, nil.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var ErrDecode = errors.New("malformed stored record")

// Encode serializes an ordered collection. A nil collection encodes as "[]".
func Encode[T any](records []T) (string, error) {
	if records == nil {
		records = []T{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode records: %w", err)
	}
	return string(b), nil
}

// Decode parses an ordered collection.
func Decode[T any](text string) ([]T, error) {
	if strings.TrimSpace(text) == "" {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// DecodeOrEmpty is Decode with the storage fallback: a malformed value is
// logged and treated as "no data for this key".
func DecodeOrEmpty[T any](log *zap.Logger, key, text string) []T {
	out, err := Decode[T](text)
	if err != nil {
		log.Warn("stored collection unreadable, treating as empty",
			zap.String("key", key),
			zap.Error(err),
		)
		return []T{}
	}
	return out
}

func EncodeOne[T any](record T) (string, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(b), nil
}

// DecodeOne parses a single record. ok is false when the text is empty.
func DecodeOne[T any](text string) (record T, ok bool, err error) {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(text) == "null" {
		return record, false, nil
	}
	if err := json.Unmarshal([]byte(text), &record); err != nil {
		return record, false, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return record, true, nil
}
