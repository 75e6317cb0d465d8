package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Extra holds the fields of a backend record this client does not model. They
// are written back verbatim when the record is marshalled.
type Extra map[string]json.RawMessage

type fields map[string]json.RawMessage

func decodeFields(data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f, nil
}

// take decodes the first non-null key present into dst and drops every listed
// key from f.
func (f fields) take(dst any, keys ...string) error {
	found := false
	for _, k := range keys {
		raw, ok := f[k]
		if !ok {
			continue
		}
		delete(f, k)
		if found || isNull(raw) {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		found = true
	}
	return nil
}

func (f fields) extra() Extra {
	if len(f) == 0 {
		return nil
	}
	return Extra(f)
}

func encodeFields(extra Extra) fields {
	f := make(fields, len(extra)+8)
	for k, v := range extra {
		f[k] = v
	}
	return f
}

func (f fields) put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	f[key] = raw
	return nil
}

func (f fields) putIf(ok bool, key string, v any) error {
	if !ok {
		return nil
	}
	return f.put(key, v)
}

func (f fields) marshal() ([]byte, error) {
	return json.Marshal(map[string]json.RawMessage(f))
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
