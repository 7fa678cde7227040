package geom

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// DecodeAttrs reads a JSON object and returns its members in document order.
// A JSON null or an empty input yields no attributes.
func DecodeAttrs(raw []byte) ([]Attr, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("properties: not a JSON object")
	}
	var attrs []Attr
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("properties: unexpected key %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("properties: %s: %w", name, err)
		}
		attrs = append(attrs, jsonAttr(name, v))
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	return attrs, nil
}

// jsonAttr stringifies a raw JSON value as-is: strings unquoted, numbers and
// bools verbatim, objects and arrays compacted.
func jsonAttr(name string, v json.RawMessage) Attr {
	v = bytes.TrimSpace(v)
	switch {
	case len(v) == 0 || bytes.Equal(v, []byte("null")):
		return Attr{Name: name, Null: true}
	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return Attr{Name: name, Value: s}
		}
	case v[0] == '{' || v[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err == nil {
			return Attr{Name: name, Value: buf.String()}
		}
	}
	return Attr{Name: name, Value: string(v)}
}

// ValueAttr stringifies a value scanned from a database driver. Driver
// types are unwrapped through driver.Valuer, fmt.Stringer or json.Marshaler
// before falling back to fmt.
func ValueAttr(name string, v any) Attr {
	switch t := v.(type) {
	case nil:
		return Attr{Name: name, Null: true}
	case string:
		return Attr{Name: name, Value: t}
	case []byte:
		return Attr{Name: name, Value: string(t)}
	case bool:
		return Attr{Name: name, Value: strconv.FormatBool(t)}
	case float32:
		return Attr{Name: name, Value: strconv.FormatFloat(float64(t), 'g', -1, 32)}
	case float64:
		return Attr{Name: name, Value: strconv.FormatFloat(t, 'g', -1, 64)}
	case time.Time:
		return Attr{Name: name, Value: t.Format(time.RFC3339)}
	case map[string]any, []any:
		bs, err := json.Marshal(t)
		if err == nil {
			return Attr{Name: name, Value: string(bs)}
		}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Attr{Name: name, Value: fmt.Sprint(t)}
	case [16]byte:
		return Attr{Name: name, Value: formatUUID(t)}
	case driver.Valuer:
		if dv, err := t.Value(); err == nil {
			if _, again := dv.(driver.Valuer); !again {
				return ValueAttr(name, dv)
			}
		}
	}
	switch t := v.(type) {
	case fmt.Stringer:
		return Attr{Name: name, Value: t.String()}
	case json.Marshaler:
		if bs, err := t.MarshalJSON(); err == nil {
			return jsonAttr(name, bs)
		}
	}
	return Attr{Name: name, Value: fmt.Sprint(v)}
}

// formatUUID renders 16 bytes in the canonical 8-4-4-4-12 form.
func formatUUID(b [16]byte) string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
