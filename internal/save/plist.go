package save

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
)

// Value is one plist value: *Dict, string, int64, float64, bool, or []Value.
type Value any

// Dict is a plist dictionary that preserves key order.
type Dict struct {
	keys   []string
	values map[string]Value
}

// NewDict returns an empty dictionary.
func NewDict() *Dict {
	return &Dict{values: map[string]Value{}}
}

// Len returns the number of keys.
func (d *Dict) Len() int {
	return len(d.keys)
}

// Keys returns keys in insertion order.
func (d *Dict) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Set stores v under key, appending new keys at the end.
func (d *Dict) Set(key string, v Value) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Delete removes key.
func (d *Dict) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// String returns key as text. Numbers are formatted.
func (d *Dict) String(key string) string {
	switch v := d.values[key].(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// Int returns key as an integer. The game stores some numbers as strings.
func (d *Dict) Int(key string) int64 {
	switch v := d.values[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// Bool returns key as a boolean.
func (d *Dict) Bool(key string) bool {
	v, _ := d.values[key].(bool)
	return v
}

// Dict returns the nested dictionary under key.
func (d *Dict) Dict(key string) (*Dict, bool) {
	v, ok := d.values[key].(*Dict)
	return v, ok
}

// tag names, abbreviated and standard
var tagKinds = map[string]string{
	"d": "dict", "dict": "dict",
	"k": "key", "key": "key",
	"s": "string", "string": "string",
	"i": "integer", "integer": "integer",
	"r": "real", "real": "real",
	"t": "true", "true": "true",
	"f": "false", "false": "false",
	"a": "array", "array": "array",
}

// ParsePlist decodes plist XML in either tag dialect. The root dictionary is
// returned.
func ParsePlist(data []byte) (*Dict, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, apperrors.New(apperrors.CodeDecode, "plist: no root dictionary")
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDecode, "plist: read token", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local == "plist" {
			continue
		}
		v, err := parseValue(dec, start)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDecode, "plist", err)
		}
		root, ok := v.(*Dict)
		if !ok {
			return nil, apperrors.New(apperrors.CodeDecode, "plist: root is not a dictionary")
		}
		return root, nil
	}
}

func parseValue(dec *xml.Decoder, start xml.StartElement) (Value, error) {
	kind, ok := tagKinds[start.Name.Local]
	if !ok {
		return nil, fmt.Errorf("unknown tag <%s>", start.Name.Local)
	}
	switch kind {
	case "dict":
		return parseDict(dec)
	case "array":
		return parseArray(dec)
	case "true", "false":
		if err := dec.Skip(); err != nil {
			return nil, err
		}
		return kind == "true", nil
	}
	text, err := readText(dec)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "integer":
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integer %q: %w", text, err)
		}
		return n, nil
	case "real":
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("real %q: %w", text, err)
		}
		return f, nil
	case "key":
		return nil, fmt.Errorf("key %q outside dictionary", text)
	}
	return text, nil
}

func parseDict(dec *xml.Decoder) (*Dict, error) {
	d := NewDict()
	var key *string
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if key != nil {
				return nil, fmt.Errorf("key %q has no value", *key)
			}
			return d, nil
		case xml.StartElement:
			if tagKinds[t.Name.Local] == "key" {
				if key != nil {
					return nil, fmt.Errorf("key %q has no value", *key)
				}
				text, err := readText(dec)
				if err != nil {
					return nil, err
				}
				key = &text
				continue
			}
			if key == nil {
				return nil, fmt.Errorf("value <%s> without key", t.Name.Local)
			}
			v, err := parseValue(dec, t)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", *key, err)
			}
			d.Set(*key, v)
			key = nil
		}
	}
}

func parseArray(dec *xml.Decoder) ([]Value, error) {
	var out []Value
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return out, nil
		case xml.StartElement:
			v, err := parseValue(dec, t)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
}

func readText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			return b.String(), nil
		case xml.StartElement:
			return "", fmt.Errorf("unexpected <%s> in text", t.Name.Local)
		}
	}
}

// MarshalPlist renders root with the game's abbreviated tags.
func MarshalPlist(root *Dict) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0"?><plist version="1.0" gjver="2.0">`)
	writeValue(&buf, root)
	buf.WriteString(`</plist>`)
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v Value) {
	switch v := v.(type) {
	case *Dict:
		if v.Len() == 0 {
			buf.WriteString("<d />")
			return
		}
		buf.WriteString("<d>")
		for _, key := range v.keys {
			buf.WriteString("<k>")
			escape(buf, key)
			buf.WriteString("</k>")
			writeValue(buf, v.values[key])
		}
		buf.WriteString("</d>")
	case []Value:
		buf.WriteString("<a>")
		for _, item := range v {
			writeValue(buf, item)
		}
		buf.WriteString("</a>")
	case string:
		buf.WriteString("<s>")
		escape(buf, v)
		buf.WriteString("</s>")
	case int64:
		buf.WriteString("<i>" + strconv.FormatInt(v, 10) + "</i>")
	case int:
		buf.WriteString("<i>" + strconv.Itoa(v) + "</i>")
	case float64:
		buf.WriteString("<r>" + strconv.FormatFloat(v, 'f', -1, 64) + "</r>")
	case bool:
		if v {
			buf.WriteString("<t />")
		} else {
			buf.WriteString("<f />")
		}
	}
}

func escape(buf *bytes.Buffer, s string) {
	_ = xml.EscapeText(buf, []byte(s))
}

// levelKeys returns the "k_N" keys of an array-like dictionary in index
// order.
func levelKeys(d *Dict) []string {
	var keys []string
	for _, k := range d.keys {
		if strings.HasPrefix(k, "k_") {
			keys = append(keys, k)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(strings.TrimPrefix(keys[i], "k_"))
		b, _ := strconv.Atoi(strings.TrimPrefix(keys[j], "k_"))
		return a < b
	})
	return keys
}
