// Package editor parses and rebuilds decoded level object strings.
//
// A level string is a header followed by objects, each terminated by ";".
// Every segment is a comma separated list of alternating keys and values.
package editor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/louisbranch/geometrydash/internal/robtop"
)

// Object property keys with typed accessors.
const (
	PropID       = 1
	PropX        = 2
	PropY        = 3
	PropFlipX    = 4
	PropFlipY    = 5
	PropRotation = 6
	PropGroups   = 57
)

// Header holds the level settings segment. Keys are strings like "kA13".
type Header struct {
	keys   []string
	values map[string]string
}

// Get returns the value of a header key.
func (h *Header) Get(key string) (string, bool) {
	v, ok := h.values[key]
	return v, ok
}

// Set stores a header key, keeping first-seen order.
func (h *Header) Set(key, value string) {
	if h.values == nil {
		h.values = map[string]string{}
	}
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Keys returns header keys in order.
func (h *Header) Keys() []string {
	return append([]string(nil), h.keys...)
}

// Object is one placed editor object. Unknown properties are preserved.
type Object struct {
	keys  []int
	props map[int]string
}

// NewObject places object id at x, y.
func NewObject(id int, x, y float64) *Object {
	o := &Object{}
	o.SetInt(PropID, id)
	o.SetFloat(PropX, x)
	o.SetFloat(PropY, y)
	return o
}

// Get returns a raw property value.
func (o *Object) Get(key int) (string, bool) {
	v, ok := o.props[key]
	return v, ok
}

// Set stores a raw property value.
func (o *Object) Set(key int, value string) {
	if o.props == nil {
		o.props = map[int]string{}
	}
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = value
}

// SetInt stores an integer property.
func (o *Object) SetInt(key, value int) {
	o.Set(key, strconv.Itoa(value))
}

// SetFloat stores a numeric property in the game's shortest form.
func (o *Object) SetFloat(key int, value float64) {
	o.Set(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// Keys returns property keys in order.
func (o *Object) Keys() []int {
	return append([]int(nil), o.keys...)
}

func (o *Object) float(key int) float64 {
	f, _ := strconv.ParseFloat(o.props[key], 64)
	return f
}

// ID is the object type.
func (o *Object) ID() int {
	n, _ := strconv.Atoi(o.props[PropID])
	return n
}

func (o *Object) X() float64        { return o.float(PropX) }
func (o *Object) Y() float64        { return o.float(PropY) }
func (o *Object) Rotation() float64 { return o.float(PropRotation) }

// Groups returns the object's group IDs.
func (o *Object) Groups() []int {
	raw := o.props[PropGroups]
	if raw == "" {
		return nil
	}
	var out []int
	for _, part := range strings.Split(raw, ".") {
		if n, err := strconv.Atoi(part); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// SetGroups replaces the object's groups. Duplicates are dropped and the
// rest sorted.
func (o *Object) SetGroups(groups ...int) {
	seen := map[int]bool{}
	var ids []int
	for _, g := range groups {
		if g > 0 && !seen[g] {
			seen[g] = true
			ids = append(ids, g)
		}
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, g := range ids {
		parts[i] = strconv.Itoa(g)
	}
	o.Set(PropGroups, strings.Join(parts, "."))
}

// Level is a parsed level string.
type Level struct {
	Header  Header
	Objects []*Object
}

// Parse reads plain level text. Encoded data is decoded first.
func Parse(data string) (*Level, error) {
	plain, err := robtop.DecodeLevelData(data)
	if err != nil {
		return nil, err
	}
	// The first segment is the header, even when empty.
	segments := strings.Split(plain, ";")
	level := &Level{}
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		parts := strings.Split(segment, ",")
		if len(parts)%2 != 0 {
			return nil, fmt.Errorf("segment %d: odd number of fields", i)
		}
		if i == 0 {
			for j := 0; j < len(parts); j += 2 {
				level.Header.Set(parts[j], parts[j+1])
			}
			continue
		}
		obj := &Object{}
		for j := 0; j < len(parts); j += 2 {
			key, err := strconv.Atoi(parts[j])
			if err != nil {
				return nil, fmt.Errorf("segment %d: property key %q: %w", i, parts[j], err)
			}
			obj.Set(key, parts[j+1])
		}
		level.Objects = append(level.Objects, obj)
	}
	return level, nil
}

// Dump renders the level back to plain text. Keys keep parse order and new
// keys follow in the order they were set.
func (l *Level) Dump() string {
	var b strings.Builder
	for i, key := range l.Header.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(key)
		b.WriteByte(',')
		b.WriteString(l.Header.values[key])
	}
	b.WriteByte(';')
	for _, obj := range l.Objects {
		for i, key := range obj.keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(key))
			b.WriteByte(',')
			b.WriteString(obj.props[key])
		}
		b.WriteByte(';')
	}
	return b.String()
}

// Encode dumps and compresses the level for upload or saving.
func (l *Level) Encode() (string, error) {
	return robtop.EncodeLevelData(l.Dump())
}

// ByGroup returns the objects tagged with group.
func (l *Level) ByGroup(group int) []*Object {
	var out []*Object
	for _, obj := range l.Objects {
		for _, g := range obj.Groups() {
			if g == group {
				out = append(out, obj)
				break
			}
		}
	}
	return out
}

// FreeGroup returns the lowest group ID no object uses.
func (l *Level) FreeGroup() int {
	used := map[int]bool{}
	for _, obj := range l.Objects {
		for _, g := range obj.Groups() {
			used[g] = true
		}
	}
	for g := 1; ; g++ {
		if !used[g] {
			return g
		}
	}
}
