// Package wire parses the delimited text responses returned by the game
// server.
package wire

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/robtop"
)

// Delimiters used by the server.
const (
	DelimObject  = ":"
	DelimComment = "~"
	DelimSong    = "~|~"
	DelimList    = "|"
	DelimSection = "#"
)

// Map is one response record keyed by numeric field index.
type Map map[int]string

// ParseMap splits "k1<d>v1<d>k2<d>v2..." into a Map. Non-numeric keys are
// skipped and a trailing key without a value is dropped.
func ParseMap(s, delim string) Map {
	parts := strings.Split(s, delim)
	m := make(Map, len(parts)/2)
	for i := 0; i+1 < len(parts); i += 2 {
		key, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			continue
		}
		m[key] = parts[i+1]
	}
	return m
}

// ParseList splits records joined by "|" and parses each one.
func ParseList(s, delim string) []Map {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	records := strings.Split(s, DelimList)
	out := make([]Map, 0, len(records))
	for _, record := range records {
		if record == "" {
			continue
		}
		out = append(out, ParseMap(record, delim))
	}
	return out
}

// Join renders m back into delimited form with ascending keys.
func (m Map) Join(delim string) string {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	parts := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, strconv.Itoa(k), m[k])
	}
	return strings.Join(parts, delim)
}

// Has reports whether the field is present.
func (m Map) Has(key int) bool {
	_, ok := m[key]
	return ok
}

// String returns the raw field value.
func (m Map) String(key int) string {
	return m[key]
}

// Int returns the field as an int, zero when missing or malformed.
func (m Map) Int(key int) int {
	n, err := strconv.Atoi(strings.TrimSpace(m[key]))
	if err != nil {
		return 0
	}
	return n
}

// Int64 returns the field as an int64, zero when missing or malformed.
func (m Map) Int64(key int) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(m[key]), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Float returns the field as a float64, zero when missing or malformed.
func (m Map) Float(key int) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(m[key]), 64)
	if err != nil {
		return 0
	}
	return f
}

// Bool reports whether the field is a positive integer.
func (m Map) Bool(key int) bool {
	return m.Int(key) > 0
}

// Base64 returns the field decoded from Base64, empty when invalid.
func (m Map) Base64(key int) string {
	return robtop.DecodeBase64String(m[key])
}

// Unescape returns the field URL-decoded, or raw when decoding fails.
func (m Map) Unescape(key int) string {
	value, err := url.QueryUnescape(m[key])
	if err != nil {
		return m[key]
	}
	return value
}

// Sections splits a response body on "#".
func Sections(body string) []string {
	return strings.Split(body, DelimSection)
}

// Section returns section i or the empty string.
func Section(sections []string, i int) string {
	if i < 0 || i >= len(sections) {
		return ""
	}
	return sections[i]
}

// PageInfo is the "total:offset:amount" pagination trailer.
type PageInfo struct {
	Total  int
	Offset int
	Amount int
}

// Page parses a pagination trailer. Missing parts are zero.
func Page(s string) PageInfo {
	parts := strings.Split(strings.TrimSpace(s), ":")
	values := [3]int{}
	for i := 0; i < len(parts) && i < len(values); i++ {
		n, err := strconv.Atoi(parts[i])
		if err == nil {
			values[i] = n
		}
	}
	return PageInfo{Total: values[0], Offset: values[1], Amount: values[2]}
}

// HasMore reports whether further pages exist.
func (p PageInfo) HasMore() bool {
	return p.Amount > 0 && p.Offset+p.Amount < p.Total
}

// Creator is an entry of the creators section of level search results.
type Creator struct {
	PlayerID  int
	Name      string
	AccountID int
}

// ParseCreators parses "playerID:name:accountID" entries joined by "|".
func ParseCreators(s string) map[int]Creator {
	out := make(map[int]Creator)
	for _, entry := range strings.Split(s, DelimList) {
		parts := strings.Split(entry, ":")
		if len(parts) < 2 {
			continue
		}
		playerID, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		creator := Creator{PlayerID: playerID, Name: parts[1]}
		if len(parts) > 2 {
			creator.AccountID, _ = strconv.Atoi(parts[2])
		}
		out[playerID] = creator
	}
	return out
}

// Sentinel returns the integer value of a failure body such as "-1".
// ok is false for any body that is not a non-positive integer.
func Sentinel(body string) (value int, ok bool) {
	body = strings.TrimSpace(body)
	if body == "" {
		return 0, false
	}
	n, err := strconv.Atoi(body)
	if err != nil || n > 0 {
		return 0, false
	}
	return n, true
}

// SentinelTable maps sentinel values of one endpoint to error codes.
type SentinelTable map[int]apperrors.Code

// Check returns a typed error when body is a sentinel. Values missing from
// the table map to MISSING_ACCESS, the server's generic refusal.
func (t SentinelTable) Check(endpoint, body string) error {
	value, ok := Sentinel(body)
	if !ok {
		if strings.TrimSpace(body) == "" {
			return apperrors.WithMetadata(apperrors.CodeNothingFound, fmt.Sprintf("%s: empty response", endpoint), map[string]string{"endpoint": endpoint})
		}
		return nil
	}
	code, found := t[value]
	if !found {
		code = apperrors.CodeMissingAccess
	}
	return apperrors.WithMetadata(code, fmt.Sprintf("%s: server returned %d", endpoint, value), map[string]string{
		"endpoint": endpoint,
		"sentinel": strconv.Itoa(value),
	})
}
