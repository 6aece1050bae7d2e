package wire

import (
	"errors"
	"testing"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
)

func TestParseMap(t *testing.T) {
	t.Parallel()

	m := ParseMap("1:RobTop:2:16:x:skip:3:100:9", DelimObject)
	if m.String(1) != "RobTop" || m.Int(2) != 16 || m.Int(3) != 100 {
		t.Fatalf("parsed = %#v", m)
	}
	if m.Has(9) {
		t.Fatal("trailing key without value should be dropped")
	}
	if len(m) != 3 {
		t.Fatalf("len = %d, want 3", len(m))
	}
}

func TestParseMapSongDelimiter(t *testing.T) {
	t.Parallel()

	m := ParseMap("1~|~803223~|~2~|~Xtrullor - Supernova~|~10~|~https%3A%2F%2Faudio.ngfiles.com%2F803000%2F803223_Supernova.mp3", DelimSong)
	if m.Int(1) != 803223 {
		t.Fatalf("id = %d", m.Int(1))
	}
	if got := m.Unescape(10); got != "https://audio.ngfiles.com/803000/803223_Supernova.mp3" {
		t.Fatalf("link = %q", got)
	}
}

func TestMapAccessorsTolerateBadValues(t *testing.T) {
	t.Parallel()

	m := Map{1: "abc", 2: "3.5", 3: "1", 4: "0", 5: "SGVsbG8", 6: "%zz"}
	if m.Int(1) != 0 || m.Int64(1) != 0 {
		t.Fatal("malformed ints should be zero")
	}
	if m.Float(2) != 3.5 {
		t.Fatalf("float = %v", m.Float(2))
	}
	if !m.Bool(3) || m.Bool(4) || m.Bool(99) {
		t.Fatal("bool accessors mismatch")
	}
	if m.Base64(5) != "Hello" {
		t.Fatalf("base64 = %q", m.Base64(5))
	}
	if m.Unescape(6) != "%zz" {
		t.Fatalf("unescape fallback = %q", m.Unescape(6))
	}
}

func TestJoinSortsKeys(t *testing.T) {
	t.Parallel()

	m := Map{3: "c", 1: "a", 2: "b"}
	if got := m.Join(DelimObject); got != "1:a:2:b:3:c" {
		t.Fatalf("join = %q", got)
	}
}

func TestParseListSkipsEmptyRecords(t *testing.T) {
	t.Parallel()

	list := ParseList("1:a:2:1||1:b:2:2|", DelimObject)
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[1].String(1) != "b" {
		t.Fatalf("second = %#v", list[1])
	}
	if ParseList("  ", DelimObject) != nil {
		t.Fatal("blank body should parse to nil")
	}
}

func TestPage(t *testing.T) {
	t.Parallel()

	p := Page("9999:20:10")
	if p != (PageInfo{Total: 9999, Offset: 20, Amount: 10}) {
		t.Fatalf("page = %+v", p)
	}
	if !p.HasMore() {
		t.Fatal("expected more pages")
	}
	if Page("5:0:10").HasMore() {
		t.Fatal("did not expect more pages")
	}
	if Page("") != (PageInfo{}) {
		t.Fatal("empty trailer should be zero")
	}
}

func TestSectionsAndCreators(t *testing.T) {
	t.Parallel()

	sections := Sections("levels#16:RobTop:71|4170:Viprin:2795#songs#10:0:10")
	if len(sections) != 4 {
		t.Fatalf("sections = %d", len(sections))
	}
	if Section(sections, 7) != "" {
		t.Fatal("out of range section should be empty")
	}
	creators := ParseCreators(Section(sections, 1))
	if creators[16].Name != "RobTop" || creators[16].AccountID != 71 {
		t.Fatalf("creator = %+v", creators[16])
	}
	if creators[4170].AccountID != 2795 {
		t.Fatalf("creator = %+v", creators[4170])
	}
}

func TestSentinel(t *testing.T) {
	t.Parallel()

	if v, ok := Sentinel("-1"); !ok || v != -1 {
		t.Fatalf("sentinel = %d, %v", v, ok)
	}
	if _, ok := Sentinel("1"); ok {
		t.Fatal("positive value is not a sentinel")
	}
	if _, ok := Sentinel("1:RobTop"); ok {
		t.Fatal("record body is not a sentinel")
	}
}

func TestSentinelTableCheck(t *testing.T) {
	t.Parallel()

	table := SentinelTable{-1: apperrors.CodeNothingFound, -12: apperrors.CodeAccountDisabled}
	if err := table.Check("getGJUsers20.php", "1:RobTop"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := table.Check("getGJUsers20.php", "-1")
	if !errors.Is(err, apperrors.ErrNothingFound) {
		t.Fatalf("err = %v, want nothing found", err)
	}
	err = table.Check("getGJUsers20.php", "-9")
	if !errors.Is(err, apperrors.ErrMissingAccess) {
		t.Fatalf("err = %v, want missing access", err)
	}
	err = table.Check("getGJUsers20.php", "")
	if !errors.Is(err, apperrors.ErrNothingFound) {
		t.Fatalf("empty body err = %v, want nothing found", err)
	}
}
