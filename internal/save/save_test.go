package save

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/robtop"
)

const managerXML = `<?xml version="1.0"?><plist version="1.0" gjver="2.0"><dict><k>playerName</k><s>RobTop</s><k>valueKeeper</k><d><k>gv_0001</k><s>1</s></d><k>bootups</k><i>42</i><k>volume</k><r>0.5</r><k>hasRP</k><t /></dict></plist>`

const levelsXML = `<?xml version="1.0"?><plist version="1.0" gjver="2.0"><dict><k>LLM_01</k><d><k>_isArr</k><t /><k>k_1</k><d><k>k2</k><s>Second</s><k>k16</k><i>3</i></d><k>k_0</k><d><k>k1</k><i>128</i><k>k2</k><s>First &amp; best</s><k>k3</k><s>aGVsbG8=</s><k>k4</k><s>kS38,1_40;</s><k>k5</k><s>RobTop</s><k>k8</k><i>1</i><k>k45</k><i>500</i></d></d><k>LLM_02</k><i>35</i></dict></plist>`

func TestParsePlistAbbreviatedTags(t *testing.T) {
	t.Parallel()

	root, err := ParsePlist([]byte(managerXML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := root.Keys(); strings.Join(got, ",") != "playerName,valueKeeper,bootups,volume,hasRP" {
		t.Fatalf("keys = %v", got)
	}
	if root.String("playerName") != "RobTop" || root.Int("bootups") != 42 || !root.Bool("hasRP") {
		t.Fatalf("values = %q %d %v", root.String("playerName"), root.Int("bootups"), root.Bool("hasRP"))
	}
	if v, _ := root.Get("volume"); v != 0.5 {
		t.Fatalf("volume = %v, want 0.5", v)
	}
	keeper, ok := root.Dict("valueKeeper")
	if !ok || keeper.Int("gv_0001") != 1 {
		t.Fatalf("valueKeeper = %+v", keeper)
	}
}

func TestParsePlistStandardTags(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>name</key>
	<string>x</string>
	<key>count</key>
	<integer>7</integer>
	<key>off</key>
	<false/>
	<key>list</key>
	<array><integer>1</integer><string>two</string></array>
</dict>
</plist>`
	root, err := ParsePlist([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if root.String("name") != "x" || root.Int("count") != 7 {
		t.Fatalf("root = %+v", root)
	}
	if v, ok := root.Get("off"); !ok || v != false {
		t.Fatalf("off = %v, %v", v, ok)
	}
	list, _ := root.Get("list")
	if items, ok := list.([]Value); !ok || len(items) != 2 || items[1] != "two" {
		t.Fatalf("list = %#v", list)
	}
}

func TestParsePlistErrors(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		`<plist><s>loose</s></plist>`,
		`<plist><d><k>a</k></d></plist>`,
		`<plist><d><i>1</i></d></plist>`,
		`<plist><d><k>a</k><i>x</i></d></plist>`,
		`<plist><d><k>a</k><zz>1</zz></d></plist>`,
	}
	for _, doc := range tests {
		if _, err := ParsePlist([]byte(doc)); !errors.Is(err, apperrors.ErrDecode) {
			t.Fatalf("ParsePlist(%q) err = %v, want decode error", doc, err)
		}
	}
}

func TestMarshalPlistRoundTrip(t *testing.T) {
	t.Parallel()

	root, err := ParsePlist([]byte(levelsXML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out := MarshalPlist(root)
	if !strings.Contains(string(out), `gjver="2.0"`) || !strings.Contains(string(out), "First &amp; best") {
		t.Fatalf("marshal = %s", out)
	}
	again, err := ParsePlist(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if string(MarshalPlist(again)) != string(out) {
		t.Fatal("marshal is not stable")
	}
}

func TestDictSetKeepsOrder(t *testing.T) {
	t.Parallel()

	d := NewDict()
	d.Set("b", "1")
	d.Set("a", int64(2))
	d.Set("b", "3")
	d.Delete("missing")
	if strings.Join(d.Keys(), ",") != "b,a" || d.String("b") != "3" {
		t.Fatalf("dict = %v %q", d.Keys(), d.String("b"))
	}
	d.Delete("b")
	if d.Len() != 1 || d.String("a") != "2" {
		t.Fatalf("after delete = %v", d.Keys())
	}
}

func TestLevelsListsEditorLevelsInOrder(t *testing.T) {
	t.Parallel()

	db, err := FromXML([]byte(managerXML), []byte(levelsXML))
	if err != nil {
		t.Fatalf("from xml: %v", err)
	}
	if db.PlayerName() != "RobTop" {
		t.Fatalf("player = %q", db.PlayerName())
	}
	levels := db.Levels()
	if len(levels) != 2 {
		t.Fatalf("len = %d, want 2", len(levels))
	}
	first := levels[0]
	if first.Name != "First & best" || first.ID != 128 || first.Description != "hello" || first.CustomSongID != 500 || first.Creator != "RobTop" {
		t.Fatalf("first = %+v", first)
	}
	if data, err := first.DecodedData(); err != nil || data != "kS38,1_40;" {
		t.Fatalf("data = %q, %v", data, err)
	}
	if levels[1].Name != "Second" || levels[1].Version != 3 {
		t.Fatalf("second = %+v", levels[1])
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	for _, opts := range []Options{{}, {Mac: true}} {
		db, err := FromXML([]byte(managerXML), []byte(levelsXML))
		if err != nil {
			t.Fatalf("from xml: %v", err)
		}
		dir := filepath.Join(t.TempDir(), "GeometryDash")
		if err := db.Save(dir, opts); err != nil {
			t.Fatalf("save (mac=%v): %v", opts.Mac, err)
		}
		loaded, err := Load(dir, opts)
		if err != nil {
			t.Fatalf("load (mac=%v): %v", opts.Mac, err)
		}
		if loaded.PlayerName() != "RobTop" || len(loaded.Levels()) != 2 {
			t.Fatalf("loaded (mac=%v) = %q, %d levels", opts.Mac, loaded.PlayerName(), len(loaded.Levels()))
		}
	}
}

func TestLoadDecodesXORFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for name, doc := range map[string]string{MainFile: managerXML, LevelsFile: levelsXML} {
		data, err := robtop.EncodeSave([]byte(doc), true)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	db, err := Load(dir, Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if db.Manager.Int("bootups") != 42 {
		t.Fatalf("bootups = %d", db.Manager.Int("bootups"))
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(t.TempDir(), Options{})
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeNotFound)
	}
}

func TestDefaultDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		p    Platform
		want string
	}{
		{Platform{GOOS: "windows", LocalAppData: "C:/Users/a/AppData/Local"}, filepath.Join("C:/Users/a/AppData/Local", "GeometryDash")},
		{Platform{GOOS: "darwin", Home: "/Users/a"}, filepath.Join("/Users/a", "Library", "Application Support", "GeometryDash")},
	}
	for _, tt := range tests {
		if got := DefaultDir(tt.p); got != tt.want {
			t.Fatalf("DefaultDir(%s) = %q, want %q", tt.p.GOOS, got, tt.want)
		}
	}
	linux := DefaultDir(Platform{GOOS: "linux", Home: "/home/a"})
	if !strings.Contains(linux, steamAppID) || !strings.HasSuffix(linux, "GeometryDash") {
		t.Fatalf("linux dir = %q", linux)
	}
}

func TestLocateHonorsEnv(t *testing.T) {
	t.Setenv("GD_SAVE_DIR", "/srv/saves")
	t.Setenv("GD_SAVE_MAC", "true")

	dir, opts, err := Locate()
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if dir != "/srv/saves" || !opts.Mac {
		t.Fatalf("locate = %q, %+v", dir, opts)
	}
}
