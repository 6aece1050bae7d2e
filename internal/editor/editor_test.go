package editor

import (
	"reflect"
	"testing"

	"github.com/louisbranch/geometrydash/internal/robtop"
)

const sample = "kS38,1_40_2_125_3_255,kA13,0,kA15,0;1,1,2,15,3,15;1,8,2,45,3,15,6,90,57,2.5;"

func TestParseAndDumpRoundTrip(t *testing.T) {
	t.Parallel()

	level, err := Parse(sample)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := level.Header.Keys(); !reflect.DeepEqual(got, []string{"kS38", "kA13", "kA15"}) {
		t.Fatalf("header keys = %v", got)
	}
	if len(level.Objects) != 2 {
		t.Fatalf("objects = %d, want 2", len(level.Objects))
	}
	spike := level.Objects[1]
	if spike.ID() != 8 || spike.X() != 45 || spike.Y() != 15 || spike.Rotation() != 90 {
		t.Fatalf("spike = %v %v %v %v", spike.ID(), spike.X(), spike.Y(), spike.Rotation())
	}
	if got := spike.Groups(); !reflect.DeepEqual(got, []int{2, 5}) {
		t.Fatalf("groups = %v", got)
	}
	if got := level.Dump(); got != sample {
		t.Fatalf("dump = %q, want %q", got, sample)
	}
}

func TestParseEncodedData(t *testing.T) {
	t.Parallel()

	encoded, err := robtop.EncodeLevelData(sample)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	level, err := Parse(encoded)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	again, err := level.Encode()
	if err != nil {
		t.Fatalf("encode level: %v", err)
	}
	plain, err := robtop.DecodeLevelData(again)
	if err != nil || plain != sample {
		t.Fatalf("decoded = %q, %v", plain, err)
	}
}

func TestParseRejectsMalformedSegments(t *testing.T) {
	t.Parallel()

	for _, data := range []string{"kS38,1;1,1,2", "kS38,1;x,1;"} {
		if _, err := Parse(data); err == nil {
			t.Fatalf("Parse(%q) expected error", data)
		}
	}
}

func TestObjectsAndGroups(t *testing.T) {
	t.Parallel()

	level, err := Parse(sample)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := level.FreeGroup(); got != 1 {
		t.Fatalf("free group = %d, want 1", got)
	}
	block := NewObject(1, 75, 15.5)
	block.SetGroups(3, 1, 3)
	level.Objects = append(level.Objects, block)
	if got := level.FreeGroup(); got != 4 {
		t.Fatalf("free group = %d, want 4", got)
	}
	if got := level.ByGroup(5); len(got) != 1 || got[0].ID() != 8 {
		t.Fatalf("by group = %v", got)
	}
	want := sample + "1,1,2,75,3,15.5,57,1.3;"
	if got := level.Dump(); got != want {
		t.Fatalf("dump = %q, want %q", got, want)
	}
}

func TestHeaderlessLevelRoundTrip(t *testing.T) {
	t.Parallel()

	level := &Level{Objects: []*Object{NewObject(1, 15, 15), NewObject(8, 45, 15)}}
	dumped := level.Dump()
	if dumped != ";1,1,2,15,3,15;1,8,2,45,3,15;" {
		t.Fatalf("dump = %q", dumped)
	}
	parsed, err := Parse(dumped)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := parsed.Header.Keys(); len(got) != 0 {
		t.Fatalf("header keys = %v, want none", got)
	}
	if len(parsed.Objects) != 2 || parsed.Objects[0].ID() != 1 || parsed.Objects[1].ID() != 8 {
		t.Fatalf("objects = %d", len(parsed.Objects))
	}
	if got := parsed.Dump(); got != dumped {
		t.Fatalf("dump = %q, want %q", got, dumped)
	}

	encoded, err := level.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	fromEncoded, err := Parse(encoded)
	if err != nil {
		t.Fatalf("parse encoded: %v", err)
	}
	if got := fromEncoded.Dump(); got != dumped {
		t.Fatalf("dump = %q, want %q", got, dumped)
	}
}
