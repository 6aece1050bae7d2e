package robtop

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
)

func TestXORCipherIsSelfInverse(t *testing.T) {
	t.Parallel()

	got := XORCipher([]byte("a"), "1")
	if string(got) != "P" {
		t.Fatalf("xor = %q, want %q", got, "P")
	}
	plain := []byte("level description")
	if back := XORCipher(XORCipher(plain, "26364"), "26364"); !bytes.Equal(back, plain) {
		t.Fatalf("round trip = %q, want %q", back, plain)
	}
	if got := XORCipher(plain, ""); !bytes.Equal(got, plain) {
		t.Fatalf("empty key = %q, want copy", got)
	}
}

func TestRepairPadding(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"YWJj":     "YWJj",
		"YWI":      "YWI=",
		"YQ":       "YQ==",
		"YWJjZ":    "YWJj",
		" YWJj\n":  "YWJj",
		"YWJj\x00": "YWJj",
	}
	for in, want := range tests {
		if got := RepairPadding(in); got != want {
			t.Fatalf("RepairPadding(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeBase64AcceptsBothAlphabets(t *testing.T) {
	t.Parallel()

	std, err := DecodeBase64("+/8=")
	if err != nil {
		t.Fatalf("decode standard: %v", err)
	}
	url, err := DecodeBase64("-_8")
	if err != nil {
		t.Fatalf("decode url-safe: %v", err)
	}
	if !bytes.Equal(std, []byte{0xfb, 0xff}) || !bytes.Equal(url, std) {
		t.Fatalf("decoded = %x / %x", std, url)
	}
	if got := DecodeBase64String("YWJjZ"); got != "abc" {
		t.Fatalf("dangling char = %q, want abc", got)
	}
	if got := DecodeBase64String("!!!!"); got != "" {
		t.Fatalf("invalid input = %q, want empty", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	xml := []byte(`<?xml version="1.0"?><plist version="1.0" gjver="2.0"><dict><k>GJA_001</k><s>player</s></dict></plist>`)
	for _, xor := range []bool{true, false} {
		encoded, err := EncodeSave(xml, xor)
		if err != nil {
			t.Fatalf("encode (xor=%v): %v", xor, err)
		}
		decoded, err := DecodeSave(encoded, xor)
		if err != nil {
			t.Fatalf("decode (xor=%v): %v", xor, err)
		}
		if !bytes.Equal(decoded, xml) {
			t.Fatalf("round trip (xor=%v) = %q", xor, decoded)
		}
	}
}

func TestInflateFallsBackThroughHeaderModes(t *testing.T) {
	t.Parallel()

	payload := []byte(strings.Repeat("1,1,2,15,3,15;", 20))

	var zbuf bytes.Buffer
	zw := zlib.NewWriter(&zbuf)
	_, _ = zw.Write(payload)
	_ = zw.Close()

	var rbuf bytes.Buffer
	fw, err := flate.NewWriter(&rbuf, flate.BestCompression)
	if err != nil {
		t.Fatalf("flate writer: %v", err)
	}
	_, _ = fw.Write(payload)
	_ = fw.Close()

	for name, data := range map[string][]byte{"zlib": zbuf.Bytes(), "raw": rbuf.Bytes()} {
		got, err := Inflate(data)
		if err != nil {
			t.Fatalf("inflate %s: %v", name, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("inflate %s mismatch", name)
		}
	}
}

func TestInflateFailsWithDecodeCode(t *testing.T) {
	t.Parallel()

	_, err := Inflate([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	if !errors.Is(err, apperrors.ErrDecode) {
		t.Fatalf("err = %v, want decode failure", err)
	}
	if _, err := DecodeSave([]byte("%%%%"), false); !errors.Is(err, apperrors.ErrDecode) {
		t.Fatalf("bad base64 err = %v, want decode failure", err)
	}
}

func TestLevelDataRoundTrip(t *testing.T) {
	t.Parallel()

	plain := "kS38,1_40_2_125_3_255_11_255_12_255_13_255_4_-1_6_1000_7_1_15_1_18_0_8_1|,kA13,0;1,1,2,15,3,15;"
	encoded, err := EncodeLevelData(plain)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(encoded, "H4sIA") {
		t.Fatalf("encoded level should carry a gzip header, got %q", encoded[:8])
	}
	decoded, err := DecodeLevelData(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != plain {
		t.Fatalf("decoded = %q", decoded)
	}
	same, err := DecodeLevelData(plain)
	if err != nil || same != plain {
		t.Fatalf("plain data should pass through, got %q, %v", same, err)
	}
}

func TestHeaderlessLevelDataIsPlain(t *testing.T) {
	t.Parallel()

	for _, s := range []string{";1,1,2,15,3,15;", "1,1,2,15,3,15;"} {
		if !IsPlainLevelData(s) {
			t.Fatalf("IsPlainLevelData(%q) = false, want true", s)
		}
	}
	encoded, err := EncodeLevelData(";1,1,2,15,3,15;")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if IsPlainLevelData(encoded) {
		t.Fatalf("IsPlainLevelData(%q) = true, want false", encoded)
	}
}

func TestMacSaveRoundTrip(t *testing.T) {
	t.Parallel()

	for _, xml := range [][]byte{[]byte("<plist/>"), bytes.Repeat([]byte("x"), 32)} {
		encrypted, err := EncodeMacSave(xml)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		if len(encrypted)%16 != 0 {
			t.Fatalf("ciphertext length %d not block aligned", len(encrypted))
		}
		decrypted, err := DecodeMacSave(encrypted)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if !bytes.Equal(decrypted, xml) {
			t.Fatalf("decrypted = %q", decrypted)
		}
	}
	if _, err := DecodeMacSave([]byte("short")); !errors.Is(err, apperrors.ErrDecode) {
		t.Fatalf("err = %v, want decode failure", err)
	}
}

func TestCHKKnownVector(t *testing.T) {
	t.Parallel()

	got := CHK([]any{4284, true, "1"}, KeyLikeRate, SaltLikeRate)
	want := "VwgFXFIACwtcBlBaBwBQBwoECgcFDwJaAQNaAVwCDA9RWwQBDQdcUg=="
	if got != want {
		t.Fatalf("chk = %q, want %q", got, want)
	}
	if !VerifyCHK(got, []any{"4284", "1", 1}, KeyLikeRate, SaltLikeRate) {
		t.Fatal("expected stringified values to verify")
	}
}

func TestCHKDecodesToSaltedDigest(t *testing.T) {
	t.Parallel()

	chk := CHK([]any{"name", 10, nil}, KeyComment, SaltComment)
	raw, err := DecodeBase64(chk)
	if err != nil {
		t.Fatalf("decode chk: %v", err)
	}
	sum := sha1.Sum([]byte("name10" + string(SaltComment)))
	if got := string(XORCipher(raw, KeyComment.String())); got != hex.EncodeToString(sum[:]) {
		t.Fatalf("digest = %q", got)
	}
}

func TestLevelSeedSamplesEvenly(t *testing.T) {
	t.Parallel()

	data := strings.Repeat("ab", 50)
	if got, want := LevelSeed(data), CHK([]any{strings.Repeat("a", 50)}, KeyLevel, SaltLevel); got != want {
		t.Fatalf("seed = %q, want %q", got, want)
	}
	if got, want := LevelSeed("short"), CHK([]any{"short"}, KeyLevel, SaltLevel); got != want {
		t.Fatalf("short seed = %q, want %q", got, want)
	}
}

func TestGJP(t *testing.T) {
	t.Parallel()

	if got := EncodeGJP("hunter2"); got != "W0JbRlNBBQ==" {
		t.Fatalf("gjp = %q", got)
	}
	back, err := DecodeGJP("W0JbRlNBBQ")
	if err != nil {
		t.Fatalf("decode gjp: %v", err)
	}
	if back != "hunter2" {
		t.Fatalf("decoded = %q", back)
	}
	sum := sha1.Sum([]byte("hunter2mI29fmAnxgTs"))
	if got := EncodeGJP2("hunter2"); got != hex.EncodeToString(sum[:]) {
		t.Fatalf("gjp2 = %q", got)
	}
}

func TestLevelPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want LevelPassword
	}{
		{"", LevelPassword{}},
		{"0", LevelPassword{}},
		{"1", LevelPassword{Copyable: true}},
		{"Aw==", LevelPassword{Copyable: true}},
		{"1000123", LevelPassword{Copyable: true, Password: 123}},
		{EncodeLevelPassword(LevelPassword{Copyable: true, Password: 987654}), LevelPassword{Copyable: true, Password: 987654}},
	}
	for _, tt := range tests {
		if got := DecodeLevelPassword(tt.in); got != tt.want {
			t.Fatalf("DecodeLevelPassword(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if got := EncodeLevelPassword(LevelPassword{}); got != "0" {
		t.Fatalf("no copy = %q", got)
	}
	if got := EncodeLevelPassword(LevelPassword{Copyable: true}); got != "1" {
		t.Fatalf("free copy = %q", got)
	}
}

func TestRewardsRoundTrip(t *testing.T) {
	t.Parallel()

	payload := "SaKuJ:1234:49587:S123:71:3600:1,1,200,10,Orb Finder"
	body := EncodeRewards(payload, KeyQuests, "deadbeef")
	got, err := DecodeRewards(body, KeyQuests)
	if err != nil {
		t.Fatalf("decode rewards: %v", err)
	}
	if got != payload {
		t.Fatalf("payload = %q", got)
	}
	if _, err := DecodeRewards("abc", KeyQuests); !errors.Is(err, apperrors.ErrDecode) {
		t.Fatalf("err = %v, want decode failure", err)
	}
	chk := RewardsCHK(KeyChests)
	if len(chk) < 6 {
		t.Fatalf("chk too short: %q", chk)
	}
}

func TestRandomHelpers(t *testing.T) {
	t.Parallel()

	if got := RandomString(10); len(got) != 10 {
		t.Fatalf("rs length = %d", len(got))
	}
	udid := NewUDID()
	if len(udid) != 21 || udid[0] != 'S' || !isDigits(udid[1:]) {
		t.Fatalf("udid = %q", udid)
	}
}
