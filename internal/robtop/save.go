package robtop

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
)

// DecodeSave turns Windows save-file bytes into plist XML. When xor is set
// every byte is first XORed with SaveKey (on-disk files); cloud save strings
// are not XORed.
func DecodeSave(data []byte, xor bool) ([]byte, error) {
	if xor {
		data = XORByte(data, SaveKey)
	}
	raw, err := DecodeBase64(string(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDecode, "decode save: base64", err)
	}
	out, err := Inflate(raw)
	if err != nil {
		return nil, fmt.Errorf("decode save: %w", err)
	}
	return out, nil
}

// EncodeSave is the inverse of DecodeSave.
func EncodeSave(xml []byte, xor bool) ([]byte, error) {
	compressed, err := Deflate(xml)
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	out := []byte(EncodeBase64(compressed))
	if xor {
		out = XORByte(out, SaveKey)
	}
	return out, nil
}

// DecodeLevelData decodes a level string. Data that is already plain object
// text is returned unchanged.
func DecodeLevelData(s string) (string, error) {
	if IsPlainLevelData(s) {
		return s, nil
	}
	out, err := DecodeSave([]byte(s), false)
	if err != nil {
		return "", fmt.Errorf("decode level data: %w", err)
	}
	return string(out), nil
}

// EncodeLevelData compresses and encodes plain level object text.
func EncodeLevelData(s string) (string, error) {
	out, err := EncodeSave([]byte(s), false)
	if err != nil {
		return "", fmt.Errorf("encode level data: %w", err)
	}
	return string(out), nil
}

// IsPlainLevelData reports whether s is already decoded level text. The
// Base64 alphabets never contain the object separators.
func IsPlainLevelData(s string) bool {
	if len(s) >= 2 && (s[:2] == "kS" || s[:2] == "kA") {
		return true
	}
	return strings.ContainsAny(s, ",;")
}
