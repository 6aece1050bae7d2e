package robtop

import (
	"encoding/base64"
	"strings"
)

// RepairPadding fixes Base64 input the way the game does: a dangling single
// character (length%4 == 1) is dropped, otherwise '=' is appended until the
// length is a multiple of four. Surrounding whitespace and NUL bytes are
// trimmed first.
func RepairPadding(s string) string {
	s = strings.Trim(s, " \t\r\n\x00")
	switch len(s) % 4 {
	case 1:
		return s[:len(s)-1]
	case 2:
		return s + "=="
	case 3:
		return s + "="
	}
	return s
}

// DecodeBase64 decodes standard or URL-safe Base64, repairing padding.
func DecodeBase64(s string) ([]byte, error) {
	s = RepairPadding(s)
	if strings.ContainsAny(s, "+/") {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.URLEncoding.DecodeString(s)
}

// EncodeBase64 produces padded URL-safe Base64.
func EncodeBase64(data []byte) string {
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeBase64String is DecodeBase64 for text payloads. Invalid input
// decodes to the empty string, matching how the client displays corrupt
// descriptions and comments.
func DecodeBase64String(s string) string {
	data, err := DecodeBase64(s)
	if err != nil {
		return ""
	}
	return string(data)
}

// EncodeBase64String is EncodeBase64 for text payloads.
func EncodeBase64String(s string) string {
	return EncodeBase64([]byte(s))
}
