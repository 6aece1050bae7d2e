package robtop

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// CHK builds the request checksum: the stringified values are concatenated,
// the salt appended, the SHA-1 hex digest XORed with key, and the result
// Base64 encoded.
func CHK(values []any, key Key, salt Salt) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(stringify(v))
	}
	b.WriteString(string(salt))
	sum := sha1.Sum([]byte(b.String()))
	digest := hex.EncodeToString(sum[:])
	return EncodeBase64(XORCipher([]byte(digest), key.String()))
}

// VerifyCHK reports whether chk was produced from values with key and salt.
func VerifyCHK(chk string, values []any, key Key, salt Salt) bool {
	return chk == CHK(values, key, salt)
}

func stringify(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case bool:
		if value {
			return "1"
		}
		return "0"
	case nil:
		return ""
	default:
		return fmt.Sprint(value)
	}
}

// LevelSeed returns the "seed2" upload checksum for encoded level data. Up to
// fifty characters are sampled at an even stride.
func LevelSeed(levelData string) string {
	const samples = 50
	if len(levelData) < samples {
		return CHK([]any{levelData}, KeyLevel, SaltLevel)
	}
	step := len(levelData) / samples
	var b strings.Builder
	b.Grow(samples)
	for i := 0; i < samples; i++ {
		b.WriteByte(levelData[i*step])
	}
	return CHK([]any{b.String()}, KeyLevel, SaltLevel)
}
