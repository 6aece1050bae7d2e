package robtop

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// EncodeGJP encodes an account password for the gjp request parameter.
func EncodeGJP(password string) string {
	return EncodeBase64(XORCipher([]byte(password), KeyUserPassword.String()))
}

// DecodeGJP reverses EncodeGJP.
func DecodeGJP(gjp string) (string, error) {
	raw, err := DecodeBase64(gjp)
	if err != nil {
		return "", fmt.Errorf("decode gjp: %w", err)
	}
	return string(XORCipher(raw, KeyUserPassword.String())), nil
}

// EncodeGJP2 hashes a password for the gjp2 parameter used by newer
// endpoints.
func EncodeGJP2(password string) string {
	sum := sha1.Sum([]byte(password + gjp2Salt))
	return hex.EncodeToString(sum[:])
}

// LevelPassword is the copy setting of a level.
type LevelPassword struct {
	// Copyable is false when the level cannot be copied at all.
	Copyable bool
	// Password is the numeric copy password; zero means free copy.
	Password int
}

// DecodeLevelPassword parses the encoded password field of a level. Servers
// send it XOR-encrypted; a "1" marker prefix precedes real passwords.
func DecodeLevelPassword(s string) LevelPassword {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return LevelPassword{}
	}
	plain := s
	if !isDigits(s) {
		raw, err := DecodeBase64(s)
		if err != nil {
			return LevelPassword{}
		}
		plain = string(XORCipher(raw, KeyLevelPassword.String()))
	}
	switch plain {
	case "", "0":
		return LevelPassword{}
	case "1":
		return LevelPassword{Copyable: true}
	}
	if len(plain) > 1 && plain[0] == '1' {
		plain = plain[1:]
	}
	n, err := strconv.Atoi(plain)
	if err != nil {
		return LevelPassword{}
	}
	return LevelPassword{Copyable: true, Password: n}
}

// EncodeLevelPassword produces the upload form of a copy setting.
func EncodeLevelPassword(p LevelPassword) string {
	switch {
	case !p.Copyable:
		return "0"
	case p.Password == 0:
		return "1"
	}
	return EncodeBase64(XORCipher([]byte(fmt.Sprintf("1%06d", p.Password)), KeyLevelPassword.String()))
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
