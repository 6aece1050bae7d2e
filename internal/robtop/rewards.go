package robtop

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
)

const rewardPrefixLen = 5

// RewardsCHK builds the chk parameter for the quests and chests endpoints:
// five random characters followed by the XOR-encoded random number.
func RewardsCHK(key Key) string {
	return RandomString(rewardPrefixLen) + EncodeBase64(XORCipher([]byte(RandomDigits(5)), key.String()))
}

// DecodeRewards decodes a quests or chests response body into its
// colon-separated payload. The body is a five-character prefix, the encoded
// payload, then "|" and a hash.
func DecodeRewards(body string, key Key) (string, error) {
	body = strings.TrimSpace(body)
	if i := strings.IndexByte(body, '|'); i >= 0 {
		body = body[:i]
	}
	if len(body) <= rewardPrefixLen {
		return "", apperrors.New(apperrors.CodeDecode, "decode rewards: body too short")
	}
	raw, err := DecodeBase64(body[rewardPrefixLen:])
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeDecode, "decode rewards: base64", err)
	}
	return string(XORCipher(raw, key.String())), nil
}

// EncodeRewards is the inverse of DecodeRewards with a fixed hash suffix.
// It backs test fixtures for the rewards endpoints.
func EncodeRewards(payload string, key Key, hash string) string {
	return fmt.Sprintf("%s%s|%s", RandomString(rewardPrefixLen), EncodeBase64(XORCipher([]byte(payload), key.String())), hash)
}
