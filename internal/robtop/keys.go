package robtop

import "strconv"

// Key is a numeric XOR key. Ciphers use its decimal string form.
type Key int

// Keys used by the game client.
const (
	KeyMessage          Key = 14251
	KeyQuests           Key = 19847
	KeyLevelPassword    Key = 26364
	KeyComment          Key = 29481
	KeyUserPassword     Key = 37526
	KeyLevelLeaderboard Key = 39673
	KeyLevel            Key = 41274
	KeyLikeRate         Key = 58281
	KeyChests           Key = 59182
	KeyUserLeaderboard  Key = 85271
)

// String returns the decimal key text fed to XORCipher.
func (k Key) String() string {
	return strconv.Itoa(int(k))
}

// Salt is appended to checksum input before hashing.
type Salt string

// Salts used by the game client.
const (
	SaltLevel            Salt = "xI25fpAapCQg"
	SaltComment          Salt = "xPT6iUrtws0J"
	SaltLikeRate         Salt = "ysg6pUrtjn0J"
	SaltUserLeaderboard  Salt = "xI35fsAapCRg"
	SaltLevelLeaderboard Salt = "yPg6pUrtWn0J"
	SaltQuests           Salt = "oC36fpYaPtdg"
	SaltChests           Salt = "pC26fpYaQCtg"
)

// SaveKey is the single-byte XOR key applied to Windows save files.
const SaveKey byte = 11

// gjp2Salt is appended to passwords before hashing for gjp2.
const gjp2Salt = "mI29fmAnxgTs"
