package robtop

import (
	"bytes"
	"crypto/aes"
	"fmt"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
)

// macSaveKey is the AES-256 key macOS builds use for save files.
var macSaveKey = []byte("ipu9TUv54yv]isFMh5@;t.5w34E2Ry@{")

// DecodeMacSave decrypts a macOS save file (AES-256-ECB, PKCS#7) into plist
// XML.
func DecodeMacSave(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(macSaveKey)
	if err != nil {
		return nil, err
	}
	size := block.BlockSize()
	if len(data) == 0 || len(data)%size != 0 {
		return nil, apperrors.New(apperrors.CodeDecode, fmt.Sprintf("decode mac save: length %d is not a multiple of %d", len(data), size))
	}
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += size {
		block.Decrypt(out[i:i+size], data[i:i+size])
	}
	pad := int(out[len(out)-1])
	if pad == 0 || pad > size || pad > len(out) {
		return nil, apperrors.New(apperrors.CodeDecode, "decode mac save: bad padding")
	}
	if !bytes.Equal(out[len(out)-pad:], bytes.Repeat([]byte{byte(pad)}, pad)) {
		return nil, apperrors.New(apperrors.CodeDecode, "decode mac save: bad padding")
	}
	return out[:len(out)-pad], nil
}

// EncodeMacSave encrypts plist XML the way macOS builds store it.
func EncodeMacSave(xml []byte) ([]byte, error) {
	block, err := aes.NewCipher(macSaveKey)
	if err != nil {
		return nil, err
	}
	size := block.BlockSize()
	pad := size - len(xml)%size
	plain := make([]byte, 0, len(xml)+pad)
	plain = append(plain, xml...)
	plain = append(plain, bytes.Repeat([]byte{byte(pad)}, pad)...)
	out := make([]byte, len(plain))
	for i := 0; i < len(plain); i += size {
		block.Encrypt(out[i:i+size], plain[i:i+size])
	}
	return out, nil
}
