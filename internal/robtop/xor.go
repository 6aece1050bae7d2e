package robtop

// XORCipher XORs data with key repeated cyclically. It is its own inverse.
// An empty key returns a copy of data.
func XORCipher(data []byte, key string) []byte {
	out := make([]byte, len(data))
	if len(key) == 0 {
		copy(out, data)
		return out
	}
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}

// XORByte XORs every byte of data with key.
func XORByte(data []byte, key byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key
	}
	return out
}
