// Package robtop implements the game's ad hoc encodings: the XOR ciphers,
// padding-tolerant Base64, the gzip/zlib save codec, request checksums
// ("chk") and the password encodings ("gjp").
//
// Every function here is a pure transform. Keys and salts are fixed by the
// game client and must match it byte for byte.
package robtop
