package robtop

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
)

// HeaderMode selects how compressed data is framed.
type HeaderMode int

// Header modes in the order Inflate tries them.
const (
	HeaderGzip HeaderMode = iota + 1
	HeaderZlib
	HeaderRaw
)

var inflateOrder = []HeaderMode{HeaderGzip, HeaderZlib, HeaderRaw}

func (m HeaderMode) String() string {
	switch m {
	case HeaderGzip:
		return "gzip"
	case HeaderZlib:
		return "zlib"
	case HeaderRaw:
		return "raw"
	}
	return fmt.Sprintf("HeaderMode(%d)", int(m))
}

// Reader returns a decompressing reader for the header mode.
func (m HeaderMode) Reader(r io.Reader) (io.ReadCloser, error) {
	switch m {
	case HeaderGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		// Saves often carry padding after the member; ignore it.
		zr.Multistream(false)
		return zr, nil
	case HeaderZlib:
		return zlib.NewReader(r)
	case HeaderRaw:
		return flate.NewReader(r), nil
	}
	return nil, fmt.Errorf("unknown header mode %d", int(m))
}

// InflateWith decompresses data using one header mode.
func InflateWith(data []byte, mode HeaderMode) ([]byte, error) {
	zr, err := mode.Reader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Inflate decompresses data trying gzip, zlib and raw deflate in turn.
// When every mode fails the returned error has code DECODE_FAILED and wraps
// the last failure.
func Inflate(data []byte) ([]byte, error) {
	var lastErr error
	for _, mode := range inflateOrder {
		out, err := InflateWith(data, mode)
		if err == nil {
			return out, nil
		}
		lastErr = fmt.Errorf("%s: %w", mode, err)
	}
	return nil, apperrors.Wrap(apperrors.CodeDecode, "inflate: no header mode succeeded", lastErr)
}

// Deflate compresses data with a gzip header at the default level.
func Deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}
