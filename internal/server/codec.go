package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/platform/httpx"
	"github.com/louisbranch/geometrydash/internal/robtop"
)

// maxCodecBody bounds codec payloads; real save files stay well below it.
const maxCodecBody = 64 << 20

// codecOp transforms a request body. xor selects the Windows save dialect.
type codecOp struct {
	contentType string
	run         func(body []byte, xor bool) ([]byte, error)
}

var codecOps = map[string]codecOp{
	"save-decode": {
		contentType: "application/xml; charset=utf-8",
		run:         robtop.DecodeSave,
	},
	"save-encode": {
		contentType: "application/octet-stream",
		run:         robtop.EncodeSave,
	},
	"level-decode": {
		contentType: "text/plain; charset=utf-8",
		run:         textOp(robtop.DecodeLevelData),
	},
	"level-encode": {
		contentType: "text/plain; charset=utf-8",
		run:         textOp(robtop.EncodeLevelData),
	},
	"gjp-encode": {
		contentType: "text/plain; charset=utf-8",
		run: textOp(func(s string) (string, error) {
			return robtop.EncodeGJP(s), nil
		}),
	},
	"gjp-decode": {
		contentType: "text/plain; charset=utf-8",
		run:         textOp(robtop.DecodeGJP),
	},
}

func textOp(fn func(string) (string, error)) func([]byte, bool) ([]byte, error) {
	return func(body []byte, _ bool) ([]byte, error) {
		out, err := fn(strings.TrimSpace(string(body)))
		return []byte(out), err
	}
}

// handleCodec runs one codec operation over the raw request body. Save
// operations take ?xor=false for the unencrypted cloud dialect.
func (s *Server) handleCodec(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("op")
	op, ok := codecOps[name]
	if !ok {
		httpx.WriteError(w, apperrors.WithMetadata(apperrors.CodeNotFound, "unknown codec operation", map[string]string{"op": name}))
		return
	}
	xor := true
	if raw := strings.TrimSpace(r.URL.Query().Get("xor")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.WriteError(w, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "xor must be a boolean", map[string]string{"xor": raw}))
			return
		}
		xor = v
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCodecBody))
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeInvalidArgument, "read request body", err))
		return
	}
	if len(body) == 0 {
		httpx.WriteError(w, apperrors.New(apperrors.CodeInvalidArgument, "request body is required"))
		return
	}
	out, err := op.run(body, xor)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeUnknown {
			err = apperrors.Wrap(apperrors.CodeDecode, err.Error(), err)
		}
		httpx.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", op.contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
