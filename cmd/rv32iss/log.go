package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ethereum/go-ethereum/log"
)

// newLogger mirrors the teacher's logfmt-over-slog setup: a single
// logger construction point so run/debug agree on format and level.
func newLogger(w io.Writer, lvl slog.Level) log.Logger {
	return log.NewLogger(log.LogfmtHandlerWithLevel(w, lvl))
}

// hexU32 lazy-formats a register/PC value as zero-padded hex for
// structured log attributes, avoiding fmt.Sprintf at every call site
// that never ends up logged at the active level.
type hexU32 uint32

func (v hexU32) String() string { return fmt.Sprintf("%08x", uint32(v)) }

func (v hexU32) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
