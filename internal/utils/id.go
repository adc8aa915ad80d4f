package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync/atomic"
)

var connSeq atomic.Uint64

// NewConnID returns an identifier for a transport connection. The sequence
// prefix keeps ids unique for the life of the process, so they are never reused.
func NewConnID() string {
	seq := strconv.FormatUint(connSeq.Add(1), 10)

	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "c" + seq
	}
	return "c" + seq + "-" + hex.EncodeToString(buf)
}
