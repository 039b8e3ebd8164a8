package model

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
)

// Blob is an immutable serialized model. The length travels with the bytes,
// so there is no separate length value that could drift from the data.
type Blob struct {
	data string
}

// NewBlob copies b into a Blob. Later changes to b do not affect the Blob.
func NewBlob(b []byte) Blob {
	return Blob{data: string(b)}
}

// Len returns the number of bytes in the blob.
func (b Blob) Len() int {
	return len(b.data)
}

// IsZero reports whether the blob holds no bytes.
func (b Blob) IsZero() bool {
	return len(b.data) == 0
}

// Bytes returns a fresh copy of the blob contents.
func (b Blob) Bytes() []byte {
	return []byte(b.data)
}

// Reader returns a reader over the blob contents.
func (b Blob) Reader() io.Reader {
	return strings.NewReader(b.data)
}

// WriteTo writes the blob to w.
func (b Blob) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, b.data)
	return int64(n), err
}

// SHA256 returns the hex-encoded SHA-256 digest of the blob.
func (b Blob) SHA256() string {
	sum := sha256.Sum256([]byte(b.data))
	return hex.EncodeToString(sum[:])
}
