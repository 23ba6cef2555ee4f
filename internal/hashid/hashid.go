// Package hashid derives stable identifiers from content.
//
// An id is prefix + "_" + the first 16 hex characters of a SHA-256 digest
// over an ordered list of typed parts. Each part is encoded as a one-byte
// kind tag, a decimal length, a colon and the value bytes, so ("ab","c")
// and ("a","bc") never collide. Times are encoded as UTC RFC 3339 with
// nanoseconds. Two runs over identical parts always produce the same id.
package hashid

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

const digestChars = 16

// Part is one typed component of an id.
type Part struct {
	kind  byte
	value string
}

// Str is a string part.
func Str(s string) Part { return Part{kind: 's', value: s} }

// Int is an integer part.
func Int(n int64) Part { return Part{kind: 'i', value: strconv.FormatInt(n, 10)} }

// Time is a timestamp part, normalized to UTC.
func Time(t time.Time) Part {
	return Part{kind: 't', value: t.UTC().Format(time.RFC3339Nano)}
}

// Strs expands a string slice into parts, preceded by its length.
func Strs(ss []string) []Part {
	parts := make([]Part, 0, len(ss)+1)
	parts = append(parts, Int(int64(len(ss))))
	for _, s := range ss {
		parts = append(parts, Str(s))
	}
	return parts
}

// Sum returns the id for prefix and parts.
func Sum(prefix string, parts ...Part) string {
	h := sha256.New()
	h.Write([]byte(prefix))
	h.Write([]byte{0})
	for _, p := range parts {
		h.Write([]byte{p.kind})
		h.Write([]byte(strconv.Itoa(len(p.value))))
		h.Write([]byte{':'})
		h.Write([]byte(p.value))
	}
	return prefix + "_" + hex.EncodeToString(h.Sum(nil))[:digestChars]
}
