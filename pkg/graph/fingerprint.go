package graph

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Identity is the part of a relationship that makes it the same logical edge
// in both views.
type Identity struct {
	Source      int64 `json:"source" yaml:"source"`
	Destination int64 `json:"destination" yaml:"destination"`
	Type        int64 `json:"type" yaml:"type"`
	Group       int   `json:"group" yaml:"group"`
}

// Fingerprint is a content hash of an Identity.
type Fingerprint uint64

// Fingerprint hashes the four identity fields. It depends on nothing else, so
// the same edge has the same fingerprint in every snapshot regardless of load order.
func (id Identity) Fingerprint() Fingerprint {
	var buf [32]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(id.Source))
	binary.BigEndian.PutUint64(buf[8:16], uint64(id.Destination))
	binary.BigEndian.PutUint64(buf[16:24], uint64(id.Type))
	binary.BigEndian.PutUint64(buf[24:32], uint64(int64(id.Group)))
	return Fingerprint(xxhash.Sum64(buf[:]))
}

// String renders the identity as "source -type-> destination [group]".
func (id Identity) String() string {
	return fmt.Sprintf("%d -%d-> %d [%d]", id.Source, id.Type, id.Destination, id.Group)
}

// String returns the fingerprint as 16 hex digits.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}
