package xid

import (
	"strings"

	"github.com/google/uuid"
)

// New returns an opaque id such as "ord-3f1c9a0e6b2d4c8f9a1e2b3c4d5e6f70".
func New(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}
