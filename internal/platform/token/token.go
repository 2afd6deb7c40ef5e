// Package token generates the opaque identifiers handed to guests.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// syncSessionPrefix tags deterministic session ids minted by the sync so they
// can never collide with random login sessions.
const syncSessionPrefix = "sync-"

// NewSessionID returns a cryptographically random 64-hex-char session id.
func NewSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// SyncSessionID derives the stable session id for a synced occupant. The hash
// input is the raw guest label, not the canonical name, so the id survives
// changes to the normalization rules; the same (room, label) pair maps to the
// same id on every cycle, which is what makes the session upsert idempotent.
func SyncSessionID(roomNumber, rawGuestLabel string) string {
	sum := sha256.Sum256([]byte(roomNumber + "::" + rawGuestLabel))
	return syncSessionPrefix + hex.EncodeToString(sum[:])
}

// IsSyncSessionID reports whether a session id was minted by the sync.
func IsSyncSessionID(id string) bool {
	return strings.HasPrefix(id, syncSessionPrefix)
}

// NewOrderNumber returns a short human-readable order reference.
func NewOrderNumber() string {
	return "RS-" + strings.ToUpper(uuid.NewString()[:8])
}
