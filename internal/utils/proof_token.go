package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"
)

// ProofTokenPrefix marks every proof-of-booking token. The full token
// format is SENDBOX-{8 hex}-{4 hex}, 21 characters.
const ProofTokenPrefix = "SENDBOX"

// GenerateProofToken issues the handoff credential for a booking: a hash
// of cryptographically random bytes salted with the current time. The
// persistence layer enforces a unique constraint on the token.
func GenerateProofToken() string {
	var seed [40]byte
	_, _ = rand.Read(seed[:32])
	binary.BigEndian.PutUint64(seed[32:], uint64(time.Now().UnixNano()))

	sum := sha256.Sum256(seed[:])
	digest := hex.EncodeToString(sum[:])

	return ProofTokenPrefix + "-" + digest[:8] + "-" + digest[8:12]
}

// NormalizeProofToken trims and upper-cases a scanned token so that
// hand-typed or OCR'd scans compare reliably.
func NormalizeProofToken(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}

// MatchProofToken compares a scanned token against the stored one,
// case-insensitively. An empty token on either side never matches: a
// booking whose token was never issued must not pass a scan.
func MatchProofToken(scanned, stored string) bool {
	s := NormalizeProofToken(scanned)
	st := NormalizeProofToken(stored)
	if s == "" || st == "" {
		return false
	}
	return s == st
}
