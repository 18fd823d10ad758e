package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Metadata describes where a posting came from. Hash is the posting's
// identity: re-fetching or re-pasting the same posting gives the same Hash
// even when whitespace or line endings differ.
type Metadata struct {
	URL       string `json:"url,omitempty"`
	Timestamp string `json:"timestamp"` // RFC3339
	Hash      string `json:"hash"`
}

// NewMetadata stamps a posting with the current time and its PostingHash
func NewMetadata(title, body, url string) *Metadata {
	return &Metadata{
		URL:       url,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      PostingHash(title, body),
	}
}

// PostingHash is the hex SHA256 of the cleaned title and body. Stored
// analyses are keyed by it.
func PostingHash(title, body string) string {
	sum := sha256.Sum256([]byte(CleanText(title) + "\n" + CleanText(body)))
	return hex.EncodeToString(sum[:])
}
