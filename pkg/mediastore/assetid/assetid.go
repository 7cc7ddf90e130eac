// Package assetid generates asset identifiers and storage keys.
//
// Public ids ("{entityType}/{uniqueId}") and object keys
// ("{kindDir}/{entityType}/{uniqueId}.{format}") are derived from a single
// crypto-random unique id, so both backends share one partitioning scheme.
package assetid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a new globally unique opaque id with 128 bits of entropy.
// Entropy-source exhaustion panics; it practically never occurs.
func NewID() string {
	return uuid.New().String()
}

// PublicID composes the stable public handle for an asset.
func PublicID(entityType, uniqueID string) string {
	return fmt.Sprintf("%s/%s", sanitizePathComponent(entityType), uniqueID)
}

// ObjectKey composes the physical storage key for an asset.
func ObjectKey(kindDir, entityType, uniqueID, format string) string {
	return fmt.Sprintf("%s/%s/%s.%s",
		kindDir, sanitizePathComponent(entityType), uniqueID, strings.ToLower(format))
}

// SplitPublicID breaks a public id back into its entity type and unique id
// components. The unique id is the last path segment.
func SplitPublicID(publicID string) (entityType, uniqueID string) {
	idx := strings.LastIndex(publicID, "/")
	if idx < 0 {
		return "", publicID
	}
	return publicID[:idx], publicID[idx+1:]
}

func sanitizePathComponent(component string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return strings.ToLower(replacer.Replace(component))
}
