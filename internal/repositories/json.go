package repositories

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Sub-documents (criteria, histories, qualification) are stored as one
// serialized text blob per record; the blob is opaque to the store and only
// meaningful here.

func marshalDoc(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serializing sub-document: %w", err)
	}
	return string(b), nil
}

func unmarshalDoc(raw string, dst any) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("parsing sub-document: %w", err)
	}
	return nil
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
