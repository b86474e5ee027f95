// Package shareable encodes aggregator account ids into the obfuscated form
// users exchange to authorize receiving a transfer, and decodes them back.
package shareable

import (
	"encoding/base64"
	"fmt"
)

// EncodeAccountID returns the shareable form of an account id.
func EncodeAccountID(accountID string) string {
	return base64.StdEncoding.EncodeToString([]byte(accountID))
}

// DecodeAccountID reverses EncodeAccountID. It rejects input that is not
// valid encoding or decodes to an empty id.
func DecodeAccountID(shareableID string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(shareableID)
	if err != nil {
		return "", fmt.Errorf("invalid shareable id: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("invalid shareable id: empty account id")
	}
	return string(raw), nil
}
