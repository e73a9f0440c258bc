// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

package sec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RefreshTokenBytes is the entropy of an opaque refresh-token value.
// 32 random bytes encode to a 64-character hex string.
const RefreshTokenBytes = 32

// GenerateSecureToken returns a hex-encoded string built from n bytes of
// cryptographically secure random data.
//
// # Usage
//
// The result is an opaque lookup key, not a structured token: it carries no
// claims, so its secrecy and uniqueness are its only security properties.
func GenerateSecureToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
