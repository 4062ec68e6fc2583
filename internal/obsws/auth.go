// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

import (
	"crypto/sha256"
	"encoding/base64"
)

// ComputeToken derives the Identify authentication string from the
// configured password and the server's challenge:
//
//	digest = base64(sha256(password + salt))
//	token  = base64(sha256(digest + challenge))
//
// Both encodings are standard padded base64. The password is never logged.
func ComputeToken(password string, ch AuthChallenge) string {
	digest := hashEncode(password + ch.Salt)
	return hashEncode(digest + ch.Challenge)
}

func hashEncode(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.StdEncoding.EncodeToString(sum[:])
}
