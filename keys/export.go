package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

// PublicKeyString encodes a raw public key into the "<scheme>:<base64>"
// display form used by the CLI.
func PublicKeyString(scheme string, pub []byte) (string, error) {
	switch scheme {
	case SchemeEd25519:
		if l := len(pub); l != ed25519.PublicKeySize {
			return "", fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, l)
		}
	case SchemeDilithium3:
		if l := len(pub); l != mode3.PublicKeySize {
			return "", fmt.Errorf("dilithium3 public key must be %d bytes, got %d", mode3.PublicKeySize, l)
		}
	default:
		return "", fmt.Errorf("unsupported signature scheme: %q", scheme)
	}
	return scheme + ":" + base64.StdEncoding.EncodeToString(pub), nil
}
