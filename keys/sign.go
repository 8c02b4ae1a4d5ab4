package keys

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"

	"xdao.co/multisig/identity"
)

// Signature schemes accepted by the governance API.
const (
	SchemeEd25519    = "ed25519"
	SchemeDilithium3 = "dilithium3"
)

// endorsementTag domain-separates governance endorsements from any other
// use of the same key.
const endorsementTag = "xdao-multisig-endorse-v1"

// EndorsementDigest returns the digest that endorsement signatures cover:
// sha3-256(tag || 0x00 || body).
func EndorsementDigest(body []byte) []byte {
	h := sha3.New256()
	_, _ = h.Write([]byte(endorsementTag))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(body)
	return h.Sum(nil)
}

// Signer produces detached endorsement signatures for one account.
type Signer interface {
	Address() identity.Address
	Scheme() string
	PublicKey() []byte
	Sign(body []byte) ([]byte, error)
}

// Ed25519Signer signs endorsements with an Ed25519 key.
type Ed25519Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
	addr identity.Address
}

func NewEd25519Signer(seed []byte) (*Ed25519Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes", ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	addr, err := identity.FromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &Ed25519Signer{priv: priv, pub: pub, addr: addr}, nil
}

func (s *Ed25519Signer) Address() identity.Address { return s.addr }
func (s *Ed25519Signer) Scheme() string            { return SchemeEd25519 }

func (s *Ed25519Signer) PublicKey() []byte {
	out := make([]byte, len(s.pub))
	copy(out, s.pub)
	return out
}

func (s *Ed25519Signer) Sign(body []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, EndorsementDigest(body)), nil
}

// Dilithium3Signer signs endorsements with a Dilithium3 key, for deployments
// that want a post-quantum signature path.
type Dilithium3Signer struct {
	priv *mode3.PrivateKey
	pub  *mode3.PublicKey
	addr identity.Address
}

func NewDilithium3Signer(seed []byte) (*Dilithium3Signer, error) {
	if len(seed) != mode3.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes", mode3.SeedSize)
	}
	var s [mode3.SeedSize]byte
	copy(s[:], seed)
	pub, priv := mode3.NewKeyFromSeed(&s)
	addr, err := identity.FromRawKey(pub.Bytes())
	if err != nil {
		return nil, err
	}
	return &Dilithium3Signer{priv: priv, pub: pub, addr: addr}, nil
}

func (s *Dilithium3Signer) Address() identity.Address { return s.addr }
func (s *Dilithium3Signer) Scheme() string            { return SchemeDilithium3 }
func (s *Dilithium3Signer) PublicKey() []byte         { return s.pub.Bytes() }

func (s *Dilithium3Signer) Sign(body []byte) ([]byte, error) {
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.priv, EndorsementDigest(body), sig)
	return sig, nil
}

// NewSigner constructs the signer for scheme from a seed.
func NewSigner(scheme string, seed []byte) (Signer, error) {
	switch scheme {
	case SchemeEd25519:
		return NewEd25519Signer(seed)
	case SchemeDilithium3:
		return NewDilithium3Signer(seed)
	default:
		return nil, fmt.Errorf("unsupported signature scheme: %q", scheme)
	}
}

// Verify checks a detached endorsement signature and returns the address
// derived from the public key.
func Verify(scheme string, pub, body, sig []byte) (identity.Address, error) {
	digest := EndorsementDigest(body)
	switch scheme {
	case SchemeEd25519:
		if len(pub) != ed25519.PublicKeySize {
			return identity.Address{}, fmt.Errorf("ed25519 public key must be %d bytes", ed25519.PublicKeySize)
		}
		if !ed25519.Verify(ed25519.PublicKey(pub), digest, sig) {
			return identity.Address{}, errors.New("signature did not verify")
		}
		return identity.FromPublicKey(ed25519.PublicKey(pub))
	case SchemeDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return identity.Address{}, fmt.Errorf("bad dilithium3 public key: %w", err)
		}
		if !mode3.Verify(&pk, digest, sig) {
			return identity.Address{}, errors.New("signature did not verify")
		}
		return identity.FromRawKey(pub)
	default:
		return identity.Address{}, fmt.Errorf("unsupported signature scheme: %q", scheme)
	}
}
