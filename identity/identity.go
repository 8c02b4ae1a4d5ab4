// Package identity defines account addresses and governance roles.
package identity

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
)

// AddressSize is the fixed byte length of an account address.
const AddressSize = 32

// Address is an opaque fixed-size account identifier.
//
// Two addresses are equal iff they are byte-identical. The zero value is
// not a valid account and is reported by IsZero.
type Address [AddressSize]byte

var zeroAddress Address

// FromPublicKey derives the account address for an Ed25519 public key.
//
// The derivation is sha256(pubkey); it matches the KMS-lite CLI behavior.
func FromPublicKey(pub ed25519.PublicKey) (Address, error) {
	if len(pub) != ed25519.PublicKeySize {
		return zeroAddress, fmt.Errorf("identity: public key must be %d bytes", ed25519.PublicKeySize)
	}
	return Address(sha256.Sum256(pub)), nil
}

// FromRawKey derives the account address for a raw public key of any
// signature scheme. The derivation is sha256(pubkey), so addresses stay
// fixed-size regardless of key size.
func FromRawKey(pub []byte) (Address, error) {
	if len(pub) == 0 {
		return zeroAddress, errors.New("identity: empty public key")
	}
	return Address(sha256.Sum256(pub)), nil
}

// FromBytes copies b into an Address.
func FromBytes(b []byte) (Address, error) {
	if len(b) != AddressSize {
		return zeroAddress, fmt.Errorf("identity: address must be %d bytes", AddressSize)
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// Parse decodes the hex string form produced by String.
func Parse(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return zeroAddress, fmt.Errorf("identity: invalid address %q: %w", s, err)
	}
	return FromBytes(b)
}

// MustParse is Parse that panics on error. Intended for tests and fixtures.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string { return hex.EncodeToString(a[:]) }

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool { return a == zeroAddress }

// Bytes returns a copy of the address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressSize)
	copy(out, a[:])
	return out
}

func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Less imposes the canonical byte-wise ordering used for deterministic listings.
func (a Address) Less(other Address) bool {
	return bytes.Compare(a[:], other[:]) < 0
}

// SortAddresses sorts addrs in place in canonical byte order.
func SortAddresses(addrs []Address) {
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })
}

// Role is the privilege level of an account within the governance engine.
//
// An account holds exactly one role at a time; assignment replaces, never
// stacks.
type Role int

const (
	RoleNone Role = iota
	RoleProposer
	RoleBoardMember
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleProposer:
		return "proposer"
	case RoleBoardMember:
		return "board-member"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// CanPropose reports whether the role may create actions.
func (r Role) CanPropose() bool { return r == RoleProposer || r == RoleBoardMember }

// CanSign reports whether the role may endorse and execute actions.
func (r Role) CanSign() bool { return r == RoleBoardMember }

func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case RoleNone, RoleProposer, RoleBoardMember:
		return []byte(r.String()), nil
	}
	return nil, fmt.Errorf("identity: unknown role %d", int(r))
}

func (r *Role) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*r = RoleNone
	case "proposer":
		*r = RoleProposer
	case "board-member":
		*r = RoleBoardMember
	default:
		return errors.New("identity: unknown role " + string(text))
	}
	return nil
}
