package keys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore represents a simple local-first key management system.
//
// EXPERIMENTAL: this filesystem-backed storage surface is not part of the
// stable API and may change in MINOR releases.
//
// Features:
// - Supports Ed25519 and Dilithium3 keys
// - Stores key seeds on the local filesystem
// - Generates deterministic sub-keys based on labels
// - No external dependencies
//
// This package is designed to be straightforward and explicit.
type KeyStore struct {
	Directory string
}

type KeyEntry struct {
	Identifier string
	Labels     []string
}

func GetDefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".xdao", "multisig", "keys"), nil
}

func CreateKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		directory, err = GetDefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

func (ks *KeyStore) getRootKeyFilePath(identifier string) string {
	return filepath.Join(ks.Directory, identifier, "root.key")
}

func (ks *KeyStore) getLabelKeyFilePath(identifier, label string) string {
	return filepath.Join(ks.Directory, identifier, "labels", label+".key")
}

func CheckKeyName(identifier string) error {
	if identifier == "" {
		return errors.New("identifier cannot be empty")
	}
	for _, char := range identifier {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in identifier", char)
	}
	return nil
}

func CheckLabel(label string) error {
	if label == "" {
		return errors.New("label cannot be empty")
	}
	for _, char := range label {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in label", char)
	}
	return nil
}

func checkScheme(scheme string) error {
	switch scheme {
	case SchemeEd25519, SchemeDilithium3:
		return nil
	default:
		return fmt.Errorf("unsupported signature scheme: %q", scheme)
	}
}

// Key files hold "<scheme>:<hex seed>" on a single line.
func (ks *KeyStore) saveKeyToFile(filePath, scheme string, seed []byte, overwrite bool) error {
	if err := checkScheme(scheme); err != nil {
		return err
	}
	if len(seed) != SeedSize {
		return fmt.Errorf("expected seed length of %d bytes", SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(filePath, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(scheme + ":" + fmt.Sprintf("%x", seed) + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func (ks *KeyStore) loadKeyFromFile(filePath string) (scheme string, seed []byte, err error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, err
	}
	line := strings.TrimSpace(string(data))
	scheme, seedHex, ok := strings.Cut(line, ":")
	if !ok {
		return "", nil, fmt.Errorf("malformed key file %s", filePath)
	}
	if err := checkScheme(scheme); err != nil {
		return "", nil, err
	}
	seed, err = ParseSeedHex(seedHex)
	if err != nil {
		return "", nil, err
	}
	return scheme, seed, nil
}

// InitializeRootKey stores a root seed and returns the derived account
// address in hex.
func (ks *KeyStore) InitializeRootKey(identifier, scheme string, seed []byte, overwrite bool) (address string, filePath string, err error) {
	if err := CheckKeyName(identifier); err != nil {
		return "", "", err
	}
	signer, err := NewSigner(scheme, seed)
	if err != nil {
		return "", "", err
	}
	filePath = ks.getRootKeyFilePath(identifier)
	if err := ks.saveKeyToFile(filePath, scheme, seed, overwrite); err != nil {
		return "", "", err
	}
	return signer.Address().String(), filePath, nil
}

// DeriveKeyFromLabel derives and stores a labeled sub-key. The sub-key keeps
// the root key's scheme.
func (ks *KeyStore) DeriveKeyFromLabel(from, label string, overwrite bool) (address string, filePath string, err error) {
	if err := CheckKeyName(from); err != nil {
		return "", "", err
	}
	if err := CheckLabel(label); err != nil {
		return "", "", err
	}
	scheme, rootSeed, err := ks.loadKeyFromFile(ks.getRootKeyFilePath(from))
	if err != nil {
		return "", "", err
	}
	subSeed, err := DeriveSubSeed(rootSeed, label)
	if err != nil {
		return "", "", err
	}
	signer, err := NewSigner(scheme, subSeed)
	if err != nil {
		return "", "", err
	}
	filePath = ks.getLabelKeyFilePath(from, label)
	if err := ks.saveKeyToFile(filePath, scheme, subSeed, overwrite); err != nil {
		return "", "", err
	}
	return signer.Address().String(), filePath, nil
}

// ExportKey returns the public-key string for a stored key (root key when
// label is empty).
func (ks *KeyStore) ExportKey(identifier string, label string) (string, error) {
	if err := CheckKeyName(identifier); err != nil {
		return "", err
	}
	path := ks.getRootKeyFilePath(identifier)
	if label != "" {
		if err := CheckLabel(label); err != nil {
			return "", err
		}
		path = ks.getLabelKeyFilePath(identifier, label)
	}
	scheme, seed, err := ks.loadKeyFromFile(path)
	if err != nil {
		return "", err
	}
	signer, err := NewSigner(scheme, seed)
	if err != nil {
		return "", err
	}
	return PublicKeyString(scheme, signer.PublicKey())
}

// LoadSigner resolves a signer from, in priority order, an explicit hex
// seed (with scheme), an explicit key file, or a stored key name.
func (ks *KeyStore) LoadSigner(seedHex, scheme, signerName, signerLabel, keyFile string) (Signer, error) {
	if seedHex != "" {
		if scheme == "" {
			scheme = SchemeEd25519
		}
		seed, err := ParseSeedHex(seedHex)
		if err != nil {
			return nil, err
		}
		return NewSigner(scheme, seed)
	}
	if keyFile != "" {
		fileScheme, seed, err := ks.loadKeyFromFile(keyFile)
		if err != nil {
			return nil, err
		}
		return NewSigner(fileScheme, seed)
	}
	if signerName != "" {
		if err := CheckKeyName(signerName); err != nil {
			return nil, err
		}
		path := ks.getRootKeyFilePath(signerName)
		if signerLabel != "" {
			if err := CheckLabel(signerLabel); err != nil {
				return nil, err
			}
			path = ks.getLabelKeyFilePath(signerName, signerLabel)
		}
		fileScheme, seed, err := ks.loadKeyFromFile(path)
		if err != nil {
			return nil, err
		}
		return NewSigner(fileScheme, seed)
	}
	return nil, errors.New("no signer provided")
}

func (ks *KeyStore) ListKeys() ([]KeyEntry, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var identifiers []string
	for _, entry := range entries {
		if entry.IsDir() {
			identifiers = append(identifiers, entry.Name())
		}
	}
	sort.Strings(identifiers)

	var result []KeyEntry
	for _, identifier := range identifiers {
		labelsDir := filepath.Join(ks.Directory, identifier, "labels")
		labelEntries, lerr := os.ReadDir(labelsDir)
		var labels []string
		if lerr == nil {
			for _, labelEntry := range labelEntries {
				if labelEntry.IsDir() {
					continue
				}
				if strings.HasSuffix(labelEntry.Name(), ".key") {
					labels = append(labels, strings.TrimSuffix(labelEntry.Name(), ".key"))
				}
			}
			sort.Strings(labels)
		}
		result = append(result, KeyEntry{Identifier: identifier, Labels: labels})
	}
	return result, nil
}
