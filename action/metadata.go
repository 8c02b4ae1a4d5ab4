package action

import (
	"fmt"
	"strings"
)

// CodeMetadata is the deploy/upgrade flag set attached to contract code.
type CodeMetadata uint16

const (
	MetadataUpgradeable CodeMetadata = 0x0100
	MetadataReadable    CodeMetadata = 0x0400
	MetadataPayable     CodeMetadata = 0x0002
	MetadataPayableBySC CodeMetadata = 0x0004
)

var metadataFlags = []struct {
	flag CodeMetadata
	name string
}{
	{MetadataUpgradeable, "upgradeable"},
	{MetadataReadable, "readable"},
	{MetadataPayable, "payable"},
	{MetadataPayableBySC, "payable-by-sc"},
}

// String returns the canonical comma-joined flag list, or "none".
func (m CodeMetadata) String() string {
	var names []string
	for _, f := range metadataFlags {
		if m&f.flag != 0 {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// ParseCodeMetadata parses the canonical string form produced by String.
func ParseCodeMetadata(s string) (CodeMetadata, error) {
	if s == "" || s == "none" {
		return 0, nil
	}
	var m CodeMetadata
	for _, name := range strings.Split(s, ",") {
		found := false
		for _, f := range metadataFlags {
			if f.name == name {
				m |= f.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("action: unknown code metadata flag %q", name)
		}
	}
	return m, nil
}

func (m CodeMetadata) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *CodeMetadata) UnmarshalText(text []byte) error {
	parsed, err := ParseCodeMetadata(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
