// Package casconfig opens one or more snapshot-store backends from a JSON
// config file.
//
// A governance daemon typically replicates every snapshot to all configured
// backends so the account's state history survives the loss of any single
// store. Callers still link the desired backend plugins via blank imports.
//
// Example:
//
//	{
//	  "backends": [
//	    {"name":"localfs", "config":{"localfs-dir":"/var/lib/msig/snapshots"}},
//	    {"name":"ipfs", "config":{"ipfs-path":"/var/lib/ipfs"}}
//	  ]
//	}
package casconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"xdao.co/multisig/storage"
	"xdao.co/multisig/storage/casregistry"
)

// Config describes the snapshot backends to open. Writes replicate to all
// backends; reads fall back in declaration order.
type Config struct {
	Backends []BackendConfig `json:"backends"`
}

type BackendConfig struct {
	// Name is the casregistry backend name to open (e.g. "localfs", "ipfs").
	Name string `json:"name"`
	// ID is an optional stable alias used in per-backend CID maps.
	// If empty, Name is used.
	ID string `json:"id,omitempty"`
	// Config values are backend-specific; keys mirror the backend's flag names.
	Config map[string]string `json:"config,omitempty"`
}

func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("casconfig: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("casconfig: at least one backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if b.Name == "" {
			return errors.New("casconfig: backend name is required")
		}
		id := b.Name
		if b.ID != "" {
			id = b.ID
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("casconfig: duplicate backend id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Open opens every configured backend and composes them into a single CAS.
// A single backend is returned directly; several are wrapped in a
// storage.ReplicatingCAS.
func (c Config) Open(usage casregistry.Usage) (storage.CAS, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	named := make([]storage.NamedCAS, 0, len(c.Backends))
	closers := make([]func() error, 0, len(c.Backends))
	for _, b := range c.Backends {
		cas, closeFn, err := casregistry.OpenWithConfig(b.Name, usage, b.Config)
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
			return nil, nil, err
		}
		name := b.Name
		if b.ID != "" {
			name = b.ID
		}
		named = append(named, storage.NamedCAS{Name: name, CAS: cas})
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
	}

	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	if len(named) == 1 {
		return named[0].CAS, closeAll, nil
	}
	return storage.ReplicatingCAS{Backends: named}, closeAll, nil
}
