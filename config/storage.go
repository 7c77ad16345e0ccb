package config

import (
	"fmt"
	"strings"
)

// StorageBackendKind selects the storage backend implementation.
type StorageBackendKind string

const (
	// StorageBackendFilesystem serves files from a directory on disk.
	StorageBackendFilesystem StorageBackendKind = "filesystem"
	// StorageBackendMemory serves an ephemeral in-memory tree. Useful for
	// tests and throwaway servers; contents are lost on restart.
	StorageBackendMemory StorageBackendKind = "memory"
)

// StorageConfig contains storage backend configuration.
type StorageConfig struct {
	// Backend selects the storage implementation: filesystem or memory.
	Backend string `env:"BACKEND" envDefault:"filesystem"`

	// Root is the directory served by the filesystem backend. Sessions
	// cannot escape it.
	Root string `env:"ROOT" envDefault:"/srv/ftp"`
}

// Sanitize normalises storage configuration values.
func (c *StorageConfig) Sanitize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = string(StorageBackendFilesystem)
	}
	c.Root = strings.TrimSpace(c.Root)
}

// Validate checks that the selected backend has the settings it needs.
func (c *StorageConfig) Validate() error {
	switch StorageBackendKind(c.Backend) {
	case StorageBackendFilesystem:
		if c.Root == "" {
			return fmt.Errorf("STORAGE_ROOT is required when STORAGE_BACKEND=filesystem")
		}
		return nil
	case StorageBackendMemory:
		return nil
	default:
		return fmt.Errorf("unknown storage backend %q (expected filesystem or memory)", c.Backend)
	}
}
