//go:build linux

package config

import (
	"os"
	"path/filepath"
	"strings"
)

const sysBlockDir = "/sys/block"

func detectStorage() StorageType {
	return detectStorageIn(sysBlockDir)
}

// detectStorageIn reports the medium of the first sd* or nvme* block device
// under dir that exposes queue/rotational.
func detectStorageIn(dir string) StorageType {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return StorageUnknown
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "sd") && !strings.HasPrefix(name, "nvme") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name, "queue", "rotational"))
		if err != nil {
			continue
		}
		switch strings.TrimSpace(string(data)) {
		case "0":
			return StorageSSD
		case "1":
			return StorageHDD
		default:
			return StorageUnknown
		}
	}
	return StorageUnknown
}
