//go:build linux

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeBlockDevice(t *testing.T, dir, name, rotational string) {
	t.Helper()
	q := filepath.Join(dir, name, "queue")
	require.NoError(t, os.MkdirAll(q, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(q, "rotational"), []byte(rotational+"\n"), 0o644))
}

func TestDetectStorageIn(t *testing.T) {
	ssd := t.TempDir()
	fakeBlockDevice(t, ssd, "loop0", "1")
	fakeBlockDevice(t, ssd, "nvme0n1", "0")
	assert.Equal(t, StorageSSD, detectStorageIn(ssd))

	hdd := t.TempDir()
	fakeBlockDevice(t, hdd, "sda", "1")
	assert.Equal(t, StorageHDD, detectStorageIn(hdd))

	assert.Equal(t, StorageUnknown, detectStorageIn(t.TempDir()))
	assert.Equal(t, StorageUnknown, detectStorageIn(filepath.Join(t.TempDir(), "absent")))
}
