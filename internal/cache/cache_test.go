package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/disklens/internal/model"
	"github.com/sadopc/disklens/internal/scanner"
)

func scanFixture(t *testing.T) (string, *model.ScanResult) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), make([]byte, 1000), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), make([]byte, 24), 0o644))

	result, err := scanner.NewParallelScanner().Scan(context.Background(), root, scanner.DefaultOptions(), nil)
	require.NoError(t, err)
	return result.ScanPath, result
}

// assertSameTree compares two trees field by field; times are compared
// with Equal since encodings drop the monotonic reading.
func assertSameTree(t *testing.T, want, got *model.Node) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.Path, got.Path)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Size, got.Size)
	assert.Equal(t, want.SizeOnDisk, got.SizeOnDisk)
	assert.Equal(t, want.Type, got.Type)
	assert.Equal(t, want.FileCount, got.FileCount)
	assert.Equal(t, want.DirCount, got.DirCount)
	assert.Equal(t, want.Inode, got.Inode)
	assert.True(t, want.Modified.Equal(got.Modified), "%s: mtime %v != %v", want.Path, want.Modified, got.Modified)
	require.Len(t, got.Children, len(want.Children), want.Path)
	for i := range want.Children {
		assertSameTree(t, want.Children[i], got.Children[i])
	}
}

func TestCache_RoundTrip(t *testing.T) {
	path, result := scanFixture(t)
	c := New(t.TempDir(), zerolog.Nop())

	require.NoError(t, c.Save(result))
	got, ok := c.Load(path)
	require.True(t, ok)

	assert.Equal(t, result.ScanPath, got.ScanPath)
	assert.Equal(t, result.TotalSize, got.TotalSize)
	assert.Equal(t, result.TotalFiles, got.TotalFiles)
	assert.Equal(t, result.TotalDirs, got.TotalDirs)
	assert.Equal(t, result.Duration, got.Duration)
	assert.True(t, result.Timestamp.Equal(got.Timestamp))
	assertSameTree(t, result.Root, got.Root)
}

func TestCache_RoundTripKeepsErrors(t *testing.T) {
	path, result := scanFixture(t)
	result.Errors = []model.ScanError{{Path: path + "/x", Kind: model.ErrPermissionDenied, Message: "denied"}}
	c := New(t.TempDir(), zerolog.Nop())

	require.NoError(t, c.Save(result))
	got, ok := c.Load(path)
	require.True(t, ok)
	assert.Equal(t, result.Errors, got.Errors)
}

func TestCache_MissWhenRootModified(t *testing.T) {
	path, result := scanFixture(t)
	c := New(t.TempDir(), zerolog.Nop())
	require.NoError(t, c.Save(result))

	later := result.Root.Modified.Add(5 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	_, ok := c.Load(path)
	assert.False(t, ok)
}

func TestCache_MissWhenRootReplaced(t *testing.T) {
	path, result := scanFixture(t)
	c := New(t.TempDir(), zerolog.Nop())
	require.NoError(t, c.Save(result))

	// Same mtime, different directory: only the inode can tell them apart.
	mtime := result.Root.Modified
	require.NoError(t, os.RemoveAll(path))
	require.NoError(t, os.Mkdir(path, 0o755))
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if ino, ok := rootInode(info); !ok || ino == result.Root.Inode {
		t.Skip("filesystem reused the inode or does not expose one")
	}

	_, ok := c.Load(path)
	assert.False(t, ok)
}

func TestCache_MissOnPathMismatch(t *testing.T) {
	path, result := scanFixture(t)
	dir := t.TempDir()
	c := New(dir, zerolog.Nop())
	require.NoError(t, c.Save(result))

	// Pretend another root hashed to the same key.
	other := filepath.Join(filepath.Dir(path), "other")
	require.NoError(t, os.Rename(filepath.Join(dir, Key(path)+TreeExt), filepath.Join(dir, Key(other)+TreeExt)))
	require.NoError(t, os.Rename(filepath.Join(dir, Key(path)+MetaExt), filepath.Join(dir, Key(other)+MetaExt)))

	_, ok := c.Load(other)
	assert.False(t, ok)
}

func TestCache_MissOnCorruptFiles(t *testing.T) {
	tests := []struct {
		name   string
		ext    string
		output []byte
	}{
		{"corrupt meta", MetaExt, []byte("{not json")},
		{"corrupt tree", TreeExt, []byte("garbage")},
		{"empty tree", TreeExt, nil},
		{"wrong version", MetaExt, []byte(`{"version":999}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, result := scanFixture(t)
			dir := t.TempDir()
			c := New(dir, zerolog.Nop())
			require.NoError(t, c.Save(result))

			require.NoError(t, os.WriteFile(filepath.Join(dir, Key(path)+tt.ext), tt.output, 0o644))
			_, ok := c.Load(path)
			assert.False(t, ok)
		})
	}
}

func TestCache_MissWhenEitherFileAbsent(t *testing.T) {
	for _, ext := range []string{TreeExt, MetaExt} {
		t.Run(ext, func(t *testing.T) {
			path, result := scanFixture(t)
			dir := t.TempDir()
			c := New(dir, zerolog.Nop())
			require.NoError(t, c.Save(result))

			require.NoError(t, os.Remove(filepath.Join(dir, Key(path)+ext)))
			_, ok := c.Load(path)
			assert.False(t, ok)
		})
	}
}

func TestCache_TempFilesAreNeverRead(t *testing.T) {
	path, result := scanFixture(t)
	dir := t.TempDir()
	c := New(dir, zerolog.Nop())
	require.NoError(t, c.Save(result))

	tree := filepath.Join(dir, Key(path)+TreeExt)
	require.NoError(t, os.Rename(tree, tree+".tmp"))

	_, ok := c.Load(path)
	assert.False(t, ok)
}

func TestCache_MissingDirectory(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "absent"), zerolog.Nop())
	_, ok := c.Load("/nowhere")
	assert.False(t, ok)
	assert.NoError(t, c.Clear())
}

func TestCache_SaveCreatesDirectory(t *testing.T) {
	path, result := scanFixture(t)
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	c := New(dir, zerolog.Nop())

	require.NoError(t, c.Save(result))
	_, ok := c.Load(path)
	assert.True(t, ok)
	assert.Equal(t, dir, c.Dir())
}

func TestCache_Clear(t *testing.T) {
	path, result := scanFixture(t)
	dir := t.TempDir()
	c := New(dir, zerolog.Nop())
	require.NoError(t, c.Save(result))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.tree.123.tmp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644))

	require.NoError(t, c.Clear())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.txt", entries[0].Name())

	_, ok := c.Load(path)
	assert.False(t, ok)
}

func TestKey_StableAndDistinct(t *testing.T) {
	assert.Equal(t, Key("/a/b"), Key("/a/b"))
	assert.NotEqual(t, Key("/a/b"), Key("/a/c"))
	assert.Len(t, Key("/"), 16)
}
