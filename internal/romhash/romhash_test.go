package romhash

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/joshhsoj1902/retro-stats-exporter/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func writeROM(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func romBody(size int) []byte {
	body := make([]byte, size)
	for i := range body {
		body[i] = byte(i * 7)
	}
	return body
}

func TestMD5SkipsINESHeader(t *testing.T) {
	body := romBody(3*blockSize + 123)
	header := append([]byte("NES\x1a"), bytes.Repeat([]byte{0xff}, 12)...)
	headered := append(header, body...)

	for _, name := range []string{"game.nes", "GAME.NES"} {
		got, err := MD5{}.Hash(context.Background(), writeROM(t, name, headered))
		require.NoError(t, err)
		assert.Equal(t, md5Hex(body), got, name)
	}
}

func TestMD5HashesWholeFile(t *testing.T) {
	body := romBody(blockSize + 1)
	headered := append([]byte("NES\x1a"), body...)

	tests := []struct {
		name string
		data []byte
	}{
		{"headerless.nes", body},
		{"other.sfc", headered},
		{"tiny.nes", []byte("NE")},
		{"empty.gb", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MD5{}.Hash(context.Background(), writeROM(t, tt.name, tt.data))
			require.NoError(t, err)
			assert.Equal(t, md5Hex(tt.data), got)
		})
	}
}

func TestMD5MissingFile(t *testing.T) {
	_, err := MD5{}.Hash(context.Background(), filepath.Join(t.TempDir(), "missing.nes"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExecClearsLibraryPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script helper")
	}
	t.Setenv("LD_LIBRARY_PATH", "/opt/bundled/lib")

	script := filepath.Join(t.TempDir(), "hash")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"  [$LD_LIBRARY_PATH]$1  \"\n"), 0o755))

	got, err := NewExec(script).Hash(context.Background(), "/roms/game.nes")
	require.NoError(t, err)
	assert.Equal(t, "[]/roms/game.nes", got)
}

func TestExecFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script helper")
	}
	dir := t.TempDir()

	failing := filepath.Join(dir, "failing")
	require.NoError(t, os.WriteFile(failing, []byte("#!/bin/sh\necho boom >&2\nexit 3\n"), 0o755))
	_, err := NewExec(failing).Hash(context.Background(), "/roms/game.nes")
	assert.Error(t, err)

	silent := filepath.Join(dir, "silent")
	require.NoError(t, os.WriteFile(silent, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	_, err = NewExec(silent).Hash(context.Background(), "/roms/game.nes")
	assert.Error(t, err)

	_, err = NewExec(filepath.Join(dir, "missing")).Hash(context.Background(), "/roms/game.nes")
	assert.Error(t, err)
}

type countingHasher struct {
	calls int
}

func (h *countingHasher) Hash(ctx context.Context, path string) (string, error) {
	h.calls++
	return MD5{}.Hash(ctx, path)
}

func TestCachedHasher(t *testing.T) {
	path := writeROM(t, "game.gb", romBody(100))
	next := &countingHasher{}
	h := NewCached(next, cache.NewMemory())
	ctx := context.Background()

	first, err := h.Hash(ctx, path)
	require.NoError(t, err)
	second, err := h.Hash(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)

	// A rewritten file is hashed again
	require.NoError(t, os.WriteFile(path, romBody(200), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	third, err := h.Hash(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, md5Hex(romBody(200)), third)
	assert.Equal(t, 2, next.calls)
}

func TestCachedHasherMissingFile(t *testing.T) {
	next := &countingHasher{}
	_, err := NewCached(next, cache.NewMemory()).Hash(context.Background(), filepath.Join(t.TempDir(), "missing.gb"))
	assert.Error(t, err)
	assert.Zero(t, next.calls)
}
