package romhash

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/sirupsen/logrus"
)

const (
	blockSize     = 8192
	inesHeaderLen = 16
)

var inesMagic = []byte("NES\x1a")

// Hasher turns a ROM file into the hex digest RetroAchievements identifies
// games by
type Hasher interface {
	Hash(ctx context.Context, path string) (string, error)
}

// MD5 hashes files in process. iNES images skip their 16 byte header so a
// headered and a headerless dump of the same game hash alike.
type MD5 struct{}

func (MD5) Hash(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open ROM: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".nes") {
		if err := skipINESHeader(f); err != nil {
			return "", err
		}
	}

	h := md5.New()
	buf := make([]byte, blockSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := f.Read(buf)
		h.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read ROM: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// skipINESHeader leaves f positioned after the header when it carries the
// iNES magic, and at the start otherwise
func skipINESHeader(f *os.File) error {
	magic := make([]byte, len(inesMagic))
	n, err := io.ReadFull(f, magic)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read ROM header: %w", err)
	}

	offset := int64(0)
	if n == len(inesMagic) && bytes.Equal(magic, inesMagic) {
		offset = inesHeaderLen
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek ROM: %w", err)
	}
	return nil
}

// Exec runs an external hashing binary with the ROM path as its only
// argument and reads the digest from its output
type Exec struct {
	Binary string
}

func NewExec(binary string) *Exec {
	return &Exec{Binary: binary}
}

func (e *Exec) Hash(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, e.Binary, path)
	// Libraries bundled with the host process must not leak into the helper
	cmd.Env = append(os.Environ(), "LD_LIBRARY_PATH=")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"binary": e.Binary,
			"path":   path,
			"stderr": strings.TrimSpace(stderr.String()),
		}).Error("Hash helper failed")
		return "", fmt.Errorf("hash helper %s failed: %w", e.Binary, err)
	}

	digest := strings.TrimSpace(string(out))
	if digest == "" {
		return "", fmt.Errorf("hash helper %s returned no digest", e.Binary)
	}
	return digest, nil
}
