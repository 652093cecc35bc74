package settings

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/sirupsen/logrus"
)

// Migrate brings settings written under the old file name into dir.
//
// A legacy file in legacyDir is moved into dir first, then a legacy file in
// dir is renamed to settings.json. An existing file at the destination of a
// step is never overwritten; that step is skipped. legacyDir may be empty.
func Migrate(dir, legacyDir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	legacy := filepath.Join(dir, LegacyFileName)
	if legacyDir != "" {
		if err := move(filepath.Join(legacyDir, LegacyFileName), legacy); err != nil {
			return err
		}
	}
	return move(legacy, filepath.Join(dir, FileName))
}

func move(from, to string) error {
	if !exists(from) || exists(to) {
		return nil
	}

	logger.Log.WithFields(logrus.Fields{
		"from": from,
		"to":   to,
	}).Info("Migrating settings file")

	err := os.Rename(from, to)
	if err == nil {
		return nil
	}

	// Rename fails across filesystems; fall back to copy and remove
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return fmt.Errorf("failed to migrate %s: %w", from, err)
	}
	if err := copyFile(from, to); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", from, err)
	}
	if err := os.Remove(from); err != nil {
		logger.Log.WithError(err).WithField("path", from).Warn("Migrated settings but could not remove the old file")
	}
	return nil
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// a partial destination would block the next migration attempt
		_ = os.Remove(to)
		return err
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
