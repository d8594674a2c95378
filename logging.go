package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
)

// setupLogging points the standard logger at path after shifting earlier
// runs to path.1 ... path.<backups>. The oldest backup is dropped.
// "-" keeps stderr and returns a nil file.
func setupLogging(path string, backups int) (*os.File, error) {
	switch path {
	case "":
		return nil, errors.New("log file path is empty")
	case "-":
		return nil, nil
	}

	if err := rotateLogs(path, backups); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	log.SetOutput(f)
	return f, nil
}

func rotateLogs(path string, backups int) error {
	if backups <= 0 {
		return nil
	}

	backup := func(n int) string { return fmt.Sprintf("%s.%d", path, n) }
	if err := os.Remove(backup(backups)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("drop oldest log: %w", err)
	}
	for n := backups - 1; n >= 1; n-- {
		if err := os.Rename(backup(n), backup(n+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("rotate %s: %w", backup(n), err)
		}
	}
	if err := os.Rename(path, backup(1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("rotate %s: %w", path, err)
	}
	return nil
}
