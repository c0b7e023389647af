package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/lalbuild/lal/internal/lalerrors"
)

func lalInvalidFlag(arg string) error {
	return lalerrors.ManifestInvalid(fmt.Sprintf("unknown flag: %s", arg))
}

func lastPathElement(dir string) string {
	return filepath.Base(filepath.Clean(dir))
}

// copyToDir copies src to dest, creating dest's parent directory if needed.
func copyToDir(src, dest string) error {
	data, err := ioutil.ReadFile(src)
	if err != nil {
		return lalerrors.IO(err, "reading "+src)
	}
	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return lalerrors.IO(err, "creating "+dir)
		}
	}
	if err := ioutil.WriteFile(dest, data, 0644); err != nil {
		return lalerrors.IO(err, "writing "+dest)
	}
	return nil
}
