package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar"
	"github.com/lalbuild/lal/internal/lalerrors"
)

// CleanCommand implements `lal clean [-d days] [--only=<glob>]`:
// garbage-collects cached artifact cells whose tarball has not been touched
// in the given window.
type CleanCommand struct{ app *app }

func (c *CleanCommand) Synopsis() string { return "Garbage-collect the artifact cache" }

func (c *CleanCommand) Help() string {
	return strings.TrimSpace(`
Usage: lal clean [-d days] [--only=<glob>]

  Remove cached artifact cells with no file modified in the last <days>
  days (default 14). --only restricts removal to cells whose path matches
  the given glob (doublestar syntax, e.g. "default/**" or "*/heylib/*"):
  "<environment>/<name>/<version>" for published cells, "<name>/<tag>"
  for stashed cells.
`)
}

func (c *CleanCommand) Run(args []string) int {
	days := 14
	var only string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-d":
			if i+1 >= len(args) {
				c.app.ui.Error("-d requires a number of days")
				return 1
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil {
				c.app.logError(lalerrors.ManifestInvalid("invalid -d value: " + args[i]))
				return 1
			}
			days = n
		case strings.HasPrefix(args[i], "-d="):
			n, err := strconv.Atoi(args[i][len("-d="):])
			if err != nil {
				c.app.logError(lalerrors.ManifestInvalid("invalid -d value"))
				return 1
			}
			days = n
		case strings.HasPrefix(args[i], "--only="):
			only = args[i][len("--only="):]
		default:
			c.app.logError(lalInvalidFlag(args[i]))
			return 1
		}
	}

	cfg, err := c.app.loadConfig()
	if err != nil {
		c.app.logError(err)
		return 1
	}

	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	removed := 0
	for _, root := range []string{filepath.Join(cfg.Cache, "environments"), filepath.Join(cfg.Cache, "stash")} {
		n, err := cleanStaleCells(root, root, cutoff, only)
		if err != nil {
			c.app.logError(err)
			return 1
		}
		removed += n
	}
	c.app.ui.Output("removed " + strconv.Itoa(removed) + " stale cache cells")
	return 0
}

// cleanStaleCells removes leaf directories under dir whose newest file is
// older than cutoff and whose path relative to root matches the only glob
// (doublestar.Match; an empty glob matches everything). Leaf directories
// are the version/tag cells that hold a tarball plus its sibling
// lockfile.json.
func cleanStaleCells(root, dir string, cutoff time.Time, only string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, lalerrors.IO(err, "reading "+dir)
	}

	removed := 0
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if !e.IsDir() {
			continue
		}
		if isCell(path) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return removed, lalerrors.IO(err, "resolving "+path)
			}
			if only != "" {
				matched, err := doublestar.Match(only, filepath.ToSlash(rel))
				if err != nil {
					return removed, lalerrors.ManifestInvalid("invalid --only glob: " + err.Error())
				}
				if !matched {
					continue
				}
			}
			stale, err := cellIsStale(path, cutoff)
			if err != nil {
				return removed, err
			}
			if stale {
				if err := os.RemoveAll(path); err != nil {
					return removed, lalerrors.IO(err, "removing "+path)
				}
				removed++
			}
			continue
		}
		n, err := cleanStaleCells(root, path, cutoff, only)
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, nil
}

// isCell reports whether dir holds a tarball directly (i.e. is a leaf
// version/tag cell, not an intermediate name/environment directory).
func isCell(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".tar.gz") {
			return true
		}
	}
	return false
}

func cellIsStale(dir string, cutoff time.Time) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, lalerrors.IO(err, "reading "+dir)
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			return false, lalerrors.IO(err, "statting "+e.Name())
		}
		if info.ModTime().After(cutoff) {
			return false, nil
		}
	}
	return true, nil
}
