package backend

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/lalbuild/lal/internal/lalerrors"
)

// Local is an artifact backend that reads/writes another filesystem tree,
// grounded on the original lal's src/storage/local.rs LocalBackend.
type Local struct {
	cacheRoot string
}

// NewLocal builds a Local backend rooted at cacheRoot, creating it if absent.
func NewLocal(cacheRoot string) (*Local, error) {
	if err := os.MkdirAll(cacheRoot, 0755); err != nil {
		return nil, lalerrors.IO(err, "creating local backend cache root")
	}
	return &Local{cacheRoot: cacheRoot}, nil
}

func (l *Local) GetCacheDir() string { return l.cacheRoot }

func (l *Local) GetVersions(name, env string) ([]int, error) {
	dir := filepath.Join(l.cacheRoot, "environments", env, name)
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, lalerrors.IO(err, "listing versions")
	}
	var versions []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if v, err := strconv.Atoi(e.Name()); err == nil {
			versions = append(versions, v)
		}
	}
	sort.Ints(versions)
	if len(versions) > 100 {
		versions = versions[len(versions)-100:]
	}
	return versions, nil
}

func (l *Local) GetLatestVersion(name, env string) (int, error) {
	versions, err := l.GetVersions(name, env)
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, errNoVersionsFound(name, env)
	}
	return versions[len(versions)-1], nil
}

func (l *Local) GetComponentInfo(name string, version *int, env string) (Component, error) {
	v := 0
	if version != nil {
		v = *version
	} else {
		latest, err := l.GetLatestVersion(name, env)
		if err != nil {
			return Component{}, err
		}
		v = latest
	}
	loc := filepath.Join(l.cacheRoot, "environments", env, name, strconv.Itoa(v), name+".tar.gz")
	return Component{Name: name, Version: v, Location: loc}, nil
}

func (l *Local) PublishArtifact(dir, name string, version int, env string) error {
	artifactDir := filepath.Join(dir, "ARTIFACT")
	tarball := filepath.Join(artifactDir, name+".tar.gz")
	lockfile := filepath.Join(artifactDir, "lockfile.json")
	if _, err := os.Stat(tarball); err != nil {
		return lalerrors.UploadFailure(name + ".tar.gz not found in ARTIFACT")
	}
	if _, err := os.Stat(lockfile); err != nil {
		return lalerrors.UploadFailure("lockfile.json not found in ARTIFACT")
	}

	cellDir := filepath.Join(l.cacheRoot, "environments", env, name, strconv.Itoa(version))
	if err := os.MkdirAll(cellDir, 0755); err != nil {
		return lalerrors.IO(err, "creating cache cell")
	}
	if err := copyFile(tarball, filepath.Join(cellDir, name+".tar.gz")); err != nil {
		return err
	}
	return copyFile(lockfile, filepath.Join(cellDir, "lockfile.json"))
}

func (l *Local) RawFetch(src, dest string) error {
	return copyFile(src, dest)
}

// copyFile writes to a temp file in dest's directory then renames, so
// concurrent writers to the same cell never observe a partially-written
// file (spec §4.3: "safe pattern: write to a temp file ... then rename").
func copyFile(src, dest string) error {
	data, err := ioutil.ReadFile(src)
	if err != nil {
		return lalerrors.IO(err, "reading "+src)
	}
	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return lalerrors.IO(err, "creating destination directory")
		}
	}
	tmp, err := ioutil.TempFile(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return lalerrors.IO(err, "creating temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return lalerrors.IO(err, "writing "+dest)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return lalerrors.IO(err, "closing "+dest)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return lalerrors.IO(err, "renaming into place "+dest)
	}
	return nil
}
