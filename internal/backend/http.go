package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/lalbuild/lal/internal/lalerrors"
)

// HTTP is the remote artifact backend, speaking HTTP(S) to an artifactory-
// style endpoint. Grounded on the teacher's internal/client.APIClient
// (retryablehttp-wrapped client with bearer-token auth and capped retries),
// adapted from Vercel's remote-cache API shape to lal's
// list-versions/get/put endpoints (spec §6, "Wire protocol").
type HTTP struct {
	baseURL   string
	token     string
	cacheRoot string
	client    *retryablehttp.Client
}

// NewHTTP builds an HTTP backend. cacheRoot is still required locally: the
// cached layer (package cachedbackend) always materializes a local copy of
// anything it downloads, same as the original lal's storage model where
// every Backend reports its own GetCacheDir.
func NewHTTP(baseURL, token, cacheRoot string, logger hclog.Logger) *HTTP {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.RetryMax = 3
	rc.Logger = logger
	if cert := os.Getenv("SSL_CERT_FILE"); cert != "" {
		logger.Debug("honoring SSL_CERT_FILE", "path", cert)
	}
	return &HTTP{baseURL: baseURL, token: token, cacheRoot: cacheRoot, client: rc}
}

func (h *HTTP) GetCacheDir() string { return h.cacheRoot }

func (h *HTTP) GetVersions(name, env string) ([]int, error) {
	url := fmt.Sprintf("%s/environments/%s/%s/versions", h.baseURL, env, name)
	resp, err := h.client.Get(url)
	if err != nil {
		return nil, lalerrors.BackendFailure("listing versions: " + err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, lalerrors.BackendFailure(fmt.Sprintf("listing versions: unexpected status %d", resp.StatusCode))
	}
	var versions []int
	if err := json.NewDecoder(resp.Body).Decode(&versions); err != nil {
		return nil, lalerrors.JSON(err, "decoding version list")
	}
	if len(versions) > 100 {
		versions = versions[len(versions)-100:]
	}
	return versions, nil
}

func (h *HTTP) GetLatestVersion(name, env string) (int, error) {
	versions, err := h.GetVersions(name, env)
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, errNoVersionsFound(name, env)
	}
	return versions[len(versions)-1], nil
}

func (h *HTTP) GetComponentInfo(name string, version *int, env string) (Component, error) {
	v := 0
	if version != nil {
		v = *version
	} else {
		latest, err := h.GetLatestVersion(name, env)
		if err != nil {
			return Component{}, err
		}
		v = latest
	}
	loc := fmt.Sprintf("%s/environments/%s/%s/%d/%s.tar.gz", h.baseURL, env, name, v, name)
	return Component{Name: name, Version: v, Location: loc}, nil
}

// RawFetch downloads src (a URL) to dest via a streaming GET.
func (h *HTTP) RawFetch(src, dest string) error {
	resp, err := h.client.Get(src)
	if err != nil {
		return lalerrors.BackendFailure("fetching " + src + ": " + err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return lalerrors.BackendFailure(fmt.Sprintf("fetching %s: unexpected status %d", src, resp.StatusCode))
	}
	f, err := os.Create(dest)
	if err != nil {
		return lalerrors.IO(err, "creating "+dest)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return lalerrors.IO(err, "writing "+dest)
	}
	return nil
}

// PublishArtifact authenticates with the bearer token and PUTs the tarball
// and lockfile. Refuses if either is missing from ARTIFACT/, same contract
// as the local backend.
func (h *HTTP) PublishArtifact(dir, name string, version int, env string) error {
	artifactDir := dir + "/ARTIFACT"
	tarball := artifactDir + "/" + name + ".tar.gz"
	lockfile := artifactDir + "/lockfile.json"
	if _, err := os.Stat(tarball); err != nil {
		return lalerrors.UploadFailure(name + ".tar.gz not found in ARTIFACT")
	}
	if _, err := os.Stat(lockfile); err != nil {
		return lalerrors.UploadFailure("lockfile.json not found in ARTIFACT")
	}

	base := fmt.Sprintf("%s/environments/%s/%s/%s", h.baseURL, env, name, strconv.Itoa(version))
	if err := h.put(base+"/"+name+".tar.gz", tarball); err != nil {
		return err
	}
	return h.put(base+"/lockfile.json", lockfile)
}

func (h *HTTP) put(url, localPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return lalerrors.IO(err, "reading "+localPath)
	}
	req, err := retryablehttp.NewRequest(http.MethodPut, url, data)
	if err != nil {
		return lalerrors.BackendFailure("building publish request: " + err.Error())
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return lalerrors.UploadFailure(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return lalerrors.UploadFailure(fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, url))
	}
	return nil
}
