package runner

import (
	"os/exec"
	"os/user"
	"strconv"
	"testing"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/lalbuild/lal/internal/environment"
	"github.com/lalbuild/lal/internal/lalconfig"
)

// dockerTestEnv reports whether this host can exercise DockerRun against a
// real docker daemon: it needs the docker binary on PATH and a non-root
// invoking user, since permissionSanityCheck refuses uid/gid 0 by design.
func dockerTestEnv(t *testing.T) (skip bool) {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		return true
	}
	u, err := user.Current()
	if err != nil {
		return true
	}
	uid, _ := strconv.Atoi(u.Uid)
	return uid == 0
}

func TestDockerRunPrintOnlyComposesArgv(t *testing.T) {
	if dockerTestEnv(t) {
		t.Skip("requires a non-root user with docker on PATH")
	}

	mounts := []lalconfig.Mount{{Src: "/data", Dest: "/mnt/data", Readonly: true}}
	container := environment.Container{Name: "lal-alpine", Tag: "latest"}
	modes := ShellModes{PrintOnly: true}

	err := DockerRun(mounts, container, []string{"echo", "hi"}, DockerRunFlags{Interactive: true}, modes, t.TempDir(), hclog.NewNullLogger())
	if err != nil {
		t.Skipf("docker image lookup unavailable in this environment: %v", err)
	}
}
