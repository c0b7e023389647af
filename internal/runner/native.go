package runner

import (
	"os"
	"os/exec"
	"sync"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/lalbuild/lal/internal/environment"
	"github.com/lalbuild/lal/internal/lalconfig"
)

// nativeMu serializes all native runs process-wide: changing a child
// process's working directory touches the OS process's global cwd state
// (Command.Dir forks then chdirs in the child before exec, but the
// surrounding Go runtime's os.Getwd/os.Chdir callers elsewhere in the same
// process would otherwise race with concurrently-starting children), so
// spec §5 requires holding a single lock across the whole of status().
var nativeMu sync.Mutex

// NativeRun executes command with its working directory set to dir, holding
// the process-wide native-run lock for the command's entire lifetime.
func NativeRun(command []string, env []string, dir string, logger hclog.Logger) error {
	nativeMu.Lock()
	defer nativeMu.Unlock()

	if len(command) == 0 {
		return nil
	}
	logger.Debug("running natively", "command", command, "dir", dir)
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return subprocessError(cmd, err)
	}
	return nil
}

// Run dispatches to DockerRun or NativeRun depending on env, matching the
// original lal's top-level run() function.
func Run(cfg *lalconfig.Config, env environment.Environment, command []string, flags DockerRunFlags, modes ShellModes, componentDir string, logger hclog.Logger) error {
	if env.IsContainer() {
		return DockerRun(cfg.Mounts, *env.Container, command, flags, modes, componentDir, logger)
	}
	return NativeRun(command, modes.EnvVars, componentDir, logger)
}
