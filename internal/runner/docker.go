// Package runner implements C8: dispatching a command either into a docker
// container or natively on the host. Grounded directly on the original
// lal's src/runners/docker.rs (docker_run, the UID/GID fixup image
// derivation, print-only mode) since the teacher repo has no docker
// invocation code of its own to draw on; native.go's process-wide mutex is
// grounded on spec §5's concurrency model instead.
package runner

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/lalbuild/lal/internal/environment"
	"github.com/lalbuild/lal/internal/lalconfig"
	"github.com/lalbuild/lal/internal/lalerrors"
	"github.com/lalbuild/lal/internal/logging"
)

// DockerRunFlags are per-invocation toggles that vary by call site (machine
// accounts turn interactive off; some builds need privileged).
type DockerRunFlags struct {
	Interactive bool
	Privileged  bool
}

// ShellModes controls print-only/X11/host-networking/extra-env behavior,
// shared by `lal shell`, `lal run` and `lal build`.
type ShellModes struct {
	PrintOnly       bool
	X11Forwarding  bool
	HostNetworking bool
	EnvVars        []string
}

// permissionSanityCheck shells out to `id -u`/`id -g` and rejects root,
// since user-namespace remapping is not supported by the image contract.
func permissionSanityCheck() (uid, gid int, err error) {
	uidOut, err := exec.Command("id", "-u").Output()
	if err != nil {
		return 0, 0, lalerrors.IO(err, "running id -u")
	}
	gidOut, err := exec.Command("id", "-g").Output()
	if err != nil {
		return 0, 0, lalerrors.IO(err, "running id -g")
	}
	uid, err = strconv.Atoi(strings.TrimSpace(string(uidOut)))
	if err != nil {
		return 0, 0, lalerrors.IO(err, "parsing id -u output")
	}
	gid, err = strconv.Atoi(strings.TrimSpace(string(gidOut)))
	if err != nil {
		return 0, 0, lalerrors.IO(err, "parsing id -g output")
	}
	if uid == 0 || gid == 0 {
		return 0, 0, lalerrors.DockerPermissionUnsafe(uid, gid)
	}
	return uid, gid, nil
}

func dockerImageID(container environment.Container) (string, error) {
	out, err := exec.Command("docker", "images", "-q", container.String()).Output()
	if err != nil {
		return "", lalerrors.IO(err, "running docker images")
	}
	id := strings.TrimSpace(string(out))
	if id == "" {
		return "", lalerrors.DockerImageNotFound(container.String())
	}
	return id, nil
}

func pullDockerImage(container environment.Container) error {
	cmd := exec.Command("docker", "pull", container.String())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return subprocessError(cmd, err)
	}
	return nil
}

func buildDockerImage(container environment.Container, instructions []string) error {
	joined := strings.ReplaceAll(strings.Join(instructions, "\\n"), "'", `'\''`)
	script := fmt.Sprintf("echo -e '%s' | docker build --tag %s -", joined, container.String())
	cmd := exec.Command("bash", "-c", script)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return subprocessError(cmd, err)
	}
	return nil
}

// fixupContainer derives a per-host image tagged with the original image's
// ID, building it on demand if it does not already exist. See spec §4.8's
// "UID/GID fixup" algorithm.
func fixupContainer(container environment.Container, uid, gid int, logger hclog.Logger) (environment.Container, error) {
	logger.Info("using appropriate container for user", "uid", uid, "gid", gid)
	imageID, err := dockerImageID(container)
	if err != nil {
		if pullErr := pullDockerImage(container); pullErr != nil {
			return environment.Container{}, pullErr
		}
		imageID, err = dockerImageID(container)
		if err != nil {
			return environment.Container{}, err
		}
	}

	derived := environment.Container{
		Name: fmt.Sprintf("%s-u%d_g%d", container.Name, uid, gid),
		Tag:  fmt.Sprintf("from_%s", imageID),
	}
	logger.Info("using container", "container", derived.String())

	if _, err := dockerImageID(derived); err == nil {
		logger.Info("found existing fixup container", "container", derived.String())
		return derived, nil
	}

	instructions := []string{
		fmt.Sprintf("FROM %s", container.String()),
		"USER root",
		fmt.Sprintf("RUN groupmod -g %d lal && usermod -u %d lal", gid, uid),
		"USER lal",
	}
	logger.Info("building fixup container", "container", derived.String())
	if err := buildDockerImage(derived, instructions); err != nil {
		return environment.Container{}, err
	}
	return derived, nil
}

// DockerRun composes and executes (or, in print-only mode, prints) a
// `docker run` invocation per spec §4.8.
func DockerRun(mounts []lalconfig.Mount, container environment.Container, command []string, flags DockerRunFlags, modes ShellModes, componentDir string, logger hclog.Logger) error {
	uid, gid, err := permissionSanityCheck()
	if err != nil {
		return err
	}

	runContainer := container
	if fixed, err := fixupContainer(container, uid, gid, logger); err == nil {
		runContainer = fixed
	} else {
		logger.Warn("continuing without uid/gid fixup container", "error", err)
	}

	args := []string{"run", "--rm"}
	for _, m := range mounts {
		ro := ""
		if m.Readonly {
			ro = ":ro"
		}
		args = append(args, "-v", fmt.Sprintf("%s:%s%s", m.Src, m.Dest, ro))
	}
	args = append(args, "-v", fmt.Sprintf("%s:/home/lal/volume", componentDir))

	if modes.X11Forwarding {
		args = append(args, "-v", "/tmp/.X11-unix:/tmp/.X11-unix:ro", "--env=DISPLAY")
		args = append(args, "-v", fmt.Sprintf("%s/.Xauthority:/home/lal/.Xauthority:ro", xdg.Home))
		args = append(args, "--env=QT_X11_NO_MITSHM=1")
	}
	if modes.HostNetworking {
		args = append(args, "--net=host")
	}
	for _, v := range modes.EnvVars {
		args = append(args, "--env="+v)
	}
	if flags.Privileged {
		args = append(args, "--privileged")
	}

	args = append(args, "-w", "/home/lal/volume", "--user", fmt.Sprintf("%d:%d", uid, gid))

	if len(command) == 0 {
		args = append(args, "--entrypoint", "/bin/bash")
	}
	if flags.Interactive {
		args = append(args, "-it")
	} else {
		args = append(args, "-t")
	}

	args = append(args, runContainer.String())
	args = append(args, command...)

	if modes.PrintOnly {
		if id := logging.InvocationID(logger); id != "" {
			fmt.Printf("# invocation %s\n", id)
		}
		fmt.Print("docker")
		for _, arg := range args {
			if strings.Contains(arg, " ") {
				fmt.Printf(" %q", arg)
			} else {
				fmt.Printf(" %s", arg)
			}
		}
		fmt.Println()
		return nil
	}

	logger.Debug("entering docker")
	cmd := exec.Command("docker", args...)
	cmd.Dir = componentDir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err = cmd.Run()
	logger.Debug("exited docker")
	if err != nil {
		return subprocessError(cmd, err)
	}
	return nil
}

func subprocessError(cmd *exec.Cmd, runErr error) error {
	code := 1001
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	}
	_ = cmd
	return lalerrors.SubprocessFailure(code)
}
