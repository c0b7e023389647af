// Package lalerrors defines the flat error taxonomy shared by every lal
// component, and the small helpers used to build and inspect it.
package lalerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind discriminates the fixed set of error cases a lal command can surface.
type Kind int

const (
	// KindUnknown is the zero value; never constructed directly.
	KindUnknown Kind = iota
	KindManifestMissing
	KindManifestInvalid
	KindConfigMissing
	KindComponentUnknown
	KindConfigurationUnknown
	KindEnvironmentUnknown
	KindEnvironmentMismatch
	KindBuildScriptMissing
	KindBuildScriptNotExecutable
	KindVersionMismatch
	KindMultipleVersions
	KindNonGlobalDependencies
	KindMissingStashArtifact
	KindMissingReleaseBuild
	KindInstallFailure
	KindUploadFailure
	KindSubprocessFailure
	KindBackendFailure
	KindNoIntersectedVersion
	KindInvalidComponentName
	KindDockerImageNotFound
	KindDockerPermissionUnsafe
	KindIO
	KindJSON
)

// CliError is the single error type every lal command returns. It carries a
// Kind for programmatic dispatch (tests assert on it) plus a human message.
type CliError struct {
	Kind    Kind
	Message string
	Code    int // populated for KindSubprocessFailure
	cause   error
}

func (e *CliError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap lets errors.Is/errors.As and pkg/errors.Cause see through to the cause.
func (e *CliError) Unwrap() error { return e.cause }

func newErr(k Kind, msg string) *CliError {
	return &CliError{Kind: k, Message: msg}
}

func wrapErr(k Kind, cause error, msg string) *CliError {
	return &CliError{Kind: k, Message: msg, cause: cause}
}

// Constructors, one per taxonomy entry in spec §7.

func ManifestMissing(dir string) error {
	return newErr(KindManifestMissing, fmt.Sprintf("no manifest.json or .lal/manifest.json found in %s", dir))
}

func ManifestInvalid(reason string) error {
	return newErr(KindManifestInvalid, fmt.Sprintf("manifest is invalid: %s", reason))
}

func ConfigMissing() error {
	return newErr(KindConfigMissing, "no lal config found - run `lal configure`")
}

func ComponentUnknown(name string) error {
	return newErr(KindComponentUnknown, fmt.Sprintf("component %q not found in manifest", name))
}

func ConfigurationUnknown(name string) error {
	return newErr(KindConfigurationUnknown, fmt.Sprintf("configuration %q not found in components list", name))
}

func EnvironmentUnknown(name string) error {
	return newErr(KindEnvironmentUnknown, fmt.Sprintf("environment %q is not supported by this manifest", name))
}

func EnvironmentMismatch(name, found string) error {
	return newErr(KindEnvironmentMismatch, fmt.Sprintf("%s was built in environment %q, expected the working environment", name, found))
}

func BuildScriptMissing() error {
	return newErr(KindBuildScriptMissing, "no BUILD script found in .lal/BUILD or ./BUILD")
}

func BuildScriptNotExecutable(path string) error {
	return newErr(KindBuildScriptNotExecutable, fmt.Sprintf("%s is not executable", path))
}

func VersionMismatch(name string, expected, found int) error {
	return newErr(KindVersionMismatch, fmt.Sprintf("%s: expected version %d, found %d in INPUT", name, expected, found))
}

func MultipleVersions(name string, versions []string) error {
	return newErr(KindMultipleVersions, fmt.Sprintf("%s resolves to multiple versions in the tree: %v", name, versions))
}

func NonGlobalDependencies(name string) error {
	return newErr(KindNonGlobalDependencies, fmt.Sprintf("%s is used transitively by multiple subtrees but is not a direct dependency", name))
}

func MissingStashArtifact(ref string) error {
	return newErr(KindMissingStashArtifact, fmt.Sprintf("no stashed artifact found for %s", ref))
}

func MissingReleaseBuild() error {
	return newErr(KindMissingReleaseBuild, "no OUTPUT/lockfile.json found - run `lal build` first")
}

func InstallFailure() error {
	return newErr(KindInstallFailure, "one or more dependencies failed to install, INPUT was wiped")
}

func UploadFailure(reason string) error {
	return newErr(KindUploadFailure, fmt.Sprintf("publish failed: %s", reason))
}

func SubprocessFailure(code int) error {
	e := newErr(KindSubprocessFailure, fmt.Sprintf("subprocess exited with code %d", code))
	e.Code = code
	return e
}

func BackendFailure(msg string) error {
	return newErr(KindBackendFailure, msg)
}

func NoIntersectedVersion(name string) error {
	return newErr(KindNoIntersectedVersion, fmt.Sprintf("no version of %s is available in all requested environments", name))
}

func InvalidComponentName(name string) error {
	return newErr(KindInvalidComponentName, fmt.Sprintf("%q is not a valid component name (must be lowercase)", name))
}

func DockerImageNotFound(container string) error {
	return newErr(KindDockerImageNotFound, fmt.Sprintf("docker image %s not found locally", container))
}

func DockerPermissionUnsafe(uid, gid int) error {
	return newErr(KindDockerPermissionUnsafe, fmt.Sprintf("refusing to run container as uid=%d gid=%d", uid, gid))
}

// IO wraps an I/O error with pkg/errors so callers keep a stack trace.
func IO(err error, context string) error {
	if err == nil {
		return nil
	}
	return wrapErr(KindIO, errors.Wrap(err, context), context)
}

// JSON wraps a json.Marshal/Unmarshal error.
func JSON(err error, context string) error {
	if err == nil {
		return nil
	}
	return wrapErr(KindJSON, errors.Wrap(err, context), context)
}

// Is reports whether err is a *CliError of the given kind.
func Is(err error, k Kind) bool {
	var ce *CliError
	if errors.As(err, &ce) {
		return ce.Kind == k
	}
	return false
}
