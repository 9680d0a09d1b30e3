// Package version exposes build identification, overridable at link time.
package version

import "runtime/debug"

//nolint:gochecknoglobals // set through -ldflags -X
var (
	name    = "qcsummary"
	version = ""
	commit  = ""
)

// Name returns the binary name.
func Name() string {
	return name
}

// Version returns the release version, falling back to the module version recorded in the build info.
func Version() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "dev"
}

// Commit returns the VCS revision the binary was built from.
func Commit() string {
	if commit != "" {
		return commit
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return "unknown"
}
