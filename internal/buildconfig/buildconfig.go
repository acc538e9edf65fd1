// Package buildconfig exposes the version stamped into the binary at build
// time. The values arrive via -ldflags and default to placeholders for plain
// go-run builds.
package buildconfig

var (
	version = "dev"
	commit  = "unknown"
)

// Version returns the release tag the binary was built from.
func Version() string {
	return version
}

// Commit returns the git revision the binary was built from.
func Commit() string {
	return commit
}

// VersionInfo bundles both values for log fields and the health endpoint.
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  commit,
	}
}
