// Package buildinfo carries version metadata stamped at link time via
// -ldflags "-X routeengine/internal/buildinfo.Version=...".
package buildinfo

var (
	Version = "dev"
	Commit  = ""
	BuiltAt = ""
)

func Info() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"builtAt": BuiltAt,
	}
}
