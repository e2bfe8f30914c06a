package version

var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)

// Resolve returns the version string baked in at build time.
func Resolve() string {
	if Version == "" {
		return "0.0.0"
	}
	return Version
}
