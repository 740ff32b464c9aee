// Package version exposes build metadata injected at link time, e.g.
//
//	go build -ldflags "-X github.com/digital-business-cards/walletpass/internal/version.version=1.2.0"
package version

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

type Info struct {
	Version   string
	BuildDate string
	GitCommit string
}

// Get returns the build information for the running binary.
func Get() Info {
	return Info{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
	}
}
