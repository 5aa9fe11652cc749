// MediaLens - companion tool for the cloud media library: browse, search,
// preview and upload assets from the command line.
package main

import (
	"os"

	"github.com/medialens/medialens/internal/cli"
	"github.com/medialens/medialens/internal/version"
)

func main() {
	// Propagate version from the single source of truth (internal/version)
	// to the CLI package.
	cli.Version = version.Version
	cli.BuildTime = version.BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
