// Package version holds the build-time version string and validates
// it at startup so a malformed build stamp fails loudly instead of
// printing garbage in --version output.
package version

import (
	goversion "github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"
)

// Version is set at build time via -ldflags; it defaults to a
// development marker that still parses as a valid version.
var Version = "0.0.0-dev"

func init() {
	if _, err := goversion.NewVersion(Version); err != nil {
		log.Fatalf("version: invalid build version %q: %v", Version, err)
	}
}
