//go:build !linux

package endpoint

import log "github.com/sirupsen/logrus"

// setDoNotFragment is a no-op on platforms without a portable
// MTU-discover socket option; the endpoint still works, it simply
// cannot forbid fragmentation of its own test packets.
func setDoNotFragment(_ int, _ bool) {
	log.Warn("do-not-fragment: not supported on this platform, ignoring")
}
