package endpoint

import (
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// setDoNotFragment sets MTU-discover to "always fragment-forbidden" on
// Linux, where both the IPv4 and IPv6 knobs are available.
func setDoNotFragment(fd int, v6 bool) {
	var err error
	if v6 {
		err = unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_MTU_DISCOVER, unix.IPV6_PMTUDISC_DO)
	} else {
		err = unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_MTU_DISCOVER, unix.IP_PMTUDISC_DO)
	}
	if err != nil {
		log.Warnf("do-not-fragment: failed to set MTU-discover: %v", err)
	}
}
