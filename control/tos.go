package control

import (
	"net"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// applyTOS sets IP_TOS (or IPV6_TCLASS) on the control connection's
// socket. Failures are logged, not fatal: TOS marking is best-effort.
func applyTOS(conn *net.TCPConn, tos uint8) {
	if tos == 0 {
		return
	}
	sc, err := conn.SyscallConn()
	if err != nil {
		log.Warnf("control: could not get raw conn for TOS: %v", err)
		return
	}
	raddr, ok := conn.RemoteAddr().(*net.TCPAddr)
	v6 := ok && raddr.IP.To4() == nil

	ctrlErr := sc.Control(func(fd uintptr) {
		if v6 {
			ctrlErr := unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_TCLASS, int(tos))
			if ctrlErr != nil {
				log.Warnf("control: failed to set IPV6_TCLASS: %v", ctrlErr)
			}
			return
		}
		if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_TOS, int(tos)); err != nil {
			log.Warnf("control: failed to set IP_TOS: %v", err)
		}
	})
	if ctrlErr != nil {
		log.Warnf("control: socket control failed: %v", ctrlErr)
	}
}
