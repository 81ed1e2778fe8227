package role

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"

	"github.com/nokia/twampy/control"
	"github.com/nokia/twampy/metrics"
)

// ControlClientConfig parameterizes the Control-Client-only role: it
// negotiates and starts a session on behalf of a separately-running
// Session-Sender/Reflector pair and then blocks until signaled.
type ControlClientConfig struct {
	ServerAddr string
	TOS        uint8
	Session    control.SessionParams
	Metrics    *metrics.Counters
}

// RunControlClient opens the control channel, negotiates and starts
// the session, then blocks until SIGINT/SIGTERM, after which it issues
// Stop-Sessions and closes the channel.
func RunControlClient(cfg ControlClientConfig) error {
	client, err := control.Dial(cfg.ServerAddr, cfg.TOS)
	if err != nil {
		noteLinkDown(cfg.Metrics, err)
		return err
	}
	defer client.Close()

	if err := client.ConnectionSetup(); err != nil {
		noteLinkDown(cfg.Metrics, err)
		return err
	}
	if err := client.RequestSession(cfg.Session); err != nil {
		noteLinkDown(cfg.Metrics, err)
		return err
	}
	if err := client.StartSessions(); err != nil {
		noteLinkDown(cfg.Metrics, err)
		return err
	}

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Debugf("controlclient: sd_notify failed: %v", err)
	} else if sent {
		log.Debug("controlclient: notified systemd readiness")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("controlclient: received shutdown signal")

	return client.StopSessions(1)
}

// noteLinkDown increments the control-link-broken counter when err
// wraps control.ControlLinkBroken; c may be nil (monitoring disabled).
func noteLinkDown(c *metrics.Counters, err error) {
	if c == nil {
		return
	}
	var broken *control.ControlLinkBroken
	if errors.As(err, &broken) {
		c.IncLinkDown()
	}
}
