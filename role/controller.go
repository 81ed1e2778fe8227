package role

import (
	"time"

	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"

	"github.com/nokia/twampy/control"
	"github.com/nokia/twampy/stats"
)

// stopGrace is how long the controller waits for in-flight replies
// after the embedded sender exits, before issuing Stop-Sessions.
const stopGrace = 5 * time.Second

// ControllerConfig parameterizes the combined Control-Client +
// Session-Sender role.
type ControllerConfig struct {
	ServerAddr string
	TOS        uint8
	Session    control.SessionParams
	Sender     SenderConfig
}

// RunController negotiates and starts a session over the control
// channel, runs the embedded sender loop to completion, waits a short
// grace period, then stops the session and tears the channel down.
func RunController(cfg ControllerConfig) (stats.Report, error) {
	client, err := control.Dial(cfg.ServerAddr, cfg.TOS)
	if err != nil {
		noteLinkDown(cfg.Sender.Metrics, err)
		return stats.Report{}, err
	}
	defer client.Close()

	if err := client.ConnectionSetup(); err != nil {
		noteLinkDown(cfg.Sender.Metrics, err)
		return stats.Report{}, err
	}
	if err := client.RequestSession(cfg.Session); err != nil {
		noteLinkDown(cfg.Sender.Metrics, err)
		return stats.Report{}, err
	}
	if err := client.StartSessions(); err != nil {
		noteLinkDown(cfg.Sender.Metrics, err)
		return stats.Report{}, err
	}

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Debugf("controller: sd_notify failed: %v", err)
	} else if sent {
		log.Debug("controller: notified systemd readiness")
	}

	report, runErr := RunSender(cfg.Sender)

	log.Debugf("controller: waiting %s grace period for in-flight replies", stopGrace)
	time.Sleep(stopGrace)

	if err := client.StopSessions(1); err != nil {
		log.Errorf("controller: stop-sessions failed: %v", err)
	}

	return report, runErr
}
