package role

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/nokia/twampy/clock"
	"github.com/nokia/twampy/endpoint"
	"github.com/nokia/twampy/metrics"
	"github.com/nokia/twampy/padding"
	"github.com/nokia/twampy/sender"
	"github.com/nokia/twampy/stats"
)

// SenderConfig parameterizes the Session-Sender role.
type SenderConfig struct {
	Local      Endpoint
	Remote     Endpoint
	Socket     endpoint.Config
	Padding    padding.Policy
	IntervalMS int
	Count      int
	Metrics    *metrics.Counters
}

// RunSender opens the UDP endpoint, runs the paced send/receive loop
// to completion (or until interrupted) and returns the final report.
func RunSender(cfg SenderConfig) (stats.Report, error) {
	v6 := EitherV6(cfg.Local, cfg.Remote)
	ep, err := endpoint.Open(cfg.Local.String(), v6, cfg.Socket)
	if err != nil {
		return stats.Report{}, err
	}
	defer ep.Close()

	remoteAddr, err := net.ResolveUDPAddr("udp", cfg.Remote.String())
	if err != nil {
		return stats.Report{}, err
	}

	loop := sender.New(ep, clock.System{}, sender.Config{
		IntervalMS: cfg.IntervalMS,
		Count:      cfg.Count,
		Padding:    cfg.Padding,
		Remote:     remoteAddr,
		Metrics:    cfg.Metrics,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("sender: received shutdown signal")
		loop.Stop()
	}()

	report, err := loop.Run()
	signal.Stop(sigCh)
	return report, err
}
