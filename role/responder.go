package role

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nokia/twampy/clock"
	"github.com/nokia/twampy/endpoint"
	"github.com/nokia/twampy/metrics"
	"github.com/nokia/twampy/padding"
	"github.com/nokia/twampy/reflector"
)

// ResponderConfig parameterizes the Session-Reflector role.
type ResponderConfig struct {
	Local   Endpoint
	Socket  endpoint.Config
	Padding padding.Policy
	Metrics *metrics.Counters
}

// RunResponder opens the UDP endpoint and reflects test packets until
// SIGINT/SIGTERM, or the socket is closed from under it.
func RunResponder(cfg ResponderConfig) error {
	ep, err := endpoint.Open(cfg.Local.String(), cfg.Local.V6, cfg.Socket)
	if err != nil {
		return err
	}
	defer ep.Close()

	refl := reflector.New(clock.System{}, cfg.Padding)

	g, ctx := errgroup.WithContext(context.Background())
	stop := make(chan struct{})

	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
		case <-ctx.Done():
			return nil
		}
		log.Info("responder: received shutdown signal")
		close(stop)
		return ep.Close()
	})

	g.Go(func() error {
		if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
			log.Debugf("responder: sd_notify failed: %v", err)
		} else if sent {
			log.Debug("responder: notified systemd readiness")
		}
		for {
			select {
			case <-stop:
				return nil
			default:
			}
			data, peer, err := ep.Recv()
			if err != nil {
				select {
				case <-stop:
					return nil
				default:
					return err
				}
			}
			if cfg.Metrics != nil {
				cfg.Metrics.IncReceived()
			}
			reply := refl.HandleDatagram(data, peer)
			if reply == nil {
				if cfg.Metrics != nil {
					cfg.Metrics.IncMalformed()
				}
				continue
			}
			if err := ep.Send(reply, peer); err != nil {
				log.Errorf("responder: send failed: %v", err)
				continue
			}
			if cfg.Metrics != nil {
				cfg.Metrics.IncSent()
			}
		}
	})

	return g.Wait()
}
