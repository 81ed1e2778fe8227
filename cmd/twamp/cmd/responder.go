package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nokia/twampy/endpoint"
	"github.com/nokia/twampy/metrics"
	"github.com/nokia/twampy/role"
)

var responderTimerFlag int

var responderCmd = &cobra.Command{
	Use:   "responder [local-ip:port]",
	Short: "Run the Session-Reflector role",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		configureLogging()

		local := ":20001"
		if len(args) == 1 {
			local = args[0]
		}
		ep, err := role.ParseAddress(local, 20001)
		if err != nil {
			return err
		}

		tos, ttl, pad, dnf, err := socketOptions(ep.V6)
		if err != nil {
			return err
		}

		var counters *metrics.Counters
		if monitoringPort != 0 {
			counters = &metrics.Counters{}
			go metrics.Start(monitoringPort, counters)
		}

		log.Infof("responder: listening on %s", ep.String())
		return role.RunResponder(role.ResponderConfig{
			Local:   ep,
			Socket:  endpoint.Config{TOS: tos, TTL: ttl, DoNotFragment: dnf},
			Padding: pad,
			Metrics: counters,
		})
	},
}

func init() {
	RootCmd.AddCommand(responderCmd)
	// --timer is accepted and stored but not otherwise used; reserved
	// for a future per-session idle-reset override.
	responderCmd.Flags().IntVar(&responderTimerFlag, "timer", 0, "reserved: per-session idle timer override, seconds")
}
