package cmd

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/nokia/twampy/control"
	"github.com/nokia/twampy/endpoint"
	"github.com/nokia/twampy/metrics"
	"github.com/nokia/twampy/role"
)

var (
	controllerIntervalFlag int
	controllerCountFlag    int
)

var controllerCmd = &cobra.Command{
	Use:   "controller <remote> <local>",
	Short: "Run the combined Control-Client + Session-Sender role",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		configureLogging()

		remote, err := role.ParseAddress(args[0], 20001)
		if err != nil {
			return err
		}
		local, err := role.ParseAddress(args[1], 20000)
		if err != nil {
			return err
		}

		tos, ttl, pad, dnf, err := socketOptions(role.EitherV6(local, remote))
		if err != nil {
			return err
		}

		controlAddr := net.JoinHostPort(remote.Host, "862")

		var counters *metrics.Counters
		if monitoringPort != 0 {
			counters = &metrics.Counters{}
			go metrics.Start(monitoringPort, counters)
		}

		report, runErr := role.RunController(role.ControllerConfig{
			ServerAddr: controlAddr,
			TOS:        tos,
			Session: control.SessionParams{
				IPv6:           remote.V6,
				SenderPort:     uint16(local.Port),
				ReceiverPort:   uint16(remote.Port),
				TimeoutSeconds: 3,
				DSCP:           tos >> 2,
			},
			Sender: role.SenderConfig{
				Local:      local,
				Remote:     remote,
				Socket:     endpoint.Config{TOS: tos, TTL: ttl, DoNotFragment: dnf},
				Padding:    pad,
				IntervalMS: controllerIntervalFlag,
				Count:      controllerCountFlag,
				Metrics:    counters,
			},
		})
		printReport(remote.String(), report)
		return runErr
	},
}

func init() {
	RootCmd.AddCommand(controllerCmd)
	controllerCmd.Flags().IntVarP(&controllerIntervalFlag, "interval", "i", 100, "inter-packet interval, milliseconds")
	controllerCmd.Flags().IntVarP(&controllerCountFlag, "count", "c", 100, "number of test packets to send")
}
