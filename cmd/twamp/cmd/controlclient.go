package cmd

import (
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nokia/twampy/control"
	"github.com/nokia/twampy/metrics"
	"github.com/nokia/twampy/role"
)

var controlClientCountFlag int

var controlClientCmd = &cobra.Command{
	Use:   "controlclient <twamp-sender-ip:port> <twamp-server-ip:port>",
	Short: "Run the Control-Client-only role against a separately-running sender/reflector pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		configureLogging()

		sender, err := role.ParseAddress(args[0], 20001)
		if err != nil {
			return err
		}
		server, err := role.ParseAddress(args[1], control.DefaultPort)
		if err != nil {
			return err
		}

		tos, _, _, _, err := socketOptions(sender.V6)
		if err != nil {
			return err
		}

		var counters *metrics.Counters
		if monitoringPort != 0 {
			counters = &metrics.Counters{}
			go metrics.Start(monitoringPort, counters)
		}

		return role.RunControlClient(role.ControlClientConfig{
			ServerAddr: net.JoinHostPort(server.Host, strconv.Itoa(server.Port)),
			TOS:        tos,
			Metrics:    counters,
			Session: control.SessionParams{
				IPv6:           sender.V6,
				SenderAddr:     net.ParseIP(sender.Host),
				SenderPort:     uint16(sender.Port),
				TimeoutSeconds: 3,
				DSCP:           tos >> 2,
			},
		})
	},
}

func init() {
	RootCmd.AddCommand(controlClientCmd)
	controlClientCmd.Flags().IntVarP(&controlClientCountFlag, "count", "c", 100, "number of test packets the paired sender will send")
}
