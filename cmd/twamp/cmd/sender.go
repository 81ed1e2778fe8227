package cmd

import (
	"fmt"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nokia/twampy/endpoint"
	"github.com/nokia/twampy/metrics"
	"github.com/nokia/twampy/role"
	"github.com/nokia/twampy/stats"
)

var (
	senderIntervalFlag int
	senderCountFlag    int
)

var senderCmd = &cobra.Command{
	Use:   "sender [remote-ip:port] [local-ip:port]",
	Short: "Run the Session-Sender role",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		configureLogging()

		remoteArg := "127.0.0.1:20001"
		if len(args) >= 1 {
			remoteArg = args[0]
		}
		localArg := ":20000"
		if len(args) >= 2 {
			localArg = args[1]
		}

		remote, err := role.ParseAddress(remoteArg, 20001)
		if err != nil {
			return err
		}
		local, err := role.ParseAddress(localArg, 20000)
		if err != nil {
			return err
		}

		tos, ttl, pad, dnf, err := socketOptions(role.EitherV6(local, remote))
		if err != nil {
			return err
		}

		var counters *metrics.Counters
		if monitoringPort != 0 {
			counters = &metrics.Counters{}
			go metrics.Start(monitoringPort, counters)
		}

		report, runErr := role.RunSender(role.SenderConfig{
			Local:      local,
			Remote:     remote,
			Socket:     endpoint.Config{TOS: tos, TTL: ttl, DoNotFragment: dnf},
			Padding:    pad,
			IntervalMS: senderIntervalFlag,
			Count:      senderCountFlag,
			Metrics:    counters,
		})
		printReport(remote.String(), report)
		return runErr
	},
}

func init() {
	RootCmd.AddCommand(senderCmd)
	senderCmd.Flags().IntVarP(&senderIntervalFlag, "interval", "i", 100, "inter-packet interval, milliseconds")
	senderCmd.Flags().IntVarP(&senderCountFlag, "count", "c", 100, "number of test packets to send")
}

// printReport renders a report and, when it carries total loss, also
// logs a red error line saying no replies were received.
func printReport(remote string, r stats.Report) {
	stats.Render(logWriter(), remote, r)
	if r.LossRoundtrip >= 100 {
		log.Error(color.RedString(fmt.Sprintf("no replies received from %s", remote)))
	}
}
