// Package cmd implements the twampy command-line interface: one
// subcommand per TWAMP role, sharing a common set of socket-option
// flags.
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nokia/twampy/config"
	"github.com/nokia/twampy/dscp"
	"github.com/nokia/twampy/padding"
	"github.com/nokia/twampy/version"
)

// RootCmd is the top-level twampy command.
var RootCmd = &cobra.Command{
	Use:     "twampy",
	Short:   "TWAMP and TWAMP-Light delay, jitter and loss measurement",
	Version: version.Version,
}

// shared flags, common to every role subcommand.
var (
	tosFlag           string
	dscpFlag          string
	ttlFlag           int
	paddingFlag       int
	doNotFragmentFlag bool
	quietFlag         bool
	verboseFlag       bool
	debugFlag         bool
	logfileFlag       string
	configFlag        string
	monitoringPort    int
)

func init() {
	RootCmd.PersistentFlags().StringVar(&tosFlag, "tos", "0x00", "IP TOS/traffic-class byte, hex")
	RootCmd.PersistentFlags().StringVar(&dscpFlag, "dscp", "", "DSCP name, overrides --tos when set")
	RootCmd.PersistentFlags().IntVar(&ttlFlag, "ttl", 64, "IP TTL/hop-limit")
	RootCmd.PersistentFlags().IntVar(&paddingFlag, "padding", -1, "trailing padding bytes, -1 selects the IMIX default mix")
	RootCmd.PersistentFlags().BoolVar(&doNotFragmentFlag, "do-not-fragment", false, "set the do-not-fragment / MTU-discover socket option")
	RootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "only log errors")
	RootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log at debug level")
	RootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "log at trace level, including per-frame dumps")
	RootCmd.PersistentFlags().StringVar(&logfileFlag, "logfile", "", "write logs to this file instead of stderr")
	RootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "YAML file of default socket/report options")
	RootCmd.PersistentFlags().IntVar(&monitoringPort, "monitoringport", 0, "port to serve JSON/Prometheus counters on, 0 disables")
}

// configureLogging sets the log level and sink from the shared flags.
func configureLogging() {
	switch {
	case debugFlag:
		log.SetLevel(log.TraceLevel)
	case verboseFlag:
		log.SetLevel(log.DebugLevel)
	case quietFlag:
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	if logfileFlag != "" {
		f, err := os.OpenFile(logfileFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("cmd: could not open logfile %s: %v", logfileFlag, err)
		}
		log.SetOutput(f)
	}
}

// socketOptions resolves the effective TOS/TTL/padding/DNF settings
// from the config file (if any) and the CLI flags, with flags taking
// precedence over the file.
func socketOptions(v6 bool) (tos uint8, ttl int, pad padding.Policy, dnf bool, err error) {
	ttl = ttlFlag
	dnf = doNotFragmentFlag
	padLen := paddingFlag

	if configFlag != "" {
		d, rerr := config.Read(configFlag)
		if rerr != nil {
			return 0, 0, nil, false, rerr
		}
		if !isFlagSet("ttl") {
			ttl = d.TTL
		}
		if !isFlagSet("do-not-fragment") {
			dnf = d.DoNotFragment
		}
		if !isFlagSet("padding") {
			padLen = d.Padding
		}
		if !isFlagSet("tos") {
			tosFlag = fmt.Sprintf("0x%x", d.TOS)
		}
		if !isFlagSet("dscp") && d.DSCP != "" {
			dscpFlag = d.DSCP
		}
	}

	if dscpFlag != "" {
		code, lerr := dscp.Lookup(dscpFlag)
		if lerr != nil {
			return 0, 0, nil, false, lerr
		}
		tos = code << 2
	} else {
		var parsed uint64
		if _, serr := fmt.Sscanf(tosFlag, "0x%x", &parsed); serr != nil {
			if _, serr := fmt.Sscanf(tosFlag, "%d", &parsed); serr != nil {
				return 0, 0, nil, false, fmt.Errorf("cmd: invalid --tos %q", tosFlag)
			}
		}
		tos = uint8(parsed)
	}

	if padLen < 0 {
		pad = padding.NewIMIX(v6, nil)
	} else {
		pad = padding.Fixed(padLen)
	}
	return tos, ttl, pad, dnf, nil
}

func isFlagSet(name string) bool {
	return RootCmd.PersistentFlags().Changed(name)
}

// logWriter returns where report tables are printed: standard output.
func logWriter() *os.File { return os.Stdout }

// Execute runs the CLI, exiting non-zero on error per the spec's exit
// code policy.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
