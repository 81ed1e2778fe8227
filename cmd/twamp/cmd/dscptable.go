package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nokia/twampy/dscp"
)

var dscpTableCmd = &cobra.Command{
	Use:   "dscptable",
	Short: "Print the fixed DSCP name to TOS mapping and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		dscp.RenderTable(os.Stdout)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(dscpTableCmd)
}
