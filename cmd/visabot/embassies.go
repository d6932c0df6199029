package main

import (
	"fmt"
	"text/tabwriter"

	"visa_slot_watcher/internal/infra/config"

	"github.com/spf13/cobra"
)

var embassiesCmd = &cobra.Command{
	Use:   "embassies",
	Short: "List the built-in embassy table (personal_info.your_embassy values)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tCODE\tFACILITY\tMARKER")
		for _, key := range config.EmbassyKeys() {
			e := config.Embassies[key]
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", key, e.Code, e.FacilityID, e.ContinueMarker)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(embassiesCmd)
}
