package cli

import (
	"fmt"

	"github.com/futig/interview-mentor/internal/entity"
	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List suggested roles and experience levels",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Roles:")
		for i, r := range entity.Roles {
			fmt.Fprintf(out, "  %d. %s\n", i+1, r)
		}
		fmt.Fprintln(out, "Levels:")
		for _, l := range entity.Levels {
			fmt.Fprintf(out, "  %-10s %s\n", l, l.Description())
		}
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}
