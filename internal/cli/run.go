package cli

import (
	"fmt"

	"github.com/futig/interview-mentor/internal/builder"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive interview session",
	Long: `Start the interview console. Sign in, pick a level and a role with
/start <level> <role>, then answer the questions. Type /help inside the
console for all commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := builder.Build(environment, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("build application: %w", err)
		}
		return app.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
