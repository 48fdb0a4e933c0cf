package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var environment string

var rootCmd = &cobra.Command{
	Use:   "interview-mentor",
	Short: "Interview Mentor - AI mock interviews in your terminal",
	Long: `Interview Mentor runs a timed mock interview for the role and experience
level you choose. An AI interviewer asks tailored questions, gives feedback on
every answer and closes with an overall assessment.

Answers can be typed or spoken; with a camera attached you also get posture
and body language tips.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "interview-mentor %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&environment, "env", "e", "local", "environment name, selects the .env.<name> file")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
