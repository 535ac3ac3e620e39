package cmd

import (
	"github.com/spf13/cobra"

	"github.com/slack-tools/slackfetch/internal/pkg/utils"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version number.",
		Run: func(cmd *cobra.Command, args []string) {
			version := utils.GetVersion()

			println("slackfetch", version.Version)
			println("- go/version:", version.GoVersion)
		},
	}
}
