package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slack-tools/slackfetch/internal/pkg/config"
	"github.com/slack-tools/slackfetch/internal/pkg/stats"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "slackfetch [path]",
	Short: "Download the files attached to an exported Slack archive",
	Long: `slackfetch scans exported Slack message JSON for url_private_download
links, accumulates them in a work file, and downloads them sequentially with
retries. The work file doubles as a checkpoint: interrupt the run and start
it again to resume where it left off.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize config here, after cobra has parsed command line flags
		if err := config.InitConfig(); err != nil {
			fmt.Printf("error initializing config: %s", err)
			os.Exit(1)
		}

		cfg = config.Get()
		initLogging(cfg)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || (!cfg.Parse && !cfg.Download) {
			return cmd.Help()
		}

		path := args[0]
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("'%s' is not a valid file or directory", path)
		}

		if err := stats.Init(); err != nil {
			return err
		}

		if cfg.Parse {
			runParse(path, info.IsDir())
		}

		if cfg.Download {
			runDownload(path, info.IsDir())
		}

		logrus.WithFields(stats.GetMap()).Info("run complete")

		return nil
	},
}

// Run the root command
func Run() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().Bool("parse", false, "Parse JSON files and collect download URLs into the work file.")
	rootCmd.PersistentFlags().Bool("download", false, "Download files from the URLs accumulated in the work file.")
	rootCmd.PersistentFlags().StringP("url-file", "u", "extracted_urls.txt", "Work file name, created alongside the input.")
	rootCmd.PersistentFlags().String("download-folder", "files", "Download subfolder relative to the work file.")
	rootCmd.PersistentFlags().Bool("scan-text", false, "Also collect download links found in message text.")
	rootCmd.PersistentFlags().Bool("retry-failed", false, "Requeue URLs previously tagged [FAILED] before downloading.")
	rootCmd.PersistentFlags().String("user-agent", "slackfetch", "User agent to use when requesting URLs.")
	rootCmd.PersistentFlags().Int("http-timeout", 30, "Number of seconds to wait before timing out a request.")
	rootCmd.PersistentFlags().Int("max-retry", 3, "Number of retries if an error happens when downloading a file.")
	rootCmd.PersistentFlags().Bool("json", false, "Output logs in JSON")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("config-file", "", "Config file (default is $HOME/slackfetch.yaml)")

	config.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(versionCmd())

	return rootCmd.Execute()
}

func initLogging(cfg *config.Config) {
	if cfg.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
