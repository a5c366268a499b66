/*
Package cmd provides the CLI commands for the contact mail backend.
*/
package cmd

import (
	"github.com/spf13/cobra"

	"contact-mail-backend/config"
)

var (
	cfgFile string
	envFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "contact-mail",
	Short: "Contact form endpoint with SMTP and sendmail delivery",
	Long: `contact-mail receives contact form submissions, validates them and
emails them to the site owner, optionally confirming to the sender.

Example:
  contact-mail serve                     # Run the HTTP endpoint
  contact-mail check                     # Print the effective configuration
  contact-mail send-test --email a@b.it  # Push a test submission`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file (default: $CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "extra .env file loaded after ./.env")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(sendTestCmd)
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(config.Options{File: cfgFile, EnvFile: envFile})
}
