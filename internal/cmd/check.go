package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"contact-mail-backend/config"
	"contact-mail-backend/pkg/email"
)

var errNoRecipient = errors.New("no recipient configured: set MAIL_TO")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Print the effective configuration",
	Long: `Print the merged configuration (defaults, YAML file, .env and
environment) with secrets redacted, followed by the transport order.

Exits with an error when no recipient is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return printCheck(cmd.OutOrStdout(), cfg)
	},
}

func printCheck(w io.Writer, cfg *config.Config) error {
	out, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	fmt.Fprintf(w, "%s\n", out)

	fmt.Fprintln(w, "Transports:")
	for i, t := range transportOrder(cfg) {
		fmt.Fprintf(w, "  %d. %-8s %s\n", i+1, t.Name(), availability(t))
	}

	if len(cfg.Mail.To) == 0 {
		return errNoRecipient
	}
	return nil
}

func availability(t email.Transport) string {
	if t.Available() {
		return "available"
	}
	return "not available"
}
