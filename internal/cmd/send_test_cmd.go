package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"contact-mail-backend/internal/domain"
	"contact-mail-backend/internal/usecase"
	"contact-mail-backend/pkg/logger"
)

var sendTestInput domain.SubmissionInput

var sendTestCmd = &cobra.Command{
	Use:   "send-test",
	Short: "Push a synthetic submission through the delivery pipeline",
	Long: `Validate, render and deliver a submission built from the flags,
exactly as POST /send-mail would, and print the outcome.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		return runSendTest(cmd.Context(), cmd.OutOrStdout(), a.contactUC, sendTestInput)
	},
}

func init() {
	sendTestCmd.Flags().StringVar(&sendTestInput.Name, "name", "Test", "submitter name")
	sendTestCmd.Flags().StringVar(&sendTestInput.Email, "email", "", "submitter email (receives the confirmation)")
	sendTestCmd.Flags().StringVar(&sendTestInput.Phone, "phone", "", "submitter phone")
	sendTestCmd.Flags().StringVar(&sendTestInput.Message, "message", "Messaggio di prova.", "message body")
}

func runSendTest(ctx context.Context, w io.Writer, uc domain.ContactUsecase, in domain.SubmissionInput) error {
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	rid := logger.NewCorrelationID()
	input := usecase.Normalize(domain.ContentJSON, nil, raw)

	outcome, err := uc.Submit(ctx, rid, input, domain.RequestMeta{
		IP:        "cli",
		UserAgent: "contact-mail send-test",
		Timestamp: time.Now(),
	})

	fmt.Fprintf(w, "rid: %s\n", rid)
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		fmt.Fprintf(w, "validation failed: %s\n", vErr.Error())
		return err
	case err != nil:
		fmt.Fprintf(w, "delivery failed: %v\n", err)
		return err
	}

	fmt.Fprintf(w, "admin: sent via %s\n", outcome.Transport)
	if outcome.ConfirmEnabled {
		fmt.Fprintf(w, "confirmation: %t\n", outcome.ConfirmSent)
	} else {
		fmt.Fprintln(w, "confirmation: disabled")
	}
	return nil
}
