package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/receipt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func fingerprintCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the OCR fingerprint for a store, amount and date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := strings.TrimSpace(v.GetString("fingerprint.store"))
			amount := v.GetFloat64("fingerprint.amount")
			rawDate := strings.TrimSpace(v.GetString("fingerprint.date"))
			if store == "" || amount == 0 || rawDate == "" {
				return errors.New("--store, --amount and --date are required")
			}

			date, err := receipt.ParseDate(rawDate)
			if err != nil {
				return fmt.Errorf("parse date %q: %w", rawDate, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), receipt.Fingerprint(store, amount, date))
			return nil
		},
	}
	cmd.Flags().String("store", "", "store name as read by OCR")
	cmd.Flags().Float64("amount", 0, "receipt total")
	cmd.Flags().String("date", time.Now().UTC().Format("2006-01-02"), "receipt date (YYYY-MM-DD or RFC3339)")
	_ = v.BindPFlag("fingerprint.store", cmd.Flags().Lookup("store"))
	_ = v.BindPFlag("fingerprint.amount", cmd.Flags().Lookup("amount"))
	_ = v.BindPFlag("fingerprint.date", cmd.Flags().Lookup("date"))
	return cmd
}
