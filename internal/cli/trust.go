package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/config"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/trust"
)

var trustHistoryLimit int

var trustCmd = &cobra.Command{
	Use:   "trust <contact-id>",
	Short: "Show a contact's trust metric and recent history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contactID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid contact id %q", args[0])
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		m, err := db.GetTrustMetric(contactID)
		if err != nil {
			return err
		}
		if m == nil {
			fmt.Printf("no trust metric for contact %d\n", contactID)
			return nil
		}

		fmt.Printf("contact %d: trust %.3f (%s)\n", m.ContactID, m.TrustScore, trust.Level(m.TrustScore))
		fmt.Printf("  reliability     %.3f\n", m.Reliability)
		fmt.Printf("  responsiveness  %.3f\n", m.Responsiveness)
		fmt.Printf("  value delivered %.3f\n", m.ValueDelivered)
		fmt.Printf("  consistency     %.3f\n", m.Consistency)
		fmt.Printf("  last updated    %s\n", time.UnixMilli(m.LastUpdated).Format(time.RFC3339))

		history, err := db.TrustHistoryForContact(contactID, trustHistoryLimit)
		if err != nil {
			return err
		}
		if len(history) > 0 {
			fmt.Println("recent changes:")
			for _, rec := range history {
				fmt.Printf("  %s  %-18s %+0.4f  %s\n",
					time.UnixMilli(rec.DateRecorded).Format("2006-01-02"),
					rec.EventType, rec.ScoreChange, rec.Reason)
			}
		}
		return nil
	},
}

func init() {
	trustCmd.Flags().IntVar(&trustHistoryLimit, "history", 10, "number of history entries to show")
}
