package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/config"
)

var (
	decayIdleDays     int
	decayHalfLifeDays int
)

// Decay is invoked explicitly, never scheduled: trust should only drift
// when an operator or caller asks for a pass.
var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Pull idle contacts' trust scores toward the neutral prior",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		updated, err := db.DecayTrustMetrics(
			time.Duration(decayIdleDays)*24*time.Hour,
			time.Duration(decayHalfLifeDays)*24*time.Hour,
		)
		if err != nil {
			return fmt.Errorf("decay: %w", err)
		}
		fmt.Printf("decayed %d trust metrics\n", updated)
		return nil
	},
}

func init() {
	decayCmd.Flags().IntVar(&decayIdleDays, "idle-days", 30, "minimum days without trust activity")
	decayCmd.Flags().IntVar(&decayHalfLifeDays, "half-life-days", 90, "half-life of drift toward neutral")
}
