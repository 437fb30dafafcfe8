package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/config"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/trust"
)

var topLimit int

var topCmd = &cobra.Command{
	Use:   "top <user-id>",
	Short: "Show a user's top contributors by summed impact",
	Args:  cobra.ExactArgs(1),
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

		top, err := db.TopContributors(args[0], topLimit)
		if err != nil {
			return err
		}
		if len(top) == 0 {
			fmt.Println("no contacts found")
			return nil
		}

		for i, tc := range top {
			fmt.Printf("%2d. %-24s impact %6.2f  (%d events, trust %.2f %s)\n",
				i+1, tc.Name, tc.TotalContribution, tc.ContributionCount,
				tc.TrustScore, trust.Level(tc.TrustScore))
		}
		return nil
	},
}

func init() {
	topCmd.Flags().IntVar(&topLimit, "limit", 10, "number of contacts to show")
}
