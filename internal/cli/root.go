package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rhiz",
	Short: "Relationship intelligence for your professional network",
	Long:  "Rhiz tracks contribution-weighted trust for every relationship and synthesizes network insights from your goals, contacts, and interactions.",
}

var configPath string

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(decayCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(trustCmd)
}
