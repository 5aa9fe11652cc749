package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newUsageCmd creates the 'usage' command showing the account quota report.
func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show account usage and quota for the active cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			client, err := a.requireClient()
			if err != nil {
				return err
			}

			usage, err := client.GetUsage(GetContext())
			if err != nil {
				return err
			}

			if usage.Plan != "" {
				fmt.Printf("Plan:            %s\n", usage.Plan)
			}
			if usage.CreditsLimit > 0 {
				fmt.Printf("Credits:         %.2f / %.2f (%.1f%%)\n",
					usage.CreditsUsed, usage.CreditsLimit,
					100*usage.CreditsUsed/usage.CreditsLimit)
			}
			fmt.Printf("Storage:         %s\n", formatBytes(usage.StorageBytes))
			fmt.Printf("Bandwidth:       %s\n", formatBytes(usage.BandwidthBytes))
			fmt.Printf("Assets:          %d\n", usage.ResourceCount)
			fmt.Printf("Transformations: %d\n", usage.TransformCount)
			return nil
		},
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
