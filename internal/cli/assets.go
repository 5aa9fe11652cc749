package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/transform"
	"github.com/medialens/medialens/internal/util/filter"
)

// newAssetsCmd creates the 'assets' command group.
func newAssetsCmd() *cobra.Command {
	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "List, search, inspect and delete assets",
	}

	assetsCmd.AddCommand(newAssetsListCmd())
	assetsCmd.AddCommand(newAssetsSearchCmd())
	assetsCmd.AddCommand(newAssetsShowCmd())
	assetsCmd.AddCommand(newAssetsDeleteCmd())

	return assetsCmd
}

func newAssetsListCmd() *cobra.Command {
	var (
		resourceType string
		folder       string
		includeStr   string
		excludeStr   string
		searchTerms  []string
		pathsStr     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets under a folder prefix",
		Long: `List assets of one resource type, optionally below a folder prefix.

Results follow the platform's pagination order. Client-side filters narrow
the listing after the remote query:

  --include "*.png,banner*"     glob patterns on the display name
  --exclude "draft*"            glob patterns that remove matches
  --search hero --search 2026   substring terms, all must match
  --path "products/**"          glob patterns on the full public ID`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			client, err := a.requireClient()
			if err != nil {
				return err
			}

			assets, err := client.ListAssets(GetContext(), models.ResourceType(resourceType), folder)
			if err != nil {
				return err
			}

			assets = filter.ApplyToAssets(assets, filter.Config{
				Include:     filter.ParsePatternList(includeStr),
				Exclude:     filter.ParsePatternList(excludeStr),
				Search:      searchTerms,
				PathInclude: filter.ParsePatternList(pathsStr),
			})

			printAssetTable(assets)
			return nil
		},
	}

	cmd.Flags().StringVarP(&resourceType, "type", "t", "image", "Resource type: image, video or raw")
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Folder prefix to list under")
	cmd.Flags().StringVar(&includeStr, "include", "", "Comma-separated include patterns")
	cmd.Flags().StringVar(&excludeStr, "exclude", "", "Comma-separated exclude patterns")
	cmd.Flags().StringArrayVar(&searchTerms, "search", nil, "Substring search term (repeatable, all must match)")
	cmd.Flags().StringVar(&pathsStr, "path", "", "Comma-separated public ID patterns (supports **)")
	return cmd
}

func newAssetsSearchCmd() *cobra.Command {
	var maxResults int
	var all bool

	cmd := &cobra.Command{
		Use:   "search <expression>",
		Short: "Search assets with a platform search expression",
		Long: `Search assets using the platform's search syntax. The expression is
forwarded verbatim, e.g.:

  medialens assets search "tags=hero AND format=png"
  medialens assets search "folder:products/* AND bytes>1000000"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			client, err := a.requireClient()
			if err != nil {
				return err
			}

			var assets []models.Asset
			if all {
				assets, err = client.SearchAll(GetContext(), args[0])
			} else {
				var page *models.AssetListResponse
				page, err = client.Search(GetContext(), args[0], "", maxResults)
				if page != nil {
					assets = page.Assets
					if page.NextCursor != "" {
						defer fmt.Println("\nMore results available; re-run with --all.")
					}
				}
			}
			if err != nil {
				return err
			}

			printAssetTable(assets)
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "Results per page (default platform page size)")
	cmd.Flags().BoolVar(&all, "all", false, "Follow the cursor and fetch every match")
	return cmd
}

func newAssetsShowCmd() *cobra.Command {
	var resourceType string

	cmd := &cobra.Command{
		Use:   "show <public-id>",
		Short: "Show full details and preview URLs for an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			client, err := a.requireClient()
			if err != nil {
				return err
			}

			asset, err := client.GetAsset(GetContext(), models.ResourceType(resourceType), args[0])
			if err != nil {
				return err
			}

			printAssetDetail(asset)

			builder := transform.NewBuilder(a.settings, client.CloudName())
			urls := builder.Preview(asset)
			fmt.Println("\nDelivery URLs:")
			fmt.Printf("  original:  %s\n", urls.Original)
			fmt.Printf("  thumbnail: %s\n", urls.Thumbnail)
			fmt.Printf("  lightbox:  %s\n", urls.Lightbox)
			return nil
		},
	}

	cmd.Flags().StringVarP(&resourceType, "type", "t", "image", "Resource type: image, video or raw")
	return cmd
}

func newAssetsDeleteCmd() *cobra.Command {
	var resourceType string
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <public-id>",
		Short: "Delete an asset from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			client, err := a.requireClient()
			if err != nil {
				return err
			}

			if !force {
				ok, err := confirmDeletion(args[0], client.CloudName())
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := client.DeleteAsset(GetContext(), models.ResourceType(resourceType), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&resourceType, "type", "t", "image", "Resource type: image, video or raw")
	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}

func printAssetTable(assets []models.Asset) {
	if len(assets) == 0 {
		fmt.Println("No assets found.")
		return
	}

	fmt.Printf("%-50s %-6s %-8s %12s  %s\n", "PUBLIC ID", "TYPE", "FORMAT", "BYTES", "DIMENSIONS")
	for i := range assets {
		a := &assets[i]
		dims := ""
		if a.Width > 0 && a.Height > 0 {
			dims = fmt.Sprintf("%dx%d", a.Width, a.Height)
		}
		fmt.Printf("%-50s %-6s %-8s %12d  %s\n", a.PublicID, a.ResourceType, a.Format, a.Bytes, dims)
	}
	fmt.Printf("\n%d asset(s)\n", len(assets))
}

func printAssetDetail(a *models.Asset) {
	fmt.Printf("Public ID:  %s\n", a.PublicID)
	fmt.Printf("Type:       %s\n", a.ResourceType)
	if a.Format != "" {
		fmt.Printf("Format:     %s\n", a.Format)
	}
	fmt.Printf("Bytes:      %d\n", a.Bytes)
	if a.Width > 0 && a.Height > 0 {
		fmt.Printf("Dimensions: %dx%d\n", a.Width, a.Height)
	}
	if a.Duration > 0 {
		fmt.Printf("Duration:   %.1fs\n", a.Duration)
	}
	if len(a.Tags) > 0 {
		fmt.Printf("Tags:       %s\n", strings.Join(a.Tags, ", "))
	}
	if a.Version > 0 {
		fmt.Printf("Version:    %d\n", a.Version)
	}
	if !a.CreatedAt.IsZero() {
		fmt.Printf("Created:    %s\n", a.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}
