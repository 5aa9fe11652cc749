package cli

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/panel"
	"github.com/medialens/medialens/internal/transform"
)

// newPreviewCmd creates the 'preview' command group for transformation URLs.
func newPreviewCmd() *cobra.Command {
	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Derive and open delivery URLs for an asset",
	}

	previewCmd.AddCommand(newPreviewURLsCmd())
	previewCmd.AddCommand(newPreviewOpenCmd())

	return previewCmd
}

func newPreviewURLsCmd() *cobra.Command {
	var (
		resourceType string
		width        int
		height       int
		crop         string
		format       string
		quality      string
	)

	cmd := &cobra.Command{
		Use:   "urls <public-id>",
		Short: "Print delivery URLs for an asset",
		Long: `Print the preview URL set (original, thumbnail, lightbox) for an asset,
or a single custom transformation URL when --width/--height are given.

Deriving URLs is local; the platform is only called to fetch the asset's
format and version. Crop modes: fill, fit, thumb.

Examples:
  medialens preview urls products/shoe
  medialens preview urls products/shoe --width 400 --height 300 --crop fill
  medialens preview urls banners/hero --width 1200 --height 600 --format auto --quality auto`,
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

			asset, err := client.GetAsset(GetContext(), models.ResourceType(resourceType), args[0])
			if err != nil {
				return err
			}

			builder := transform.NewBuilder(a.settings, client.CloudName())

			if width > 0 || height > 0 {
				chain, err := buildChain(width, height, crop, format, quality)
				if err != nil {
					return err
				}
				fmt.Println(builder.URL(asset, chain))
				return nil
			}

			urls := builder.Preview(asset)
			fmt.Printf("original:  %s\n", urls.Original)
			fmt.Printf("thumbnail: %s\n", urls.Thumbnail)
			fmt.Printf("lightbox:  %s\n", urls.Lightbox)
			return nil
		},
	}

	cmd.Flags().StringVarP(&resourceType, "type", "t", "image", "Resource type: image, video or raw")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "Target width for a custom transformation")
	cmd.Flags().IntVar(&height, "height", 0, "Target height for a custom transformation")
	cmd.Flags().StringVar(&crop, "crop", "fill", "Crop mode: fill, fit or thumb")
	cmd.Flags().StringVar(&format, "format", "", "Delivery format (e.g. auto, webp, png)")
	cmd.Flags().StringVar(&quality, "quality", "", "Delivery quality (e.g. auto, 80)")
	return cmd
}

func newPreviewOpenCmd() *cobra.Command {
	var (
		resourceType string
		variant      string
	)

	cmd := &cobra.Command{
		Use:   "open <public-id>",
		Short: "Open an asset's delivery URL in the browser",
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

			builder := transform.NewBuilder(a.settings, client.CloudName())
			preview := panel.NewPreviewPanel(builder, client, &cliHost{}, a.bus)
			preview.ShowAsset(asset)

			raw, err := panel.Encode(panel.MsgOpenInBrowser, panel.OpenInBrowserMessage{Variant: variant})
			if err != nil {
				return err
			}
			return preview.HandleMessage(GetContext(), raw)
		},
	}

	cmd.Flags().StringVarP(&resourceType, "type", "t", "image", "Resource type: image, video or raw")
	cmd.Flags().StringVar(&variant, "variant", "original", "URL variant: original, thumbnail or lightbox")
	return cmd
}

func buildChain(width, height int, crop, format, quality string) (transform.Chain, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("custom transformations need both --width and --height")
	}

	var sized string
	switch crop {
	case "fill":
		sized = transform.Fill(width, height)
	case "fit":
		sized = transform.Fit(width, height)
	case "thumb":
		sized = transform.Thumbnail(width)
	default:
		return nil, fmt.Errorf("unknown crop mode %q (fill, fit, thumb)", crop)
	}

	return transform.Chain{sized, transform.Format(format), transform.Quality(quality)}, nil
}

// cliHost implements panel.Host for terminal sessions. There is no clipboard
// in a terminal, so copy prints the URL for piping into pbcopy/xclip.
type cliHost struct{}

func (h *cliHost) CopyToClipboard(text string) error {
	fmt.Println(text)
	return nil
}

func (h *cliHost) OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("cannot open browser: %w", err)
	}
	return nil
}
