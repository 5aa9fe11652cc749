package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/upload"
)

// newUploadCmd creates the 'upload' command.
func newUploadCmd() *cobra.Command {
	var (
		folder       string
		preset       string
		publicID     string
		tags         []string
		remoteURLs   []string
		resourceType string
		concurrency  int
	)

	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: "Upload local files or remote URLs to the library",
		Long: `Upload files to the active cloud. Local arguments may be glob patterns
(*.png, photos/*.jpg); remote sources are given with --url and are relayed
through the upload endpoint.

Uploads are signed with the environment's secret unless --preset names an
unsigned upload preset. Files upload independently under the concurrency
limit; a failure does not stop the rest of the batch.

Examples:
  medialens upload hero.png --folder banners --tags launch,web
  medialens upload shots/*.jpg --folder products
  medialens upload --url https://example.com/logo.svg --type raw`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			client, err := a.requireClient()
			if err != nil {
				return err
			}

			paths, err := expandGlobPatterns(args)
			if err != nil {
				return err
			}
			if len(paths)+len(remoteURLs) == 0 {
				return fmt.Errorf("nothing to upload: give file arguments or --url")
			}
			if publicID != "" && len(paths)+len(remoteURLs) > 1 {
				return fmt.Errorf("--public-id only applies to a single source")
			}

			if folder == "" {
				folder = a.settings.Upload.DefaultFolder
			}
			if preset == "" {
				// The environment may carry a default unsigned preset
				if active, ok := a.manager.Active(); ok {
					preset = active.UploadPreset
				}
			}
			if concurrency == 0 {
				concurrency = a.settings.Upload.MaxConcurrent
			}

			coord := upload.NewCoordinator(client, a.bus, concurrency, GetLogger())

			var requests []upload.Request
			for _, path := range paths {
				requests = append(requests, upload.Request{LocalPath: path})
			}
			for _, url := range remoteURLs {
				requests = append(requests, upload.Request{RemoteURL: url})
			}
			for i := range requests {
				requests[i].Folder = folder
				requests[i].Preset = preset
				requests[i].PublicID = publicID
				requests[i].Tags = tags
				requests[i].ResourceType = models.ResourceType(resourceType)
			}

			return runUploadBatch(a, coord, requests)
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Destination folder (defaults to the configured default)")
	cmd.Flags().StringVar(&preset, "preset", "", "Unsigned upload preset name")
	cmd.Flags().StringVar(&publicID, "public-id", "", "Custom public ID (single source only)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Tags to attach (comma-separated or repeated)")
	cmd.Flags().StringArrayVar(&remoteURLs, "url", nil, "Remote URL source (repeatable)")
	cmd.Flags().StringVarP(&resourceType, "type", "t", "image", "Resource type: image, video or raw")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Concurrent uploads (defaults to the configured limit)")
	return cmd
}
