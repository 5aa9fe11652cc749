package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medialens/medialens/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage credentials and app settings",
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the credentials and settings files",
		Long: `Create the global credentials file with a placeholder entry and the
default settings file. Existing files are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := config.EnsureEnvironmentsFile(cfgFile)
			if err != nil {
				return err
			}

			credPath := cfgFile
			if credPath == "" {
				credPath, _ = config.DefaultEnvironmentsPath()
			}

			if created {
				fmt.Printf("Created %s\n", credPath)
				fmt.Println("Edit it with your cloud name, API key and secret.")
			} else {
				fmt.Printf("Credentials file already exists: %s\n", credPath)
			}

			settingsPath, err := config.DefaultSettingsPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
				if err := config.SaveSettings(config.NewSettings(), settingsPath); err != nil {
					return err
				}
				fmt.Printf("Created %s\n", settingsPath)
			}
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			fmt.Printf("API base URL:      %s\n", a.settings.APIBaseURL)
			fmt.Printf("Delivery base URL: %s\n", a.settings.DeliveryBaseURL)
			fmt.Printf("Max concurrent:    %d\n", a.settings.Upload.MaxConcurrent)
			if a.settings.Upload.DefaultFolder != "" {
				fmt.Printf("Default folder:    %s\n", a.settings.Upload.DefaultFolder)
			}
			fmt.Printf("Notifications:     %t\n", a.settings.Notifications.Enabled)

			name, source := config.ResolveActiveNameSource(environment, a.settings, a.envs)
			if name == "" {
				fmt.Println("Active cloud:      (none)")
			} else {
				fmt.Printf("Active cloud:      %s (via %s)\n", name, source)
			}

			fmt.Printf("Environments:      %d configured\n", len(a.envs))
			if w := a.welcome(); w.Show {
				fmt.Printf("\nNote: %s\n", w.Reason)
			}
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			credPath, err := config.DefaultEnvironmentsPath()
			if err != nil {
				return err
			}
			settingsPath, err := config.DefaultSettingsPath()
			if err != nil {
				return err
			}

			workDir, _ := os.Getwd()

			fmt.Printf("Credentials: %s\n", credPath)
			fmt.Printf("Settings:    %s\n", settingsPath)
			fmt.Printf("Workspace:   %s\n", config.WorkspaceEnvironmentsPath(workDir))
			return nil
		},
	}
}
