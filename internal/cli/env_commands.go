package cli

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/medialens/medialens/internal/config"
)

// newEnvCmd creates the 'env' command group for managing environments.
func newEnvCmd() *cobra.Command {
	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Manage environments (cloud credential sets)",
	}

	envCmd.AddCommand(newEnvListCmd())
	envCmd.AddCommand(newEnvUseCmd())
	envCmd.AddCommand(newEnvStatusCmd())

	return envCmd
}

func newEnvListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured environments",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			names := a.envs.Names()
			if len(names) == 0 {
				fmt.Println("No environments configured. Run 'medialens config init' to create the credentials file.")
				return nil
			}

			active, hasActive := a.manager.Active()
			for _, name := range names {
				marker := "  "
				if hasActive && name == active.CloudName {
					marker = "* "
				}
				entry, _ := a.envs.Get(name)
				note := ""
				if entry.IsPlaceholder() {
					note = " (placeholder credentials)"
				} else if entry.UploadPreset != "" {
					note = fmt.Sprintf(" (preset: %s)", entry.UploadPreset)
				}
				fmt.Printf("%s%s%s\n", marker, name, note)
			}
			return nil
		},
	}
}

func newEnvUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use [cloud-name]",
		Short: "Switch the active environment",
		Long: `Switch the active environment and persist the selection.

Without an argument, presents an interactive picker of the configured
environments.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				name, err = pickEnvironment(a.envs)
				if err != nil {
					return err
				}
			}

			if err := a.manager.Switch(name); err != nil {
				return err
			}

			// Persist the selection for future invocations
			a.settings.ActiveEnvironment = name
			if err := config.SaveSettings(a.settings, ""); err != nil {
				return fmt.Errorf("switched, but could not persist selection: %w", err)
			}

			fmt.Printf("Active environment: %s\n", name)
			return nil
		},
	}
}

func newEnvStatusCmd() *cobra.Command {
	var ping bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			fmt.Println(a.manager.StatusText())

			if name, source := config.ResolveActiveNameSource(environment, a.settings, a.envs); name != "" && verbose {
				fmt.Printf("(selected via %s)\n", source)
			}

			if ping {
				client, err := a.requireClient()
				if err != nil {
					return err
				}
				if err := client.Ping(GetContext()); err != nil {
					return fmt.Errorf("connectivity check failed: %w", err)
				}
				fmt.Println("Connectivity: OK")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&ping, "ping", false, "Verify connectivity and credentials against the platform")
	return cmd
}

// pickEnvironment presents an interactive select over the configured clouds.
func pickEnvironment(envs config.Environments) (string, error) {
	names := envs.Names()
	if len(names) == 0 {
		return "", fmt.Errorf("no environments configured - run 'medialens config init' first")
	}

	var name string
	prompt := &survey.Select{
		Message: "Select environment:",
		Options: names,
	}
	if err := survey.AskOne(prompt, &name); err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return name, nil
}
