package cli

import (
	"fmt"
	"os"

	"github.com/medialens/medialens/internal/api"
	"github.com/medialens/medialens/internal/config"
	"github.com/medialens/medialens/internal/env"
	"github.com/medialens/medialens/internal/events"
	"github.com/medialens/medialens/internal/notify"
	"github.com/medialens/medialens/internal/panel"
)

// app bundles the loaded configuration and the services every command needs.
type app struct {
	settings *config.Settings
	envs     config.Environments
	manager  *env.Manager
	bus      *events.EventBus
	notifier *notify.Notifier
}

// loadApp loads settings and credentials and resolves the active
// environment. Commands that only read configuration (config show, env list)
// tolerate a missing active environment; everything else goes through
// requireClient.
func loadApp() (*app, error) {
	settings, err := config.LoadSettings("")
	if err != nil {
		return nil, err
	}

	workDir, _ := os.Getwd()
	envs, err := config.LoadEnvironments(cfgFile, workDir)
	if err != nil {
		return nil, err
	}
	envs = config.OverlayEnvCredentials(envs)

	bus := events.NewEventBus(0)
	notifier := notify.NewNotifier(settings.Notifications, GetLogger())

	a := &app{
		settings: settings,
		envs:     envs,
		manager:  env.NewManager(envs, bus),
		bus:      bus,
		notifier: notifier,
	}

	// First run: make sure the credentials file exists so there is something
	// to point the user at.
	if len(envs) == 0 && cfgFile == "" {
		created, err := config.EnsureEnvironmentsFile("")
		if err == nil && created {
			path, _ := config.DefaultEnvironmentsPath()
			notifier.ConfigProblem("Created " + path + " - fill in your cloud credentials.")
			GetLogger().Info().Str("path", path).Msg("Created placeholder credentials file")
		}
	}

	// Activate the resolved environment. Errors are deferred to
	// requireClient so read-only commands still work.
	if name := config.ResolveActiveName(environment, settings, envs); name != "" {
		_ = a.manager.Switch(name)
	}

	return a, nil
}

// welcome returns the first-run state for the loaded credentials.
func (a *app) welcome() panel.WelcomeState {
	path := cfgFile
	if path == "" {
		path, _ = config.DefaultEnvironmentsPath()
	}
	return panel.DetermineWelcome(a.envs, path)
}

// requireActive returns the active environment or a friendly error telling
// the user how to get one.
func (a *app) requireActive() (config.Environment, error) {
	if w := a.welcome(); w.Show {
		return config.Environment{}, fmt.Errorf("%s - edit %s and run 'medialens env use'", w.Reason, w.CredentialsPath)
	}

	active, ok := a.manager.Active()
	if !ok {
		return config.Environment{}, fmt.Errorf("no active environment - run 'medialens env use' or pass --environment")
	}
	if active.IsPlaceholder() {
		return config.Environment{}, fmt.Errorf("environment %s still has placeholder credentials", active.CloudName)
	}
	return active, nil
}

// requireClient builds an API client for the active environment.
func (a *app) requireClient() (*api.Client, error) {
	active, err := a.requireActive()
	if err != nil {
		return nil, err
	}
	return api.NewClient(active, a.settings)
}
