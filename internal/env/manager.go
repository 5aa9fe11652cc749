// Package env tracks the process-wide active environment (credential set)
// and notifies subscribers when it switches.
package env

import (
	"fmt"
	"sync"

	"github.com/medialens/medialens/internal/config"
	"github.com/medialens/medialens/internal/events"
)

// Manager holds the loaded environments and the single active one.
// Reads vastly outnumber switches, so access is guarded by an RWMutex and
// the active value is swapped wholesale on switch.
type Manager struct {
	mu       sync.RWMutex
	envs     config.Environments
	active   config.Environment
	hasActiv bool
	eventBus *events.EventBus
}

// NewManager creates a manager over a loaded environment set.
// eventBus may be nil when no subscribers care about switches.
func NewManager(envs config.Environments, eventBus *events.EventBus) *Manager {
	return &Manager{
		envs:     envs,
		eventBus: eventBus,
	}
}

// Environments returns the loaded environment set.
func (m *Manager) Environments() config.Environments {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.envs
}

// Active returns the active environment. The second return is false when no
// environment has been activated yet (first run with a placeholder file).
func (m *Manager) Active() (config.Environment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active, m.hasActiv
}

// Switch activates the named environment. The credential set is validated
// before the swap so a half-configured environment can never become active.
// Publishes an EnvironmentChanged event exactly once per successful switch.
func (m *Manager) Switch(name string) error {
	m.mu.Lock()

	env, err := m.envs.Get(name)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if err := env.Validate(); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("cannot activate %s: %w", name, err)
	}

	oldName := ""
	if m.hasActiv {
		oldName = m.active.CloudName
	}
	m.active = env
	m.hasActiv = true
	bus := m.eventBus
	m.mu.Unlock()

	// Publish outside the lock; subscribers may call back into the manager.
	if bus != nil && oldName != name {
		bus.PublishEnvironmentChanged(oldName, name)
	}
	return nil
}

// Reload replaces the environment set (after the credentials file changed on
// disk). If the active environment survives the reload its credentials are
// refreshed in place; if it disappeared the manager reverts to "no active".
func (m *Manager) Reload(envs config.Environments) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.envs = envs
	if !m.hasActiv {
		return
	}
	if env, err := envs.Get(m.active.CloudName); err == nil {
		m.active = env
	} else {
		m.active = config.Environment{}
		m.hasActiv = false
	}
}

// StatusText returns the status bar indicator for the active environment,
// e.g. "$(cloud) my-cloud". Empty-state text when nothing is active.
func (m *Manager) StatusText() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.hasActiv {
		return "$(cloud) no environment"
	}
	return fmt.Sprintf("$(cloud) %s", m.active.CloudName)
}
