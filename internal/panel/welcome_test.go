package panel

import (
	"testing"

	"github.com/medialens/medialens/internal/config"
)

func TestDetermineWelcome(t *testing.T) {
	real := config.Environment{CloudName: "prod", APIKey: "key", APISecret: "secret"}
	placeholder := config.PlaceholderEnvironments()["my-cloud"]
	placeholder.CloudName = "my-cloud"

	tests := []struct {
		name string
		envs config.Environments
		show bool
	}{
		{"no environments", config.Environments{}, true},
		{"only placeholder", config.Environments{"my-cloud": placeholder}, true},
		{"real environment", config.Environments{"prod": real}, false},
		{"mixed", config.Environments{"my-cloud": placeholder, "prod": real}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := DetermineWelcome(tt.envs, "/home/user/.config/medialens/environments.json")
			if state.Show != tt.show {
				t.Errorf("Show = %v, want %v (reason: %s)", state.Show, tt.show, state.Reason)
			}
			if state.Show && state.Reason == "" {
				t.Error("welcome state needs a reason")
			}
			if state.CredentialsPath == "" {
				t.Error("credentials path missing")
			}
		})
	}
}

func TestWelcomeMessage(t *testing.T) {
	state := DetermineWelcome(nil, "/tmp/environments.json")
	msg := state.Message()
	if msg.CredentialsPath != "/tmp/environments.json" {
		t.Errorf("path = %q", msg.CredentialsPath)
	}
	if msg.Reason == "" {
		t.Error("reason missing")
	}
}
