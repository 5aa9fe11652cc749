package panel

import (
	"github.com/medialens/medialens/internal/config"
)

// WelcomeState decides whether the first-run welcome panel shows instead of
// the asset library.
type WelcomeState struct {
	Show            bool   `json:"show"`
	CredentialsPath string `json:"credentialsPath"`
	Reason          string `json:"reason,omitempty"`
}

// DetermineWelcome inspects the loaded environments. The welcome panel shows
// when no environments exist or every entry still carries the placeholder
// values from the auto-created credentials file.
func DetermineWelcome(envs config.Environments, credentialsPath string) WelcomeState {
	state := WelcomeState{CredentialsPath: credentialsPath}

	if len(envs) == 0 {
		state.Show = true
		state.Reason = "no environments configured"
		return state
	}

	for _, env := range envs {
		if !env.IsPlaceholder() {
			return state
		}
	}

	state.Show = true
	state.Reason = "credentials file still has placeholder values"
	return state
}

// Message renders the welcome state as its outbound panel message.
func (w WelcomeState) Message() WelcomeMessage {
	return WelcomeMessage{
		CredentialsPath: w.CredentialsPath,
		Reason:          w.Reason,
	}
}
