package panel

import (
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	raw, err := Encode(MsgSetDestination, SetDestinationMessage{Folder: "products", Preset: "web"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	env, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if env.Type != MsgSetDestination {
		t.Errorf("type = %q, want %q", env.Type, MsgSetDestination)
	}

	var msg SetDestinationMessage
	if err := env.Into(&msg); err != nil {
		t.Fatalf("Into failed: %v", err)
	}
	if msg.Folder != "products" || msg.Preset != "web" {
		t.Errorf("payload = %+v", msg)
	}
}

func TestEncode_NoPayload(t *testing.T) {
	raw, err := Encode(MsgToggleLightbox, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	env, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if env.Type != MsgToggleLightbox {
		t.Errorf("type = %q, want %q", env.Type, MsgToggleLightbox)
	}
	if len(env.Data) != 0 {
		t.Errorf("expected empty data, got %s", env.Data)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{nope"},
		{"missing type", `{"data":{}}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.raw)); err == nil {
				t.Errorf("Decode(%q) succeeded, want error", tt.raw)
			}
		})
	}
}
