package panel

import (
	"context"
	"errors"
	"testing"

	"github.com/medialens/medialens/internal/config"
	"github.com/medialens/medialens/internal/events"
	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/transform"
)

type fakeHost struct {
	copied []string
	opened []string
}

func (h *fakeHost) CopyToClipboard(text string) error { h.copied = append(h.copied, text); return nil }
func (h *fakeHost) OpenBrowser(url string) error      { h.opened = append(h.opened, url); return nil }

type fakeDeleter struct {
	deleted []string
	err     error
}

func (d *fakeDeleter) DeleteAsset(ctx context.Context, resourceType models.ResourceType, publicID string) error {
	if d.err != nil {
		return d.err
	}
	d.deleted = append(d.deleted, publicID)
	return nil
}

func testPreviewPanel(t *testing.T) (*PreviewPanel, *fakeHost, *fakeDeleter, <-chan events.Event) {
	t.Helper()

	host := &fakeHost{}
	deleter := &fakeDeleter{}
	bus := events.NewEventBus(100)
	t.Cleanup(bus.Close)

	builder := transform.NewBuilder(config.NewSettings(), "test-cloud")
	panel := NewPreviewPanel(builder, deleter, host, bus)
	return panel, host, deleter, bus.Subscribe(events.EventPanelMessage)
}

func sampleAsset() *models.Asset {
	return &models.Asset{
		PublicID:     "products/shoe",
		ResourceType: models.ResourceImage,
		Format:       "png",
		Version:      17,
	}
}

func inbound(t *testing.T, msgType MessageType, data interface{}) []byte {
	t.Helper()
	raw, err := Encode(msgType, data)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return raw
}

func TestShowAsset(t *testing.T) {
	panel, _, _, ch := testPreviewPanel(t)

	panel.ShowAsset(sampleAsset())

	if panel.Asset() == nil {
		t.Fatal("no asset selected")
	}
	urls := panel.URLs()
	if urls.Original == "" || urls.Thumbnail == "" || urls.Lightbox == "" {
		t.Errorf("incomplete URL set: %+v", urls)
	}
	if panel.LightboxOpen() {
		t.Error("lightbox must start closed")
	}

	select {
	case evt := <-ch:
		pm := evt.(*events.PanelMessageEvent)
		if pm.Panel != "preview" {
			t.Errorf("panel = %q, want preview", pm.Panel)
		}
		out := pm.Payload.(Outbound)
		if out.Type != MsgShowAsset {
			t.Errorf("message type = %q, want %q", out.Type, MsgShowAsset)
		}
		state := out.Data.(ShowAssetMessage)
		if state.Asset.PublicID != "products/shoe" {
			t.Errorf("asset = %+v", state.Asset)
		}
	default:
		t.Error("no showAsset message posted")
	}
}

func TestCopyURL_Variants(t *testing.T) {
	panel, host, _, _ := testPreviewPanel(t)
	panel.ShowAsset(sampleAsset())
	urls := panel.URLs()

	tests := []struct {
		variant string
		want    string
	}{
		{"", urls.Original},
		{"original", urls.Original},
		{"thumbnail", urls.Thumbnail},
		{"lightbox", urls.Lightbox},
	}

	for _, tt := range tests {
		raw := inbound(t, MsgCopyURL, CopyURLMessage{Variant: tt.variant})
		if err := panel.HandleMessage(context.Background(), raw); err != nil {
			t.Fatalf("copy %q failed: %v", tt.variant, err)
		}
		if got := host.copied[len(host.copied)-1]; got != tt.want {
			t.Errorf("copied %q = %q, want %q", tt.variant, got, tt.want)
		}
	}

	raw := inbound(t, MsgCopyURL, CopyURLMessage{Variant: "bogus"})
	if err := panel.HandleMessage(context.Background(), raw); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestCopyURL_NoAsset(t *testing.T) {
	panel, _, _, _ := testPreviewPanel(t)

	raw := inbound(t, MsgCopyURL, CopyURLMessage{})
	if err := panel.HandleMessage(context.Background(), raw); err == nil {
		t.Error("expected error with no selected asset")
	}
}

func TestOpenInBrowser(t *testing.T) {
	panel, host, _, _ := testPreviewPanel(t)
	panel.ShowAsset(sampleAsset())

	raw := inbound(t, MsgOpenInBrowser, OpenInBrowserMessage{Variant: "lightbox"})
	if err := panel.HandleMessage(context.Background(), raw); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if len(host.opened) != 1 || host.opened[0] != panel.URLs().Lightbox {
		t.Errorf("opened = %v", host.opened)
	}
}

func TestToggleLightbox(t *testing.T) {
	panel, _, _, ch := testPreviewPanel(t)
	panel.ShowAsset(sampleAsset())
	<-ch // drain the showAsset from selection

	raw := inbound(t, MsgToggleLightbox, nil)
	if err := panel.HandleMessage(context.Background(), raw); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !panel.LightboxOpen() {
		t.Error("lightbox should be open after toggle")
	}

	select {
	case evt := <-ch:
		out := evt.(*events.PanelMessageEvent).Payload.(Outbound)
		if !out.Data.(ShowAssetMessage).Lightbox {
			t.Error("posted state should have lightbox open")
		}
	default:
		t.Error("no state message posted after toggle")
	}

	if err := panel.HandleMessage(context.Background(), raw); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if panel.LightboxOpen() {
		t.Error("lightbox should close on second toggle")
	}
}

func TestDeleteAsset(t *testing.T) {
	panel, _, deleter, ch := testPreviewPanel(t)
	panel.ShowAsset(sampleAsset())
	<-ch

	raw := inbound(t, MsgDeleteAsset, nil)
	if err := panel.HandleMessage(context.Background(), raw); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if len(deleter.deleted) != 1 || deleter.deleted[0] != "products/shoe" {
		t.Errorf("deleted = %v", deleter.deleted)
	}
	if panel.Asset() != nil {
		t.Error("selection should clear after delete")
	}

	select {
	case evt := <-ch:
		out := evt.(*events.PanelMessageEvent).Payload.(Outbound)
		if out.Type != MsgAssetDeleted {
			t.Errorf("message type = %q, want %q", out.Type, MsgAssetDeleted)
		}
	default:
		t.Error("no assetDeleted message posted")
	}
}

func TestDeleteAsset_RemoteFailure(t *testing.T) {
	panel, _, deleter, _ := testPreviewPanel(t)
	deleter.err = errors.New("boom")
	panel.ShowAsset(sampleAsset())

	raw := inbound(t, MsgDeleteAsset, nil)
	if err := panel.HandleMessage(context.Background(), raw); err == nil {
		t.Fatal("expected delete error")
	}
	if panel.Asset() == nil {
		t.Error("selection must survive a failed delete")
	}
}
