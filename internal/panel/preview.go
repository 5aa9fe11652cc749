package panel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/medialens/medialens/internal/events"
	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/transform"
)

// Host abstracts the editor-host actions a panel can request.
type Host interface {
	CopyToClipboard(text string) error
	OpenBrowser(url string) error
}

// AssetDeleter deletes assets on the platform. Satisfied by *api.Client.
type AssetDeleter interface {
	DeleteAsset(ctx context.Context, resourceType models.ResourceType, publicID string) error
}

// PreviewPanel holds the preview panel's state: the selected asset, its
// derived URL set and the lightbox toggle. Deriving URLs never calls the
// platform; only the delete action does.
type PreviewPanel struct {
	mu       sync.Mutex
	bus      *events.EventBus
	host     Host
	deleter  AssetDeleter
	builder  *transform.Builder
	asset    *models.Asset
	urls     transform.PreviewSet
	lightbox bool
}

// NewPreviewPanel creates a preview panel backed by the given URL builder.
func NewPreviewPanel(builder *transform.Builder, deleter AssetDeleter, host Host, bus *events.EventBus) *PreviewPanel {
	return &PreviewPanel{
		bus:     bus,
		host:    host,
		deleter: deleter,
		builder: builder,
	}
}

// ShowAsset selects an asset, derives its preview URLs and posts the render
// state. Selecting a new asset closes the lightbox.
func (p *PreviewPanel) ShowAsset(asset *models.Asset) {
	p.mu.Lock()
	p.asset = asset
	p.urls = p.builder.Preview(asset)
	p.lightbox = false
	state := p.stateLocked()
	p.mu.Unlock()

	p.post(MsgShowAsset, state)
}

// Asset returns the currently selected asset, nil when none.
func (p *PreviewPanel) Asset() *models.Asset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.asset
}

// URLs returns the derived URL set for the selected asset.
func (p *PreviewPanel) URLs() transform.PreviewSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.urls
}

// LightboxOpen reports whether the lightbox is open.
func (p *PreviewPanel) LightboxOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lightbox
}

// HandleMessage dispatches one inbound preview message.
func (p *PreviewPanel) HandleMessage(ctx context.Context, raw []byte) error {
	env, err := Decode(raw)
	if err != nil {
		return err
	}

	switch env.Type {
	case MsgCopyURL:
		var msg CopyURLMessage
		if err := env.Into(&msg); err != nil {
			return err
		}
		url, err := p.urlForVariant(msg.Variant)
		if err != nil {
			return err
		}
		return p.host.CopyToClipboard(url)

	case MsgOpenInBrowser:
		var msg OpenInBrowserMessage
		if err := env.Into(&msg); err != nil {
			return err
		}
		url, err := p.urlForVariant(msg.Variant)
		if err != nil {
			return err
		}
		return p.host.OpenBrowser(url)

	case MsgToggleLightbox:
		return p.toggleLightbox()

	case MsgDeleteAsset:
		return p.deleteSelected(ctx)

	default:
		return fmt.Errorf("unexpected preview message type %q", env.Type)
	}
}

func (p *PreviewPanel) urlForVariant(variant string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.asset == nil {
		return "", fmt.Errorf("no asset selected")
	}

	switch variant {
	case "", "original":
		return p.urls.Original, nil
	case "thumbnail":
		return p.urls.Thumbnail, nil
	case "lightbox":
		return p.urls.Lightbox, nil
	default:
		return "", fmt.Errorf("unknown URL variant %q", variant)
	}
}

func (p *PreviewPanel) toggleLightbox() error {
	p.mu.Lock()
	if p.asset == nil {
		p.mu.Unlock()
		return fmt.Errorf("no asset selected")
	}
	p.lightbox = !p.lightbox
	state := p.stateLocked()
	p.mu.Unlock()

	p.post(MsgShowAsset, state)
	return nil
}

func (p *PreviewPanel) deleteSelected(ctx context.Context) error {
	p.mu.Lock()
	asset := p.asset
	p.mu.Unlock()

	if asset == nil {
		return fmt.Errorf("no asset selected")
	}

	if err := p.deleter.DeleteAsset(ctx, asset.ResourceType, asset.PublicID); err != nil {
		return fmt.Errorf("delete %s: %w", asset.PublicID, err)
	}

	p.mu.Lock()
	p.asset = nil
	p.urls = transform.PreviewSet{}
	p.lightbox = false
	p.mu.Unlock()

	p.post(MsgAssetDeleted, AssetDeletedMessage{PublicID: asset.PublicID})
	return nil
}

// stateLocked snapshots the render state. Caller holds p.mu.
func (p *PreviewPanel) stateLocked() ShowAssetMessage {
	return ShowAssetMessage{
		Asset:    *p.asset,
		URLs:     p.urls,
		Lightbox: p.lightbox,
	}
}

func (p *PreviewPanel) post(msgType MessageType, data interface{}) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(&events.PanelMessageEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventPanelMessage, Time: time.Now()},
		Panel:     "preview",
		Payload:   Outbound{Type: msgType, Data: data},
	})
}
