// Package tree exposes the media library as a lazily-expanded folder tree.
//
// The tree is ephemeral: nodes are reconstructed from API responses on every
// expand and never persisted. A per-session cache avoids re-fetching a folder
// that is collapsed and re-expanded; switching environments drops the whole
// cache.
package tree

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/medialens/medialens/internal/constants"
	"github.com/medialens/medialens/internal/events"
	"github.com/medialens/medialens/internal/models"
)

// NodeKind discriminates tree nodes.
type NodeKind int

const (
	KindFolder NodeKind = iota
	KindAsset
)

// Node is one entry in the library tree. Folder nodes expand on demand;
// asset nodes are leaves carrying the metadata from the list response.
type Node struct {
	Kind   NodeKind
	Folder models.Folder // set for folder nodes
	Asset  *models.Asset // set for asset nodes
}

// Label returns the node's display text.
func (n *Node) Label() string {
	if n.Kind == KindFolder {
		return n.Folder.Name
	}
	return n.Asset.DisplayName()
}

// Predicate narrows what the tree shows.
type Predicate struct {
	// ResourceType restricts asset nodes to one type. Empty means images,
	// the library's default view.
	ResourceType models.ResourceType

	// Search switches the tree into flat search-result mode: the root's
	// children are the matching assets and folders are not shown. The
	// expression is forwarded to the platform verbatim.
	Search string
}

func (p Predicate) resourceType() models.ResourceType {
	if p.ResourceType == "" {
		return models.ResourceImage
	}
	return p.ResourceType
}

// key produces the cache fragment identifying this predicate.
func (p Predicate) key() string {
	return string(p.resourceType()) + "|" + p.Search
}

// Lister is the slice of the API client the provider needs.
type Lister interface {
	ListAssetsPage(ctx context.Context, resourceType models.ResourceType, prefix, cursor string, pageSize int) (*models.AssetListResponse, error)
	ListRootFolders(ctx context.Context) ([]models.Folder, error)
	ListSubfolders(ctx context.Context, path string) ([]models.Folder, error)
	Search(ctx context.Context, expression, cursor string, maxResults int) (*models.AssetListResponse, error)
}

// Provider serves tree expansions against one environment's library.
type Provider struct {
	client Lister

	mu    sync.Mutex
	pred  Predicate
	cache map[string][]Node

	unsubscribe func()
}

// NewProvider creates a provider. When bus is non-nil the provider drops its
// cache whenever the active environment changes.
func NewProvider(client Lister, bus *events.EventBus) *Provider {
	p := &Provider{
		client: client,
		cache:  make(map[string][]Node),
	}

	if bus != nil {
		ch := bus.Subscribe(events.EventEnvironmentChanged)
		done := make(chan struct{})
		go func() {
			for {
				select {
				case _, ok := <-ch:
					if !ok {
						return
					}
					p.InvalidateAll()
				case <-done:
					return
				}
			}
		}()
		p.unsubscribe = func() {
			close(done)
			bus.Unsubscribe(events.EventEnvironmentChanged, ch)
		}
	}

	return p
}

// Close detaches the provider from the event bus.
func (p *Provider) Close() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

// SetPredicate replaces the active filter and drops the cache, since cached
// children were computed under the old predicate.
func (p *Provider) SetPredicate(pred Predicate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pred = pred
	p.cache = make(map[string][]Node)
}

// Predicate returns the active filter.
func (p *Provider) Predicate() Predicate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pred
}

// InvalidateAll drops every cached expansion.
func (p *Provider) InvalidateAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string][]Node)
}

// Refresh drops the cached expansion of one folder path ("" for the root).
func (p *Provider) Refresh(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cache, p.cacheKey(path))
}

func (p *Provider) cacheKey(path string) string {
	return path + "\x00" + p.pred.key()
}

// Children returns the child nodes of a folder node, or the root's children
// when node is nil. Each uncached call performs one remote listing round;
// asset order within a folder follows the API's pagination order.
func (p *Provider) Children(ctx context.Context, node *Node) ([]Node, error) {
	if node != nil && node.Kind == KindAsset {
		return nil, nil
	}

	path := ""
	if node != nil {
		path = node.Folder.Path
	}

	p.mu.Lock()
	pred := p.pred
	key := p.cacheKey(path)
	if cached, ok := p.cache[key]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	var children []Node
	var err error
	if pred.Search != "" {
		children, err = p.searchChildren(ctx, path, pred)
	} else {
		children, err = p.browseChildren(ctx, path, pred)
	}
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	// Predicate may have changed while we were fetching; only cache results
	// that still belong to the active one.
	if p.pred == pred {
		p.cache[key] = children
	}
	p.mu.Unlock()

	return children, nil
}

// browseChildren lists subfolders and the folder's direct assets.
func (p *Provider) browseChildren(ctx context.Context, path string, pred Predicate) ([]Node, error) {
	var folders []models.Folder
	var err error
	if path == "" {
		folders, err = p.client.ListRootFolders(ctx)
	} else {
		folders, err = p.client.ListSubfolders(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("expand %q: %w", path, err)
	}

	var children []Node
	for _, f := range folders {
		children = append(children, Node{Kind: KindFolder, Folder: f})
	}

	prefix := ""
	if path != "" {
		prefix = path + "/"
	}

	cursor := ""
	for page := 0; page < constants.MaxPaginationPages; page++ {
		resp, err := p.client.ListAssetsPage(ctx, pred.resourceType(), prefix, cursor, constants.DefaultPageSize)
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", path, err)
		}

		for i := range resp.Assets {
			asset := resp.Assets[i]
			// Prefix listing includes nested assets; keep direct children only
			if assetFolder(&asset) != path {
				continue
			}
			children = append(children, Node{Kind: KindAsset, Asset: &asset})
		}

		if resp.NextCursor == "" {
			return children, nil
		}
		cursor = resp.NextCursor
	}

	return nil, fmt.Errorf("expand %q: cursor did not terminate", path)
}

// searchChildren returns the flat match list for search mode. Only the root
// has children in this mode.
func (p *Provider) searchChildren(ctx context.Context, path string, pred Predicate) ([]Node, error) {
	if path != "" {
		return nil, nil
	}

	var children []Node
	cursor := ""
	for page := 0; page < constants.MaxPaginationPages; page++ {
		resp, err := p.client.Search(ctx, pred.Search, cursor, constants.DefaultPageSize)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", pred.Search, err)
		}

		for i := range resp.Assets {
			children = append(children, Node{Kind: KindAsset, Asset: &resp.Assets[i]})
		}

		if resp.NextCursor == "" {
			return children, nil
		}
		cursor = resp.NextCursor
	}

	return nil, fmt.Errorf("search %q: cursor did not terminate", pred.Search)
}

// assetFolder returns the folder path an asset lives in, deriving it from
// the public ID when the API omitted the folder field.
func assetFolder(a *models.Asset) string {
	if a.Folder != "" {
		return a.Folder
	}
	if i := strings.LastIndex(a.PublicID, "/"); i >= 0 {
		return a.PublicID[:i]
	}
	return ""
}
