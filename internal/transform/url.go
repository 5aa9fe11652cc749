// Package transform builds delivery URLs with transformation chains.
//
// Transformations are encoded in the URL path between the upload prefix and
// the asset version, e.g.
//
//	https://cdn.mediahub.io/my-cloud/image/upload/c_fill,w_400,h_300/v17/products/shoe.png
//
// Building a URL never calls the platform; the CDN applies the chain on
// first request.
package transform

import (
	"fmt"
	"strings"

	"github.com/medialens/medialens/internal/config"
	"github.com/medialens/medialens/internal/models"
)

// Chain is an ordered list of transformation components. Components apply
// left to right, each as one path segment.
type Chain []string

// String renders the chain as the URL path fragment between the upload
// prefix and the version. Empty components are skipped.
func (c Chain) String() string {
	parts := make([]string, 0, len(c))
	for _, comp := range c {
		if comp != "" {
			parts = append(parts, comp)
		}
	}
	return strings.Join(parts, "/")
}

// Named transformation components.

// Thumbnail crops to a square of the given edge length, centered on the
// region of interest.
func Thumbnail(size int) string {
	return fmt.Sprintf("c_thumb,g_auto,w_%d,h_%d", size, size)
}

// Fit scales the asset to fit inside the box, preserving aspect ratio.
func Fit(width, height int) string {
	return fmt.Sprintf("c_fit,w_%d,h_%d", width, height)
}

// Fill scales and crops the asset to exactly fill the box.
func Fill(width, height int) string {
	return fmt.Sprintf("c_fill,g_auto,w_%d,h_%d", width, height)
}

// Format requests delivery in the given format; "auto" lets the CDN pick
// the best format the requesting client supports.
func Format(format string) string {
	if format == "" {
		return ""
	}
	return "f_" + format
}

// Quality sets the compression level; "auto" balances size and fidelity.
func Quality(quality string) string {
	if quality == "" {
		return ""
	}
	return "q_" + quality
}

// Builder derives delivery URLs for one cloud.
type Builder struct {
	deliveryBase string
	cloudName    string
}

// NewBuilder creates a URL builder for the given cloud.
func NewBuilder(settings *config.Settings, cloudName string) *Builder {
	return &Builder{
		deliveryBase: strings.TrimSuffix(settings.DeliveryBaseURL, "/"),
		cloudName:    cloudName,
	}
}

// URL returns the delivery URL for an asset with the given chain.
//
// Raw assets are delivered verbatim; any chain is ignored because the CDN
// cannot transform them.
func (b *Builder) URL(asset *models.Asset, chain Chain) string {
	segments := []string{b.deliveryBase, b.cloudName, string(asset.ResourceType), "upload"}

	if asset.ResourceType != models.ResourceRaw {
		if t := chain.String(); t != "" {
			segments = append(segments, t)
		}
	}

	if asset.Version > 0 {
		segments = append(segments, fmt.Sprintf("v%d", asset.Version))
	}

	publicID := asset.PublicID
	if asset.Format != "" && asset.ResourceType != models.ResourceRaw {
		publicID += "." + asset.Format
	}
	segments = append(segments, publicID)

	return strings.Join(segments, "/")
}

// OriginalURL returns the untransformed delivery URL.
func (b *Builder) OriginalURL(asset *models.Asset) string {
	return b.URL(asset, nil)
}

// PreviewSet is the URL bundle the preview panel renders: a grid thumbnail,
// a screen-fit lightbox rendition and the untransformed original.
type PreviewSet struct {
	Original  string `json:"original"`
	Thumbnail string `json:"thumbnail"`
	Lightbox  string `json:"lightbox"`
}

// Preview derives the preview panel's URL set for an asset.
func (b *Builder) Preview(asset *models.Asset) PreviewSet {
	return PreviewSet{
		Original:  b.OriginalURL(asset),
		Thumbnail: b.URL(asset, Chain{Thumbnail(200), Format("auto"), Quality("auto")}),
		Lightbox:  b.URL(asset, Chain{Fit(1600, 1200), Quality("auto")}),
	}
}
