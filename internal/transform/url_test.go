package transform

import (
	"testing"

	"github.com/medialens/medialens/internal/config"
	"github.com/medialens/medialens/internal/models"
)

func testBuilder() *Builder {
	settings := config.NewSettings()
	settings.DeliveryBaseURL = "https://cdn.example.test"
	return NewBuilder(settings, "demo-cloud")
}

func TestChainString(t *testing.T) {
	tests := []struct {
		name  string
		chain Chain
		want  string
	}{
		{"empty", nil, ""},
		{"single", Chain{Fit(300, 200)}, "c_fit,w_300,h_200"},
		{
			"ordered components",
			Chain{Fill(400, 300), Format("auto"), Quality("auto")},
			"c_fill,g_auto,w_400,h_300/f_auto/q_auto",
		},
		{"blank components skipped", Chain{"", Format(""), Quality("80")}, "q_80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.chain.String(); got != tt.want {
				t.Errorf("Chain.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestURL_Image(t *testing.T) {
	b := testBuilder()
	asset := &models.Asset{
		PublicID:     "products/shoe",
		ResourceType: models.ResourceImage,
		Format:       "png",
		Version:      17,
	}

	got := b.URL(asset, Chain{Fill(400, 300)})
	want := "https://cdn.example.test/demo-cloud/image/upload/c_fill,g_auto,w_400,h_300/v17/products/shoe.png"
	if got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}

func TestURL_NoChainNoVersion(t *testing.T) {
	b := testBuilder()
	asset := &models.Asset{
		PublicID:     "banners/hero",
		ResourceType: models.ResourceImage,
		Format:       "jpg",
	}

	got := b.OriginalURL(asset)
	want := "https://cdn.example.test/demo-cloud/image/upload/banners/hero.jpg"
	if got != want {
		t.Errorf("OriginalURL() = %q, want %q", got, want)
	}
}

func TestURL_RawIgnoresChain(t *testing.T) {
	b := testBuilder()
	asset := &models.Asset{
		PublicID:     "docs/spec.pdf",
		ResourceType: models.ResourceRaw,
		Version:      3,
	}

	got := b.URL(asset, Chain{Fill(400, 300)})
	want := "https://cdn.example.test/demo-cloud/raw/upload/v3/docs/spec.pdf"
	if got != want {
		t.Errorf("raw URL must carry no transformation: got %q, want %q", got, want)
	}
}

func TestURL_Video(t *testing.T) {
	b := testBuilder()
	asset := &models.Asset{
		PublicID:     "clips/intro",
		ResourceType: models.ResourceVideo,
		Format:       "mp4",
		Version:      2,
	}

	got := b.URL(asset, Chain{Fit(640, 360)})
	want := "https://cdn.example.test/demo-cloud/video/upload/c_fit,w_640,h_360/v2/clips/intro.mp4"
	if got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}

func TestPreviewSet(t *testing.T) {
	b := testBuilder()
	asset := &models.Asset{
		PublicID:     "products/shoe",
		ResourceType: models.ResourceImage,
		Format:       "png",
		Version:      17,
	}

	set := b.Preview(asset)

	if set.Original != b.OriginalURL(asset) {
		t.Error("Original must be the untransformed URL")
	}
	if set.Thumbnail == set.Original || set.Lightbox == set.Original {
		t.Error("derived renditions must differ from the original")
	}
	if set.Thumbnail == set.Lightbox {
		t.Error("thumbnail and lightbox renditions must differ")
	}
}
