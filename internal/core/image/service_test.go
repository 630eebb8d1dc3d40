package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/cache"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/ollama"
	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	resp  *ollama.GenerateResponse
	err   error
	calls int
}

func (f *fakeGenerator) GenerateRaw(ctx context.Context, req *ollama.GenerateRequest, timeout time.Duration) (*ollama.GenerateResponse, error) {
	f.calls++
	return f.resp, f.err
}

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func testImageConfig(t *testing.T) config.ImageConfig {
	return config.ImageConfig{
		Mode:           config.ImageModeOllama,
		PlaceholderURL: "/static/images/placeholder.jpg",
		StaticDir:      t.TempDir(),
		MaxSizeBytes:   1 << 20,
		MaxDimension:   64,
		Timeout:        time.Second,
	}
}

func TestDishImageSavesAndCaches(t *testing.T) {
	cfg := testImageConfig(t)
	gen := &fakeGenerator{resp: &ollama.GenerateResponse{Image: "data:image/png;base64," + pngBase64(t, 200, 100)}}
	mem := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	defer mem.Close()

	svc := NewService(cfg, "sdxl", gen, mem)

	url := svc.DishImage(context.Background(), "Tomato & Basil Soup!", "")
	assert.Equal(t, "/static/images/Tomato__Basil_Soup.jpg", url)

	saved, err := os.Open(filepath.Join(cfg.StaticDir, "images", "Tomato__Basil_Soup.jpg"))
	require.NoError(t, err)
	defer saved.Close()
	img, format, err := image.Decode(saved)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())

	again := svc.DishImage(context.Background(), "tomato & basil soup!", "")
	assert.Equal(t, url, again)
	assert.Equal(t, 1, gen.calls)
}

func TestDishImageFallsBackToPlaceholder(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"backend error", &fakeGenerator{err: errors.New("connection refused")}},
		{"text response", &fakeGenerator{resp: &ollama.GenerateResponse{Response: "A bright plate of soup"}}},
		{"bad base64", &fakeGenerator{resp: &ollama.GenerateResponse{Image: "%%%"}}},
		{"not an image", &fakeGenerator{resp: &ollama.GenerateResponse{Image: base64.StdEncoding.EncodeToString([]byte("hello"))}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(testImageConfig(t), "sdxl", tt.gen, nil)
			assert.Equal(t, "/static/images/placeholder.jpg", svc.DishImage(context.Background(), "Soup", ""))
		})
	}
}

func TestPlaceholderModeNeverCallsGenerator(t *testing.T) {
	cfg := testImageConfig(t)
	cfg.Mode = config.ImageModePlaceholder
	gen := &fakeGenerator{}

	svc := NewService(cfg, "sdxl", gen, nil)
	assert.Equal(t, cfg.PlaceholderURL, svc.DishImage(context.Background(), "Soup", ""))
	assert.Zero(t, gen.calls)
}

func TestEnsurePlaceholder(t *testing.T) {
	cfg := testImageConfig(t)
	require.NoError(t, EnsurePlaceholder(cfg))

	path := filepath.Join(cfg.StaticDir, "images", "placeholder.jpg")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	require.NoError(t, EnsurePlaceholder(cfg))
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "Pad_Thai", safeFilename("Pad Thai"))
	assert.Equal(t, "ma-po_tofu", safeFilename(" ma-po tofu "))
	assert.Len(t, safeFilename("湯"), 36)
}
