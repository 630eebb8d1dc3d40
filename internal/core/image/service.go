package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "image/gif"  // 支援 GIF
	_ "image/jpeg" // 支援 JPEG
	_ "image/png"  // 支援 PNG

	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/cache"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/ollama"
	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // 支援 WebP
)

// imagesDir 靜態目錄下存放菜餚圖片的子目錄
const imagesDir = "images"

var dataURLPattern = regexp.MustCompile(`data:image/[^;]+;base64,([A-Za-z0-9+/=]+)`)

// Generator 能產生圖片的模型伺服器
type Generator interface {
	GenerateRaw(ctx context.Context, req *ollama.GenerateRequest, timeout time.Duration) (*ollama.GenerateResponse, error)
}

// Service 菜餚圖片服務
// 任何失敗都回傳佔位圖，不會讓食譜生成失敗
type Service struct {
	config    config.ImageConfig
	model     string
	generator Generator
	cache     cache.Cache
}

// NewService 創建圖片服務；generator 為 nil 時只回傳佔位圖
func NewService(cfg config.ImageConfig, model string, generator Generator, c cache.Cache) *Service {
	if cfg.Mode != config.ImageModeOllama {
		generator = nil
	}
	return &Service{
		config:    cfg,
		model:     model,
		generator: generator,
		cache:     c,
	}
}

// PlaceholderURL 佔位圖 URL
func (s *Service) PlaceholderURL() string {
	return s.config.PlaceholderURL
}

// DishImage 取得菜餚圖片 URL
func (s *Service) DishImage(ctx context.Context, dish, hint string) string {
	if s.generator == nil || strings.TrimSpace(dish) == "" {
		return s.config.PlaceholderURL
	}

	if s.cache != nil {
		if url, err := s.cache.Get(ctx, dish); err == nil {
			return url
		}
	}

	url, err := s.generate(ctx, dish, hint)
	if err != nil {
		common.LogWarn("Image generation failed, using placeholder",
			zap.String("dish", dish),
			zap.Error(err),
		)
		return s.config.PlaceholderURL
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dish, url); err != nil {
			common.LogWarn("Failed to cache image url", zap.Error(err))
		}
	}
	return url
}

func (s *Service) generate(ctx context.Context, dish, hint string) (string, error) {
	prompt := fmt.Sprintf("High quality professional food photography of %s presented on a clean plate. "+
		"Style: realistic, vibrant colors, appetizing, close-up, natural light, slight bokeh, 4k detail.", dish)
	if hint != "" {
		prompt += " Optional style hint: " + hint
	}

	resp, err := s.generator.GenerateRaw(ctx, &ollama.GenerateRequest{
		Model:  s.model,
		Prompt: prompt,
	}, s.config.Timeout)
	if err != nil {
		return "", err
	}

	payload := extractPayload(resp)
	if payload == "" {
		return "", fmt.Errorf("model %s returned text instead of an image", s.model)
	}

	data, err := decodePayload(payload)
	if err != nil {
		return "", err
	}

	img, err := s.decodeImage(data)
	if err != nil {
		return "", err
	}

	if s.config.MaxDimension > 0 {
		img = imaging.Fit(img, s.config.MaxDimension, s.config.MaxDimension, imaging.Lanczos)
	}

	filename := safeFilename(dish) + ".jpg"
	path := filepath.Join(s.config.StaticDir, imagesDir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	common.LogInfo("Generated dish image", zap.String("file", filename))
	return "/static/" + imagesDir + "/" + filename, nil
}

// extractPayload 依序嘗試 image、images 與 response 欄位
func extractPayload(resp *ollama.GenerateResponse) string {
	if resp.Image != "" {
		return resp.Image
	}
	if len(resp.Images) > 0 && resp.Images[0] != "" {
		return resp.Images[0]
	}
	text := strings.TrimSpace(resp.Response)
	if strings.Contains(text, "data:image") || len(text) > 1000 {
		return text
	}
	return ""
}

// decodePayload 解析 data URL 或純 base64
func decodePayload(payload string) ([]byte, error) {
	if m := dataURLPattern.FindStringSubmatch(payload); m != nil {
		payload = m[1]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data: %w", err)
	}
	return data, nil
}

// decodeImage 檢查大小與格式後解碼
func (s *Service) decodeImage(data []byte) (image.Image, error) {
	if s.config.MaxSizeBytes > 0 && int64(len(data)) > s.config.MaxSizeBytes {
		return nil, fmt.Errorf("image size exceeds maximum limit of %d bytes", s.config.MaxSizeBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if !isSupportedFormat(format) {
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}
	return img, nil
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"jpg":  true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}

// safeFilename 只保留字母、數字、空白、- 與 _，空白轉為 _
func safeFilename(dish string) string {
	var b strings.Builder
	for _, r := range dish {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return uuid.NewString()
	}
	return name
}

// EnsurePlaceholder 佔位圖不存在時產生一張純色 JPEG
func EnsurePlaceholder(cfg config.ImageConfig) error {
	name := filepath.Base(cfg.PlaceholderURL)
	path := filepath.Join(cfg.StaticDir, imagesDir, name)

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	size := cfg.MaxDimension
	if size <= 0 || size > 512 {
		size = 512
	}
	img := imaging.New(size, size, color.NRGBA{R: 0xF4, G: 0xE9, B: 0xD8, A: 0xFF})
	return imaging.Save(img, path, imaging.JPEGQuality(85))
}
