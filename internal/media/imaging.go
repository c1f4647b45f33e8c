package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// JPEGQuality 重新編碼的品質
const JPEGQuality = 85

// DefaultMaxPixels 解碼前的像素上限（約 40MP）
const DefaultMaxPixels = 40_000_000

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Sniff 依內容判斷格式，不信任前端的 Content-Type
func Sniff(data []byte) (string, error) {
	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return "", fmt.Errorf("%w: unsupported format %s (only JPEG, PNG and WebP accepted)", ErrInvalidImage, detected)
	}
	return detected, nil
}

// Process 驗證、縮圖（最長邊 maxDim）並轉成 JPEG。
// 先讀 header 檢查寬×高，超過 maxPixels 不解碼；maxPixels <= 0 使用 DefaultMaxPixels
func Process(data []byte, maxDim, maxPixels int) ([]byte, error) {
	if _, err := Sniff(data); err != nil {
		return nil, err
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: reading image header: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, maxPixels)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", ErrInvalidImage, err)
	}

	img = downscale(img, maxDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale 等比例縮小，已在範圍內則原樣回傳
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
