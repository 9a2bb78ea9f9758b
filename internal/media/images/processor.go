package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"

	"golang.org/x/image/draw"
)

// maxStoredDimension caps the longest edge of a stored photo. Phone
// cameras produce images far larger than any screen the app renders
// on, so everything is downscaled on ingest.
const maxStoredDimension = 1080

// jpegQuality is the encode quality for stored and resized photos.
const jpegQuality = 85

// Processor normalizes uploaded photos and stores them: decode,
// downscale, re-encode as JPEG, and compute a BlurHash placeholder.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(storage *Storage, logger *slog.Logger) *Processor {
	return &Processor{
		storage: storage,
		logger:  logger,
	}
}

// Save processes an uploaded photo and stores it under the key.
// Returns the BlurHash of the stored image.
func (p *Processor) Save(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	scaled := scaleDown(img, maxStoredDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}

	if err := p.storage.Save(key, buf.Bytes()); err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}

	hash, err := ComputeBlurHash(scaled)
	if err != nil {
		return "", fmt.Errorf("compute blurhash: %w", err)
	}

	p.logger.Debug("processed photo",
		"key", key,
		"source_format", format,
		"source_size", len(data),
		"stored_size", buf.Len(),
		"width", scaled.Bounds().Dx(),
		"height", scaled.Bounds().Dy(),
	)

	return hash, nil
}

// Get returns the stored JPEG bytes for a key.
func (p *Processor) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.storage.Get(key)
}

// Resized returns the photo downscaled so its longest edge is at most
// maxDim. A maxDim of zero or one at least the stored size returns the
// stored bytes untouched.
func (p *Processor) Resized(ctx context.Context, key string, maxDim int) ([]byte, error) {
	data, err := p.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if maxDim <= 0 || maxDim >= maxStoredDimension {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode stored photo: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxDim && bounds.Dy() <= maxDim {
		return data, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaleDown(img, maxDim), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Delete removes the photo stored under a key.
func (p *Processor) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.storage.Delete(key)
}

// Exists reports whether a photo is stored under the key.
func (p *Processor) Exists(key string) bool {
	return p.storage.Exists(key)
}

// Hash returns the SHA256 of the stored photo, for ETag validation.
func (p *Processor) Hash(key string) (string, error) {
	return p.storage.Hash(key)
}

// scaleDown resizes the image so its longest edge is at most maxDim,
// preserving aspect ratio. Images already within bounds are returned
// unchanged.
func scaleDown(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= maxDim && srcHeight <= maxDim {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = maxDim
		dstHeight = (srcHeight * maxDim) / srcWidth
		if dstHeight < 1 {
			dstHeight = 1
		}
	} else {
		dstHeight = maxDim
		dstWidth = (srcWidth * maxDim) / srcHeight
		if dstWidth < 1 {
			dstWidth = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
