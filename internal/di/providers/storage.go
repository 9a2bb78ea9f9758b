package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/scrapapp/scrap-server/internal/config"
	"github.com/scrapapp/scrap-server/internal/logger"
	"github.com/scrapapp/scrap-server/internal/media/images"
)

// ProvidePhotoStorage provides the on-disk photo storage.
func ProvidePhotoStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.Data.PhotosPath())
	if err != nil {
		return nil, fmt.Errorf("photo storage: %w", err)
	}

	log.Info("Photo storage initialized", "path", cfg.Data.PhotosPath())

	return storage, nil
}

// ProvidePhotoProcessor provides the photo processor that scales,
// re-encodes, and blurhashes incoming photos.
func ProvidePhotoProcessor(i do.Injector) (*images.Processor, error) {
	storage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return images.NewProcessor(storage, log.Logger), nil
}
