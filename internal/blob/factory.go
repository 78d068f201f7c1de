package blob

import (
	"context"

	appconfig "github.com/blackbeanteam/lease-analysis-back/internal/config"
)

func NewSource(ctx context.Context, cfg appconfig.Config) (Source, error) {
	switch cfg.BlobMode {
	case "s3", "aws":
		return NewS3Source(ctx, cfg)
	default:
		return NewHelperSource(cfg.BlobHelperBase, cfg.BlobFetchTimeout, cfg.BlobDeleteTimeout), nil
	}
}
