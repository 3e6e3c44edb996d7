package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"tastybites-dashboard/internal/config"
)

// Bootstrap makes sure the local dataset file exists, downloading it once
// from blob storage when it does not. A missing file with an incomplete
// Azure configuration, or a failed download, is a startup-fatal condition
// for the caller.
func Bootstrap(ctx context.Context, cfg config.DatasetConfig, logger *slog.Logger) error {
	if _, err := os.Stat(cfg.Path); err == nil {
		logger.Debug("dataset already present", "path", cfg.Path)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat dataset: %w", err)
	}

	if !cfg.Azure.Complete() {
		return fmt.Errorf("dataset %s missing and azure bootstrap is not fully configured", cfg.Path)
	}

	logger.Info("dataset missing, downloading from blob storage",
		"path", cfg.Path,
		"container", cfg.Azure.Container,
		"blob", cfg.Azure.Blob,
	)

	client, err := azblob.NewClientFromConnectionString(cfg.Azure.ConnectionString, nil)
	if err != nil {
		return fmt.Errorf("create blob client: %w", err)
	}

	file, err := os.Create(cfg.Path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer file.Close()

	written, err := client.DownloadFile(ctx, cfg.Azure.Container, cfg.Azure.Blob, file, nil)
	if err != nil {
		// Do not leave a truncated file behind; the next start retries cleanly.
		file.Close()
		os.Remove(cfg.Path)
		return fmt.Errorf("download blob %s/%s: %w", cfg.Azure.Container, cfg.Azure.Blob, err)
	}

	logger.Info("dataset downloaded", "path", cfg.Path, "bytes", written)
	return nil
}
