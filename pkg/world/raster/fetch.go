package raster

import (
	"context"
	"fmt"
	"os"

	getter "github.com/hashicorp/go-getter"
)

// Fetch downloads a resource pack from src into dst. src is any go-getter
// address: a local path, an http(s) archive, a git repository
// ("git::https://host/repo.git//subdir"), or an s3/gcs bucket.
func Fetch(ctx context.Context, src, dst string) error {
	if src == "" {
		return fmt.Errorf("fetch resources: empty source")
	}
	pwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("fetch resources: %w", err)
	}
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeAny,
	}
	if err := client.Get(); err != nil {
		return fmt.Errorf("fetch resources from %s: %w", src, err)
	}
	return nil
}
