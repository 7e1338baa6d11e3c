package config

import (
	"context"
	"fmt"
	"os"
	"time"

	getter "github.com/hashicorp/go-getter"
)

// FetchDeployment downloads a deployment file from src into dst.
//
// src accepts go-getter addresses: local paths, http(s) urls and
// github.com/org/repo//path/file.toml style git sources.
func FetchDeployment(ctx context.Context, src, dst string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	httpGetter := &getter.HttpGetter{Netrc: true}
	client := getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
		Detectors: []getter.Detector{
			&getter.GitHubDetector{},
			&getter.FileDetector{},
		},
		Getters: map[string]getter.Getter{
			"file":  &getter.FileGetter{Copy: true},
			"git":   &getter.GitGetter{},
			"http":  httpGetter,
			"https": httpGetter,
		},
	}

	if err := client.Get(); err != nil {
		return fmt.Errorf("failed to fetch deployment from %s: %w", src, err)
	}
	return nil
}
