package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/heimdex/heimdex-timeline/internal/project"
)

type configStore interface {
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// ensureConfig returns the stored value for key, generating and saving
// n random bytes as hex on first use.
func ensureConfig(ctx context.Context, repo configStore, key string, n int) (string, error) {
	existing, err := repo.GetConfig(ctx, key)
	if err == nil && existing != "" {
		return existing, nil
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	value := hex.EncodeToString(b)

	if err := repo.SetConfig(ctx, key, value); err != nil {
		return "", err
	}
	return value, nil
}

func ensureDeviceID(ctx context.Context, repo configStore) (string, error) {
	return ensureConfig(ctx, repo, project.ConfigDeviceID, 16)
}

func ensureAuthToken(ctx context.Context, repo configStore) (string, error) {
	return ensureConfig(ctx, repo, project.ConfigAuthToken, 32)
}
