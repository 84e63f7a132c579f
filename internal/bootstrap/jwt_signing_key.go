package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lababa/lababa/internal/repository"
)

type JWTSigningKeySource string

const (
	defaultJWTSigningKey    = "change-me"
	jwtSigningKeySettingKey = "auth_signing_key"
	jwtSigningKeyCategory   = "security"
	jwtSigningKeyBytes      = 32

	JWTSigningKeySourceConfig    JWTSigningKeySource = "config"
	JWTSigningKeySourceSettings  JWTSigningKeySource = "settings"
	JWTSigningKeySourceGenerated JWTSigningKeySource = "generated"
)

type jwtSigningKeyDeps struct {
	now        func() time.Time
	randReader io.Reader
}

// ResolveJWTSigningKey resolves JWT signing key with priority:
// config/env > settings > generate-and-persist.
func ResolveJWTSigningKey(ctx context.Context, settings repository.SettingRepository, configuredKey string, now func() time.Time) (string, JWTSigningKeySource, error) {
	return resolveJWTSigningKey(ctx, settings, configuredKey, jwtSigningKeyDeps{
		now:        now,
		randReader: rand.Reader,
	})
}

func resolveJWTSigningKey(ctx context.Context, settings repository.SettingRepository, configuredKey string, deps jwtSigningKeyDeps) (string, JWTSigningKeySource, error) {
	normalizedConfiguredKey := strings.TrimSpace(configuredKey)
	if normalizedConfiguredKey != "" && normalizedConfiguredKey != defaultJWTSigningKey {
		return normalizedConfiguredKey, JWTSigningKeySourceConfig, nil
	}

	if settings == nil {
		return "", "", fmt.Errorf("resolve jwt signing key: settings store is required when auth.signing_key uses default value; you can set LABABA_AUTH_SIGNING_KEY")
	}
	if deps.now == nil {
		deps.now = time.Now
	}
	if deps.randReader == nil {
		deps.randReader = rand.Reader
	}

	existingKey, err := readJWTSigningKey(ctx, settings)
	if err != nil {
		return "", "", fmt.Errorf("read jwt signing key from settings: %w; you can set LABABA_AUTH_SIGNING_KEY", err)
	}
	if existingKey != "" {
		return existingKey, JWTSigningKeySourceSettings, nil
	}

	generatedKey, err := generateJWTSigningKey(deps.randReader)
	if err != nil {
		return "", "", fmt.Errorf("generate jwt signing key: %w; you can set LABABA_AUTH_SIGNING_KEY", err)
	}

	err = settings.InsertIfBlank(ctx, &repository.Setting{
		Key:       jwtSigningKeySettingKey,
		Value:     generatedKey,
		Category:  jwtSigningKeyCategory,
		UpdatedAt: deps.now().Unix(),
	})
	if err != nil {
		return "", "", fmt.Errorf("persist jwt signing key to settings: %w; you can set LABABA_AUTH_SIGNING_KEY", err)
	}

	// 多个实例同时启动时以最先写入的密钥为准。
	resolvedKey, err := readJWTSigningKey(ctx, settings)
	if err != nil {
		return "", "", fmt.Errorf("read jwt signing key after persistence: %w; you can set LABABA_AUTH_SIGNING_KEY", err)
	}
	if resolvedKey == "" {
		return "", "", fmt.Errorf("jwt signing key not found after persistence; you can set LABABA_AUTH_SIGNING_KEY")
	}

	if resolvedKey == generatedKey {
		return resolvedKey, JWTSigningKeySourceGenerated, nil
	}
	return resolvedKey, JWTSigningKeySourceSettings, nil
}

func readJWTSigningKey(ctx context.Context, settings repository.SettingRepository) (string, error) {
	setting, err := settings.Get(ctx, jwtSigningKeySettingKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(setting.Value), nil
}

func generateJWTSigningKey(reader io.Reader) (string, error) {
	bytes := make([]byte, jwtSigningKeyBytes)
	if _, err := io.ReadFull(reader, bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
