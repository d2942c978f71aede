package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/nattapongd/Fund-Compare-Backend/internal/apperrors"
)

// Names of settings managed through the settings service.
const (
	SettingSECFactsheetKey = "sec_factsheet_api_key"
	SettingSECDailyKey     = "sec_daily_api_key"
)

// SettingsService stores operational settings in the database. Values
// marked secret are encrypted with the configured fernet key before
// persisting, so API credentials never sit in the table as plaintext.
type SettingsService struct {
	db  *sql.DB
	key *fernet.Key
}

// NewSettingsService creates a new SettingsService. encryptionKey is a
// base64 fernet key; it may be empty, in which case secret operations fail
// with apperrors.ErrEncryptionKeyNotSet.
func NewSettingsService(db *sql.DB, encryptionKey string) (*SettingsService, error) {
	s := &SettingsService{db: db}
	if encryptionKey != "" {
		keys, err := fernet.DecodeKeys(encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid settings encryption key: %w", err)
		}
		s.key = keys[0]
	}
	return s, nil
}

// GetSetting returns a plaintext setting value or
// apperrors.ErrSettingNotFound.
func (s *SettingsService) GetSetting(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM system_setting WHERE name = ? AND encrypted = 0
	`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", apperrors.ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", name, err)
	}
	return value, nil
}

// SetSetting stores a plaintext setting value, replacing any prior value.
func (s *SettingsService) SetSetting(ctx context.Context, name, value string) error {
	return s.upsert(ctx, name, value, false)
}

// GetSecret returns a decrypted secret setting value.
func (s *SettingsService) GetSecret(ctx context.Context, name string) (string, error) {
	if s.key == nil {
		return "", apperrors.ErrEncryptionKeyNotSet
	}

	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM system_setting WHERE name = ? AND encrypted = 1
	`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", apperrors.ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s: %w", name, err)
	}

	plaintext := fernet.VerifyAndDecrypt([]byte(value), 0, []*fernet.Key{s.key})
	if plaintext == nil {
		return "", fmt.Errorf("failed to decrypt secret %s", name)
	}
	return string(plaintext), nil
}

// SetSecret encrypts and stores a secret setting value.
func (s *SettingsService) SetSecret(ctx context.Context, name, value string) error {
	if s.key == nil {
		return apperrors.ErrEncryptionKeyNotSet
	}

	token, err := fernet.EncryptAndSign([]byte(value), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret %s: %w", name, err)
	}
	return s.upsert(ctx, name, string(token), true)
}

func (s *SettingsService) upsert(ctx context.Context, name, value string, encrypted bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO system_setting (id, name, value, encrypted, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			encrypted = excluded.encrypted,
			updated_at = CURRENT_TIMESTAMP
	`, uuid.New().String(), name, value, encrypted)
	if err != nil {
		return fmt.Errorf("failed to store setting %s: %w", name, err)
	}
	return nil
}
