package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/holyculture/internal/dbx"
)

const (
	metaSalt     = "salt"
	metaVerifier = "verifier"
)

type credentialRow struct {
	Service       string
	Account       string
	Payload       []byte
	Nonce         []byte
	Accessibility Accessibility
	Biometric     bool
	Enrollment    string
	UpdatedAt     int64
}

func getCredential(ctx context.Context, db dbx.DBTX, service string) (*credentialRow, error) {
	var r credentialRow
	err := db.QueryRowContext(ctx, `
		SELECT service, account, payload, nonce, accessibility, biometric, enrollment, updated_at
		FROM credentials WHERE service = ?`, service).
		Scan(&r.Service, &r.Account, &r.Payload, &r.Nonce, &r.Accessibility, &r.Biometric, &r.Enrollment, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential[%s]: %w", service, err)
	}
	return &r, nil
}

func upsertCredential(ctx context.Context, db dbx.DBTX, r *credentialRow) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO credentials (service, account, payload, nonce, accessibility, biometric, enrollment, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(service) DO UPDATE SET
			account = excluded.account,
			payload = excluded.payload,
			nonce = excluded.nonce,
			accessibility = excluded.accessibility,
			biometric = excluded.biometric,
			enrollment = excluded.enrollment,
			updated_at = excluded.updated_at
	`, r.Service, r.Account, r.Payload, r.Nonce, r.Accessibility, r.Biometric, r.Enrollment, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save credential[%s]: %w", r.Service, err)
	}
	return nil
}

func deleteCredential(ctx context.Context, db dbx.DBTX, service string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM credentials WHERE service = ?`, service)
	if err != nil {
		return fmt.Errorf("failed to delete credential[%s]: %w", service, err)
	}
	return nil
}

func getMeta(ctx context.Context, db dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func setMeta(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}
