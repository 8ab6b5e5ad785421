package credstore

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/client/biometric"
	"github.com/dmitrijs2005/holyculture/internal/client/migrations"
	"github.com/dmitrijs2005/holyculture/internal/common"
	"github.com/dmitrijs2005/holyculture/internal/cryptox"
	"github.com/dmitrijs2005/holyculture/internal/dbx"
	"github.com/dmitrijs2005/holyculture/internal/filex"
	"github.com/dmitrijs2005/holyculture/internal/timex"
)

const saltSize = 16

// SQLiteStore is a Store backed by an SQLite vault. It starts locked; call
// Unlock with the device secret before use.
type SQLiteStore struct {
	db    *sql.DB
	auth  biometric.Authenticator
	clock timex.Clock

	mu  sync.RWMutex
	key []byte
}

var _ Store = (*SQLiteStore)(nil)

type Option func(*SQLiteStore)

func WithClock(c timex.Clock) Option {
	return func(s *SQLiteStore) { s.clock = c }
}

// NewSQLiteStore wraps an already migrated database. A nil auth behaves like
// biometric.Unsupported.
func NewSQLiteStore(db *sql.DB, auth biometric.Authenticator, opts ...Option) *SQLiteStore {
	if auth == nil {
		auth = biometric.Unsupported{}
	}
	s := &SQLiteStore{db: db, auth: auth, clock: timex.SystemClock{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open creates the vault at vaultPath if needed, applies migrations and
// unlocks it with the secret kept in deviceKeyPath (generated on first run).
func Open(ctx context.Context, vaultPath, deviceKeyPath string, auth biometric.Authenticator, opts ...Option) (*SQLiteStore, error) {
	if _, err := filex.EnsureParentDir(vaultPath); err != nil {
		return nil, err
	}
	secret, err := filex.ReadOrCreateSecret(deviceKeyPath, cryptox.KeySize, common.GenerateRandByteArray)
	if err != nil {
		return nil, fmt.Errorf("device key: %w", err)
	}
	defer common.WipeByteArray(secret)

	db, err := dbx.OpenSQLite(ctx, vaultPath, migrations.Migrations)
	if err != nil {
		return nil, err
	}
	s := NewSQLiteStore(db, auth, opts...)
	if err := s.Unlock(ctx, secret); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Unlock derives the vault key from deviceSecret. On a fresh vault it
// generates the salt and records a verifier; otherwise it checks the derived
// key against the stored verifier.
func (s *SQLiteStore) Unlock(ctx context.Context, deviceSecret []byte) error {
	var key []byte
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		salt, err := getMeta(ctx, tx, metaSalt)
		if errors.Is(err, ErrNotFound) {
			salt = common.GenerateRandByteArray(saltSize)
			key = cryptox.DeriveKey(deviceSecret, salt)
			if err := setMeta(ctx, tx, metaSalt, salt); err != nil {
				return err
			}
			return setMeta(ctx, tx, metaVerifier, cryptox.MakeVerifier(key))
		}
		if err != nil {
			return err
		}

		verifier, err := getMeta(ctx, tx, metaVerifier)
		if err != nil {
			return err
		}
		key = cryptox.DeriveKey(deviceSecret, salt)
		if subtle.ConstantTimeCompare(verifier, cryptox.MakeVerifier(key)) != 1 {
			common.WipeByteArray(key)
			return ErrWrongDeviceKey
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	common.WipeByteArray(s.key)
	s.key = key
	s.mu.Unlock()
	return nil
}

// Lock forgets the vault key. Subsequent calls fail with ErrLocked.
func (s *SQLiteStore) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.key)
	s.key = nil
}

func (s *SQLiteStore) Locked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key == nil
}

func (s *SQLiteStore) Close() error {
	s.Lock()
	return s.db.Close()
}

// withKey runs fn with a copy of the vault key, or fails with ErrLocked.
func (s *SQLiteStore) withKey(fn func(key []byte) error) error {
	s.mu.RLock()
	if s.key == nil {
		s.mu.RUnlock()
		return ErrLocked
	}
	key := append([]byte(nil), s.key...)
	s.mu.RUnlock()
	defer common.WipeByteArray(key)
	return fn(key)
}

func (s *SQLiteStore) Save(ctx context.Context, service, account string, secret []byte, opts SaveOptions) error {
	acc := opts.Accessibility
	if acc == "" {
		acc = WhenUnlockedThisDeviceOnly
	}

	var enrollment string
	if opts.BiometricGate || acc == WhenPasscodeSetThisDeviceOnly {
		if !biometric.Available(ctx, s.auth) {
			return ErrBiometricUnavailable
		}
	}
	if opts.BiometricGate {
		id, err := s.auth.EnrollmentID(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBiometricUnavailable, err)
		}
		enrollment = id
	}

	return s.withKey(func(key []byte) error {
		payload, nonce, err := cryptox.Seal(secret, key, additionalData(service, account))
		if err != nil {
			return fmt.Errorf("encrypt credential[%s]: %w", service, err)
		}
		return upsertCredential(ctx, s.db, &credentialRow{
			Service:       service,
			Account:       account,
			Payload:       payload,
			Nonce:         nonce,
			Accessibility: acc,
			Biometric:     opts.BiometricGate,
			Enrollment:    enrollment,
			UpdatedAt:     s.clock.Now().UnixMilli(),
		})
	})
}

func (s *SQLiteStore) Get(ctx context.Context, service string, opts GetOptions) (*Credential, error) {
	var cred *Credential
	err := s.withKey(func(key []byte) error {
		row, err := getCredential(ctx, s.db, service)
		if err != nil {
			return err
		}

		if row.Accessibility == WhenPasscodeSetThisDeviceOnly && !biometric.Available(ctx, s.auth) {
			return s.invalidate(ctx, service)
		}
		if row.Biometric {
			current, err := s.auth.EnrollmentID(ctx)
			if err != nil || current != row.Enrollment {
				return s.invalidate(ctx, service)
			}
			if err := s.auth.Authenticate(ctx, opts.Prompt); err != nil {
				return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
			}
		}

		secret, err := cryptox.Open(row.Payload, row.Nonce, key, additionalData(row.Service, row.Account))
		if err != nil {
			return fmt.Errorf("decrypt credential[%s]: %w", service, err)
		}
		cred = &Credential{
			Service:   row.Service,
			Account:   row.Account,
			Secret:    secret,
			UpdatedAt: time.UnixMilli(row.UpdatedAt),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cred, nil
}

// Clear deletes the entry for service. Deleting needs no key, so it also
// works while the vault is locked.
func (s *SQLiteStore) Clear(ctx context.Context, service string) error {
	return deleteCredential(ctx, s.db, service)
}

func (s *SQLiteStore) invalidate(ctx context.Context, service string) error {
	if err := deleteCredential(ctx, s.db, service); err != nil {
		return err
	}
	return ErrBiometricInvalidated
}

// additionalData binds a ciphertext to its row so payloads cannot be swapped
// between services.
func additionalData(service, account string) []byte {
	return []byte(service + "\x00" + account)
}
