package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/benvon/fake-api/internal/models"
	"github.com/google/uuid"
)

var apiKeyRowColumns = []string{"id", "key_hash", "key_prefix", "name", "is_active", "created_at", "updated_at", "last_used_at"}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return Wrap(sqlDB), mock
}

func TestAPIKeyRepository_Create(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewAPIKeyRepository(db)

	name := "demo"
	key := &models.APIKey{KeyHash: "abc123", KeyPrefix: "fk_abc", Name: &name, IsActive: true}

	mock.ExpectExec("INSERT INTO api_keys").
		WithArgs(sqlmock.AnyArg(), "abc123", "fk_abc", "demo", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), key); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if key.ID == uuid.Nil {
		t.Error("ID not assigned")
	}
	if key.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAPIKeyRepository_GetByHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		rows      *sqlmock.Rows
		queryErr  error
		wantErr   error
		wantFound bool
	}{
		{
			name: "active key found",
			rows: sqlmock.NewRows(apiKeyRowColumns).
				AddRow(uuid.New().String(), "hash", "fk_1234", "demo", true, time.Now(), time.Now(), nil),
			wantFound: true,
		},
		{
			name:    "unknown key",
			rows:    sqlmock.NewRows(apiKeyRowColumns),
			wantErr: ErrNotFound,
		},
		{
			name:     "query failure",
			queryErr: errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, mock := newMockDB(t)
			repo := NewAPIKeyRepository(db)

			exp := mock.ExpectQuery("SELECT .+ FROM api_keys WHERE key_hash = \\$1").WithArgs("hash")
			if tt.queryErr != nil {
				exp.WillReturnError(tt.queryErr)
			} else {
				exp.WillReturnRows(tt.rows)
			}

			key, err := repo.GetByHash(context.Background(), "hash")
			switch {
			case tt.wantFound:
				if err != nil {
					t.Fatalf("GetByHash() error = %v", err)
				}
				if !key.IsActive {
					t.Error("key not active")
				}
				if key.Name == nil || *key.Name != "demo" {
					t.Errorf("Name = %v, want demo", key.Name)
				}
				if key.LastUsedAt != nil {
					t.Errorf("LastUsedAt = %v, want nil", key.LastUsedAt)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err == nil || errors.Is(err, ErrNotFound) {
					t.Errorf("error = %v, want a query failure", err)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestAPIKeyRepository_SetActive(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	t.Run("revokes existing key", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE api_keys SET is_active").
			WithArgs(false, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := NewAPIKeyRepository(db).SetActive(context.Background(), id, false); err != nil {
			t.Fatalf("SetActive() error = %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE api_keys SET is_active").
			WithArgs(true, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewAPIKeyRepository(db).SetActive(context.Background(), id, true)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestAPIKeyRepository_List(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM api_keys ORDER BY created_at DESC LIMIT \\$1 OFFSET \\$2").
		WithArgs(2, 0).
		WillReturnRows(sqlmock.NewRows(apiKeyRowColumns).
			AddRow(uuid.New().String(), "h1", "fk_1", nil, true, now, now, now).
			AddRow(uuid.New().String(), "h2", "fk_2", "second", false, now, now, nil))

	keys, err := NewAPIKeyRepository(db).List(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(keys))
	}
	if keys[0].Name != nil {
		t.Errorf("first Name = %q, want nil", *keys[0].Name)
	}
	if keys[0].LastUsedAt == nil {
		t.Error("first LastUsedAt = nil, want a time")
	}
	if keys[1].IsActive {
		t.Error("second key should be inactive")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
