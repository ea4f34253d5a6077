package database

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/benvon/fake-api/internal/models"
	"github.com/google/uuid"
)

func TestRequestLogRepository_Create(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	keyID := uuid.New()

	mock.ExpectQuery("INSERT INTO request_logs").
		WithArgs(keyID, "users", "GET", nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	entry := &models.RequestLog{APIKeyID: keyID, Endpoint: "users", Method: "GET"}
	if err := NewRequestLogRepository(db).Create(context.Background(), entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if entry.ID != 7 {
		t.Errorf("ID = %d, want 7", entry.ID)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRequestLogRepository_ListByAPIKey_DefaultLimit(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	keyID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM request_logs").
		WithArgs(keyID, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "api_key_id", "endpoint", "method", "client_ip", "user_agent", "created_at"}).
			AddRow(int64(1), keyID.String(), "user", "POST", "10.0.0.1", nil, time.Now()))

	logs, err := NewRequestLogRepository(db).ListByAPIKey(context.Background(), keyID, 0)
	if err != nil {
		t.Fatalf("ListByAPIKey() error = %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d logs, want 1", len(logs))
	}
	if logs[0].Endpoint != "user" {
		t.Errorf("Endpoint = %q, want user", logs[0].Endpoint)
	}
	if logs[0].ClientIP == nil || *logs[0].ClientIP != "10.0.0.1" {
		t.Errorf("ClientIP = %v, want 10.0.0.1", logs[0].ClientIP)
	}
	if logs[0].UserAgent != nil {
		t.Errorf("UserAgent = %q, want nil", *logs[0].UserAgent)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRequestLogRepository_CountByEndpoint(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	keyID := uuid.New()

	mock.ExpectQuery("SELECT endpoint, method, COUNT").
		WithArgs(keyID).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "method", "count"}).
			AddRow("users", "GET", int64(4)).
			AddRow("nope", "GET", int64(1)))

	counts, err := NewRequestLogRepository(db).CountByEndpoint(context.Background(), keyID)
	if err != nil {
		t.Fatalf("CountByEndpoint() error = %v", err)
	}
	want := []models.EndpointCount{
		{Endpoint: "users", Method: "GET", Count: 4},
		{Endpoint: "nope", Method: "GET", Count: 1},
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("counts = %+v, want %+v", counts, want)
	}
}

func TestRequestLogRepository_DeleteOlderThan(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM request_logs WHERE created_at < \\$1").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 12))

	n, err := NewRequestLogRepository(db).DeleteOlderThan(context.Background(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if n != 12 {
		t.Errorf("deleted = %d, want 12", n)
	}
}
