package admintoken

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef-test-secret"

func TestNewManager(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		wantErr bool
		isOff   bool
	}{
		{name: "empty secret disables", secret: "", wantErr: true, isOff: true},
		{name: "short secret rejected", secret: "short", wantErr: true},
		{name: "valid secret", secret: testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewManager(tt.secret, "fake-api", time.Hour)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewManager() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.isOff && !errors.Is(err, ErrDisabled) {
				t.Errorf("expected ErrDisabled, got %v", err)
			}
		})
	}
}

func TestManager_IssueVerify(t *testing.T) {
	t.Parallel()

	m, err := NewManager(testSecret, "fake-api", time.Hour)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	tok, err := m.Issue("ops@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Sub != "ops@example.com" {
		t.Errorf("Sub = %q", claims.Sub)
	}
	if claims.Iss != "fake-api" {
		t.Errorf("Iss = %q", claims.Iss)
	}
	if claims.Exp-claims.Iat != int64(time.Hour/time.Second) {
		t.Errorf("unexpected lifetime %d seconds", claims.Exp-claims.Iat)
	}
}

func TestManager_Verify_Rejects(t *testing.T) {
	t.Parallel()

	m, err := NewManager(testSecret, "fake-api", time.Hour)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	other, err := NewManager("another-secret-value-xyz", "fake-api", time.Hour)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	wrongIssuer, err := NewManager(testSecret, "someone-else", time.Hour)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	expired, err := NewManager(testSecret, "fake-api", time.Minute)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	mustIssue := func(mgr *Manager) string {
		tok, err := mgr.Issue("ops")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		return tok
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong key", token: mustIssue(other)},
		{name: "wrong issuer", token: mustIssue(wrongIssuer)},
		{name: "expired", token: mustIssue(expired)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := m.Verify(tt.token); err == nil {
				t.Error("expected Verify() to fail")
			}
		})
	}
}

func TestManager_Issue_RequiresSubject(t *testing.T) {
	t.Parallel()

	m, err := NewManager(testSecret, "fake-api", time.Hour)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if _, err := m.Issue(""); err == nil {
		t.Error("expected error for empty subject")
	}
}
