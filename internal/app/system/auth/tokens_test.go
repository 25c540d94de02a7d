package auth

import (
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret-0123456789"

func TestIssueAndValidate(t *testing.T) {
	svc, err := NewTokenService(testSecret, 0, 0, nil)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	userID := primitive.NewObjectID()

	pair, err := svc.Issue(userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if pair.TokenType != "bearer" {
		t.Errorf("token type = %q, want bearer", pair.TokenType)
	}

	got, err := svc.Validate(pair.AccessToken, TokenTypeAccess)
	if err != nil {
		t.Fatalf("Validate access: %v", err)
	}
	if got != userID {
		t.Errorf("subject = %s, want %s", got.Hex(), userID.Hex())
	}

	if _, err := svc.Validate(pair.RefreshToken, TokenTypeRefresh); err != nil {
		t.Fatalf("Validate refresh: %v", err)
	}
}

func TestValidateRejectsWrongType(t *testing.T) {
	svc, _ := NewTokenService(testSecret, 0, 0, nil)
	pair, err := svc.Issue(primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.Validate(pair.RefreshToken, TokenTypeAccess); !apperr.IsKind(err, apperr.Unauthenticated) {
		t.Errorf("refresh as access: got %v, want Unauthenticated", err)
	}
	if _, err := svc.Validate(pair.AccessToken, TokenTypeRefresh); !apperr.IsKind(err, apperr.Unauthenticated) {
		t.Errorf("access as refresh: got %v, want Unauthenticated", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	clock := time.Now()
	now := func() time.Time { return clock }
	svc, _ := NewTokenService(testSecret, time.Minute, time.Hour, now)

	pair, err := svc.Issue(primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	clock = clock.Add(2 * time.Minute)
	if _, err := svc.Validate(pair.AccessToken, TokenTypeAccess); !apperr.IsKind(err, apperr.Unauthenticated) {
		t.Errorf("expired access token: got %v, want Unauthenticated", err)
	}
	// The refresh token has an hour to live.
	if _, err := svc.Validate(pair.RefreshToken, TokenTypeRefresh); err != nil {
		t.Errorf("refresh token should still validate: %v", err)
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	a, _ := NewTokenService(testSecret, 0, 0, nil)
	b, _ := NewTokenService("another-secret-entirely", 0, 0, nil)

	pair, err := a.Issue(primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Validate(pair.AccessToken, TokenTypeAccess); !apperr.IsKind(err, apperr.Unauthenticated) {
		t.Errorf("foreign signature: got %v, want Unauthenticated", err)
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	if _, err := NewTokenService("", 0, 0, nil); err == nil {
		t.Fatal("empty secret accepted")
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-one")
	b := HashToken("token-one")
	c := HashToken("token-two")

	if a != b {
		t.Error("digest is not deterministic")
	}
	if a == c {
		t.Error("different tokens share a digest")
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(a))
	}
}
