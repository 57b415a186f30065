package auth

import (
	"fmt"
	"testing"
	"time"

	"foodgram/internal/utils"
)

func TestRevokeAndCheck(t *testing.T) {
	r := NewRevocations(10)
	r.Revoke("abc", time.Hour)
	if !r.IsRevoked("abc") {
		t.Errorf("Expected abc to be revoked")
	}
	if r.IsRevoked("def") {
		t.Errorf("Expected def to be valid")
	}

	r.Revoke("expired", 0)
	r.Revoke("", time.Hour)
	if r.IsRevoked("expired") || r.IsRevoked("") {
		t.Errorf("Expected non-positive ttl and empty id to be ignored")
	}
}

func TestRevocationsSurviveOtherCacheTraffic(t *testing.T) {
	shared := utils.NewCache(500)
	r := NewRevocations(10)
	r.Revoke("abc", time.Hour)

	for i := 0; i < 1000; i++ {
		shared.Set(fmt.Sprintf("ingredients:search:x%d", i), []string{}, time.Hour)
	}
	if !r.IsRevoked("abc") {
		t.Errorf("Expected revocation to survive unrelated cache churn")
	}
}
