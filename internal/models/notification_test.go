package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDeviceTokenLastSeenAtOptional(t *testing.T) {
	now := time.Now().UTC()
	token := DeviceToken{
		UserID:     uuid.New(),
		Token:      "fcm-token-0123456789",
		Platform:   "android",
		IsActive:   true,
		LastSeenAt: &now,
	}
	if token.LastSeenAt == nil || !token.LastSeenAt.Equal(now) {
		t.Fatalf("last seen = %v, want %v", token.LastSeenAt, now)
	}

	// A token that has never been seen serializes the field as null.
	unseen, err := json.Marshal(DeviceToken{Token: "fcm-token-9876543210"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(unseen), `"last_seen_at":null`) {
		t.Fatalf("expected null last_seen_at, got %s", unseen)
	}
}
