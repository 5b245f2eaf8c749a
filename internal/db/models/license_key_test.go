package models

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestClaimed(t *testing.T) {
	key := &LicenseKey{Token: "KA-AB2C3"}
	if key.Claimed() {
		t.Error("Claimed() = true for unbound key, want false")
	}

	device := "device-1"
	key.DeviceID = &device
	if !key.Claimed() {
		t.Error("Claimed() = false for bound key, want true")
	}
}

func TestExpired(t *testing.T) {
	past := testNow.Add(-time.Minute)
	future := testNow.Add(time.Minute)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"lifetime key never expires", nil, false},
		{"future deadline", &future, false},
		{"past deadline", &past, true},
		{"deadline exactly now", &testNow, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := &LicenseKey{Token: "KA-AB2C3", ExpiresAt: tt.expiresAt}
			if got := key.Expired(testNow); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
