package store

import (
	"testing"
)

func TestSecuritySettingIsGeneratedOnce(t *testing.T) {
	s := newTestStore(t)

	first, err := s.GetOrUpsertSystemSecuritySetting()
	if err != nil {
		t.Fatalf("Failed to get security setting: %v", err)
	}
	if first.JWTSecret == "" {
		t.Fatalf("Expected a generated JWT secret")
	}

	second, err := s.GetOrUpsertSystemSecuritySetting()
	if err != nil {
		t.Fatalf("Failed to get security setting: %v", err)
	}
	if second.JWTSecret != first.JWTSecret {
		t.Errorf("Expected a stable secret, got %q and %q", first.JWTSecret, second.JWTSecret)
	}
}

func TestGeneralSetting(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertSystemGeneralSetting(&SystemGeneralSetting{DisableSignup: true}); err != nil {
		t.Fatalf("Failed to upsert general setting: %v", err)
	}

	setting, err := s.GetSystemGeneralSetting()
	if err != nil {
		t.Fatalf("Failed to get general setting: %v", err)
	}
	if !setting.DisableSignup {
		t.Errorf("Expected signup to be disabled")
	}
}
