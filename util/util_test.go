package util

import (
	"strings"
	"testing"
)

func TestRandomString(t *testing.T) {
	s, err := RandomString(32)
	if err != nil {
		t.Fatalf("Failed to generate random string: %v", err)
	}
	if len(s) != 32 {
		t.Fatalf("Expected length 32, got %d", len(s))
	}
	s2, _ := RandomString(32)
	if s == s2 {
		t.Fatalf("Two random strings should differ")
	}
}

func TestSlugify(t *testing.T) {
	slug := Slugify("The Old Man & the Sea!")
	if !strings.HasPrefix(slug, "the-old-man-the-sea-") {
		t.Fatalf("Unexpected slug: %s", slug)
	}
	if Slugify("Война и мир") == Slugify("Война и мир") {
		t.Fatalf("Slugs for equal titles must not collide")
	}
}

func TestHasPrefixes(t *testing.T) {
	if !HasPrefixes("/api/v1/books", "/api/v1") {
		t.Fatalf("Expected prefix match")
	}
	if HasPrefixes("/healthcheck", "/api/v1") {
		t.Fatalf("Unexpected prefix match")
	}
}

func TestConvertStringToInt32(t *testing.T) {
	v, err := ConvertStringToInt32("42")
	if err != nil || v != 42 {
		t.Fatalf("Expected 42, got %d (%v)", v, err)
	}
	if _, err := ConvertStringToInt32("forty-two"); err == nil {
		t.Fatalf("Expected error for non-numeric input")
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("reader@example.org") {
		t.Fatalf("Expected valid email")
	}
	if ValidateEmail("not-an-email") {
		t.Fatalf("Expected invalid email")
	}
}
