package trust

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewSet(t *testing.T) {
	s := NewSet([]string{"PayPal.com", "google.com", "paypal.com", "  amazon.com ", ""})

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (dedup + blank dropped)", s.Len())
	}
	want := []string{"paypal.com", "google.com", "amazon.com"}
	got := s.Domains()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Domains()[%d] = %q, want %q (order must be preserved)", i, got[i], want[i])
		}
	}
	if !s.Contains("paypal.com") {
		t.Error("Contains(paypal.com) = false, want true")
	}
	if s.Contains("evil.com") {
		t.Error("Contains(evil.com) = true, want false")
	}
}

func TestSetDomainsIsACopy(t *testing.T) {
	s := NewSet([]string{"paypal.com"})
	d := s.Domains()
	d[0] = "evil.com"
	if s.Domains()[0] != "paypal.com" {
		t.Error("mutating the returned slice changed the snapshot")
	}
}

func TestLoadSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trusted_domains.txt")
	content := "# canonical brands\npaypal.com\nGoogle.com\n\n  amazon.com\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSet(path)
	if err != nil {
		t.Fatalf("LoadSet: %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	if !s.Contains("google.com") {
		t.Error("expected lowercased google.com to be a member")
	}
}

func TestLoadSetMissingFile(t *testing.T) {
	if _, err := LoadSet(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBlocklist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocklist.txt")

	b, err := LoadBlocklist(path)
	if err != nil {
		t.Fatalf("LoadBlocklist: %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("fresh blocklist Len() = %d, want 0", b.Len())
	}

	added, err := b.Add("https://evil.example:8080/login")
	if err != nil || !added {
		t.Fatalf("Add = (%v, %v), want (true, nil)", added, err)
	}
	if !b.Contains("evil.example") {
		t.Error("Contains(evil.example) = false after Add")
	}
	if !b.Contains("http://EVIL.example/other") {
		t.Error("lookup should match on the normalized hostname")
	}

	// second add of the same host is a no-op
	added, err = b.Add("evil.example")
	if err != nil || added {
		t.Errorf("duplicate Add = (%v, %v), want (false, nil)", added, err)
	}

	// unparseable input is rejected quietly
	added, err = b.Add("   ")
	if err != nil || added {
		t.Errorf("blank Add = (%v, %v), want (false, nil)", added, err)
	}

	// entries survive a reload from disk
	b2, err := LoadBlocklist(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !b2.Contains("evil.example") {
		t.Error("blocklist entry did not survive reload")
	}
}
