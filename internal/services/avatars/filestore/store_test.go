package filestore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HappyFox123", "HappyFox123"},
		{"happy fox!", "happyfox"},
		{"../../etc/passwd", "etcpasswd"},
		{"Ёжик_42-x", "Ёжик_42-x"},
		{"", "avatar"},
		{"!!!", "avatar"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeterministicNameIncludesSizeAndRawIdentity(t *testing.T) {
	small := DeterministicName("Fox", 256)
	large := DeterministicName("Fox", 512)
	if small == large {
		t.Fatalf("expected size to change the name, both %q", small)
	}
	if DeterministicName("Fox", 512) != large {
		t.Fatal("expected stable name")
	}
	if !strings.HasPrefix(large, "Fox_") || !strings.HasSuffix(large, Extension) {
		t.Fatalf("name = %q, want Fox_<hash>.png", large)
	}
	// Both sanitise to "Fox" but must not share a file.
	if DeterministicName("Fox!", 512) == large {
		t.Fatal("expected raw identity to feed the content hash")
	}
}

func TestRandomizedNameNeverMatchesDeterministic(t *testing.T) {
	at := time.Unix(1700000000, 42)
	random := RandomizedName("Fox", at)
	if random != "Fox_r1700000000000000042.png" {
		t.Fatalf("RandomizedName = %q", random)
	}
	for size := 1; size < 64; size++ {
		if DeterministicName("Fox", size) == random {
			t.Fatalf("size %d collides with randomized name", size)
		}
	}
}

func TestPutExistsAndRemove(t *testing.T) {
	dir, err := Open(filepath.Join(t.TempDir(), "avatars"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ok, err := dir.Exists("a.png")
	if err != nil || ok {
		t.Fatalf("Exists before put = %v, %v; want false, nil", ok, err)
	}

	path, err := dir.Put("a.png", []byte("one"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if path != filepath.Join(dir.Root(), "a.png") {
		t.Fatalf("path = %q", path)
	}
	if _, err := dir.Put("a.png", []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("content = %q, want two", data)
	}

	entries, err := os.ReadDir(dir.Root())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1 (no temp files left)", len(entries))
	}

	if err := dir.Remove("a.png"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := dir.Remove("a.png"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
}

func TestPutExclusiveRefusesTakenName(t *testing.T) {
	dir, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := dir.PutExclusive("b.png", []byte("x")); err != nil {
		t.Fatalf("first exclusive put: %v", err)
	}
	if _, err := dir.PutExclusive("b.png", []byte("y")); !errors.Is(err, ErrExists) {
		t.Fatalf("second exclusive put error = %v, want ErrExists", err)
	}
}

func TestOpenRequiresDirectory(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected empty directory to be rejected")
	}
}
