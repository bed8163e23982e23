package avatars

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/louisbranch/nois/internal/platform/errors"
)

func TestOpenRequiresDir(t *testing.T) {
	if _, err := Open(Settings{Dir: "  "}, nil); err == nil {
		t.Fatal("expected error for blank dir")
	}
}

func TestOpenWithPaletteFile(t *testing.T) {
	root := t.TempDir()
	paletteFile := filepath.Join(root, "palette.yaml")
	content := "pairs:\n  - primary: \"#112233\"\n    secondary: \"#445566\"\n"
	if err := os.WriteFile(paletteFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write palette: %v", err)
	}

	svc, err := Open(Settings{
		Dir:         filepath.Join(root, "avatars"),
		MaxSize:     64,
		MemoSize:    8,
		Fonts:       []string{filepath.Join(root, "missing.ttf")},
		PaletteFile: paletteFile,
	}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := svc.Color("anyone").Hex(); got != "#112233" {
		t.Fatalf("color = %q, want #112233", got)
	}

	res, err := svc.GetOrCreate(context.Background(), "anyone", 32, false)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if filepath.Dir(res.Path) != filepath.Join(root, "avatars") {
		t.Fatalf("path = %q, want under avatars dir", res.Path)
	}

	_, err = svc.GetOrCreate(context.Background(), "anyone", 128, false)
	if !apperrors.HasCode(err, apperrors.CodeAvatarInvalidSize) {
		t.Fatalf("err = %v, want invalid size above max", err)
	}
}

func TestOpenRejectsMissingPalette(t *testing.T) {
	root := t.TempDir()
	_, err := Open(Settings{Dir: root, PaletteFile: filepath.Join(root, "nope.yaml")}, nil)
	if err == nil {
		t.Fatal("expected error for missing palette file")
	}
}
