package avatars

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/louisbranch/nois/internal/services/avatars/filestore"
	"github.com/louisbranch/nois/internal/services/avatars/palette"
	"github.com/louisbranch/nois/internal/services/avatars/render"
)

// Settings describes an on-disk avatar service.
type Settings struct {
	Dir     string
	MaxSize int
	// MemoSize bounds the path memo; zero disables it.
	MemoSize int
	// Fonts are TrueType/OpenType files tried before the bundled faces.
	Fonts []string
	// PaletteFile optionally replaces the built-in palette.
	PaletteFile string
}

// Open builds a service storing avatars under settings.Dir.
func Open(settings Settings, logger *zap.Logger) (*Service, error) {
	if strings.TrimSpace(settings.Dir) == "" {
		return nil, errors.New("avatar directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	dir, err := filestore.Open(settings.Dir)
	if err != nil {
		return nil, fmt.Errorf("open avatar directory: %w", err)
	}

	pal := palette.Default()
	if settings.PaletteFile != "" {
		pal, err = palette.LoadFile(settings.PaletteFile)
		if err != nil {
			return nil, fmt.Errorf("load palette: %w", err)
		}
		logger.Info("palette loaded", zap.String("file", settings.PaletteFile), zap.Int("pairs", pal.Len()))
	}

	renderer := render.New(
		render.WithFonts(render.DefaultFontChain(settings.Fonts...)),
		render.WithLogger(logger.Named("render")),
	)
	return NewService(dir,
		WithPalette(pal),
		WithRenderer(renderer),
		WithLogger(logger),
		WithMaxSize(settings.MaxSize),
		WithMemo(settings.MemoSize),
	)
}
