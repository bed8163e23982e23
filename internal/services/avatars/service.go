// Package avatars synthesises gradient avatars and caches them on disk.
//
// Deterministic avatars are keyed by (identity, size): the first request
// renders and stores the image, later requests return the stored path without
// touching the file. Randomized avatars always render a fresh image under a
// name that is unique per call.
package avatars

import (
	"bytes"
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/louisbranch/nois/internal/platform/errors"
	"github.com/louisbranch/nois/internal/services/avatars/filestore"
	"github.com/louisbranch/nois/internal/services/avatars/palette"
	"github.com/louisbranch/nois/internal/services/avatars/render"
)

const (
	tracerName = "github.com/louisbranch/nois/internal/services/avatars"

	// DefaultMaxSize bounds the edge size a caller may request.
	DefaultMaxSize = 2048

	// randomizedNameAttempts bounds the timestamp bumps after a name clash.
	randomizedNameAttempts = 16
)

// FileStore persists encoded avatars by name.
type FileStore interface {
	Path(name string) string
	Exists(name string) (bool, error)
	Put(name string, data []byte) (string, error)
	PutExclusive(name string, data []byte) (string, error)
}

// Result is a stored avatar and the primary color of its gradient.
type Result struct {
	Path     string
	Color    palette.Color
	CacheHit bool
}

// Service produces avatars. It is safe for concurrent use.
type Service struct {
	store    FileStore
	palette  *palette.Palette
	renderer *render.Renderer
	memo     *memo
	maxSize  int
	now      func() time.Time
	logger   *zap.Logger
	tracer   trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithPalette replaces the built-in palette.
func WithPalette(p *palette.Palette) Option {
	return func(s *Service) {
		if p != nil {
			s.palette = p
		}
	}
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxSize bounds accepted edge sizes. Zero or less disables the bound.
func WithMaxSize(size int) Option {
	return func(s *Service) {
		s.maxSize = size
	}
}

// WithMemo enables an in-process path lookup for up to entries deterministic
// keys. The memo is not authoritative: a memoised name whose file is gone is
// dropped and rendered again.
func WithMemo(entries int) Option {
	return func(s *Service) {
		s.memo = newMemo(entries)
	}
}

// WithClock replaces the clock used to name randomized avatars.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds a Service writing into store.
func NewService(store FileStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, stderrors.New("avatar file store is required")
	}
	s := &Service{
		store:   store,
		palette: palette.Default(),
		maxSize: DefaultMaxSize,
		now:     time.Now,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = render.New(render.WithLogger(s.logger))
	}
	return s, nil
}

// Color returns the primary color identity is assigned.
func (s *Service) Color(identity string) palette.Color {
	return s.palette.Deterministic(identity).Primary
}

// Palette returns the palette in use.
func (s *Service) Palette() *palette.Palette {
	return s.palette
}

// ResetMemo drops every memoised path.
func (s *Service) ResetMemo() {
	s.memo.reset()
}

// GetOrCreate returns the deterministic avatar of identity at size×size.
// A stored avatar is returned as is unless forceRegenerate is set, in which
// case it is rendered again and overwritten.
func (s *Service) GetOrCreate(ctx context.Context, identity string, size int, forceRegenerate bool) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "avatars.GetOrCreate", trace.WithAttributes(
		attribute.Int("avatar.size", size),
		attribute.Bool("avatar.force", forceRegenerate),
	))
	defer span.End()

	if err := s.validateSize(size); err != nil {
		return Result{}, failSpan(span, err)
	}

	pair := s.palette.Deterministic(identity)
	name := filestore.DeterministicName(identity, size)

	if !forceRegenerate {
		if path, ok := s.cached(name); ok {
			span.SetAttributes(attribute.Bool("avatar.cache_hit", true))
			return Result{Path: path, Color: pair.Primary, CacheHit: true}, nil
		}
	}
	span.SetAttributes(attribute.Bool("avatar.cache_hit", false))

	data, err := s.synthesize(ctx, identity, size, pair)
	if err != nil {
		return Result{}, failSpan(span, err)
	}
	path, err := s.store.Put(name, data)
	if err != nil {
		s.logger.Error("store avatar", zap.String("name", name), zap.Error(err))
		return Result{}, failSpan(span, apperrors.Wrap(apperrors.CodeAvatarSynthesisFailed, "store avatar", err))
	}
	s.memo.put(name, path)

	s.logger.Debug("avatar rendered",
		zap.String("path", path),
		zap.Int("size", size),
		zap.Bool("forced", forceRegenerate),
	)
	return Result{Path: path, Color: pair.Primary}, nil
}

// CreateRandomized renders identity with a randomly chosen pair and stores it
// under a new name. The cache is never consulted.
func (s *Service) CreateRandomized(ctx context.Context, identity string, size int) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "avatars.CreateRandomized", trace.WithAttributes(
		attribute.Int("avatar.size", size),
	))
	defer span.End()

	if err := s.validateSize(size); err != nil {
		return Result{}, failSpan(span, err)
	}

	pair := s.palette.Random()
	data, err := s.synthesize(ctx, identity, size, pair)
	if err != nil {
		return Result{}, failSpan(span, err)
	}

	at := s.now()
	for attempt := 0; attempt < randomizedNameAttempts; attempt++ {
		name := filestore.RandomizedName(identity, at)
		path, err := s.store.PutExclusive(name, data)
		if err == nil {
			s.logger.Debug("randomized avatar rendered", zap.String("path", path), zap.Int("size", size))
			return Result{Path: path, Color: pair.Primary}, nil
		}
		if !stderrors.Is(err, filestore.ErrExists) {
			s.logger.Error("store randomized avatar", zap.String("name", name), zap.Error(err))
			return Result{}, failSpan(span, apperrors.Wrap(apperrors.CodeAvatarSynthesisFailed, "store randomized avatar", err))
		}
		at = at.Add(time.Nanosecond)
	}
	err = apperrors.New(apperrors.CodeAvatarSynthesisFailed, "no free randomized avatar name")
	return Result{}, failSpan(span, err)
}

func (s *Service) validateSize(size int) error {
	if size > 0 && (s.maxSize <= 0 || size <= s.maxSize) {
		return nil
	}
	maxSize := s.maxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return apperrors.WithMetadata(
		apperrors.CodeAvatarInvalidSize,
		"avatar size out of range: "+strconv.Itoa(size),
		map[string]string{"Max": strconv.Itoa(maxSize)},
	)
}

// cached reports the stored path of name. The store is always consulted so a
// file removed from disk is rendered again; the memo only supplies the path.
func (s *Service) cached(name string) (string, bool) {
	exists, err := s.store.Exists(name)
	if err != nil {
		s.logger.Warn("check cached avatar", zap.String("name", name), zap.Error(err))
		s.memo.remove(name)
		return "", false
	}
	if !exists {
		s.memo.remove(name)
		return "", false
	}
	if path, ok := s.memo.get(name); ok {
		return path, true
	}
	path := s.store.Path(name)
	s.memo.put(name, path)
	return path, true
}

func (s *Service) synthesize(ctx context.Context, identity string, size int, pair palette.Pair) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := s.renderer.Render(identity, size, pair)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeAvatarSynthesisFailed, "render avatar", err)
	}
	var buf bytes.Buffer
	if err := render.Encode(&buf, img); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeAvatarSynthesisFailed, "encode avatar", err)
	}
	return buf.Bytes(), nil
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
