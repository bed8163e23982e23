// Package nickname generates playful nicknames and enforces the nickname
// policy shared by generated and user-chosen names.
package nickname

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	apperrors "github.com/louisbranch/nois/internal/platform/errors"
)

const (
	// RandomTheme selects the untargeted generator.
	RandomTheme = "random"

	// DefaultSuggestions is the suggestion count used when none is given.
	DefaultSuggestions = 5
	// MaxSuggestions caps one suggestion batch.
	MaxSuggestions = 10

	themeAdjectiveChance  = 0.7
	mythicalEpithetChance = 0.6
	numberTailChance      = 0.4
	symbolTailChance      = 0.1

	mythicalTheme = "mythical"
)

//go:embed words.yaml
var wordsYAML []byte

// Theme is a themed noun list with its two signature adjectives.
type Theme struct {
	Name     string   `yaml:"name"`
	Defaults []string `yaml:"defaults"`
	Nouns    []string `yaml:"nouns"`
}

// Words holds the vocabulary nicknames are assembled from.
type Words struct {
	Adjectives []string `yaml:"adjectives"`
	Nouns      []string `yaml:"nouns"`
	Prefixes   []string `yaml:"prefixes"`
	Suffixes   []string `yaml:"suffixes"`
	Symbols    []string `yaml:"symbols"`
	Themes     []Theme  `yaml:"themes"`
}

// LoadWords decodes a YAML vocabulary.
func LoadWords(r io.Reader) (Words, error) {
	var words Words
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&words); err != nil {
		return Words{}, fmt.Errorf("decode nickname words: %w", err)
	}
	if err := words.validate(); err != nil {
		return Words{}, err
	}
	return words, nil
}

func (w Words) validate() error {
	lists := []struct {
		name  string
		words []string
	}{
		{"adjectives", w.Adjectives},
		{"nouns", w.Nouns},
		{"prefixes", w.Prefixes},
		{"suffixes", w.Suffixes},
		{"symbols", w.Symbols},
	}
	for _, list := range lists {
		if len(list.words) == 0 {
			return fmt.Errorf("nickname words: %s must not be empty", list.name)
		}
	}
	if len(w.Themes) == 0 {
		return fmt.Errorf("nickname words: themes must not be empty")
	}
	for _, theme := range w.Themes {
		if strings.TrimSpace(theme.Name) == "" || len(theme.Nouns) == 0 || len(theme.Defaults) == 0 {
			return fmt.Errorf("nickname words: theme %q needs a name, defaults and nouns", theme.Name)
		}
	}
	return nil
}

var defaultWords = sync.OnceValue(func() Words {
	words, err := LoadWords(bytes.NewReader(wordsYAML))
	if err != nil {
		panic(err)
	}
	return words
})

// DefaultWords returns the embedded vocabulary.
func DefaultWords() Words {
	return defaultWords()
}

// Generator assembles nicknames. It is safe for concurrent use.
type Generator struct {
	words Words

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator builds a generator over words drawing from src. A nil src
// seeds a fresh PCG source.
func NewGenerator(words Words, src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{words: words, rnd: rand.New(src)}
}

// New builds a randomly seeded generator over the embedded vocabulary.
func New() *Generator {
	return NewGenerator(DefaultWords(), nil)
}

// Themes lists the accepted theme names, RandomTheme last.
func (g *Generator) Themes() []string {
	names := make([]string, 0, len(g.words.Themes)+1)
	for _, theme := range g.words.Themes {
		names = append(names, theme.Name)
	}
	return append(names, RandomTheme)
}

// Generate returns a nickname built from a randomly chosen scheme.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generate()
}

// Themed returns a nickname of theme. A blank theme or RandomTheme behaves
// like Generate.
func (g *Generator) Themed(theme string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.themed(theme)
}

// Suggest returns count nicknames of theme. Counts outside
// [1, MaxSuggestions] fall back to DefaultSuggestions or are capped.
func (g *Generator) Suggest(count int, theme string) ([]string, error) {
	if count <= 0 {
		count = DefaultSuggestions
	}
	count = min(count, MaxSuggestions)

	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, count)
	for range count {
		nick, err := g.themed(theme)
		if err != nil {
			return nil, err
		}
		out = append(out, nick)
	}
	return out, nil
}

func (g *Generator) generate() string {
	var nick string
	switch g.rnd.IntN(6) {
	case 0:
		nick = g.pick(g.words.Adjectives) + g.pick(g.words.Nouns)
	case 1:
		nick = g.pick(g.words.Prefixes) + g.pick(g.words.Nouns)
	case 2:
		nick = g.pick(g.words.Adjectives) + g.pick(g.words.Suffixes)
	case 3:
		theme := g.words.Themes[g.rnd.IntN(len(g.words.Themes))]
		nick = g.withEpithet(g.pick(theme.Nouns), themeAdjectiveChance)
	case 4:
		nick = g.doubleAdjective()
	default:
		creatures := g.words.Nouns
		if theme, ok := g.theme(mythicalTheme); ok {
			creatures = theme.Nouns
		}
		nick = g.withEpithet(g.pick(creatures), mythicalEpithetChance)
	}

	if g.rnd.Float64() < numberTailChance {
		nick += g.numberTail()
	}
	if g.rnd.Float64() < symbolTailChance {
		nick += g.pick(g.words.Symbols)
	}
	return g.clamp(nick)
}

func (g *Generator) themed(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == RandomTheme {
		return g.generate(), nil
	}
	theme, ok := g.theme(name)
	if !ok {
		return "", apperrors.WithMetadata(
			apperrors.CodeNicknameThemeUnknown,
			"unknown nickname theme "+name,
			map[string]string{"Theme": name},
		)
	}

	var nick string
	switch g.rnd.IntN(3) {
	case 0:
		adjectives := make([]string, 0, len(g.words.Adjectives)+len(theme.Defaults))
		adjectives = append(adjectives, g.words.Adjectives...)
		adjectives = append(adjectives, theme.Defaults...)
		nick = g.pick(adjectives) + g.pick(theme.Nouns)
	case 1:
		nick = g.pick(theme.Nouns) + strconv.Itoa(1+g.rnd.IntN(999))
	default:
		first := g.pick(g.words.Adjectives)
		if pick := g.rnd.IntN(len(theme.Defaults) + 1); pick < len(theme.Defaults) {
			first = theme.Defaults[pick]
		}
		nick = first + g.pick(theme.Nouns)
	}
	return g.clamp(nick), nil
}

func (g *Generator) theme(name string) (Theme, bool) {
	for _, theme := range g.words.Themes {
		if theme.Name == name {
			return theme, true
		}
	}
	return Theme{}, false
}

func (g *Generator) pick(words []string) string {
	return words[g.rnd.IntN(len(words))]
}

func (g *Generator) withEpithet(noun string, chance float64) string {
	if g.rnd.Float64() < chance {
		return g.pick(g.words.Adjectives) + noun
	}
	return noun
}

func (g *Generator) doubleAdjective() string {
	first := g.pick(g.words.Adjectives)
	if len(g.words.Adjectives) < 2 {
		return first + first
	}
	second := g.pick(g.words.Adjectives)
	for second == first {
		second = g.pick(g.words.Adjectives)
	}
	return first + second
}

func (g *Generator) numberTail() string {
	switch g.rnd.IntN(4) {
	case 0:
		return strconv.Itoa(1 + g.rnd.IntN(999))
	case 1:
		return strconv.Itoa(1000 + g.rnd.IntN(9000))
	case 2:
		return strconv.Itoa(1970 + g.rnd.IntN(56))
	default:
		return strconv.Itoa(1+g.rnd.IntN(99)) + strconv.Itoa(g.rnd.IntN(100))
	}
}

// clamp fits nick into [MinLength, MaxLength] runes.
func (g *Generator) clamp(nick string) string {
	if utf8.RuneCountInString(nick) > MaxLength {
		return string([]rune(nick)[:MaxLength])
	}
	for utf8.RuneCountInString(nick) < MinLength {
		nick += strconv.Itoa(10 + g.rnd.IntN(90))
	}
	return nick
}
