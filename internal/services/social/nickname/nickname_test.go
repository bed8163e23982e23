package nickname

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/louisbranch/nois/internal/platform/errors"
)

func seeded(seed uint64) *Generator {
	return NewGenerator(DefaultWords(), rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestDefaultWordsLoad(t *testing.T) {
	words := DefaultWords()
	if len(words.Adjectives) == 0 || len(words.Nouns) == 0 {
		t.Fatal("expected embedded vocabulary")
	}
	if len(words.Symbols) != 7 {
		t.Fatalf("symbols = %d, want 7", len(words.Symbols))
	}
}

func TestThemes(t *testing.T) {
	want := []string{"tech", "space", "fantasy", "gaming", "mythical", "random"}
	if diff := cmp.Diff(want, New().Themes()); diff != "" {
		t.Fatalf("themes mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateIsReproducibleForSeed(t *testing.T) {
	a, b := seeded(7), seeded(7)
	for i := 0; i < 50; i++ {
		if x, y := a.Generate(), b.Generate(); x != y {
			t.Fatalf("draw %d: %q != %q", i, x, y)
		}
	}
}

func TestGeneratedNicknamesPassPolicy(t *testing.T) {
	g := seeded(42)
	for i := 0; i < 2000; i++ {
		nick := g.Generate()
		if n := utf8.RuneCountInString(nick); n < MinLength || n > MaxLength {
			t.Fatalf("Generate() = %q has %d runes", nick, n)
		}
		if _, err := Canonicalize(nick); err != nil {
			t.Fatalf("Canonicalize(%q): %v", nick, err)
		}
	}
}

func TestThemedUsesThemeNouns(t *testing.T) {
	g := seeded(3)
	words := DefaultWords()
	for _, theme := range words.Themes {
		for i := 0; i < 100; i++ {
			nick, err := g.Themed(theme.Name)
			if err != nil {
				t.Fatalf("Themed(%q): %v", theme.Name, err)
			}
			if _, err := Canonicalize(nick); err != nil {
				t.Fatalf("Canonicalize(%q): %v", nick, err)
			}
			found := slices.ContainsFunc(theme.Nouns, func(noun string) bool {
				return strings.Contains(nick, noun[:min(len(noun), 4)])
			})
			if !found {
				t.Fatalf("Themed(%q) = %q shares no noun stem", theme.Name, nick)
			}
		}
	}
}

func TestThemedRandomAndBlank(t *testing.T) {
	g := seeded(9)
	for _, theme := range []string{"", "random", " RANDOM "} {
		if _, err := g.Themed(theme); err != nil {
			t.Fatalf("Themed(%q): %v", theme, err)
		}
	}
}

func TestThemedUnknown(t *testing.T) {
	_, err := New().Themed("pirates")
	if !apperrors.HasCode(err, apperrors.CodeNicknameThemeUnknown) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeNicknameThemeUnknown)
	}
}

func TestSuggestCounts(t *testing.T) {
	g := seeded(11)
	tests := []struct {
		count int
		want  int
	}{
		{0, DefaultSuggestions},
		{-3, DefaultSuggestions},
		{3, 3},
		{50, MaxSuggestions},
	}
	for _, tt := range tests {
		got, err := g.Suggest(tt.count, "space")
		if err != nil {
			t.Fatalf("Suggest(%d): %v", tt.count, err)
		}
		if len(got) != tt.want {
			t.Fatalf("Suggest(%d) len = %d, want %d", tt.count, len(got), tt.want)
		}
	}
	if _, err := g.Suggest(2, "nope"); err == nil {
		t.Fatal("expected unknown theme error")
	}
}

func TestClamp(t *testing.T) {
	g := seeded(1)
	if got := g.clamp("ExtraordinarilyLongNickname"); got != "ExtraordinarilyLongN" {
		t.Fatalf("clamp(long) = %q", got)
	}
	if got := g.clamp("AI"); utf8.RuneCountInString(got) != 4 || !strings.HasPrefix(got, "AI") {
		t.Fatalf("clamp(short) = %q", got)
	}
}

func TestLoadWordsRejectsEmptyLists(t *testing.T) {
	_, err := LoadWords(strings.NewReader("adjectives: [A]\nnouns: [B]\n"))
	if err == nil {
		t.Fatal("expected error for missing lists")
	}
	_, err = LoadWords(strings.NewReader("colour: red\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in      string
		display string
		key     string
	}{
		{"  NeonFox42 ", "NeonFox42", "neonfox42"},
		{"dark_wolf-1", "dark_wolf-1", "dark_wolf-1"},
		{"ЛисаЯ", "ЛисаЯ", "лисая"},
	}
	for _, tt := range tests {
		got, err := Canonicalize(tt.in)
		if err != nil {
			t.Fatalf("Canonicalize(%q): %v", tt.in, err)
		}
		if got.Display != tt.display || got.Key != tt.key {
			t.Fatalf("Canonicalize(%q) = %+v, want {%q %q}", tt.in, got, tt.display, tt.key)
		}
	}
}

func TestCanonicalizeRejects(t *testing.T) {
	for _, in := range []string{"", "ab", strings.Repeat("x", 21), "has space", "emoji🙂", "dot.name"} {
		_, err := Canonicalize(in)
		if !apperrors.HasCode(err, apperrors.CodeNicknameInvalid) {
			t.Fatalf("Canonicalize(%q) err = %v, want %s", in, err, apperrors.CodeNicknameInvalid)
		}
	}
}
