// Package avatarctl builds the avatarctl command tree for rendering and
// inspecting avatars outside the HTTP server.
package avatarctl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	entrypoint "github.com/louisbranch/nois/internal/platform/cmd"
	"github.com/louisbranch/nois/internal/platform/logging"
	"github.com/louisbranch/nois/internal/services/avatars"
	"github.com/louisbranch/nois/internal/services/social/nickname"
)

// Config holds avatarctl defaults read from the environment.
type Config struct {
	AvatarDir   string   `env:"AVATAR_DIR" envDefault:"data/avatars"`
	AvatarSize  int      `env:"AVATAR_SIZE" envDefault:"512"`
	MaxSize     int      `env:"AVATAR_MAX_SIZE" envDefault:"2048"`
	Fonts       []string `env:"AVATAR_FONTS" envSeparator:","`
	PaletteFile string   `env:"PALETTE_FILE"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"warn"`
}

// DefaultWarmConcurrency bounds concurrent renders in warm.
const DefaultWarmConcurrency = 4

type cli struct {
	cfg Config
	out io.Writer
	in  io.Reader

	// avatarService is built on first use; nick never needs it.
	avatarService *avatars.Service
}

// NewRootCommand builds the avatarctl command tree with defaults from the
// environment.
func NewRootCommand(in io.Reader, out io.Writer) (*cobra.Command, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return nil, err
	}
	c := &cli{cfg: cfg, in: in, out: out}

	root := &cobra.Command{
		Use:           entrypoint.ServiceAvatarctl,
		Short:         "Render and inspect nois avatars",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	flags := root.PersistentFlags()
	flags.StringVar(&c.cfg.AvatarDir, "dir", c.cfg.AvatarDir, "avatar directory")
	flags.IntVar(&c.cfg.MaxSize, "max-size", c.cfg.MaxSize, "largest accepted edge in pixels")
	flags.StringSliceVar(&c.cfg.Fonts, "fonts", c.cfg.Fonts, "font files tried before the bundled faces")
	flags.StringVar(&c.cfg.PaletteFile, "palette-file", c.cfg.PaletteFile, "YAML palette replacing the built-in pairs")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level")

	root.AddCommand(
		c.getCommand(),
		c.randomCommand(),
		c.warmCommand(),
		c.paletteCommand(),
		c.nickCommand(),
	)
	return root, nil
}

// Execute runs the command tree with args under ctx.
func Execute(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	root, err := NewRootCommand(in, out)
	if err != nil {
		return err
	}
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (c *cli) service() (*avatars.Service, error) {
	if c.avatarService != nil {
		return c.avatarService, nil
	}
	logger, err := logging.New(c.cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	svc, err := avatars.Open(avatars.Settings{
		Dir:         c.cfg.AvatarDir,
		MaxSize:     c.cfg.MaxSize,
		Fonts:       c.cfg.Fonts,
		PaletteFile: c.cfg.PaletteFile,
	}, logger)
	if err != nil {
		return nil, err
	}
	c.avatarService = svc
	return svc, nil
}

func (c *cli) printResult(res avatars.Result) {
	status := "rendered"
	if res.CacheHit {
		status = "cached"
	}
	fmt.Fprintf(c.out, "%s\t%s\t%s\n", res.Path, res.Color.Hex(), status)
}

func (c *cli) getCommand() *cobra.Command {
	var size int
	var force bool
	cmd := &cobra.Command{
		Use:   "get <identity>",
		Short: "Return the deterministic avatar of an identity, rendering it when missing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			res, err := svc.GetOrCreate(cmd.Context(), args[0], size, force)
			if err != nil {
				return err
			}
			c.printResult(res)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", c.cfg.AvatarSize, "edge in pixels")
	cmd.Flags().BoolVar(&force, "force", false, "render again even when stored")
	return cmd
}

func (c *cli) randomCommand() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "random <identity>",
		Short: "Render a one-off avatar with a random color pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			res, err := svc.CreateRandomized(cmd.Context(), args[0], size)
			if err != nil {
				return err
			}
			c.printResult(res)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", c.cfg.AvatarSize, "edge in pixels")
	return cmd
}

func (c *cli) warmCommand() *cobra.Command {
	var sizes []int
	var file string
	var concurrency int
	cmd := &cobra.Command{
		Use:   "warm [identity...]",
		Short: "Render deterministic avatars for many identities",
		Long: `Render the deterministic avatar of every identity at every size.
Identities come from the arguments and, with --file, one per line from a file
("-" reads standard input). Stored avatars are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			identities := append([]string(nil), args...)
			if file != "" {
				listed, err := c.readIdentities(file)
				if err != nil {
					return err
				}
				identities = append(identities, listed...)
			}
			if len(identities) == 0 {
				return errors.New("no identities to warm")
			}
			if len(sizes) == 0 {
				sizes = []int{c.cfg.AvatarSize}
			}
			svc, err := c.service()
			if err != nil {
				return err
			}
			rendered, cached, err := warm(cmd.Context(), svc, identities, sizes, concurrency)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "warmed %d avatars (%d rendered, %d cached)\n", rendered+cached, rendered, cached)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&sizes, "sizes", nil, "edges in pixels (default: the configured avatar size)")
	cmd.Flags().StringVar(&file, "file", "", "file listing identities, one per line")
	cmd.Flags().IntVar(&concurrency, "concurrency", DefaultWarmConcurrency, "renders in flight")
	return cmd
}

func (c *cli) readIdentities(file string) ([]string, error) {
	var r io.Reader = c.in
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open identities: %w", err)
		}
		defer f.Close()
		r = f
	}
	var identities []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			identities = append(identities, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read identities: %w", err)
	}
	return identities, nil
}

// warm renders every identity at every size with at most limit renders in
// flight. The first failure cancels the remaining work.
func warm(ctx context.Context, svc *avatars.Service, identities []string, sizes []int, limit int) (rendered, cached int64, err error) {
	if limit <= 0 {
		limit = DefaultWarmConcurrency
	}
	var renderedCount, cachedCount atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, identity := range identities {
		for _, size := range sizes {
			g.Go(func() error {
				res, err := svc.GetOrCreate(gctx, identity, size, false)
				if err != nil {
					return fmt.Errorf("warm %q at %d: %w", identity, size, err)
				}
				if res.CacheHit {
					cachedCount.Add(1)
				} else {
					renderedCount.Add(1)
				}
				return nil
			})
		}
	}
	err = g.Wait()
	return renderedCount.Load(), cachedCount.Load(), err
}

func (c *cli) paletteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "palette [identity]",
		Short: "List the color pairs, or show the pair assigned to an identity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			pal := svc.Palette()
			if len(args) == 1 {
				index := pal.Index(args[0])
				pair := pal.Deterministic(args[0])
				fmt.Fprintf(c.out, "%d\t%s\t%s\n", index, pair.Primary.Hex(), pair.Secondary.Hex())
				return nil
			}
			for i, pair := range pal.Pairs() {
				fmt.Fprintf(c.out, "%d\t%s\t%s\n", i, pair.Primary.Hex(), pair.Secondary.Hex())
			}
			return nil
		},
	}
}

func (c *cli) nickCommand() *cobra.Command {
	var theme string
	var count int
	cmd := &cobra.Command{
		Use:   "nick",
		Short: "Suggest nicknames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := nickname.New().Suggest(count, theme)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(c.out, name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "theme: "+strings.Join(nickname.New().Themes(), ", "))
	cmd.Flags().IntVar(&count, "count", 0, "suggestions to print (default "+strconv.Itoa(nickname.DefaultSuggestions)+")")
	return cmd
}
