package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/litescript/deepskies/internal/astro"
	"github.com/litescript/deepskies/internal/catalog"
	"github.com/litescript/deepskies/internal/index"
	"github.com/litescript/deepskies/internal/render"
	"github.com/litescript/deepskies/internal/surface"
)

// renderCommand draws a single frame to stdout.
func renderCommand(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Render one frame of the star field and print it",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Value: 80, Usage: "Frame width in terminal cells"},
			&cli.IntFlag{Name: "height", Value: 24, Usage: "Frame height in terminal cells"},
			&cli.FloatFlag{Name: "ra", Usage: "Centre right ascension in degrees"},
			&cli.FloatFlag{Name: "dec", Usage: "Centre declination in degrees"},
			&cli.FloatFlag{Name: "fov", Usage: "Field of view in degrees"},
			&cli.FloatFlag{Name: "rotation", Usage: "Display rotation in degrees"},
			&cli.FloatFlag{Name: "mag", Usage: "Limiting magnitude"},
			&cli.BoolFlag{Name: "plain", Usage: "Print without colour even on a terminal"},
			&cli.StringFlag{Name: "observer", Usage: "Point at the zenith of this site (lat,lon in degrees)"},
			&cli.StringFlag{Name: "at", Usage: "Observation time for --observer (RFC 3339, default now)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, stderr)

			view, err := renderView(cmd, cfg.View)
			if err != nil {
				return err
			}

			cols, rows := int(cmd.Int("width")), int(cmd.Int("height"))
			if cols < 1 || rows < 1 {
				return fmt.Errorf("frame size %dx%d: width and height must be positive", cols, rows)
			}
			canvas := surface.New(cols, rows)
			view = view.WithDisplay(canvas.PixelSize())

			opts := []render.Option{render.WithLogger(logger.With("render"))}
			if store := openFreshIndex(ctx, cfg, logger.With("index")); store != nil {
				defer store.Close()
				opts = append(opts, render.WithSelector(store))
			}

			stats, err := render.RenderFile(ctx, cfg.Catalog, view, canvas, opts...)
			if err != nil {
				return err
			}

			if !cmd.Bool("plain") && isTerminal(stdout) {
				fmt.Fprintln(stdout, canvas.Styled())
			} else {
				fmt.Fprintln(stdout, canvas.String())
			}
			fmt.Fprintf(stderr, "%d of %d stars drawn, %d labeled, %d unreadable (%s)\n",
				stats.Drawn, stats.Considered, stats.Labeled, stats.ReadFailures, stats.Duration.Round(time.Microsecond))
			return nil
		},
	}
}

// renderView applies the view flags, then --observer, on top of base.
func renderView(cmd *cli.Command, base astro.View) (astro.View, error) {
	v := base
	if cmd.IsSet("ra") {
		v.CenterRA = cmd.Float("ra")
	}
	if cmd.IsSet("dec") {
		v.CenterDec = cmd.Float("dec")
	}
	if cmd.IsSet("fov") {
		v.FOV = cmd.Float("fov")
	}
	if cmd.IsSet("rotation") {
		v.Rotation = cmd.Float("rotation")
	}
	if cmd.IsSet("mag") {
		v.LimitingMag = cmd.Float("mag")
	}

	if cmd.IsSet("observer") {
		obs, err := astro.ParseObserver(cmd.String("observer"))
		if err != nil {
			return v, err
		}
		at := time.Now()
		if s := cmd.String("at"); s != "" {
			at, err = time.Parse(time.RFC3339, s)
			if err != nil {
				return v, fmt.Errorf("--at: %w", err)
			}
		}
		v = astro.ZenithView(v, obs, at)
	} else if cmd.IsSet("at") {
		return v, errors.New("--at needs --observer")
	}

	v.CenterRA = astro.Normalize360(v.CenterRA)
	return v, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// validateCommand checks the data file layout.
func validateCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check the data file and print its star count",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cat, err := catalog.Open(cfg.Catalog)
			if err != nil {
				return err
			}
			defer cat.Close()

			fmt.Fprintf(stdout, "%s: %d stars (%d bytes)\n", cfg.Catalog, cat.Count(), cat.Size())
			return nil
		},
	}
}

// starCommand prints parsed records by index or label prefix.
func starCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "star",
		Usage:     "Print a star by index, or every star whose label starts with a prefix",
		ArgsUsage: "<index|label>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			arg := cmd.Args().First()
			if arg == "" {
				return errors.New("star: index or label required")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cat, err := catalog.Open(cfg.Catalog)
			if err != nil {
				return err
			}
			defer cat.Close()

			var indices []int
			if n, err := strconv.Atoi(arg); err == nil {
				indices = []int{n}
			} else {
				indices, err = lookupLabel(ctx, cfg.IndexPath(), arg)
				if err != nil {
					return err
				}
				if len(indices) == 0 {
					return fmt.Errorf("star: no label starts with %q", arg)
				}
			}

			for _, i := range indices {
				s, err := cat.Read(i)
				if err != nil {
					return err
				}
				printStar(stdout, i, s)
			}
			return nil
		},
	}
}

func lookupLabel(ctx context.Context, path, prefix string) ([]int, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("star: label lookup needs an index, run `deepskies index` first")
	}
	store, err := index.Open(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Lookup(ctx, prefix)
}

func printStar(w io.Writer, i int, s catalog.Star) {
	label := s.Label
	if label == "" {
		label = "-"
	}
	fmt.Fprintf(w, "%6d  %-16s RA %9.4f  Dec %+8.4f  mag %5.2f  %-2s  pm %+.1f %+.1f\n",
		i, label, s.RA, s.Dec, s.Mag, s.Class, s.PMRA, s.PMDec)
}

// seedCommand writes a starter catalog of bright stars.
func seedCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Write a starter data file of bright stars",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("seed: path required")
			}

			flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if cmd.Bool("force") {
				flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			f, err := os.OpenFile(path, flags, 0o644)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			n, err := writeSeed(f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintf(stdout, "wrote %d stars to %s\n", n, path)
			return nil
		},
	}
}

func writeSeed(w io.Writer) (int, error) {
	cw := catalog.NewWriter(w)
	err := cw.WriteHeader(
		"DeepSkies star catalog",
		"Bright stars, J2000 positions",
		"Fields: label ra dec mag class pmra pmdec",
	)
	if err != nil {
		return 0, err
	}
	for _, s := range catalog.BrightStars() {
		if err := cw.Write(s); err != nil {
			return cw.Count(), err
		}
	}
	return cw.Count(), nil
}

// indexCommand builds the magnitude index for the data file.
func indexCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "Build the magnitude index used to skip faint stars",
		ArgsUsage: "[db]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path := cfg.IndexPath()
			if arg := cmd.Args().First(); arg != "" {
				path = arg
			}

			cat, err := catalog.Open(cfg.Catalog)
			if err != nil {
				return err
			}
			defer cat.Close()

			store, err := index.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Build(ctx, cat)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "indexed %d of %d stars into %s\n", n, cat.Count(), path)
			return nil
		},
	}
}
