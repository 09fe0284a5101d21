package main

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/wmc2d"
	"github.com/bodgit/wmc2d/colormap"
	"github.com/bodgit/wmc2d/config"
	"github.com/bodgit/wmc2d/xpm"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
)

var conf = config.Default()

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)

	lvl, err := logrus.ParseLevel(conf.Main.LogLevel)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func open(c *cli.Context) (*wmc2d.Wmc2d, error) {
	w, err := wmc2d.New(c.String("db"), newLogger(c))
	if err != nil {
		return nil, err
	}
	w.SetWorkers(conf.Scan.Workers)
	return w, nil
}

func loadConfig(c *cli.Context) error {
	var err error
	if conf, err = config.Load(c.String("config")); err != nil {
		return cli.NewExitError(fmt.Sprintf("error loading configuration: %s", err), 1)
	}
	if !c.IsSet("db") {
		if err := c.Set("db", conf.Database.Path); err != nil {
			return err
		}
	}
	return nil
}

// modelFor picks the visual a dock app would most likely get at depth
func modelFor(depth int) (colormap.Model, error) {
	switch depth {
	case 1:
		return colormap.DefaultMono, nil
	case 8:
		return colormap.NewPseudoColor(256), nil
	case 15:
		return colormap.Depth15, nil
	case 16:
		return colormap.Depth16, nil
	case 24, 32:
		return colormap.Depth24, nil
	default:
		return nil, fmt.Errorf("unsupported depth %d", depth)
	}
}

func depth(c *cli.Context) int {
	if c.IsSet("depth") {
		return c.Int("depth")
	}
	return conf.Render.Depth
}

func info(c *cli.Context) error {
	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := xpm.ReadRows(f)
	if err != nil {
		return err
	}

	d := depth(c)
	model, err := modelFor(d)
	if err != nil {
		return err
	}

	s := colormap.NewServer()
	defer s.Close()

	m, err := xpm.Decode(s, s.CreateColormap(model), uint8(d), rows, conf.Render.Mask)
	if err != nil {
		return err
	}

	colors := make(map[uint32]struct{})
	transparent := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Mask != nil && !m.Mask.Opaque(x, y) {
				transparent++
				continue
			}
			colors[m.PixelAt(x, y)] = struct{}{}
		}
	}

	fmt.Fprintf(c.App.Writer, "%dx%d, depth %d, %d pixel values, %d transparent pixels\n", m.Width, m.Height, m.Depth, len(colors), transparent)
	if m.Hotspot != nil {
		fmt.Fprintf(c.App.Writer, "hotspot %d,%d\n", m.Hotspot[0], m.Hotspot[1])
	}
	return nil
}

func parseSize(s string) (int, int, error) {
	var w, h int
	if n, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil || n != 2 || w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	return w, h, nil
}

// fit scales m to fit within w by h, keeping its aspect ratio
func fit(m image.Image, w, h int) image.Image {
	b := m.Bounds()
	dw, dh := w, b.Dy()*w/b.Dx()
	if dh > h {
		dw, dh = b.Dx()*h/b.Dy(), h
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), m, b, xdraw.Src, nil)
	return dst
}

func convert(c *cli.Context) error {
	in, out := c.Args().Get(0), c.Args().Get(1)

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return err
	}

	if c.IsSet("fit") {
		w, h, err := parseSize(c.String("fit"))
		if err != nil {
			return err
		}
		m = fit(m, w, h)
	}

	o, err := os.Create(out)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(out), ".xpm") {
		name := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
		err = xpm.Encode(o, m, name)
	} else {
		err = png.Encode(o, m)
	}
	if err != nil {
		o.Close()
		return err
	}
	return o.Close()
}

func main() {
	app := cli.NewApp()

	app.Name = "wmc2d"
	app.Usage = "wmc2d dock app artwork utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			EnvVars: []string{"WMC2D_CONFIG"},
			Usage:   "path to configuration file",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"WMC2D_DB"},
			Value:   conf.Database.Path,
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Before = loadConfig

	depthFlag := &cli.IntFlag{
		Name:    "depth",
		Aliases: []string{"d"},
		Usage:   "target depth (1, 8, 15, 16, 24 or 32)",
	}

	app.Commands = []*cli.Command{
		{
			Name:      "import",
			Usage:     "Import image files as icons",
			ArgsUsage: "FILE...",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				w, err := open(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer w.Close()

				if err := w.Import(c.Args().Slice()...); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "scan",
			Usage:     "Import every image file below a directory",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				w, err := open(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer w.Close()

				if err := w.Scan(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "export",
			Usage:     "Write the XPM source of an icon",
			ArgsUsage: "NAME [FILE]",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				w, err := open(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer w.Close()

				out := c.App.Writer
				if c.NArg() > 1 {
					f, err := os.Create(c.Args().Get(1))
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					defer f.Close()
					out = f
				}

				if err := w.Export(c.Args().First(), out); err != nil {
					if errors.Is(err, wmc2d.ErrIconNotFound) {
						return cli.NewExitError(fmt.Sprintf("%s: %s", c.Args().First(), err), 1)
					}
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "list",
			Usage: "List stored icons",
			Action: func(c *cli.Context) error {
				w, err := open(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer w.Close()

				icons, err := w.Icons()
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				for _, icon := range icons {
					fmt.Fprintf(c.App.Writer, "%s\t%dx%d\t%s\n", icon.Name, icon.Width, icon.Height, icon.SHA1)
				}

				return nil
			},
		},
		{
			Name:      "delete",
			Usage:     "Remove an icon",
			ArgsUsage: "NAME",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				w, err := open(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer w.Close()

				if err := w.Delete(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Decode an XPM file and describe it",
			ArgsUsage: "FILE",
			Flags:     []cli.Flag{depthFlag},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				if err := info(c); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "convert",
			Usage:     "Convert between XPM and other image formats",
			ArgsUsage: "INPUT OUTPUT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "fit",
					Usage: "scale to fit within `WxH`",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				if err := convert(c); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
