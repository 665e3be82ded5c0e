package main

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hwsim/nbgl"
	"github.com/hwsim/nbgl/capture"
	"github.com/urfave/cli/v2"
)

const defaultDB = "nbgl.db"

// Default geometry of the large NBGL-class device screen.
const (
	defaultWidth  = 400
	defaultHeight = 672
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func newVerifier(c *cli.Context) (*nbgl.GoldenDB, *nbgl.Verifier, error) {
	db, err := nbgl.OpenGoldenDB(c.String("db"))
	if err != nil {
		return nil, nil, err
	}
	return db, nbgl.NewVerifier(db, c.Int("width"), c.Int("height"), c.Bool("ocr"), newLogger(c)), nil
}

func main() {
	app := cli.NewApp()

	app.Name = "nbgl"
	app.Usage = "NBGL display controller emulation utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"NBGL_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to golden screenshot database",
		},
		&cli.IntFlag{
			Name:    "width",
			EnvVars: []string{"NBGL_WIDTH"},
			Value:   defaultWidth,
			Usage:   "screen width in pixels",
		},
		&cli.IntFlag{
			Name:    "height",
			EnvVars: []string{"NBGL_HEIGHT"},
			Value:   defaultHeight,
			Usage:   "screen height in pixels",
		},
		&cli.BoolFlag{
			Name:  "ocr",
			Usage: "force full OCR mode, drawing all text black on white",
		},
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "render",
			Usage:       "Render a recorded command stream to a PNG",
			Description: "",
			ArgsUsage:   "CAPTURE PNG",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, v, err := newVerifier(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				scr, err := v.Render(c.Args().Get(0))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				f, err := os.Create(c.Args().Get(1))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				if err := scr.WritePNG(f); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "import",
			Usage:       "Render a capture and store it as the golden screenshot",
			Description: "The golden is stored under the capture's base name.",
			ArgsUsage:   "CAPTURE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, v, err := newVerifier(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				file := c.Args().First()
				scr, err := v.Render(file)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
				if err := db.Put(name, scr.Image()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "verify",
			Usage:       "Render every capture under a directory and compare against goldens",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, v, err := newVerifier(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				if err := v.Scan(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "convert",
			Usage:       "Convert an image into a capture that draws it",
			Description: "The image is quantized to the chosen depth and wrapped in a draw-image plus refresh sequence.",
			ArgsUsage:   "IMAGE CAPTURE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "bpp",
					Value: 4,
					Usage: "pixel depth to encode at (1, 2 or 4)",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := os.Open(c.Args().Get(0))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				m, _, err := image.Decode(f)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				records, err := convertImage(m, c.Int("bpp"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := ioutil.WriteFile(c.Args().Get(1), records, 0644); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// convertImage encodes m as a draw-image command followed by a refresh of
// the same area, serialized as capture records.
func convertImage(m image.Image, bpp int) ([]byte, error) {
	var code uint8
	switch bpp {
	case 1:
		code = 0
	case 2:
		code = 1
	case 4:
		code = 2
	}

	buf, err := nbgl.EncodeImage(m, bpp, nbgl.TransformVMirror)
	if err != nil {
		return nil, err
	}

	b := m.Bounds()
	area := nbgl.Area{
		Width:  uint16(b.Dx()),
		Height: uint16(b.Dy()),
		BPP:    code,
	}

	img, err := nbgl.BuildDrawImage(area, buf, nbgl.TransformVMirror, 0)
	if err != nil {
		return nil, err
	}
	refresh, err := nbgl.BuildRefresh(area)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	w := capture.NewWriter(&out)
	if err := w.Record(capture.OpDrawImage, img); err != nil {
		return nil, err
	}
	if err := w.Record(capture.OpRefresh, refresh); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
