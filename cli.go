package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"

	"emojiart/internal/document"
	"emojiart/internal/viewport"

	"github.com/urfave/cli/v2"
)

// newCLIApp creates the CLI application. With no command it runs the
// terminal UI.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "emojiart",
		Usage:   "Arrange emoji over a background image in the terminal",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: defaultConfigPath(), Usage: "Config file"},
			&cli.StringFlag{Name: "data-dir", Usage: "Directory for the document database and log"},
			&cli.StringFlag{Name: "log-level", Usage: "debug|info|warn|error"},
			&cli.BoolFlag{Name: "ephemeral", Usage: "Keep the document in memory only"},
		},
		Action: func(c *cli.Context) error {
			s, err := openSession(c)
			if err != nil {
				return err
			}
			defer s.Close()
			return runTUI(c.Context, s)
		},
		Commands: []*cli.Command{
			exportCmd(),
			showCmd(),
			clearCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// loadDocument opens the saved document without fetching its background.
func loadDocument(c *cli.Context, s *session) *document.Document {
	doc := document.New(s.store, nil, document.WithLogger(s.logger))
	doc.Initialize(c.Context)
	return doc
}

// exportCmd renders the saved document to a PNG without a terminal.
func exportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Render the saved document to a PNG",
		ArgsUsage: "<file.png>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Usage: "Image width in pixels (default from config)"},
			&cli.IntFlag{Name: "height", Usage: "Image height in pixels (default from config)"},
			&cli.Float64Flag{Name: "zoom", Value: 1, Usage: "Zoom factor"},
			&cli.BoolFlag{Name: "fit", Usage: "Zoom so the background fits the image"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("export needs exactly one output file")
			}
			s, err := openSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			width, height := s.config.ExportWidth, s.config.ExportHeight
			if w := c.Int("width"); w > 0 {
				width = w
			}
			if h := c.Int("height"); h > 0 {
				height = h
			}

			doc := loadDocument(c, s)
			defer doc.Close()

			var bg image.Image
			if u := doc.BackgroundURL(); u != nil {
				bg, err = s.fetcher.Fetch(c.Context, u)
				if err != nil {
					fmt.Fprintf(c.App.ErrWriter, "warning: background not loaded: %v\n", err)
					bg = nil
				}
			}

			v := viewport.New()
			v.SetZoom(c.Float64("zoom"))
			if c.Bool("fit") && bg != nil {
				b := bg.Bounds()
				v.ZoomToFit(
					viewport.Size{Width: float64(width), Height: float64(height)},
					viewport.Size{Width: float64(b.Dx()), Height: float64(b.Dy())},
				)
			}

			x, err := newExporter(width, height, s.config.FontPath)
			if err != nil {
				return err
			}
			filename := s.config.GetSavePath(c.Args().First())
			if err := x.exportPNG(filename, doc.Emojis(), bg, v); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Exported %s\n", filename)
			return nil
		},
	}
}

// showCmd prints the saved document as indented JSON.
func showCmd() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the saved document as JSON",
		Action: func(c *cli.Context) error {
			s, err := openSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			doc := loadDocument(c, s)
			defer doc.Close()

			data, err := doc.Snapshot().JSON()
			if err != nil {
				return err
			}
			var out bytes.Buffer
			if err := json.Indent(&out, data, "", "  "); err != nil {
				return err
			}
			out.WriteByte('\n')
			_, err = c.App.Writer.Write(out.Bytes())
			return err
		},
	}
}

func clearCmd() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete the saved document",
		Action: func(c *cli.Context) error {
			s, err := openSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			doc := loadDocument(c, s)
			defer doc.Close()
			doc.Clear()
			if err := doc.LastSaveError(); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "Cleared")
			return nil
		},
	}
}
