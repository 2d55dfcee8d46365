package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ironsheep/scanpad/internal/canvas"
	"github.com/ironsheep/scanpad/internal/editor"
	"github.com/ironsheep/scanpad/internal/export"
	"github.com/ironsheep/scanpad/internal/imaging"
)

type editFlags struct {
	ops []string
	pdf bool
	ocr bool
}

// editOp is one step of a batch edit.
type editOp struct {
	name  string
	apply func(e *editor.Editor) error
}

func newEditCmd(flags *rootFlags) *cobra.Command {
	ef := &editFlags{}

	cmd := &cobra.Command{
		Use:   "edit <image>",
		Short: "Apply edits to an image and export the result",
		Long: `Load an image, apply each --op in order and write the requested
artifacts to the configured output directory.

Operations:
  rotate                  rotate 90° clockwise
  clarify                 brighten by the configured factor
  reset                   discard the edits so far
  crop=X1,Y1,X2,Y2        crop to the rectangle between two corners
  region=NAME             crop to a named region (` + strings.Join(imaging.RegionNames, ", ") + `)`,
		Example: `  scanpad edit receipt.jpg --op region=top-half --op clarify --pdf
  scanpad edit page.png --op rotate --op crop=40,40,600,900 --ocr`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := parseOps(ef.ops)
			if err != nil {
				return err
			}
			if !ef.pdf && !ef.ocr {
				ef.pdf = true
			}
			return runEdit(cmd.Context(), flags, ef, args[0], ops)
		},
	}

	cmd.Flags().StringArrayVar(&ef.ops, "op", nil, "operation to apply (repeatable)")
	cmd.Flags().BoolVar(&ef.pdf, "pdf", false, "export the result as a PDF (default when --ocr is not given)")
	cmd.Flags().BoolVar(&ef.ocr, "ocr", false, "recognize text and export it")
	return cmd
}

func runEdit(ctx context.Context, flags *rootFlags, ef *editFlags, path string, ops []editOp) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := loadConfig(flags)
	if err != nil {
		return err
	}
	opts, style, err := editorOptions(cfg, logger)
	if err != nil {
		return err
	}
	opts.Surface = canvas.NewRaster(style)

	var bar *progressbar.ProgressBar
	if ef.ocr {
		bar = progressbar.NewOptions(100,
			progressbar.OptionSetDescription("Recognizing text"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		opts.OnProgress = func(p float64) {
			_ = bar.Set(int(p * 100))
		}
	}
	opts.Notifier = newConsoleNotifier()
	opts.Context = ctx

	ed := editor.New(opts)
	if _, err := ed.LoadFile(path); err != nil {
		return err
	}

	for _, op := range ops {
		if err := op.apply(ed); err != nil {
			return fmt.Errorf("%s: %w", op.name, err)
		}
	}

	green := color.New(color.FgGreen)
	sink := export.DirSink{Dir: cfg.Export.OutputDir}
	st := ed.State()
	green.Fprintf(os.Stderr, "✓ %dx%d after %d operation(s)\n", st.Width, st.Height, len(ops))

	if ef.pdf {
		a, err := ed.ExportDocument()
		if err != nil {
			return err
		}
		green.Fprintf(os.Stderr, "✓ wrote %s (%d bytes)\n", sink.Path(a), a.Size())
	}

	if ef.ocr {
		if err := ed.Recognize(); err != nil {
			return err
		}
		if err := ed.WaitRecognition(ctx); err != nil {
			return err
		}
		_ = bar.Finish()

		snap := ed.Recognition()
		if snap.Error != "" {
			return fmt.Errorf("%s", snap.Error)
		}
		if a := ed.LastText(); a != nil {
			green.Fprintf(os.Stderr, "✓ wrote %s (%d bytes)\n", sink.Path(a), a.Size())
		}
		fmt.Println(snap.Text)
	}
	return nil
}

// parseOps turns --op values into editor steps.
func parseOps(specs []string) ([]editOp, error) {
	ops := make([]editOp, 0, len(specs))
	for _, spec := range specs {
		op, err := parseOp(spec)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func parseOp(spec string) (editOp, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(spec), "=")
	name = strings.ToLower(name)

	switch name {
	case "rotate":
		return editOp{name: spec, apply: (*editor.Editor).Rotate}, nil
	case "clarify":
		return editOp{name: spec, apply: (*editor.Editor).Clarify}, nil
	case "reset":
		return editOp{name: spec, apply: (*editor.Editor).Reset}, nil
	case "region":
		if !hasArg || arg == "" {
			return editOp{}, fmt.Errorf("op %q: region needs a name", spec)
		}
		if _, err := imaging.RegionRect(2, 2, arg); err != nil {
			return editOp{}, fmt.Errorf("op %q: %w", spec, err)
		}
		return editOp{name: spec, apply: func(e *editor.Editor) error {
			return e.CropRegion(arg)
		}}, nil
	case "crop":
		r, err := parseRect(arg)
		if !hasArg || err != nil {
			return editOp{}, fmt.Errorf("op %q: want crop=X1,Y1,X2,Y2", spec)
		}
		return editOp{name: spec, apply: func(e *editor.Editor) error {
			return e.Crop(r)
		}}, nil
	}
	return editOp{}, fmt.Errorf("unknown op %q", spec)
}

func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("want 4 coordinates, got %d", len(parts))
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, err
		}
		v[i] = n
	}
	return imaging.SelectionRect(image.Pt(v[0], v[1]), image.Pt(v[2], v[3])), nil
}
