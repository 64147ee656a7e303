// Copyright 2021 Tamas Gulacsi. All rights reserved.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/UNO-SOFT/sheetcursor"
	"github.com/UNO-SOFT/sheetcursor/memgrid"
	"github.com/UNO-SOFT/sheetcursor/pdf"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	if err := Main(); err != nil {
		slog.Error("MAIN", "error", err)
		os.Exit(1)
	}
}

type config struct {
	Charset, Out, AlternateColor, Title, Exclude, Where string
	FontSize                                            float64
	Landscape                                           bool
}

func Main() error {
	var cfg config
	fs := flag.NewFlagSet("csv2pdf", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	fs.StringVar(&cfg.Charset, "charset", sheetcursor.EncName, "csv charset name")
	fs.StringVar(&cfg.Out, "o", "", "output file name (default input file + .pdf)")
	fs.StringVar(&cfg.AlternateColor, "alternate-color", defaultAlternateColor, "alternate color (empty: none)")
	fs.BoolVar(&cfg.Landscape, "L", false, "landscape orientation (default: portrait)")
	fs.Float64Var(&cfg.FontSize, "f", 8, "font size")
	fs.StringVar(&cfg.Title, "title", "", "title above the header")
	fs.StringVar(&cfg.Exclude, "exclude", "", "comma separated list of columns to skip")
	fs.StringVar(&cfg.Where, "where", "", "expression selecting the rows to print")

	app := ffcli.Command{Name: "csv2pdf", FlagSet: fs,
		ShortUsage: "csv2pdf [flags] <input.csv>",
		Options:    []ff.Option{ff.WithEnvVarPrefix("CSV2PDF")},
		Exec: func(ctx context.Context, args []string) error {
			fn := "-"
			if len(args) != 0 {
				fn = args[0]
			}
			return convert(ctx, cfg, fn)
		},
	}

	args := fixArgs(os.Args[1:])
	logger.Debug("args", "original", os.Args[1:], "fixed", args)
	if err := app.Parse(args); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return app.Run(ctx)
}

const defaultAlternateColor = "e6e6e6"

// fixArgs splits "-f8" into "-f", "8".
func fixArgs(args []string) []string {
	fixed := make([]string, 0, len(args))
	for _, a := range args {
		if strings.HasPrefix(a, "-f") && len(a) > 2 && '0' <= a[2] && a[2] <= '9' {
			fixed = append(fixed, "-f", a[2:])
		} else {
			fixed = append(fixed, a)
		}
	}
	return fixed
}

func (cfg config) pdfOptions() (pdf.Options, error) {
	po := pdf.Options{FontSize: cfg.FontSize, Landscape: cfg.Landscape}
	if cfg.AlternateColor != "" {
		var c Color
		if err := c.Parse(cfg.AlternateColor); err != nil {
			return po, err
		}
		po.AlternateColor = &c.Color
	}
	return po, nil
}

func convert(ctx context.Context, cfg config, fn string) error {
	po, err := cfg.pdfOptions()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cr, err := sheetcursor.OpenCsv(fn, cfg.Charset)
	if err != nil {
		return err
	}
	defer cr.Close()
	headers, err := cr.Header()
	if err != nil {
		return err
	}

	g := memgrid.New()
	cur, err := sheetcursor.New(g, "A", 1, sheetcursor.WithLogger(logger))
	if err != nil {
		return err
	}
	defer cur.Release()
	o := sheetcursor.CsvFill{
		Title:  cfg.Title,
		Header: sheetcursor.Format{"font": {"bold": true}, "alignment": {"horizontal": "center"}},
	}
	if cfg.Exclude != "" {
		o.Exclude = strings.Split(cfg.Exclude, ",")
	}
	if cfg.Where != "" {
		if o.Filter, err = sheetcursor.NewFilter(cfg.Where, headers); err != nil {
			return err
		}
	}
	first, last, err := sheetcursor.FillCsv(cur, cr, o)
	if err != nil {
		return err
	}
	logger.Debug("filled", "from", first, "to", last)

	b, err := pdf.Render(g, po)
	if err != nil {
		return err
	}

	out := cfg.Out
	if out == "" && fn != "" && fn != "-" {
		out = fn + ".pdf"
	}
	if out == "" || out == "-" {
		_, err = os.Stdout.Write(b)
		return err
	}
	return os.WriteFile(out, b, 0o644)
}

type Color struct {
	props.Color
}

func (c *Color) String() string { return pdf.FormatColor(c.Color) }

func (c *Color) Parse(s string) error {
	pc, err := pdf.ParseColor(s)
	if err != nil {
		return fmt.Errorf("alternate color: %w", err)
	}
	c.Color = pc
	return nil
}
