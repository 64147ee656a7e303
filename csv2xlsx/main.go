// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Command csv2xlsx writes CSV files as tables into an xlsx (one sheet per
// file) or a html(.gz) file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/UNO-SOFT/sheetcursor"
	"github.com/UNO-SOFT/sheetcursor/memgrid"
	"github.com/UNO-SOFT/sheetcursor/xlsx"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	if err := Main(); err != nil {
		logger.Error("MAIN", "error", err)
		os.Exit(1)
	}
}

type config struct {
	Charset, Start, Title, Border, Exclude, Where, HeaderColor string
}

func Main() error {
	var cfg config
	fs := flag.NewFlagSet("csv2xlsx", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	fs.StringVar(&cfg.Charset, "charset", sheetcursor.EncName, "csv charset name")
	fs.StringVar(&cfg.Start, "start", "A1", "top-left cell of the table")
	fs.StringVar(&cfg.Title, "title", "", "title above the header, merged over the table width")
	fs.StringVar(&cfg.Border, "border", "", "outer:inner border styles of the table, e.g. thin:dotted")
	fs.StringVar(&cfg.Exclude, "exclude", "", "comma separated list of columns to skip")
	fs.StringVar(&cfg.Where, "where", "", "expression selecting the rows to write, e.g. Age > \"30\"")
	fs.StringVar(&cfg.HeaderColor, "header-color", "", "header background color, e.g. e6e6e6")

	app := ffcli.Command{Name: "csv2xlsx", FlagSet: fs,
		ShortUsage: "csv2xlsx [flags] <output.xlsx|output.html[.gz]> [sheet:]input.csv...",
		Options:    []ff.Option{ff.WithEnvVarPrefix("CSV2XLSX")},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) < 1 {
				return flag.ErrHelp
			}
			return convert(ctx, cfg, args[0], args[1:])
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return app.ParseAndRun(ctx, os.Args[1:])
}

func convert(ctx context.Context, cfg config, fn string, inputs []string) error {
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	fh := os.Stdout
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Create(fn); err != nil {
			return err
		}
	}
	defer fh.Close()
	var w io.Writer = fh
	var zw *gzip.Writer
	if strings.HasSuffix(fn, ".gz") {
		zw = gzip.NewWriter(fh)
		w = zw
		fn = strings.TrimSuffix(fn, ".gz")
	}

	if strings.HasSuffix(fn, ".html") || strings.HasSuffix(fn, ".htm") {
		if len(inputs) > 1 {
			return fmt.Errorf("html output takes one input, got %d", len(inputs))
		}
		g := memgrid.New()
		if err := copyFile(ctx, g, cfg, inputs[0]); err != nil {
			return err
		}
		if err := g.WriteHTML(w); err != nil {
			return err
		}
	} else {
		xlw := xlsx.NewWriter(w)
		for i, in := range inputs {
			sheetName := fmt.Sprintf("Sheet%d", i+1)
			if j := strings.IndexByte(in, ':'); j >= 0 {
				sheetName, in = in[:j], in[j+1:]
			} else if in != "" && in != "-" {
				sheetName = strings.TrimSuffix(filepath.Base(in), ".csv")
			}
			if i == 0 {
				if err := xlw.File().SetSheetName("Sheet1", sheetName); err != nil {
					return err
				}
			}
			g, err := xlsx.NewGrid(xlw.File(), sheetName)
			if err != nil {
				return err
			}
			if err := copyFile(ctx, g, cfg, in); err != nil {
				return fmt.Errorf("%q: %w", in, err)
			}
		}
		if err := xlw.Close(); err != nil {
			return err
		}
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	return fh.Close()
}

func copyFile(ctx context.Context, g sheetcursor.Grid, cfg config, fn string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cr, err := sheetcursor.OpenCsv(fn, cfg.Charset)
	if err != nil {
		return err
	}
	defer cr.Close()
	header, err := cr.Header()
	if err != nil {
		return err
	}

	start, err := sheetcursor.ParseAddress(cfg.Start)
	if err != nil {
		return err
	}
	cur, err := sheetcursor.New(g, start.Column, start.Row, sheetcursor.WithLogger(logger))
	if err != nil {
		return err
	}
	defer cur.Release()

	o := sheetcursor.CsvFill{
		Title:  cfg.Title,
		Header: sheetcursor.Format{"font": {"bold": true}},
	}
	if cfg.HeaderColor != "" {
		o.Header["fill"] = sheetcursor.Props{"color": cfg.HeaderColor}
	}
	if cfg.Exclude != "" {
		o.Exclude = strings.Split(cfg.Exclude, ",")
	}
	if cfg.Where != "" {
		if o.Filter, err = sheetcursor.NewFilter(cfg.Where, header); err != nil {
			return err
		}
	}
	first, last, err := sheetcursor.FillCsv(cur, cr, o)
	if err != nil {
		return err
	}
	logger.Debug("filled", "file", fn, "from", first, "to", last)

	if cfg.Border != "" {
		outer, inner, _ := strings.Cut(cfg.Border, ":")
		if err := sheetcursor.BorderBox(g, first, last, outer, inner); err != nil {
			return err
		}
	}
	return nil
}
