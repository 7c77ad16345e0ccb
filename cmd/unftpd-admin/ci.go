package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/developerfred/libunftp/internal/cimatrix"
)

func runCICells(cmdCtx *commandContext, args []string) error {
	file := ".travis.yml"
	fs := flag.NewFlagSet("ci-cells", flag.ContinueOnError)
	fs.StringVar(&file, "file", file, "pipeline file to expand")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse ci-cells flags: %w", err)
	}

	pipeline, err := cimatrix.Load(file)
	if err != nil {
		return err
	}
	if err := pipeline.Validate(); err != nil {
		return fmt.Errorf("invalid pipeline: %w", err)
	}

	return printCells(os.Stdout, pipeline)
}

func printCells(w *os.File, p *cimatrix.Pipeline) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "TOOLCHAIN\tOS\tALLOWED TO FAIL\n"); err != nil {
		return err
	}
	for _, cell := range p.Cells() {
		if err := writef(tw, "%s\t%s\t%t\n", cell.Toolchain, cell.OS, p.AllowedToFail(cell)); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush cell table: %w", err)
	}
	return writef(w, "\n%d cells, %d allowed to fail, fast_finish=%t\n",
		len(p.Cells()), len(p.AllowedFailures()), p.Matrix.FastFinish)
}
