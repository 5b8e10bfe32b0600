package main

import (
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/xenking/order-entry/internal/report"
)

func reportCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "export the order summary report as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Value: "-",
				Usage: "output file; a .gz suffix compresses the report",
			},
		},
		Action: func(c *cli.Context) error {
			headers, err := e.orders.List(c.Context)
			if err != nil {
				return err
			}

			out := c.String("out")
			if err := writeReport(c.App.Writer, out, func(w io.Writer) error {
				return report.WriteCSV(w, headers)
			}); err != nil {
				return err
			}

			s := report.Summarize(headers)
			e.lg.Info("Report written",
				zap.String("out", out),
				zap.Int("orders", s.Orders),
				zap.String("revenue", s.Revenue.StringFixed(2)),
			)
			return nil
		},
	}
}

// writeReport runs write against stdout for "-" and against the named file
// otherwise, gzip-compressing when the name ends in .gz.
func writeReport(stdout io.Writer, name string, write func(w io.Writer) error) (rerr error) {
	if name == "-" {
		return write(stdout)
	}

	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create report")
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = errors.Wrap(err, "close report")
		}
	}()

	if !strings.HasSuffix(name, ".gz") {
		return write(f)
	}

	gz := pgzip.NewWriter(f)
	if err := write(gz); err != nil {
		_ = gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "compress report")
	}
	return nil
}
