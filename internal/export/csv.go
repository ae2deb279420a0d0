package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/model"
)

// flushEvery bounds how many rows sit in the csv buffer.
const flushEvery = 256

type csvWriter struct {
	w          *csv.Writer
	timeFormat string
	pending    int
}

func newCSVWriter(w io.Writer, cfg config.Export) (*csvWriter, error) {
	cw := csv.NewWriter(w)
	cw.Comma = cfg.Delimiter()

	if err := cw.Write(Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	return &csvWriter{w: cw, timeFormat: cfg.TimeFormat}, nil
}

func (c *csvWriter) Write(p model.Product) error {
	if err := c.w.Write(Record(p, c.timeFormat)); err != nil {
		return fmt.Errorf("write csv record: %w", err)
	}

	c.pending++
	if c.pending < flushEvery {
		return nil
	}
	c.pending = 0
	c.w.Flush()

	return c.w.Error()
}

func (c *csvWriter) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
