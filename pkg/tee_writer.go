package pkg

import (
	"io"
	"sync/atomic"

	"go.uber.org/multierr"
)

// TeeWriter copies log output to several sinks. A failing sink does not hold
// back the others; the write only fails when no sink took the bytes.
type TeeWriter struct {
	Sinks    []io.Writer
	failures atomic.Int64
}

func NewTeeWriter(sinks ...io.Writer) *TeeWriter {
	tw := &TeeWriter{}
	for _, s := range sinks {
		if s != nil {
			tw.Sinks = append(tw.Sinks, s)
		}
	}
	return tw
}

func (tw *TeeWriter) Write(p []byte) (int, error) {
	var (
		errs    error
		written bool
	)
	for _, s := range tw.Sinks {
		if _, err := s.Write(p); err != nil {
			tw.failures.Add(1)
			errs = multierr.Append(errs, err)
			continue
		}
		written = true
	}
	if !written && errs != nil {
		return 0, errs
	}
	return len(p), nil
}

// Failures counts failed sink writes so far.
func (tw *TeeWriter) Failures() int64 {
	return tw.failures.Load()
}
