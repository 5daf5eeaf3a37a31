//go:build !linux

package counter

import (
	"context"
	"log/slog"
)

type EBPFSource struct{}

func NewEBPFSource(*slog.Logger, string) (*EBPFSource, error) {
	return nil, ErrUnsupported
}

func (s *EBPFSource) Name() string { return SourceEBPF }

func (s *EBPFSource) Counters(context.Context) ([]Interface, error) {
	return nil, ErrUnsupported
}

func (s *EBPFSource) Close() error { return nil }
