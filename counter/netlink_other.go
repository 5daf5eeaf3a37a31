//go:build !linux

package counter

import "context"

type NetlinkSource struct{}

func NewNetlinkSource() (*NetlinkSource, error) {
	return nil, ErrUnsupported
}

func (s *NetlinkSource) Name() string { return SourceNetlink }

func (s *NetlinkSource) Counters(context.Context) ([]Interface, error) {
	return nil, ErrUnsupported
}

func (s *NetlinkSource) Close() error { return nil }
