package counter

import (
	"context"
	"fmt"
	"slices"

	psnet "github.com/shirou/gopsutil/v4/net"
)

// PsutilSource 基于 gopsutil 的跨平台来源
type PsutilSource struct{}

func NewPsutilSource() *PsutilSource {
	return &PsutilSource{}
}

func (s *PsutilSource) Name() string { return SourcePsutil }

func (s *PsutilSource) Counters(ctx context.Context) ([]Interface, error) {
	stats, err := psnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to read io counters: %w", err)
	}
	ifaceStats, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	flags := make(map[string][]string, len(ifaceStats))
	for _, st := range ifaceStats {
		flags[st.Name] = st.Flags
	}

	out := make([]Interface, 0, len(stats))
	for _, c := range stats {
		f, known := flags[c.Name]
		out = append(out, Interface{
			Name: c.Name,
			// Windows 上部分适配器不在 Interfaces() 里，有计数就当作 up
			Up:       !known || slices.Contains(f, "up"),
			Loopback: slices.Contains(f, "loopback"),
			BytesIn:  c.BytesRecv,
			BytesOut: c.BytesSent,
		})
	}
	return out, nil
}

func (s *PsutilSource) Close() error { return nil }
