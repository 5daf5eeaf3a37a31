// Package counter 从操作系统读取网卡累计收发字节数
//
// 支持三种来源：
//   - netlink: Linux 下通过 rtnetlink 读取每块网卡的统计
//   - psutil:  gopsutil，跨平台 (Windows/macOS/Linux)
//   - ebpf:    Linux 下在 cgroup v2 根挂 cgroup_skb 程序统计全部 socket 流量
package counter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

var (
	// ErrUnsupported 当前平台不支持该来源
	ErrUnsupported = errors.New("counter source not supported on this platform")
	// ErrUnknownSource 来源名字不认识
	ErrUnknownSource = errors.New("unknown counter source")
)

const (
	SourceNetlink = "netlink"
	SourcePsutil  = "psutil"
	SourceEBPF    = "ebpf"
)

// DefaultCgroupPath cgroup v2 挂载点，ebpf 来源挂在根 cgroup 上
const DefaultCgroupPath = "/sys/fs/cgroup"

// SourceNames 所有来源名字
var SourceNames = []string{SourceNetlink, SourcePsutil, SourceEBPF}

// Interface 一块网卡 (或伪网卡) 的累计计数
type Interface struct {
	Name     string
	Up       bool
	Loopback bool
	BytesIn  uint64
	BytesOut uint64
}

// Source 计数器来源
type Source interface {
	Name() string
	Counters(ctx context.Context) ([]Interface, error)
	Close() error
}

// DefaultSourceName Linux 用 netlink，其他平台用 psutil
func DefaultSourceName() string {
	if runtime.GOOS == "linux" {
		return SourceNetlink
	}
	return SourcePsutil
}

// New 按名字创建来源
func New(log *slog.Logger, name string) (Source, error) {
	switch name {
	case "":
		return New(log, DefaultSourceName())
	case SourceNetlink:
		s, err := NewNetlinkSource()
		if err != nil {
			return nil, err
		}
		return s, nil
	case SourcePsutil:
		return NewPsutilSource(), nil
	case SourceEBPF:
		s, err := NewEBPFSource(log, DefaultCgroupPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
}
