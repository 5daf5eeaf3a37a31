// Package units 负责速率的单位换算与显示格式
//
// 约定：
//   - MBps / KBps 为二进制 (1 MB = 1,048,576 B，1 KB = 1024 B)
//   - Mbps / Kbps 为十进制比特 (1 Mbps = 1,000,000 bit/s)，与常见网络工具一致
package units

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidUnit 不支持的显示单位
var ErrInvalidUnit = errors.New("invalid unit")

type Unit string

const (
	MBps Unit = "MBps"
	KBps Unit = "KBps"
	Mbps Unit = "Mbps"
	Kbps Unit = "Kbps"
)

// Default 未配置时使用 MB/s
const Default = MBps

// All 按菜单顺序列出支持的单位
var All = []Unit{MBps, KBps, Mbps, Kbps}

func (u Unit) String() string {
	return string(u)
}

// Valid 是否为支持的单位
func (u Unit) Valid() bool {
	switch u {
	case MBps, KBps, Mbps, Kbps:
		return true
	}
	return false
}

// ParseUnit 解析配置/命令行里的单位名
// 大小写敏感 ("MBps" 与 "Mbps" 含义不同)，另外接受 "MB/s" 和 "KB/s" 写法
func ParseUnit(s string) (Unit, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return Default, nil
	case "MB/s":
		return MBps, nil
	case "KB/s":
		return KBps, nil
	}
	u := Unit(s)
	if !u.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
	return u, nil
}

// Convert 将 Bps 换算成指定单位的数值
func Convert(bytesPerSec float64, unit Unit) (float64, error) {
	switch unit {
	case MBps:
		return bytesPerSec / (1 << 20), nil
	case KBps:
		return bytesPerSec / (1 << 10), nil
	case Mbps:
		return bytesPerSec * 8 / 1_000_000, nil
	case Kbps:
		return bytesPerSec * 8 / 1_000, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, string(unit))
}

// Format 生成显示用字符串，例如 "1.25 MB/s"、"840 Kbps"
func Format(bytesPerSec float64, unit Unit) (string, error) {
	v, err := Convert(bytesPerSec, unit)
	if err != nil {
		return "", err
	}
	switch unit {
	case MBps:
		return fmt.Sprintf("%.2f MB/s", v), nil
	case KBps:
		return fmt.Sprintf("%.1f KB/s", v), nil
	case Mbps:
		return fmt.Sprintf("%.2f Mbps", v), nil
	default:
		return fmt.Sprintf("%.0f Kbps", v), nil
	}
}

// FormatBytes 格式化字节总量 (B -> KB -> MB ...)
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
