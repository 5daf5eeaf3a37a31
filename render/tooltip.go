package render

import (
	"fmt"
	"io"
	"sync"

	"speedmeter/units"
)

// Tooltip 托盘提示风格的单行输出：
//
//	D 1.20 MB/s (avg 0.80 MB/s) | U 0.10 MB/s (avg 0.05 MB/s) | Today ↓ 1.2 GB ↑ 100.0 MB
type Tooltip struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTooltip(w io.Writer) *Tooltip {
	return &Tooltip{w: w}
}

func (t *Tooltip) Render(s Snapshot) error {
	line, err := TooltipLine(s)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err = fmt.Fprintln(t.w, line)
	return err
}

// TooltipLine 生成一行提示文本，"当前"取平滑后的速率
func TooltipLine(s Snapshot) (string, error) {
	var parts [4]string
	for i, v := range []float64{s.Smoothed.In, s.Average.In, s.Smoothed.Out, s.Average.Out} {
		txt, err := units.Format(v, s.Unit)
		if err != nil {
			return "", err
		}
		parts[i] = txt
	}
	return fmt.Sprintf("D %s (avg %s) | U %s (avg %s) | Today ↓ %s ↑ %s",
		parts[0], parts[1], parts[2], parts[3],
		units.FormatBytes(s.Today.Down), units.FormatBytes(s.Today.Up)), nil
}
