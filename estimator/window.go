package estimator

import (
	"math"
	"time"

	"speedmeter/model"
)

// RateWindow 固定容量的 FIFO 速率窗口 (环形缓冲)
// 满了以后新速率挤掉最旧的一条
type RateWindow struct {
	buf   []model.Rates
	start int
	n     int
}

// NewRateWindow capacity 小于 1 时按 1 处理
func NewRateWindow(capacity int) *RateWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &RateWindow{buf: make([]model.Rates, capacity)}
}

// CapacityFor 计算覆盖 window 时长所需的条数，例如 10s / 500ms = 20
func CapacityFor(window, interval time.Duration) int {
	if window <= 0 || interval <= 0 {
		return 1
	}
	n := int(math.Ceil(float64(window) / float64(interval)))
	if n < 1 {
		return 1
	}
	return n
}

func (w *RateWindow) Push(r model.Rates) {
	if w.n < len(w.buf) {
		w.buf[(w.start+w.n)%len(w.buf)] = r
		w.n++
		return
	}
	w.buf[w.start] = r
	w.start = (w.start + 1) % len(w.buf)
}

// Mean 窗口内速率的算术平均，空窗口返回 0
func (w *RateWindow) Mean() model.Rates {
	if w.n == 0 {
		return model.Rates{}
	}
	var sum model.Rates
	for i := 0; i < w.n; i++ {
		sum = sum.Add(w.buf[(w.start+i)%len(w.buf)])
	}
	return model.Rates{In: sum.In / float64(w.n), Out: sum.Out / float64(w.n)}
}

func (w *RateWindow) Cap() int { return len(w.buf) }
