package estimator

import (
	"time"

	"speedmeter/model"
)

// ema 指数移动平均，用于平滑显示的"当前速率"
type ema struct {
	alpha  float64
	value  model.Rates
	primed bool
}

// newEMA alpha = interval / smoothing，限制在 [0.01, 1]
// smoothing <= 0 表示关闭平滑，返回 nil
func newEMA(interval, smoothing time.Duration) *ema {
	if smoothing <= 0 || interval <= 0 {
		return nil
	}
	alpha := float64(interval) / float64(smoothing)
	alpha = min(1.0, max(0.01, alpha))
	return &ema{alpha: alpha}
}

func (e *ema) update(r model.Rates) model.Rates {
	if !e.primed {
		e.value = r
		e.primed = true
		return e.value
	}
	e.value = model.Rates{
		In:  e.alpha*r.In + (1-e.alpha)*e.value.In,
		Out: e.alpha*r.Out + (1-e.alpha)*e.value.Out,
	}
	return e.value
}

func (e *ema) reset() {
	e.value = model.Rates{}
	e.primed = false
}
