// Package estimator 把累计计数器样本转换为瞬时速率和滚动平均速率
package estimator

import (
	"errors"
	"sync"
	"time"

	"speedmeter/model"
)

// DefaultWindow 滚动平均覆盖的时长
const DefaultWindow = 10 * time.Second

// Outcome 一次 RecordSample 的结果
type Outcome int

const (
	// OutcomeBaseline 第一个样本 (或 Reset 之后)，只记录基线
	OutcomeBaseline Outcome = iota
	// OutcomeRecorded 正常计算出速率
	OutcomeRecorded
	// OutcomeReset 计数器回退 (网卡重启)，按新基线计算
	OutcomeReset
	// OutcomeDiscarded 时间戳不递增，丢弃
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBaseline:
		return "baseline"
	case OutcomeRecorded:
		return "recorded"
	case OutcomeReset:
		return "reset"
	case OutcomeDiscarded:
		return "discarded"
	}
	return "unknown"
}

// Record 描述样本被如何处理
// DeltaIn/DeltaOut 只有在 Recorded/Reset 时非零，用于累计用量
type Record struct {
	Outcome  Outcome
	DeltaIn  uint64
	DeltaOut uint64
	Rates    model.Rates
}

type Config struct {
	// Interval 轮询间隔，用于计算窗口容量和 EMA 系数
	Interval time.Duration
	// Window 滚动平均时长，0 表示 DefaultWindow
	Window time.Duration
	// Smoothing EMA 平滑时长，0 表示关闭
	Smoothing time.Duration
}

func (cfg *Config) Validate() error {
	if cfg.Interval <= 0 {
		return errors.New("interval must be greater than 0")
	}
	if cfg.Window < 0 {
		return errors.New("window must not be negative")
	}
	if cfg.Smoothing < 0 {
		return errors.New("smoothing must not be negative")
	}
	return nil
}

// ThroughputEstimator 维护下载/上传的当前速率与平均速率
// 轮询协程写，渲染协程读，内部状态由一把互斥锁保护
type ThroughputEstimator struct {
	mu sync.Mutex

	prev    model.Sample
	hasPrev bool

	current  model.Rates
	window   *RateWindow
	smoother *ema
}

func New(cfg *Config) (*ThroughputEstimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	window := cfg.Window
	if window == 0 {
		window = DefaultWindow
	}
	e := NewWithCapacity(CapacityFor(window, cfg.Interval))
	e.smoother = newEMA(cfg.Interval, cfg.Smoothing)
	return e, nil
}

// NewWithCapacity 直接指定窗口条数，不做平滑
func NewWithCapacity(capacity int) *ThroughputEstimator {
	return &ThroughputEstimator{window: NewRateWindow(capacity)}
}

// RecordSample 处理一次轮询样本
func (e *ThroughputEstimator) RecordSample(s model.Sample) Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.hasPrev {
		e.prev = s
		e.hasPrev = true
		return Record{Outcome: OutcomeBaseline}
	}

	elapsed := s.Time.Sub(e.prev.Time).Seconds()
	if elapsed <= 0 {
		return Record{Outcome: OutcomeDiscarded}
	}

	outcome := OutcomeRecorded
	dIn, resetIn := counterDelta(e.prev.BytesIn, s.BytesIn)
	dOut, resetOut := counterDelta(e.prev.BytesOut, s.BytesOut)
	if resetIn || resetOut {
		outcome = OutcomeReset
	}

	rates := model.Rates{
		In:  float64(dIn) / elapsed,
		Out: float64(dOut) / elapsed,
	}
	e.current = rates
	e.window.Push(rates)
	if e.smoother != nil {
		e.smoother.update(rates)
	}
	e.prev = s

	return Record{Outcome: outcome, DeltaIn: dIn, DeltaOut: dOut, Rates: rates}
}

// counterDelta 计数器回退时把当前值当作增量 (从 0 重新计数)
func counterDelta(prev, cur uint64) (uint64, bool) {
	if cur >= prev {
		return cur - prev, false
	}
	return cur, true
}

// CurrentRate 最近一次的瞬时速率，尚无速率时为 (0, 0)
func (e *ThroughputEstimator) CurrentRate() model.Rates {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// AverageRate 窗口内速率的平均值，窗口为空时为 (0, 0)
func (e *ThroughputEstimator) AverageRate() model.Rates {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.window.Mean()
}

// SmoothedRate 开启平滑时返回 EMA，否则等同 CurrentRate
func (e *ThroughputEstimator) SmoothedRate() model.Rates {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.smoother == nil || !e.smoother.primed {
		return e.current
	}
	return e.smoother.value
}

// Reset 丢弃基线和平滑状态，下一个样本重新作为基线
// 窗口保留，平均值不会因为切换网卡而突然归零
func (e *ThroughputEstimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hasPrev = false
	e.prev = model.Sample{}
	if e.smoother != nil {
		e.smoother.reset()
	}
}

// WindowCap 窗口容量
func (e *ThroughputEstimator) WindowCap() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.window.Cap()
}
