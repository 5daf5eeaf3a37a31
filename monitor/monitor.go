// Package monitor 定时轮询网卡计数器，驱动速率估算、用量统计和渲染
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"

	"speedmeter/counter"
	"speedmeter/estimator"
	"speedmeter/metrics"
	"speedmeter/model"
	"speedmeter/render"
	"speedmeter/units"
	"speedmeter/usage"
)

type Config struct {
	Clock     clockwork.Clock
	Source    counter.Source
	Selector  *counter.Selector
	Estimator *estimator.ThroughputEstimator

	// Usage 为 nil 时不统计用量
	Usage      *usage.Store
	Repository *usage.Repository

	Sinks []render.Sink
	Unit  units.Unit

	Interval         time.Duration
	Window           time.Duration
	InterfaceRefresh time.Duration
	SaveInterval     time.Duration
}

func (cfg *Config) Validate() error {
	if cfg.Clock == nil {
		return errors.New("clock is required")
	}
	if cfg.Source == nil {
		return errors.New("counter source is required")
	}
	if cfg.Selector == nil {
		return errors.New("selector is required")
	}
	if cfg.Estimator == nil {
		return errors.New("estimator is required")
	}
	if cfg.Repository != nil && cfg.Usage == nil {
		return errors.New("usage store is required when a repository is set")
	}
	if !cfg.Unit.Valid() {
		return fmt.Errorf("%w: %q", units.ErrInvalidUnit, string(cfg.Unit))
	}
	if cfg.Interval <= 0 {
		return errors.New("interval must be greater than 0")
	}
	if cfg.InterfaceRefresh <= 0 {
		return errors.New("interface refresh must be greater than 0")
	}
	if cfg.Repository != nil && cfg.SaveInterval <= 0 {
		return errors.New("save interval must be greater than 0")
	}
	return nil
}

// Monitor 轮询协程，是 Estimator 唯一的写入方
type Monitor struct {
	log *slog.Logger
	cfg *Config

	selected    []string
	lastRefresh time.Time
	lastSave    time.Time

	// 选中网卡增量的累计值，只增不减，作为总估算器的输入
	totalIn, totalOut uint64

	// 每块网卡各自一个估算器，用于仪表盘表格
	perIface map[string]*estimator.ThroughputEstimator
	lastSeen map[string]counter.Interface
}

func New(log *slog.Logger, cfg *Config) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Monitor{
		log:      log,
		cfg:      cfg,
		perIface: make(map[string]*estimator.ThroughputEstimator),
		lastSeen: make(map[string]counter.Interface),
	}, nil
}

// Selected 当前参与统计的网卡
func (m *Monitor) Selected() []string {
	return slices.Clone(m.selected)
}

// Run 先采一次基线，然后每个 Interval 处理一次，直到 ctx 结束
// 退出前保存一次用量
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("monitor: starting",
		"source", m.cfg.Source.Name(),
		"interval", m.cfg.Interval,
		"window", m.cfg.Window,
		"windowSamples", m.cfg.Estimator.WindowCap(),
		"unit", m.cfg.Unit,
		"preferredInterface", m.cfg.Selector.Preferred,
	)

	m.lastSave = m.cfg.Clock.Now()
	m.tick(ctx)

	ticker := m.cfg.Clock.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("monitor: context done, stopping", "reason", ctx.Err())
			m.save()
			return nil
		case <-ticker.Chan():
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	startedAt := m.cfg.Clock.Now()
	defer func() {
		metrics.TickDuration.Observe(m.cfg.Clock.Since(startedAt).Seconds())
	}()

	ifaces, err := m.cfg.Source.Counters(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.log.Error("monitor: failed to read counters", "source", m.cfg.Source.Name(), "error", err)
		}
		metrics.CounterErrorsTotal.Inc()
		return
	}
	now := m.cfg.Clock.Now()

	if m.lastRefresh.IsZero() || now.Sub(m.lastRefresh) >= m.cfg.InterfaceRefresh {
		m.refresh(ifaces, now)
	}

	// 增量按网卡各自计算再累加，单块网卡计数回退或暂时消失不会影响其他网卡
	resets := m.recordInterfaces(ifaces, now)
	rec := m.cfg.Estimator.RecordSample(model.Sample{Time: now, BytesIn: m.totalIn, BytesOut: m.totalOut})
	outcome := rec.Outcome
	if outcome == estimator.OutcomeRecorded && len(resets) > 0 {
		outcome = estimator.OutcomeReset
	}
	metrics.SamplesTotal.WithLabelValues(outcome.String()).Inc()
	switch outcome {
	case estimator.OutcomeReset:
		m.log.Info("monitor: counter reset detected", "interfaces", resets)
	case estimator.OutcomeDiscarded:
		m.log.Debug("monitor: sample discarded", "time", now)
	}

	if m.cfg.Usage != nil && (rec.DeltaIn > 0 || rec.DeltaOut > 0) {
		m.cfg.Usage.Add(now, rec.DeltaIn, rec.DeltaOut)
	}
	if m.cfg.Repository != nil && now.Sub(m.lastSave) >= m.cfg.SaveInterval {
		m.save()
		m.lastSave = now
	}

	if rec.Outcome == estimator.OutcomeBaseline {
		return
	}

	snap := m.snapshot(now)
	m.observe(snap)
	for _, sink := range m.cfg.Sinks {
		if err := sink.Render(snap); err != nil {
			m.log.Error("monitor: failed to render", "error", err)
		}
	}
}

// refresh 重新选择网卡
// 新加入的网卡先建立基线，下一轮才开始计入总量
func (m *Monitor) refresh(ifaces []counter.Interface, now time.Time) {
	first := m.lastRefresh.IsZero()
	m.lastRefresh = now
	selected := m.cfg.Selector.Select(ifaces)
	metrics.SelectedInterfaces.Set(float64(len(selected)))
	if !first && slices.Equal(selected, m.selected) {
		return
	}

	if first {
		m.log.Info("monitor: interfaces selected", "interfaces", selected)
	} else {
		m.log.Info("monitor: interface selection changed", "from", m.selected, "to", selected)
	}
	if len(selected) == 0 {
		m.log.Warn("monitor: no interface matches the selection")
	}
	m.selected = selected

	for name := range m.perIface {
		if !slices.Contains(selected, name) {
			delete(m.perIface, name)
			delete(m.lastSeen, name)
		}
	}
	for _, name := range selected {
		if _, ok := m.perIface[name]; !ok {
			m.perIface[name] = estimator.NewWithCapacity(estimator.CapacityFor(m.window(), m.cfg.Interval))
		}
	}
}

func (m *Monitor) window() time.Duration {
	if m.cfg.Window > 0 {
		return m.cfg.Window
	}
	return estimator.DefaultWindow
}

// recordInterfaces 更新各网卡的估算器，把增量累加进 totalIn/totalOut
// 返回本轮计数回退的网卡
// 选中的网卡本轮没有出现时重置它的基线，重新出现后从新基线开始计数
func (m *Monitor) recordInterfaces(ifaces []counter.Interface, now time.Time) []string {
	var resets []string
	present := make(map[string]bool, len(ifaces))
	for _, iface := range ifaces {
		est, ok := m.perIface[iface.Name]
		if !ok {
			continue
		}
		present[iface.Name] = true
		rec := est.RecordSample(model.Sample{Time: now, BytesIn: iface.BytesIn, BytesOut: iface.BytesOut})
		if rec.Outcome == estimator.OutcomeReset {
			resets = append(resets, iface.Name)
		}
		m.totalIn += rec.DeltaIn
		m.totalOut += rec.DeltaOut
		m.lastSeen[iface.Name] = iface
	}
	for name, est := range m.perIface {
		if !present[name] {
			m.log.Debug("monitor: selected interface missing from counters", "interface", name)
			est.Reset()
		}
	}
	return resets
}

func (m *Monitor) snapshot(now time.Time) render.Snapshot {
	snap := render.Snapshot{
		Time:     now,
		Unit:     m.cfg.Unit,
		Current:  m.cfg.Estimator.CurrentRate(),
		Average:  m.cfg.Estimator.AverageRate(),
		Smoothed: m.cfg.Estimator.SmoothedRate(),
	}
	for _, name := range m.selected {
		est, ok := m.perIface[name]
		if !ok {
			continue
		}
		seen := m.lastSeen[name]
		snap.Interfaces = append(snap.Interfaces, model.InterfaceRates{
			Name:     name,
			Current:  est.CurrentRate(),
			Average:  est.AverageRate(),
			BytesIn:  seen.BytesIn,
			BytesOut: seen.BytesOut,
		})
	}
	if m.cfg.Usage != nil {
		snap.Today = m.cfg.Usage.Today(now)
		snap.Month = m.cfg.Usage.Month(now)
	}
	return snap
}

func (m *Monitor) observe(s render.Snapshot) {
	metrics.RateBytesPerSecond.WithLabelValues(metrics.DirectionDown, metrics.KindCurrent).Set(s.Current.In)
	metrics.RateBytesPerSecond.WithLabelValues(metrics.DirectionUp, metrics.KindCurrent).Set(s.Current.Out)
	metrics.RateBytesPerSecond.WithLabelValues(metrics.DirectionDown, metrics.KindAverage).Set(s.Average.In)
	metrics.RateBytesPerSecond.WithLabelValues(metrics.DirectionUp, metrics.KindAverage).Set(s.Average.Out)
	metrics.RateBytesPerSecond.WithLabelValues(metrics.DirectionDown, metrics.KindSmoothed).Set(s.Smoothed.In)
	metrics.RateBytesPerSecond.WithLabelValues(metrics.DirectionUp, metrics.KindSmoothed).Set(s.Smoothed.Out)
	metrics.UsageTodayBytes.WithLabelValues(metrics.DirectionDown).Set(float64(s.Today.Down))
	metrics.UsageTodayBytes.WithLabelValues(metrics.DirectionUp).Set(float64(s.Today.Up))
}

func (m *Monitor) save() {
	if m.cfg.Repository == nil {
		return
	}
	if err := m.cfg.Repository.Save(m.cfg.Usage); err != nil {
		m.log.Error("monitor: failed to save usage", "path", m.cfg.Repository.Path(), "error", err)
	}
}
