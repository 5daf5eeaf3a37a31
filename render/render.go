// Package render 把速率快照输出到界面：终端仪表盘或一行提示文本
package render

import (
	"time"

	"speedmeter/model"
	"speedmeter/units"
)

// Snapshot 每次轮询后交给渲染端的数据，值拷贝，渲染端可以随意持有
type Snapshot struct {
	Time time.Time
	Unit units.Unit

	Current  model.Rates
	Average  model.Rates
	Smoothed model.Rates

	Interfaces []model.InterfaceRates

	Today model.Totals
	Month model.Totals
}

// Sink 渲染端
type Sink interface {
	Render(s Snapshot) error
}

// SinkFunc 适配普通函数
type SinkFunc func(s Snapshot) error

func (f SinkFunc) Render(s Snapshot) error { return f(s) }
