package model

import "time"

// Sample 是一次轮询得到的累计计数器快照
// BytesIn 对应下载 (接收)，BytesOut 对应上传 (发送)
type Sample struct {
	Time     time.Time
	BytesIn  uint64
	BytesOut uint64
}

// Rates 下载/上传速率，单位 Bps (Bytes per second)
type Rates struct {
	In  float64
	Out float64
}

// Add 逐方向相加
func (r Rates) Add(o Rates) Rates {
	return Rates{In: r.In + o.In, Out: r.Out + o.Out}
}

// Totals 累计流量 (按天/按月统计)
type Totals struct {
	Down uint64
	Up   uint64
}

// InterfaceRates 单个网卡的实时与平均速率 (仪表盘表格的一行)
type InterfaceRates struct {
	Name    string
	Current Rates
	Average Rates

	// 最近一次读取到的累计计数
	BytesIn  uint64
	BytesOut uint64
}
