package render

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"speedmeter/model"
	"speedmeter/units"
)

// 波形图保留的点数
// 从长度 0 开始增长，让图表从左向右自然生长
const historySize = 90

var (
	ifaceHeader = []string{"网卡", "下载速率", "上传速率", "10s 平均下载", "10s 平均上传"}
	usageHeader = []string{"统计", "下载总量", "上传总量"}
)

// Dashboard 终端仪表盘
// Render 可以在任意协程调用，只保留最新的一份快照；
// Run 在调用方协程里跑 termui 事件循环
type Dashboard struct {
	log     *slog.Logger
	updates chan Snapshot

	txHistory []float64
	rxHistory []float64

	left, right *widgets.Table
	slTx, slRx  *widgets.Sparkline
	sgTx, sgRx  *widgets.SparklineGroup
	grid        *ui.Grid
}

func NewDashboard(log *slog.Logger) *Dashboard {
	return &Dashboard{
		log:     log,
		updates: make(chan Snapshot, 1),
	}
}

// Render 非阻塞，旧快照没被取走就替换掉
func (d *Dashboard) Render(s Snapshot) error {
	for {
		select {
		case d.updates <- s:
			return nil
		default:
		}
		select {
		case <-d.updates:
		default:
		}
	}
}

// Run 初始化终端并阻塞，直到 ctx 结束或用户按 q / Ctrl+C
func (d *Dashboard) Run(ctx context.Context) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("failed to init termui: %w", err)
	}
	defer ui.Close()

	d.build()
	termWidth, termHeight := ui.TerminalDimensions()
	d.grid.SetRect(0, 0, termWidth, termHeight)
	ui.Render(d.grid)

	uiEvents := ui.PollEvents()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-uiEvents:
			if e.Type == ui.KeyboardEvent && (e.ID == "q" || e.ID == "<C-c>") {
				return nil
			}
			// 窗口大小改变时，重新计算布局
			if e.Type == ui.ResizeEvent {
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				ui.Render(d.grid)
			}
		case s := <-d.updates:
			if err := d.update(s); err != nil {
				d.log.Error("dashboard: failed to update", "error", err)
				continue
			}
			ui.Render(d.grid)
		}
	}
}

func (d *Dashboard) build() {
	// [左上] 网卡实时速率
	d.left = widgets.NewTable()
	d.left.Title = " [ 实时速率 ] "
	d.left.Rows = [][]string{ifaceHeader}
	d.left.TextStyle = ui.NewStyle(ui.ColorWhite)
	d.left.RowSeparator = false
	d.left.BorderStyle.Fg = ui.ColorGreen

	// [右上] 用量统计
	d.right = widgets.NewTable()
	d.right.Title = " [ 用量统计 ] "
	d.right.Rows = [][]string{usageHeader}
	d.right.TextStyle = ui.NewStyle(ui.ColorWhite)
	d.right.RowSeparator = false
	d.right.BorderStyle.Fg = ui.ColorYellow

	// [左下] 上传波形
	d.slTx = widgets.NewSparkline()
	d.slTx.Data = d.txHistory
	d.slTx.LineColor = ui.ColorYellow
	d.slTx.TitleStyle.Fg = ui.ColorYellow
	d.sgTx = widgets.NewSparklineGroup(d.slTx)
	d.sgTx.Title = " 上传趋势 "
	d.sgTx.BorderStyle.Fg = ui.ColorYellow

	// [右下] 下载波形
	d.slRx = widgets.NewSparkline()
	d.slRx.Data = d.rxHistory
	d.slRx.LineColor = ui.ColorGreen
	d.slRx.TitleStyle.Fg = ui.ColorGreen
	d.sgRx = widgets.NewSparklineGroup(d.slRx)
	d.sgRx.Title = " 下载趋势 "
	d.sgRx.BorderStyle.Fg = ui.ColorGreen

	// Row 1 (65%): 表格区，Row 2 (35%): 图表区
	d.grid = ui.NewGrid()
	d.grid.Set(
		ui.NewRow(0.65,
			ui.NewCol(0.6, d.left),
			ui.NewCol(0.4, d.right),
		),
		ui.NewRow(0.35,
			ui.NewCol(0.5, d.sgTx),
			ui.NewCol(0.5, d.sgRx),
		),
	)
}

func (d *Dashboard) update(s Snapshot) error {
	d.txHistory = pushHistory(d.txHistory, s.Current.Out)
	d.rxHistory = pushHistory(d.rxHistory, s.Current.In)
	d.slTx.Data = d.txHistory
	d.slRx.Data = d.rxHistory

	curTx, err := units.Format(s.Smoothed.Out, s.Unit)
	if err != nil {
		return err
	}
	curRx, err := units.Format(s.Smoothed.In, s.Unit)
	if err != nil {
		return err
	}
	peakTx, err := units.Format(peak(d.txHistory), s.Unit)
	if err != nil {
		return err
	}
	peakRx, err := units.Format(peak(d.rxHistory), s.Unit)
	if err != nil {
		return err
	}
	d.sgTx.Title = fmt.Sprintf(" 上传趋势 (实时: %s | 峰值: %s) ", curTx, peakTx)
	d.sgRx.Title = fmt.Sprintf(" 下载趋势 (实时: %s | 峰值: %s) ", curRx, peakRx)

	rows, err := interfaceRows(s, d.left.Inner.Dy())
	if err != nil {
		return err
	}
	d.left.Rows = rows
	d.right.Rows = usageRows(s)
	return nil
}

// pushHistory 追加一个点，超过 historySize 时丢掉最旧的
func pushHistory(h []float64, v float64) []float64 {
	if len(h) >= historySize {
		h = h[1:]
	}
	return append(h, v)
}

func peak(h []float64) float64 {
	m := 0.0
	for _, v := range h {
		if v > m {
			m = v
		}
	}
	return m
}

// interfaceRows 网卡表格：按实时速率排序，汇总行固定在底部
func interfaceRows(s Snapshot, tableHeight int) ([][]string, error) {
	ifaces := make([]model.InterfaceRates, len(s.Interfaces))
	copy(ifaces, s.Interfaces)
	sort.SliceStable(ifaces, func(i, j int) bool {
		rateI := ifaces[i].Current.In + ifaces[i].Current.Out
		rateJ := ifaces[j].Current.In + ifaces[j].Current.Out
		if rateI == rateJ {
			return ifaces[i].Name < ifaces[j].Name
		}
		return rateI > rateJ
	})

	format := func(vals ...float64) ([]string, error) {
		out := make([]string, 0, len(vals))
		for _, v := range vals {
			txt, err := units.Format(v, s.Unit)
			if err != nil {
				return nil, err
			}
			out = append(out, txt)
		}
		return out, nil
	}

	rows := [][]string{ifaceHeader}
	for _, iface := range ifaces {
		cells, err := format(iface.Current.In, iface.Current.Out, iface.Average.In, iface.Average.Out)
		if err != nil {
			return nil, err
		}
		rows = append(rows, append([]string{iface.Name}, cells...))
	}

	// 预留 标题(1) + 分隔(1) + 汇总(1)，数据太多时不补空行，表格滚动
	const reservedRows = 3
	if len(ifaces)+reservedRows < tableHeight {
		for i := 0; i < tableHeight-len(ifaces)-reservedRows; i++ {
			rows = append(rows, []string{" ", " ", " ", " ", " "})
		}
	}

	total, err := format(s.Current.In, s.Current.Out, s.Average.In, s.Average.Out)
	if err != nil {
		return nil, err
	}
	rows = append(rows, []string{"━━━━", "━━━━━━━━", "━━━━━━━━", "━━━━━━━━", "━━━━━━━━"})
	rows = append(rows, append([]string{fmt.Sprintf("总计 (%d)", len(ifaces))}, total...))
	return rows, nil
}

func usageRows(s Snapshot) [][]string {
	return [][]string{
		usageHeader,
		{"今日", "▼ " + units.FormatBytes(s.Today.Down), "▲ " + units.FormatBytes(s.Today.Up)},
		{"本月", "▼ " + units.FormatBytes(s.Month.Down), "▲ " + units.FormatBytes(s.Month.Up)},
		{"单位", s.Unit.String(), s.Time.Format("15:04:05")},
	}
}
