// Package usage 按天累计下载/上传流量，并持久化到 JSON 文件
package usage

import (
	"strings"
	"time"

	"speedmeter/model"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Day 一天的累计字节数
type Day struct {
	Down uint64 `json:"down"`
	Up   uint64 `json:"up"`
}

// Store 以 "YYYY-MM-DD" 为键的用量表
// 只由轮询协程修改，不做并发保护
type Store struct {
	ByDay map[string]*Day `json:"by_day"`
}

func NewStore() *Store {
	return &Store{ByDay: make(map[string]*Day)}
}

func DayKey(t time.Time) string   { return t.Format(dayLayout) }
func MonthKey(t time.Time) string { return t.Format(monthLayout) }

// Add 把一次轮询的增量记到 t 所在的那一天
func (s *Store) Add(t time.Time, down, up uint64) {
	if s.ByDay == nil {
		s.ByDay = make(map[string]*Day)
	}
	key := DayKey(t)
	d, ok := s.ByDay[key]
	if !ok {
		d = &Day{}
		s.ByDay[key] = d
	}
	d.Down += down
	d.Up += up
}

// Today t 所在那一天的用量
func (s *Store) Today(t time.Time) model.Totals {
	d, ok := s.ByDay[DayKey(t)]
	if !ok {
		return model.Totals{}
	}
	return model.Totals{Down: d.Down, Up: d.Up}
}

// Month t 所在月份所有天的合计
func (s *Store) Month(t time.Time) model.Totals {
	prefix := MonthKey(t) + "-"
	var total model.Totals
	for key, d := range s.ByDay {
		if strings.HasPrefix(key, prefix) {
			total.Down += d.Down
			total.Up += d.Up
		}
	}
	return total
}

// ClearToday 清零 t 所在那一天
func (s *Store) ClearToday(t time.Time) {
	if d, ok := s.ByDay[DayKey(t)]; ok {
		*d = Day{}
	}
}
