package usage

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"speedmeter/model"

	"github.com/stretchr/testify/require"
)

func TestUsage_Store_TodayAndMonth(t *testing.T) {
	t.Parallel()

	s := NewStore()
	oct1 := time.Date(2026, 10, 1, 9, 0, 0, 0, time.Local)
	oct17 := time.Date(2026, 10, 17, 23, 59, 0, 0, time.Local)
	sep30 := time.Date(2026, 9, 30, 12, 0, 0, 0, time.Local)

	s.Add(oct1, 100, 10)
	s.Add(oct17, 1000, 20)
	s.Add(oct17, 500, 5)
	s.Add(sep30, 7, 7)

	require.Equal(t, model.Totals{Down: 1500, Up: 25}, s.Today(oct17))
	require.Equal(t, model.Totals{Down: 1600, Up: 35}, s.Month(oct17))
	require.Equal(t, model.Totals{Down: 7, Up: 7}, s.Month(sep30))
	require.Equal(t, model.Totals{}, s.Today(time.Date(2026, 10, 2, 0, 0, 0, 0, time.Local)))

	s.ClearToday(oct17)
	require.Equal(t, model.Totals{}, s.Today(oct17))
	require.Equal(t, model.Totals{Down: 100, Up: 10}, s.Month(oct17))

	// 清零不存在的日期不会报错
	s.ClearToday(time.Date(2020, 1, 1, 0, 0, 0, 0, time.Local))
}

func TestUsage_Store_ZeroValueAdd(t *testing.T) {
	t.Parallel()

	var s Store
	now := time.Now()
	s.Add(now, 1, 2)
	require.Equal(t, model.Totals{Down: 1, Up: 2}, s.Today(now))
}

func TestUsage_Repository_SaveAndLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", FileName)
	repo := NewRepository(slog.New(slog.NewTextHandler(io.Discard, nil)), path)

	store, err := repo.Load()
	require.NoError(t, err)
	require.Empty(t, store.ByDay)

	day := time.Date(2026, 10, 17, 8, 0, 0, 0, time.Local)
	store.Add(day, 4096, 1024)
	require.NoError(t, repo.Save(store))

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"by_day":{"2026-10-17":{"down":4096,"up":1024}}}`, string(data))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, model.Totals{Down: 4096, Up: 1024}, loaded.Today(day))
}

func TestUsage_Repository_CorruptFileYieldsEmptyStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo := NewRepository(slog.New(slog.NewTextHandler(io.Discard, nil)), path)
	store, err := repo.Load()
	require.NoError(t, err)
	require.NotNil(t, store.ByDay)
	require.Empty(t, store.ByDay)
}

func TestUsage_Repository_NullDaysDropped(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"by_day":{"2026-10-17":null,"2026-10-16":{"down":1,"up":2}}}`), 0o644))

	repo := NewRepository(slog.New(slog.NewTextHandler(io.Discard, nil)), path)
	store, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, store.ByDay, 1)
	require.Equal(t, uint64(1), store.ByDay["2026-10-16"].Down)
}

func TestUsage_Repository_FailedRenameRemovesTempFile(t *testing.T) {
	t.Parallel()

	// 目标路径是非空目录，rename 会失败
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.MkdirAll(filepath.Join(path, "occupied"), 0o755))

	repo := NewRepository(slog.New(slog.NewTextHandler(io.Discard, nil)), path)
	store := NewStore()
	store.Add(time.Date(2026, 10, 17, 8, 0, 0, 0, time.Local), 1, 1)
	require.Error(t, repo.Save(store))

	_, err := os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}
