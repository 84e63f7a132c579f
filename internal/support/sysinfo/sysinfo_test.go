package sysinfo

import (
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
)

func TestCollect(t *testing.T) {
	m := New("")
	start := m.started
	m.now = func() time.Time { return start.Add(90 * time.Second) }
	m.SetFetcher(Fetcher{
		CPUPercent:    func(time.Duration, bool) ([]float64, error) { return []float64{12.5}, nil },
		VirtualMemory: func() (*mem.VirtualMemoryStat, error) { return &mem.VirtualMemoryStat{Total: 100, Used: 40}, nil },
		DiskUsage: func(path string) (*disk.UsageStat, error) {
			assert.Equal(t, "/", path)
			return &disk.UsageStat{Total: 1000, Used: 10}, nil
		},
		LoadAvg:    func() (*load.AvgStat, error) { return nil, errors.New("unsupported") },
		HostUptime: func() (uint64, error) { return 3600, nil },
		ProcessRSS: func() (uint64, error) { return 2048, nil },
	})

	stat := m.Collect()
	assert.Equal(t, 12.5, stat.CPU)
	assert.Equal(t, Usage{Total: 100, Used: 40}, stat.Mem)
	assert.Equal(t, Usage{Total: 1000, Used: 10}, stat.Disk)
	assert.Zero(t, stat.Load1)
	assert.EqualValues(t, 3600, stat.HostUptime)
	assert.EqualValues(t, 90, stat.Uptime)
	assert.EqualValues(t, 2048, stat.ProcessRSS)
}
