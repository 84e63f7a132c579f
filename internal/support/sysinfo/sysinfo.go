// 文件路径: internal/support/sysinfo/sysinfo.go
// 模块说明: 采集主机与当前进程的运行指标，供健康检查接口与 stat 命令展示。
package sysinfo

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Usage 总量与已用量（字节）。
type Usage struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
}

// Status 一次采集的结果；采集失败的项保持零值。
type Status struct {
	CPU        float64 `json:"cpu"`
	Mem        Usage   `json:"mem"`
	Disk       Usage   `json:"disk"`
	Load1      float64 `json:"load1"`
	HostUptime uint64  `json:"hostUptime"`
	Uptime     int64   `json:"uptime"`
	ProcessRSS uint64  `json:"processRss"`
	Goroutines int     `json:"goroutines,omitempty"`
}

// Fetcher 可替换的数据来源，测试时注入。
type Fetcher struct {
	CPUPercent    func(interval time.Duration, percpu bool) ([]float64, error)
	VirtualMemory func() (*mem.VirtualMemoryStat, error)
	DiskUsage     func(path string) (*disk.UsageStat, error)
	LoadAvg       func() (*load.AvgStat, error)
	HostUptime    func() (uint64, error)
	ProcessRSS    func() (uint64, error)
}

// Monitor 记录启动时间，用于计算进程运行时长。
type Monitor struct {
	fetcher  Fetcher
	started  time.Time
	diskPath string
	now      func() time.Time
}

func New(diskPath string) *Monitor {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Monitor{
		fetcher: Fetcher{
			CPUPercent:    cpu.Percent,
			VirtualMemory: mem.VirtualMemory,
			DiskUsage:     disk.Usage,
			LoadAvg:       load.Avg,
			HostUptime:    host.Uptime,
			ProcessRSS:    currentRSS,
		},
		started:  time.Now(),
		diskPath: diskPath,
		now:      time.Now,
	}
}

// SetFetcher sets a custom fetcher for testing.
func (m *Monitor) SetFetcher(fetcher Fetcher) {
	m.fetcher = fetcher
}

func (m *Monitor) Collect() Status {
	stat := Status{Uptime: int64(m.now().Sub(m.started) / time.Second)}

	if percents, err := m.fetcher.CPUPercent(0, false); err == nil && len(percents) > 0 {
		stat.CPU = percents[0]
	}
	if v, err := m.fetcher.VirtualMemory(); err == nil {
		stat.Mem = Usage{Total: v.Total, Used: v.Used}
	}
	if d, err := m.fetcher.DiskUsage(m.diskPath); err == nil {
		stat.Disk = Usage{Total: d.Total, Used: d.Used}
	}
	if l, err := m.fetcher.LoadAvg(); err == nil {
		stat.Load1 = l.Load1
	}
	if up, err := m.fetcher.HostUptime(); err == nil {
		stat.HostUptime = up
	}
	if rss, err := m.fetcher.ProcessRSS(); err == nil {
		stat.ProcessRSS = rss
	}
	return stat
}

func currentRSS() (uint64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}
