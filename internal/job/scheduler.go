// 文件路径: internal/job/scheduler.go
// 模块说明: 后台定时任务调度，基于 robfig/cron；服务端用它清理过期会话、刷新排行榜缓存。
package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Runnable 由调度器触发的后台任务。
type Runnable interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler 封装 cron，负责统一日志、单次超时与优雅停机。
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	started bool
	jobs    map[string]Runnable
}

const defaultJobTimeout = 2 * time.Minute

// NewScheduler 支持可选秒字段与 @every / @hourly 等描述符。
// 同一任务上一轮未结束时跳过本轮。
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &Scheduler{cron: c, logger: logger, timeout: defaultJobTimeout, jobs: make(map[string]Runnable)}
}

// Register 绑定 cron 表达式与任务；spec 为空表示禁用该任务。
func (s *Scheduler) Register(spec string, runnable Runnable) (cron.EntryID, error) {
	if runnable == nil {
		return 0, fmt.Errorf("scheduler: runnable is required / runnable 不能为空")
	}
	if spec == "" {
		s.logger.Info("job disabled", "job", runnable.Name())
		return 0, nil
	}
	entryID, err := s.cron.AddFunc(spec, func() { _ = s.execute(context.Background(), runnable) })
	if err != nil {
		return 0, fmt.Errorf("scheduler: register %s: %w", runnable.Name(), err)
	}
	s.mu.Lock()
	s.jobs[runnable.Name()] = runnable
	s.mu.Unlock()
	s.logger.Info("job registered", "job", runnable.Name(), "spec", spec)
	return entryID, nil
}

// RunNow 立即同步执行一个已注册任务，供 CLI 与测试使用。
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	runnable, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduler: unknown job %q / 任务不存在", name)
	}
	return s.execute(ctx, runnable)
}

// Start 启动调度器，重复调用无副作用。
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
}

// Stop 停止调度，返回的 context 在执行中的任务结束后关闭；未启动时直接返回已关闭的 context。
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	s.started = false
	return s.cron.Stop()
}

func (s *Scheduler) execute(parent context.Context, runnable Runnable) error {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()
	start := time.Now()
	if err := runnable.Run(ctx); err != nil {
		s.logger.Error("job failed", "job", runnable.Name(), "error", err, "elapsed", time.Since(start))
		return err
	}
	s.logger.Debug("job completed", "job", runnable.Name(), "elapsed", time.Since(start))
	return nil
}
