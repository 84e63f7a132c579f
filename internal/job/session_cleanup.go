package job

import (
	"context"
	"fmt"
	"log/slog"
)

// SessionCleaner 删除已过期会话并返回删除数量。
type SessionCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// SessionCleanupJob periodically removes expired login sessions.
type SessionCleanupJob struct {
	Sessions SessionCleaner
	Logger   *slog.Logger
}

// NewSessionCleanupJob creates a new SessionCleanupJob.
func NewSessionCleanupJob(sessions SessionCleaner, logger *slog.Logger) *SessionCleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionCleanupJob{Sessions: sessions, Logger: logger}
}

// Name implements Runnable interface.
func (j *SessionCleanupJob) Name() string {
	return "session.cleanup"
}

// Run implements Runnable interface.
func (j *SessionCleanupJob) Run(ctx context.Context) error {
	if j == nil || j.Sessions == nil {
		return fmt.Errorf("session cleanup job dependencies not configured / 会话清理任务依赖未配置")
	}
	deleted, err := j.Sessions.CleanupExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("session cleanup job: %w", err)
	}
	if deleted > 0 {
		j.Logger.Info("cleaned up expired sessions", "deleted_rows", deleted)
	}
	return nil
}
