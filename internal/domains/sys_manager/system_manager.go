package sys_manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
)

// SystemTask represents a background task that can be executed
type SystemTask interface {
	// Execute runs the task
	Execute(ctx context.Context) error
	// GetName returns the task name for logging
	GetName() string
	// GetInterval returns how often this task should run
	GetInterval() time.Duration
}

// SystemManager manages and schedules background system tasks
type SystemManager struct {
	tasks   []SystemTask
	logger  *Logger.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewSystemManager creates a new system manager
func NewSystemManager(logger *Logger.Logger) *SystemManager {
	ctx, cancel := context.WithCancel(context.Background())

	return &SystemManager{
		tasks:  make([]SystemTask, 0),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// RegisterTask adds a new task to be managed
func (sm *SystemManager) RegisterTask(task SystemTask) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.tasks = append(sm.tasks, task)
	sm.logger.Info(fmt.Sprintf("Registered system task: %s (interval: %s)",
		task.GetName(), task.GetInterval()))
}

// Start begins executing all registered tasks on their schedules
func (sm *SystemManager) Start() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.running {
		return fmt.Errorf("system manager is already running")
	}

	sm.running = true
	sm.logger.Info(fmt.Sprintf("Starting system manager with %d tasks", len(sm.tasks)))

	// Start each task in its own goroutine with its own ticker
	for _, task := range sm.tasks {
		sm.wg.Add(1)
		go sm.runTask(task)
	}

	return nil
}

// Stop gracefully shuts down all tasks
func (sm *SystemManager) Stop() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.running {
		return nil
	}

	sm.logger.Info("Stopping system manager...")
	sm.cancel()
	sm.wg.Wait()
	sm.running = false
	sm.logger.Info("System manager stopped")

	return nil
}

// IsRunning returns whether the system manager is currently running
func (sm *SystemManager) IsRunning() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.running
}

// GetTaskCount returns the number of registered tasks
func (sm *SystemManager) GetTaskCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.tasks)
}

// runTask executes a single task on its schedule
func (sm *SystemManager) runTask(task SystemTask) {
	defer sm.wg.Done()

	taskName := task.GetName()
	interval := task.GetInterval()

	sm.logger.Info(fmt.Sprintf("Starting task scheduler for: %s", taskName))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Execute immediately on start
	sm.executeTask(task)

	// Then execute on schedule
	for {
		select {
		case <-sm.ctx.Done():
			sm.logger.Info(fmt.Sprintf("Task scheduler stopping for: %s", taskName))
			return
		case <-ticker.C:
			sm.executeTask(task)
		}
	}
}

// executeTask safely executes a task with error handling and logging
func (sm *SystemManager) executeTask(task SystemTask) {
	taskName := task.GetName()
	start := time.Now()

	sm.logger.Debug(fmt.Sprintf("Executing system task: %s", taskName))

	// Create a timeout context for the task
	taskCtx, cancel := context.WithTimeout(sm.ctx, 30*time.Second)
	defer cancel()

	err := task.Execute(taskCtx)
	duration := time.Since(start)

	if err != nil {
		sm.logger.Error(fmt.Sprintf("System task %s failed after %s: %v", taskName, duration, err))
	} else {
		sm.logger.Debug(fmt.Sprintf("System task %s completed in %s", taskName, duration))
	}
}

// SessionSweeper removes request sessions that have gone idle.
type SessionSweeper interface {
	SweepIdle(now time.Time, ttl time.Duration) int
}

// SessionSweepTask ends request/response voice sessions nobody touched for ttl.
type SessionSweepTask struct {
	sweeper  SessionSweeper
	ttl      time.Duration
	interval time.Duration
	logger   *Logger.Logger
	now      func() time.Time
}

func NewSessionSweepTask(sweeper SessionSweeper, ttl, interval time.Duration, logger *Logger.Logger) *SessionSweepTask {
	if interval == 0 {
		interval = time.Minute
	}
	return &SessionSweepTask{
		sweeper:  sweeper,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

func (t *SessionSweepTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n := t.sweeper.SweepIdle(t.now(), t.ttl); n > 0 {
		t.logger.Info(fmt.Sprintf("Swept %d idle voice sessions", n))
	}
	return nil
}

func (t *SessionSweepTask) GetName() string { return "SessionSweepTask" }

func (t *SessionSweepTask) GetInterval() time.Duration { return t.interval }

// HistoryPruner deletes stored conversation history older than a cutoff.
type HistoryPruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// HistoryPruneTask keeps the conversation history store within its retention window.
type HistoryPruneTask struct {
	pruner    HistoryPruner
	retention time.Duration
	interval  time.Duration
	logger    *Logger.Logger
	now       func() time.Time
}

func NewHistoryPruneTask(pruner HistoryPruner, retention, interval time.Duration, logger *Logger.Logger) *HistoryPruneTask {
	if interval == 0 {
		interval = time.Hour
	}
	return &HistoryPruneTask{
		pruner:    pruner,
		retention: retention,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

func (t *HistoryPruneTask) Execute(ctx context.Context) error {
	n, err := t.pruner.Prune(ctx, t.now().Add(-t.retention))
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	if n > 0 {
		t.logger.Info(fmt.Sprintf("Pruned %d conversation messages older than %s", n, t.retention))
	}
	return nil
}

func (t *HistoryPruneTask) GetName() string { return "HistoryPruneTask" }

func (t *HistoryPruneTask) GetInterval() time.Duration { return t.interval }
