package worker

import (
	"errors"
	"sync"
	"time"

	"github.com/Kellerman81/go_portfolio_admin/logger"
	"github.com/alitto/pond/v2"
	"github.com/robfig/cron/v3"
)

// StatsDetail holds the counters of one worker pool.
type StatsDetail struct {
	CompletedTasks  uint64 `json:"completed_tasks"`
	FailedTasks     uint64 `json:"failed_tasks"`
	DroppedTasks    uint64 `json:"dropped_tasks"`
	RunningWorkers  uint64 `json:"running_workers"`
	SubmittedTasks  uint64 `json:"submitted_tasks"`
	SuccessfulTasks uint64 `json:"successful_tasks"`
	WaitingTasks    uint64 `json:"waiting_tasks"`
}

// Schedule describes one registered cron job.
type Schedule struct {
	ID             cron.EntryID `json:"id"`
	Name           string       `json:"name"`
	ScheduleString string       `json:"schedule"`
	LastRun        time.Time    `json:"last_run"`
	NextRun        time.Time    `json:"next_run"`
	IsRunning      bool         `json:"is_running"`
}

var (
	// lookupPool loads the related listings of filter bars and dialogs.
	lookupPool pond.Pool

	cronWorker *cron.Cron

	schedulesMu sync.RWMutex
	schedules   = map[cron.EntryID]*Schedule{}

	ErrNoCron = errors.New("cron worker not created")
)

type wrappedLogger struct{}

func (*wrappedLogger) Info(_ string, _ ...any) {}

func (*wrappedLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.Logtype(logger.StatusError, 0).
		Any("values", keysAndValues).
		Str("msg", msg).
		Err(err).
		Msg("cron error")
}

// InitWorkerPools creates the worker pools. Zero means one worker.
func InitWorkerPools(workerlookups int) {
	if workerlookups <= 0 {
		workerlookups = 1
	}
	lookupPool = pond.NewPool(workerlookups)
}

// GetLookupPool returns the pool used for lookup loading. It creates a single
// worker pool when InitWorkerPools was not called.
func GetLookupPool() pond.Pool {
	if lookupPool == nil {
		InitWorkerPools(1)
	}
	return lookupPool
}

// CloseWorkerPools stops the pools after running tasks finished.
func CloseWorkerPools() {
	if lookupPool != nil {
		lookupPool.StopAndWait()
	}
}

// GetWorkerStats extracts the counters of w.
func GetWorkerStats(w pond.Pool) StatsDetail {
	if w == nil {
		return StatsDetail{}
	}
	return StatsDetail{
		CompletedTasks:  w.CompletedTasks(),
		FailedTasks:     w.FailedTasks(),
		DroppedTasks:    w.DroppedTasks(),
		RunningWorkers:  uint64(w.RunningWorkers()),
		SubmittedTasks:  w.SubmittedTasks(),
		SuccessfulTasks: w.SuccessfulTasks(),
		WaitingTasks:    w.WaitingTasks(),
	}
}

// CreateCronWorker initializes the scheduler. Specs accept an optional
// seconds field and descriptors like "@every 5m".
func CreateCronWorker() {
	var loggerworker wrappedLogger
	cronWorker = cron.New(
		cron.WithLocation(logger.GetTimeZone()),
		cron.WithLogger(&loggerworker),
		cron.WithChain(cron.Recover(&loggerworker), cron.SkipIfStillRunning(&loggerworker)),
		cron.WithParser(cron.NewParser(
			cron.SecondOptional|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
		)),
	)
}

// StartCronWorker starts executing scheduled jobs.
func StartCronWorker() {
	if cronWorker != nil {
		cronWorker.Start()
	}
}

// StopCronWorker stops the scheduler and waits for running jobs.
func StopCronWorker() {
	if cronWorker != nil {
		<-cronWorker.Stop().Done()
	}
}

// DispatchCron schedules fn under name.
func DispatchCron(cronStr string, name string, fn func()) (cron.EntryID, error) {
	if cronWorker == nil {
		return 0, ErrNoCron
	}
	var id cron.EntryID
	id, err := cronWorker.AddFunc(cronStr, func() {
		setScheduleStarted(id)
		defer setScheduleEnded(id)
		fn()
	})
	if err != nil {
		logger.LogDynamicany(logger.StatusError, "cron add failed", "name", name, "schedule", cronStr, "error", err)
		return 0, err
	}

	schedulesMu.Lock()
	schedules[id] = &Schedule{
		ID:             id,
		Name:           name,
		ScheduleString: cronStr,
		NextRun:        cronWorker.Entry(id).Next,
	}
	schedulesMu.Unlock()
	logger.LogDynamicany(logger.StatusInfo, "cron scheduled", "name", name, "schedule", cronStr)
	return id, nil
}

// RemoveCron unschedules a job.
func RemoveCron(id cron.EntryID) {
	if cronWorker != nil {
		cronWorker.Remove(id)
	}
	schedulesMu.Lock()
	delete(schedules, id)
	schedulesMu.Unlock()
}

// GetSchedules returns a copy of the registered jobs.
func GetSchedules() []Schedule {
	schedulesMu.RLock()
	defer schedulesMu.RUnlock()
	out := make([]Schedule, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, *s)
	}
	return out
}

func setScheduleStarted(id cron.EntryID) {
	schedulesMu.Lock()
	defer schedulesMu.Unlock()
	if s, ok := schedules[id]; ok {
		s.IsRunning = true
		s.LastRun = time.Now()
	}
}

func setScheduleEnded(id cron.EntryID) {
	schedulesMu.Lock()
	defer schedulesMu.Unlock()
	if s, ok := schedules[id]; ok {
		s.IsRunning = false
		if cronWorker != nil {
			s.NextRun = cronWorker.Entry(id).Next
		}
	}
}

// LogPoolStats writes the lookup pool counters to the log.
func LogPoolStats() {
	s := GetWorkerStats(lookupPool)
	logger.LogDynamicany(logger.StatusInfo, "lookup pool stats",
		"submitted", s.SubmittedTasks,
		"completed", s.CompletedTasks,
		"failed", s.FailedTasks,
		"waiting", s.WaitingTasks,
		"running", s.RunningWorkers)
}
