package gateway

import (
	"sort"
	"sync"
	"time"
)

// TaskScheduler runs fn once after delay. Scheduling an existing key replaces the earlier task.
type TaskScheduler interface {
	Schedule(key string, delay time.Duration, fn func())
	Cancel(key string) bool
}

type timerTask struct {
	timer *time.Timer
}

// TimerScheduler backs tasks with time.AfterFunc.
type TimerScheduler struct {
	mu    sync.Mutex
	tasks map[string]*timerTask
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{tasks: make(map[string]*timerTask)}
}

func (s *TimerScheduler) Schedule(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tasks[key]; ok {
		old.timer.Stop()
	}

	task := &timerTask{}
	task.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.tasks[key] == task {
			delete(s.tasks, key)
		}
		s.mu.Unlock()
		fn()
	})
	s.tasks[key] = task
}

func (s *TimerScheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[key]
	if !ok {
		return false
	}
	delete(s.tasks, key)
	return task.timer.Stop()
}

// Stop cancels every pending task.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, task := range s.tasks {
		task.timer.Stop()
		delete(s.tasks, key)
	}
}

type manualTask struct {
	key string
	due time.Duration
	seq int
	fn  func()
}

// ManualScheduler only runs tasks when Advance moves its clock past their due time.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks map[string]manualTask
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[string]manualTask)}
}

func (s *ManualScheduler) Schedule(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.tasks[key] = manualTask{key: key, due: s.now + delay, seq: s.seq, fn: fn}
}

func (s *ManualScheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[key]; !ok {
		return false
	}
	delete(s.tasks, key)
	return true
}

// Advance moves the clock forward and runs due tasks in due order. Tasks run outside the lock.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now += d
	var due []manualTask
	for key, task := range s.tasks {
		if task.due <= s.now {
			due = append(due, task)
			delete(s.tasks, key)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due == due[j].due {
			return due[i].seq < due[j].seq
		}
		return due[i].due < due[j].due
	})
	for _, task := range due {
		task.fn()
	}
	return len(due)
}

func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
