package sched

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Task 延迟执行的任务，返回的错误只记录日志
type Task func() error

// Handle 已排队任务的句柄
type Handle struct {
	name      string
	cancelled atomic.Bool
}

// Cancel 取消任务，周期任务不会再触发
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
}

// Cancelled 是否已取消
func (h *Handle) Cancelled() bool {
	return h.cancelled.Load()
}

// Name 任务名称
func (h *Handle) Name() string {
	return h.name
}

// Scheduler 单线程协作式调度器。
// 同一时刻只有一个任务（或 Do 中的函数）在运行，任务按 (到期时间, 入队顺序) 执行。
type Scheduler struct {
	run sync.Mutex // 单一逻辑线程

	mu      sync.Mutex // 保护下面的字段
	queue   taskQueue
	seq     uint64
	virtual bool
	now     time.Time

	wake chan struct{}
	log  *zap.SugaredLogger
}

// New 创建使用真实时钟的调度器，需要调用 Run 驱动
func New(log *zap.SugaredLogger) *Scheduler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scheduler{
		wake: make(chan struct{}, 1),
		log:  log,
	}
}

// NewVirtual 创建使用虚拟时钟的调度器，由 Advance 驱动
func NewVirtual(start time.Time, log *zap.SugaredLogger) *Scheduler {
	s := New(log)
	s.virtual = true
	s.now = start
	return s
}

// Now 调度器当前时间
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nowLocked()
}

func (s *Scheduler) nowLocked() time.Time {
	if s.virtual {
		return s.now
	}
	return time.Now()
}

// Do 在逻辑线程上同步执行 fn，不能在任务内部调用
func (s *Scheduler) Do(fn func()) {
	s.run.Lock()
	defer s.run.Unlock()
	fn()
}

// After 在 delay 之后执行一次 fn
func (s *Scheduler) After(delay time.Duration, name string, fn Task) *Handle {
	return s.push(delay, 0, name, fn)
}

// Every 每隔 interval 执行一次 fn，直到句柄被取消
func (s *Scheduler) Every(interval time.Duration, name string, fn Task) *Handle {
	if interval <= 0 {
		panic("sched: non-positive interval for " + name)
	}
	return s.push(interval, interval, name, fn)
}

func (s *Scheduler) push(delay, every time.Duration, name string, fn Task) *Handle {
	if delay < 0 {
		delay = 0
	}
	h := &Handle{name: name}

	s.mu.Lock()
	s.seq++
	heap.Push(&s.queue, &task{
		due:    s.nowLocked().Add(delay),
		seq:    s.seq,
		every:  every,
		fn:     fn,
		handle: h,
	})
	s.mu.Unlock()

	s.signal()
	return h
}

// Pending 尚未执行且未取消的任务数
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.queue {
		if !t.handle.Cancelled() {
			n++
		}
	}
	return n
}

// Advance 推进虚拟时钟并依次执行到期的任务
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.nowLocked().Add(d)
	s.mu.Unlock()

	s.runDue(target)

	s.mu.Lock()
	if s.virtual && target.After(s.now) {
		s.now = target
	}
	s.mu.Unlock()
}

// Run 在真实时钟下驱动任务，直到 ctx 结束
func (s *Scheduler) Run(ctx context.Context) {
	for {
		if !s.virtual {
			s.runDue(time.Now())
		}

		var timer *time.Timer
		var fire <-chan time.Time
		if next, ok := s.nextDue(); ok && !s.virtual {
			timer = time.NewTimer(time.Until(next))
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.wake:
		case <-fire:
		}

		if timer != nil {
			timer.Stop()
		}
	}
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) nextDue() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return time.Time{}, false
	}
	return s.queue[0].due, true
}

// runDue 执行所有到期时间不晚于 limit 的任务，包括执行过程中新加入的
func (s *Scheduler) runDue(limit time.Time) {
	for {
		t := s.popDue(limit)
		if t == nil {
			return
		}
		s.exec(t)
		s.reschedule(t)
	}
}

func (s *Scheduler) popDue(limit time.Time) *task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 || s.queue[0].due.After(limit) {
		return nil
	}
	t := heap.Pop(&s.queue).(*task)
	if s.virtual && t.due.After(s.now) {
		s.now = t.due
	}
	return t
}

func (s *Scheduler) exec(t *task) {
	s.run.Lock()
	defer s.run.Unlock()

	if t.handle.Cancelled() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("[%s] task panic recovered: %v", t.handle.name, r)
		}
	}()

	if err := t.fn(); err != nil {
		s.log.Warnf("[%s] task failed: %v", t.handle.name, err)
	}
}

func (s *Scheduler) reschedule(t *task) {
	if t.every <= 0 || t.handle.Cancelled() {
		return
	}

	s.mu.Lock()
	s.seq++
	t.due = t.due.Add(t.every)
	t.seq = s.seq
	heap.Push(&s.queue, t)
	s.mu.Unlock()
}

type task struct {
	due    time.Time
	seq    uint64
	every  time.Duration
	fn     Task
	handle *Handle
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*task)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
