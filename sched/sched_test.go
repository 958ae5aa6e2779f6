package sched

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func TestAfterRunsInDueOrder(t *testing.T) {
	s := NewVirtual(epoch, nil)
	var got []string

	s.After(300*time.Millisecond, "c", func() error { got = append(got, "c"); return nil })
	s.After(100*time.Millisecond, "a", func() error { got = append(got, "a"); return nil })
	s.After(100*time.Millisecond, "b", func() error { got = append(got, "b"); return nil })

	s.Advance(99 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("ran too early: %v", got)
	}

	s.Advance(time.Second)
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if !s.Now().Equal(epoch.Add(1099 * time.Millisecond)) {
		t.Errorf("now = %v", s.Now())
	}
}

func TestTaskSeesItsDueTime(t *testing.T) {
	s := NewVirtual(epoch, nil)
	var seen time.Time
	s.After(2*time.Second, "clock", func() error { seen = s.Now(); return nil })

	s.Advance(10 * time.Second)
	if !seen.Equal(epoch.Add(2 * time.Second)) {
		t.Errorf("task saw %v", seen)
	}
}

func TestNestedSchedulingWithinWindow(t *testing.T) {
	s := NewVirtual(epoch, nil)
	var got []string

	s.After(time.Second, "outer", func() error {
		got = append(got, "outer")
		s.After(time.Second, "inner", func() error {
			got = append(got, "inner")
			return nil
		})
		return nil
	})

	s.Advance(1500 * time.Millisecond)
	if want := []string{"outer"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
	s.Advance(500 * time.Millisecond)
	if want := []string{"outer", "inner"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v", got)
	}
}

func TestEveryAndCancel(t *testing.T) {
	s := NewVirtual(epoch, nil)
	ticks := 0
	h := s.Every(2*time.Second, "tick", func() error { ticks++; return nil })

	s.Advance(7 * time.Second)
	if ticks != 3 {
		t.Fatalf("ticks = %d, want 3", ticks)
	}

	h.Cancel()
	s.Advance(10 * time.Second)
	if ticks != 3 {
		t.Errorf("ticked after cancel: %d", ticks)
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d", s.Pending())
	}
}

func TestCancelFromInsideTask(t *testing.T) {
	s := NewVirtual(epoch, nil)
	ticks := 0
	var h *Handle
	h = s.Every(time.Second, "tick", func() error {
		ticks++
		if ticks == 2 {
			h.Cancel()
		}
		return nil
	})

	s.Advance(10 * time.Second)
	if ticks != 2 {
		t.Errorf("ticks = %d, want 2", ticks)
	}
}

func TestFailingAndPanickingTasksDoNotStopTheLoop(t *testing.T) {
	s := NewVirtual(epoch, nil)
	ran := false

	s.After(time.Second, "fails", func() error { return errors.New("boom") })
	s.After(time.Second, "panics", func() error { panic("boom") })
	s.After(time.Second, "after", func() error { ran = true; return nil })

	s.Advance(time.Second)
	if !ran {
		t.Error("task after a panic did not run")
	}
}

func TestRecurringTaskSurvivesPanic(t *testing.T) {
	s := NewVirtual(epoch, nil)
	ticks := 0
	s.Every(time.Second, "tick", func() error {
		ticks++
		panic("tick")
	})

	s.Advance(3 * time.Second)
	if ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}
}

func TestRunWithRealClock(t *testing.T) {
	s := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Run(ctx)
	}()

	done := make(chan struct{})
	s.After(10*time.Millisecond, "real", func() error { close(done); return nil })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}

	cancel()
	wg.Wait()
}

func TestDoIsSerialisedWithTasks(t *testing.T) {
	s := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Do(func() { counter++ })
		}()
		s.After(0, "inc", func() error {
			counter++
			wg.Done()
			return nil
		})
	}
	wg.Wait()

	var got int
	s.Do(func() { got = counter })
	if got != 100 {
		t.Errorf("counter = %d, want 100", got)
	}
}
