package state

import (
	"fmt"
	"time"
)

// Dispatch queues the function to run on the main loop goroutine without
// waiting for it to complete. Dispatches after shutdown are discarded.
func (e *Env) Dispatch(fun func(*State) error) {
	defer func() {
		if r := recover(); r != nil {
			e.Cancel(fmt.Errorf("panic: %v", r))
		}
	}()
	select {
	case e.DispatchChannel <- fun:
	case <-e.Context.Done():
	}
}

// ScheduleTask dispatches fun once after delay.
func (e *Env) ScheduleTask(fun func(*State) error, delay time.Duration) {
	go func() {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
			e.Dispatch(fun)
		case <-e.Context.Done():
		}
	}()
}

// RepeatTask dispatches fun immediately and then on every tick of delay,
// until the run context is cancelled.
func (e *Env) RepeatTask(fun func(*State) error, delay time.Duration) {
	go func() {
		t := time.NewTicker(delay)
		defer t.Stop()
		for {
			e.Dispatch(fun)
			select {
			case <-t.C:
			case <-e.Context.Done():
				return
			}
		}
	}()
}
