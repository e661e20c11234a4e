package flow

import (
	"log"
	"sync/atomic"
)

// droppedHook is the process-wide handler for errors that have no legal
// delivery target: a signal arriving after the subscription terminated, or a
// lazy cleanup failure after the terminal signal was already sent.
var droppedHook atomic.Pointer[func(error)]

func init() {
	fn := defaultDroppedHandler
	droppedHook.Store(&fn)
}

func defaultDroppedHandler(err error) {
	log.Printf("gopush/flow: dropped error: %v", err)
}

// OnDroppedError replaces the process-wide handler invoked by DropError.
// Passing nil restores the default handler, which logs the error.
func OnDroppedError(fn func(error)) {
	if fn == nil {
		fn = defaultDroppedHandler
	}
	droppedHook.Store(&fn)
}

// DropError reports an undeliverable error to the process-wide handler.
// A nil error is ignored.
func DropError(err error) {
	if err == nil {
		return
	}
	(*droppedHook.Load())(err)
}
