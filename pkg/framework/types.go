package framework

import (
	"context"
	"time"
)

// Runnable is a long-running background task driven by a context.
type Runnable interface {
	Run(context.Context) error
}

// Message is the unit of work dispatched through a controlling loop.
type Message interface {
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
}

// Controller holds the logic executed on every loop iteration.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// ControlContext is the view a Controller gets of the current iteration.
type ControlContext interface {
	// Context retrieves the context.Context the loop runs under.
	Context() context.Context
	// Time is the wall time sampled when this iteration started.
	Time() time.Time
	// PriorityLevel gets the level currently being executed.
	PriorityLevel() int
	// Messages retrieves the messages collected for this iteration.
	Messages() MessageStore

	LoopControl
}

// PriorityLevels is the total number of priority levels.
const PriorityLevels int = 8

// Predefined priority levels. Lower runs earlier within an iteration.
const (
	PrLvTop      int = 0
	PrLvControl  int = 2
	PrLvPostProc int = PriorityLevels - 2
	PrLvIdle     int = PriorityLevels - 1
)

// LoopControl exposes loop operations safe to call from any goroutine.
type LoopControl interface {
	// PostMessage enqueues a message for the next iteration.
	PostMessage(Message)
	// TriggerNext schedules the next iteration to run immediately
	// instead of waiting for the interval timer.
	TriggerNext()
}

// MessageStore provides access to the messages of one iteration.
type MessageStore interface {
	// ProcessMessages runs a processor over all pending messages.
	ProcessMessages(MessageProcessor)
	// AddMessages appends messages for the next processing cycle.
	AddMessages(msgs ...Message)
}

// MessageProcessor is used by MessageStore to examine messages.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext provides context for the message under
// examination.
type MessageProcessingContext interface {
	// CurrentMessage gets the message being processed.
	CurrentMessage() Message
	// MessageTaken marks the message consumed, removing it from the
	// store.
	MessageTaken()
	// StopProcessing leaves the remaining messages for the next cycle.
	StopProcessing()
	// AddMessages appends messages for the next processing cycle.
	AddMessages(msgs ...Message)
}
