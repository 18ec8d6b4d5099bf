package framework

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Loop is a cooperative controlling loop: once per interval (or sooner
// when kicked by TriggerNext) it runs all registered controllers, level by
// level, against the messages collected since the previous iteration.
type Loop struct {
	Interval time.Duration

	controllers [PriorityLevels][]Controller
	runners     []Runnable

	pending msgQueue
	lock    sync.Mutex

	kick chan struct{}
}

// DefaultInterval is the iteration period used when none is set.
const DefaultInterval = 100 * time.Millisecond

// LoopAdder provides specific logic to add components to a loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

// NewLoop creates a Loop with the default interval.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, kick: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers at a priority level. Controllers
// that are also Runnable are started alongside the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.controllers[priorityLevel] = append(l.controllers[priorityLevel], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds background tasks started alongside the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable. The loop and all registered runners share ctx;
// Run returns when ctx is done and all runners stopped.
func (l *Loop) Run(ctx context.Context) error {
	if l.kick == nil {
		l.kick = make(chan struct{}, 1)
	}

	runner := NewRunnerWith(context.WithValue(ctx, loopCtxKey, &loopCtl{l}))
	runner.Go(l.runners...)
	defer runner.Wait()

	interval := l.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	timer := time.Tick(interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer:
			l.runIteration(ctx)
		case <-l.kick:
			l.runIteration(ctx)
		}
	}
}

// RunOrFail runs the loop from main, exiting on error.
func (l *Loop) RunOrFail() {
	if err := l.Run(context.TODO()); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.pending.push(&msgItem{msg: msg})
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.kick <- struct{}{}:
	default:
	}
}

func (l *Loop) runIteration(ctx context.Context) {
	iter := &iteration{loopCtl: loopCtl{l}, time: time.Now()}
	l.lock.Lock()
	iter.messages.take(&l.pending)
	l.lock.Unlock()
	iter.ctx = context.WithValue(ctx, loopCtxKey, iter)
	for level := 0; level < PriorityLevels; level++ {
		iter.priorityLevel = level
		for _, ctl := range l.controllers[level] {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller error: %v", err)
			}
		}
	}
}

var loopCtxKey = &Loop{}

// LoopCtlFrom gets the LoopControl stored in a loop-provided context.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

type loopCtl struct {
	*Loop
}

// iteration carries the per-iteration state handed to controllers.
type iteration struct {
	loopCtl
	ctx           context.Context
	time          time.Time
	priorityLevel int
	messages      msgQueue
}

func (t *iteration) Context() context.Context {
	return t.ctx
}

func (t *iteration) Time() time.Time {
	return t.time
}

func (t *iteration) PriorityLevel() int {
	return t.priorityLevel
}

func (t *iteration) Messages() MessageStore {
	return t
}

func (t *iteration) ProcessMessages(proc MessageProcessor) {
	var msgs, remains msgQueue
	msgs.take(&t.messages)
	for msgs.head != nil {
		mctx := &msgContext{iter: t, item: msgs.head}
		msgs.head = msgs.head.next
		mctx.item.next = nil
		proc.ProcessMessage(mctx)
		if !mctx.taken {
			remains.push(mctx.item)
		}
		if mctx.stop {
			remains.concat(&msgs)
		}
	}
	remains.concat(&t.messages)
	t.messages = remains
}

func (t *iteration) AddMessages(msgs ...Message) {
	for _, msg := range msgs {
		t.messages.push(&msgItem{msg: msg})
	}
}

// msgQueue is a spliceable singly-linked message queue.
type msgQueue struct {
	head *msgItem
	tail *msgItem
}

type msgItem struct {
	msg  Message
	next *msgItem
}

func (q *msgQueue) push(item *msgItem) {
	if q.head == nil {
		q.head = item
	} else {
		q.tail.next = item
	}
	q.tail = item
}

// take moves all items out of src.
func (q *msgQueue) take(src *msgQueue) {
	q.head, q.tail, src.head = src.head, src.tail, nil
}

func (q *msgQueue) concat(other *msgQueue) {
	if q.head == nil {
		q.head = other.head
	} else {
		q.tail.next = other.head
	}
	if other.head != nil {
		q.tail = other.tail
	}
}

type msgContext struct {
	iter  *iteration
	item  *msgItem
	taken bool
	stop  bool
}

func (c *msgContext) CurrentMessage() Message     { return c.item.msg }
func (c *msgContext) MessageTaken()               { c.taken = true }
func (c *msgContext) StopProcessing()             { c.stop = true }
func (c *msgContext) AddMessages(msgs ...Message) { c.iter.AddMessages(msgs...) }
