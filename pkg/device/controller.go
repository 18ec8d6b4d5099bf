package device

import (
	"fmt"

	fx "github.com/robotalks/irtrx.go/pkg/framework"
	"github.com/robotalks/irtrx.go/pkg/l1"
	env "github.com/robotalks/irtrx.go/pkg/l1/env/controller"
	"github.com/robotalks/irtrx.go/pkg/l1/msgs"
)

// Controller dispatches transceiver commands from the loop to Trx
// instances and publishes status events when state changes.
type Controller struct {
	Env       *env.Env
	Instances []Trx
	Links     []fx.LoopAdder

	statusChanged bool
}

// NewController creates a Controller over the given instances.
func NewController(e *env.Env, instances ...Trx) *Controller {
	return &Controller{
		Env:           e,
		Instances:     instances,
		statusChanged: true,
	}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.Add(c.Links...)
	loop.AddController(fx.PrLvControl, c)
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(c.notifyStatusChange))
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		switch m := cmdMsg.Command.Msg().(type) {
		case *msgs.TrxStatusQuery:
			mctx.MessageTaken()
			cmdMsg.Command.Done(&msgs.TrxStatusReply{Status: c.collectStatus()})
		case *msgs.TrxEnable:
			mctx.MessageTaken()
			cmdMsg.Command.Done(c.withInstance(m.Instance, func(t Trx) (fx.Message, error) {
				return msgs.NewCommandOK(), t.Enable(cc.Context())
			}))
		case *msgs.TrxDisable:
			mctx.MessageTaken()
			cmdMsg.Command.Done(c.withInstance(m.Instance, func(t Trx) (fx.Message, error) {
				return msgs.NewCommandOK(), t.Disable()
			}))
		case *msgs.TxSend:
			mctx.MessageTaken()
			cmdMsg.Command.Done(c.withInstance(m.Instance, func(t Trx) (fx.Message, error) {
				return msgs.NewCommandOK(), t.Send(m.Intervals)
			}))
		case *msgs.RxRead:
			mctx.MessageTaken()
			cmdMsg.Command.Done(c.withInstance(m.Instance, func(t Trx) (fx.Message, error) {
				cursor, intervals, err := t.RxSnapshot()
				if err != nil {
					return nil, err
				}
				return &msgs.RxData{
					Instance:  m.Instance,
					Cursor:    uint32(cursor),
					Intervals: intervals,
				}, nil
			}))
		case *msgs.RxReset:
			mctx.MessageTaken()
			cmdMsg.Command.Done(c.withInstance(m.Instance, func(t Trx) (fx.Message, error) {
				return msgs.NewCommandOK(), t.RxReset()
			}))
		}
	}))
	return nil
}

// withInstance runs op against one instance and converts the outcome to a
// reply message. Any state-touching command marks the status dirty.
func (c *Controller) withInstance(n int, op func(Trx) (fx.Message, error)) fx.Message {
	if n < 0 || n >= len(c.Instances) {
		return msgs.NewCommandErrFromMsg(fmt.Sprintf("no instance %d", n))
	}
	reply, err := op(c.Instances[n])
	if err != nil {
		return msgs.NewCommandErr(err)
	}
	c.statusChanged = true
	return reply
}

func (c *Controller) collectStatus() *msgs.TrxStatus {
	status := &msgs.TrxStatus{Instances: make([]msgs.InstanceStatus, 0, len(c.Instances))}
	for n, t := range c.Instances {
		is := msgs.InstanceStatus{Instance: n}
		is.Enabled, _ = t.Enabled()
		if v, err := t.TxCursor(); err == nil {
			is.TxCursor = uint32(v)
		}
		if v, err := t.TxLength(); err == nil {
			is.TxLength = uint32(v)
		}
		if v, err := t.RxCursor(); err == nil {
			is.RxCursor = uint32(v)
		}
		if v, err := t.RxCapacity(); err == nil {
			is.RxCapacity = uint32(v)
		}
		status.Instances = append(status.Instances, is)
	}
	return status
}

func (c *Controller) notifyStatusChange(cc fx.ControlContext) error {
	changed := c.statusChanged
	c.statusChanged = false
	if changed {
		return c.Env.Registrar.SendEvent(cc.Context(), c.collectStatus())
	}
	return nil
}
