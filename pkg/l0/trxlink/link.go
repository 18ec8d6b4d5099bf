// Package trxlink drives transceiver firmware attached over a serial
// link, exposing its instances through the same operation surface as
// locally attached ones.
package trxlink

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/golang/glog"
	slib "github.com/jacobsa/go-serial/serial"

	fx "github.com/robotalks/irtrx.go/pkg/framework"
	"github.com/robotalks/irtrx.go/pkg/l0/comm"
)

// Firmware operation codes. Commands use even codes so the low bit is
// free to flag an error in the reply.
const (
	opStatus  byte = 0x2
	opEnable  byte = 0x4
	opDisable byte = 0x6
	opTxSend  byte = 0x8
	opRxRead  byte = 0xa
	opRxReset byte = 0xc
)

// evStatus is pushed by the firmware when instance state changes.
const evStatus byte = 0x82

// ErrBadReply indicates a reply payload that does not match the
// operation.
var ErrBadReply = errors.New("malformed reply")

// DefaultTimeout bounds how long a command waits for its reply.
const DefaultTimeout = time.Second

// Link owns the serial channel to one firmware.
type Link struct {
	Timeout time.Duration

	client *comm.Client
	closer io.Closer
}

// Open opens the serial device and builds the link over it.
func Open(device string, baud uint) (*Link, error) {
	port, err := slib.Open(slib.OpenOptions{
		PortName:        device,
		BaudRate:        baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, err
	}
	l := New(port)
	l.closer = port
	return l, nil
}

// New builds the link over an existing byte channel.
func New(rw io.ReadWriter) *Link {
	return &Link{
		Timeout: DefaultTimeout,
		client:  comm.NewClient(comm.NewFIFO(rw)),
	}
}

// Client exposes the underlying protocol client.
func (l *Link) Client() *comm.Client {
	return l.client
}

// Trx returns the operation surface of one firmware instance.
func (l *Link) Trx(instance int) *SerialTrx {
	return &SerialTrx{link: l, instance: byte(instance)}
}

// AddToLoop implements LoopAdder.
func (l *Link) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(l)
}

// Run implements Runnable, draining link state and event notifications
// alongside the protocol client.
func (l *Link) Run(ctx context.Context) error {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		for {
			select {
			case <-subCtx.Done():
				return
			case state := <-l.client.StateChan():
				glog.V(1).Infof("link state: ready=%v", state.IsReady())
			case pkt := <-l.client.EventChan():
				if pkt.Code == evStatus {
					glog.V(2).Infof("firmware status event: % x", pkt.Data)
				}
			}
		}
	}()
	err := l.client.Run(ctx)
	if l.closer != nil {
		l.closer.Close()
	}
	return err
}

func (l *Link) do(ctx context.Context, code byte, data []byte) (comm.Result, error) {
	cmd := l.client.Do(&comm.Packet{Code: code, Data: data})
	timeout := l.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	select {
	case res := <-cmd.ResultChan():
		return res, res.Err
	case <-time.After(timeout):
		return comm.Result{}, context.DeadlineExceeded
	case <-ctx.Done():
		return comm.Result{}, ctx.Err()
	}
}

// SerialTrx implements the transceiver operation surface against one
// firmware instance.
type SerialTrx struct {
	link     *Link
	instance byte
}

// instanceStatus mirrors the opStatus reply payload.
type instanceStatus struct {
	enabled    bool
	txCursor   int
	txLength   int
	rxCursor   int
	rxCapacity int
}

func (t *SerialTrx) status(ctx context.Context) (st instanceStatus, err error) {
	res, err := t.link.do(ctx, opStatus, []byte{t.instance})
	if err != nil {
		return
	}
	if len(res.Data) < 9 {
		return st, ErrBadReply
	}
	st.enabled = res.Data[0] != 0
	st.txCursor = int(binary.LittleEndian.Uint16(res.Data[1:]))
	st.txLength = int(binary.LittleEndian.Uint16(res.Data[3:]))
	st.rxCursor = int(binary.LittleEndian.Uint16(res.Data[5:]))
	st.rxCapacity = int(binary.LittleEndian.Uint16(res.Data[7:]))
	return
}

// Enable implements Trx.
func (t *SerialTrx) Enable(ctx context.Context) error {
	_, err := t.link.do(ctx, opEnable, []byte{t.instance})
	return err
}

// Disable implements Trx.
func (t *SerialTrx) Disable() error {
	_, err := t.link.do(context.Background(), opDisable, []byte{t.instance})
	return err
}

// Enabled implements Trx.
func (t *SerialTrx) Enabled() (bool, error) {
	st, err := t.status(context.Background())
	return st.enabled, err
}

// Send implements Trx.
func (t *SerialTrx) Send(intervals []uint32) error {
	data := comm.PutIntervals([]byte{t.instance}, intervals)
	_, err := t.link.do(context.Background(), opTxSend, data)
	return err
}

// TxCursor implements Trx.
func (t *SerialTrx) TxCursor() (int, error) {
	st, err := t.status(context.Background())
	return st.txCursor, err
}

// TxLength implements Trx.
func (t *SerialTrx) TxLength() (int, error) {
	st, err := t.status(context.Background())
	return st.txLength, err
}

// RxCursor implements Trx.
func (t *SerialTrx) RxCursor() (int, error) {
	st, err := t.status(context.Background())
	return st.rxCursor, err
}

// RxCapacity implements Trx.
func (t *SerialTrx) RxCapacity() (int, error) {
	st, err := t.status(context.Background())
	return st.rxCapacity, err
}

// RxSnapshot implements Trx.
func (t *SerialTrx) RxSnapshot() (int, []uint32, error) {
	res, err := t.link.do(context.Background(), opRxRead, []byte{t.instance})
	if err != nil {
		return 0, nil, err
	}
	if len(res.Data) < 2 || (len(res.Data)-2)%4 != 0 {
		return 0, nil, ErrBadReply
	}
	cursor := int(binary.LittleEndian.Uint16(res.Data))
	pkt := comm.Packet{Data: res.Data}
	return cursor, pkt.Intervals(2), nil
}

// RxReset implements Trx.
func (t *SerialTrx) RxReset() error {
	_, err := t.link.do(context.Background(), opRxReset, []byte{t.instance})
	return err
}
