package comm

// Parser is the byte-at-a-time receive state machine.
type Parser struct {
	peerSeq PacketSeq
	state   parseState
	packet  *Packet
	recvLen int
	extLen  int
}

// SyncState indicates the state of the link.
type SyncState int

const (
	// SyncStateSyncing means the link is not synchronized.
	SyncStateSyncing SyncState = 0
	// SyncStateReady means the link is synchronized and idle.
	SyncStateReady SyncState = 0x01
	// SyncStateReceiving means a sync exchange or packet is in flight.
	SyncStateReceiving SyncState = 0x02
)

// IsReady indicates the link is ready for packets.
func (s SyncState) IsReady() bool {
	return s&SyncStateReady != 0
}

// IsReceiving indicates a sync or packet is being received.
func (s SyncState) IsReceiving() bool {
	return s&SyncStateReceiving != 0
}

// TimerAction defines what to do with the receive timer.
type TimerAction int

const (
	// TimerNoChange keeps the timer as-is.
	TimerNoChange TimerAction = iota
	// TimerRestart restarts the timer.
	TimerRestart
	// TimerStop cancels the timer.
	TimerStop
)

// ParseResult is the outcome of one parsing step.
type ParseResult struct {
	Sync   byte
	State  SyncState
	Packet *Packet
}

// WhatAboutTimer decides what to do with the receive timer.
func (r ParseResult) WhatAboutTimer() TimerAction {
	if r.State.IsReceiving() || r.Sync == syncREQ {
		return TimerRestart
	}
	if r.State.IsReady() {
		return TimerStop
	}
	return TimerNoChange
}

type parseState int

const (
	stateSyncAck     parseState = iota // sync req sent, waiting for syncACK
	stateSyncReqSeq                    // waiting for sync seq after syncREQ
	stateSyncAckSeq                    // waiting for sync seq after syncACK
	stateMsgSeq                        // waiting for message seq
	stateMsgAckSeq                     // recv ack in MsgSeq, validate seq
	stateMsgCode                       // waiting for message code
	stateMsgLen                        // waiting for 1-byte extended length
	stateMsgLenLow                     // waiting for low byte of 2-byte length
	stateMsgLenHigh                    // waiting for high byte of 2-byte length
	stateMsgData                       // waiting for message data
)

const (
	syncREQ byte = 0xff
	syncACK byte = 0xfe
)

// State gets the current sync state.
func (p *Parser) State() SyncState {
	if p.state == stateSyncAck {
		return SyncStateSyncing
	}
	if p.state == stateMsgSeq {
		return SyncStateReady
	}
	if p.state > stateMsgSeq {
		return SyncStateReady | SyncStateReceiving
	}
	return SyncStateSyncing | SyncStateReceiving
}

// Reset resets the internal state of the parser.
func (p *Parser) Reset() (pr ParseResult) {
	p.packet = nil
	pr.Sync, pr.Packet = p.resync()
	pr.State = p.State()
	return
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	pr.Sync, pr.Packet = p.parseByte(b)
	pr.State = p.State()
	return
}

// Timeout notifies the parser the receive timer expired.
func (p *Parser) Timeout() (pr ParseResult) {
	if p.state != stateMsgSeq {
		pr.Sync, pr.Packet = p.resync()
	}
	pr.State = p.State()
	return
}

func (p *Parser) parseByte(b byte) (syncCmd byte, pkt *Packet) {
	switch p.state {
	case stateSyncAck:
		switch b {
		case syncREQ:
			p.state = stateSyncReqSeq
		case syncACK:
			p.state = stateSyncAckSeq
		}
	case stateSyncReqSeq:
		if seq := PacketSeq(b); seq.IsValid() {
			p.peerSeq, p.state = seq, stateMsgSeq
			syncCmd = syncACK
			return
		}
		return p.resync()
	case stateSyncAckSeq:
		if seq := PacketSeq(b); seq.IsValid() {
			p.peerSeq, p.state = seq, stateMsgSeq
			return
		}
		return p.resync()
	case stateMsgSeq:
		if b == syncREQ {
			p.state = stateSyncReqSeq
			return
		}
		if b == syncACK {
			p.state = stateMsgAckSeq
			return
		}
		if b != byte(p.peerSeq) {
			return p.resync()
		}
		p.packet = &Packet{Seq: p.peerSeq}
		p.peerSeq = p.peerSeq.Next()
		p.state = stateMsgCode
	case stateMsgAckSeq:
		if b != byte(p.peerSeq) {
			return p.resync()
		}
		p.state = stateMsgSeq
	case stateMsgCode:
		p.packet.Code = b & 0x8f
		switch dataLen := (b >> 4) & 7; dataLen {
		case 0:
			return p.packetReady()
		case lenExt8:
			p.state = stateMsgLen
		case lenExt16:
			p.state = stateMsgLenLow
		default:
			p.startData(int(dataLen))
		}
	case stateMsgLen:
		if b >= 0x80 {
			return p.resync()
		}
		if b == 0 {
			return p.packetReady()
		}
		p.startData(int(b))
	case stateMsgLenLow:
		p.extLen = int(b)
		p.state = stateMsgLenHigh
	case stateMsgLenHigh:
		length := p.extLen | int(b)<<8
		if length == 0 {
			return p.packetReady()
		}
		if length > MaxDataLen {
			return p.resync()
		}
		p.startData(length)
	case stateMsgData:
		p.packet.Data[p.recvLen] = b
		p.recvLen++
		if p.recvLen >= len(p.packet.Data) {
			return p.packetReady()
		}
	}
	return
}

func (p *Parser) startData(length int) {
	p.packet.Data, p.recvLen = make([]byte, length), 0
	p.state = stateMsgData
}

func (p *Parser) resync() (byte, *Packet) {
	p.state = stateSyncAck
	return syncREQ, nil
}

func (p *Parser) packetReady() (syncCmd byte, pkt *Packet) {
	p.state = stateMsgSeq
	pkt, p.packet = p.packet, nil
	return
}
