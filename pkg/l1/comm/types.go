package comm

// PacketReader reads whole packets.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes whole packets.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads and writes whole packets.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}
