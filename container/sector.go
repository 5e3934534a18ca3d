package container

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Density values for Sector.Density.
const (
	DensityDouble = 0x00
	DensitySingle = 0x40
)

// Data-mark values for Sector.DataMark.
const (
	DataMarkNormal  = 0x00
	DataMarkDeleted = 0x10
)

// sectorHeaderSize is the fixed 16-byte sector header.
const sectorHeaderSize = 16

// Sector is one physical sector: a 16-byte header plus its payload. The
// payload length is always len(Data); DataSize is never stored separately
// so there is nothing to keep in sync.
type Sector struct {
	C, H, R byte
	N       byte // size code; payload length = 128 * 2^N

	NumSectors uint16 // sector count of the containing track, replicated per sector
	Density    byte
	DataMark   byte
	Status     byte // CRC-style status, carried through verbatim

	Data []byte
}

// CHR returns the sector's own logical address.
func (s Sector) CHR() CHR {
	return CHR{C: s.C, H: s.H, R: s.R}
}

func parseSector(buf []byte) (Sector, int, error) {
	if len(buf) < sectorHeaderSize {
		return Sector{}, 0, errors.Wrap(ErrTruncated, "sector header")
	}
	s := Sector{
		C:          buf[0],
		H:          buf[1],
		R:          buf[2],
		N:          buf[3],
		NumSectors: binary.LittleEndian.Uint16(buf[4:6]),
		Density:    buf[6],
		DataMark:   buf[7],
		Status:     buf[8],
	}
	dataSize := int(binary.LittleEndian.Uint16(buf[14:16]))
	pos := sectorHeaderSize
	if pos+dataSize > len(buf) {
		return Sector{}, 0, errors.Wrap(ErrTruncated, "sector payload")
	}
	s.Data = append([]byte(nil), buf[pos:pos+dataSize]...)
	pos += dataSize
	return s, pos, nil
}

func (s Sector) encode() []byte {
	var buf bytes.Buffer
	buf.WriteByte(s.C)
	buf.WriteByte(s.H)
	buf.WriteByte(s.R)
	buf.WriteByte(s.N)
	_ = binary.Write(&buf, binary.LittleEndian, s.NumSectors)
	buf.WriteByte(s.Density)
	buf.WriteByte(s.DataMark)
	buf.WriteByte(s.Status)
	buf.Write(make([]byte, 5)) // reserved
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(s.Data)))
	buf.Write(s.Data)
	return buf.Bytes()
}
