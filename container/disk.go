package container

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	numTracks        = 164
	diskNameSize     = 17 // 16 bytes + null terminator
	diskReservedSize = 9
	diskHeaderSize   = diskNameSize + diskReservedSize + 1 + 1 + 4 // = 32
	trackTableSize   = numTracks * 4                               // 656
	diskFixedSize    = diskHeaderSize + trackTableSize             // 688
)

// Disk is one D88/D77 floppy image: a fixed header, a 164-entry track
// offset table, and the track regions themselves.
type Disk struct {
	Name         string
	WriteProtect byte
	DiskType     byte

	Tracks [numTracks]Track
}

func decodeName(raw []byte) string {
	n := bytes.IndexByte(raw, 0x00)
	if n < 0 {
		n = len(raw)
	}
	return string(raw[:n])
}

func encodeName(name string) []byte {
	buf := make([]byte, diskNameSize)
	n := copy(buf, name)
	_ = n // remaining bytes stay zero, including the terminator
	return buf
}

// parseDisk parses one disk starting at base and returns it along with the
// total number of bytes it consumed (its disk_size).
func parseDisk(data []byte, base int) (*Disk, int, error) {
	if base+diskFixedSize > len(data) {
		return nil, 0, errors.Wrap(ErrTruncated, "disk header")
	}
	header := data[base : base+diskHeaderSize]
	name := decodeName(header[:diskNameSize])
	writeProtect := header[diskNameSize+diskReservedSize]
	diskType := header[diskNameSize+diskReservedSize+1]
	diskSize := binary.LittleEndian.Uint32(header[diskNameSize+diskReservedSize+2:])

	tableRaw := data[base+diskHeaderSize : base+diskFixedSize]
	var offsets [numTracks]uint32
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(tableRaw[i*4 : i*4+4])
	}

	if base+int(diskSize) > len(data) {
		return nil, 0, errors.Wrap(ErrMalformedImage, "disk_size runs past end of blob")
	}
	blob := data[base : base+int(diskSize)]

	d := &Disk{Name: name, WriteProtect: writeProtect, DiskType: diskType}
	for i := 0; i < numTracks; i++ {
		off := offsets[i]
		if off == 0 {
			continue
		}
		end := diskSize
		for j := i + 1; j < numTracks; j++ {
			if offsets[j] != 0 {
				end = offsets[j]
				break
			}
		}
		if end < off {
			// Non-monotone offset table: not treated as an error; the rest
			// of the disk is taken as this track's region. Nothing is
			// reported to the caller.
			end = diskSize
		}
		if int(end) > len(blob) {
			return nil, 0, errors.Wrap(ErrTruncated, "track region runs past disk_size")
		}
		sectors, err := parseSectors(blob[off:end])
		if err != nil {
			return nil, 0, errors.Wrapf(err, "track #%d", i)
		}
		d.Tracks[i].Sectors = sectors
	}
	return d, int(diskSize), nil
}

// encode reconstructs the byte layout of the disk, recomputing the track
// offset table and the disk_size header field from the track contents.
func (d *Disk) encode() []byte {
	var body bytes.Buffer
	var offsets [numTracks]uint32
	for i := 0; i < numTracks; i++ {
		if len(d.Tracks[i].Sectors) == 0 {
			continue
		}
		offsets[i] = uint32(diskFixedSize + body.Len())
		body.Write(d.Tracks[i].encode())
	}
	diskSize := uint32(diskFixedSize) + uint32(body.Len())

	var out bytes.Buffer
	out.Write(encodeName(d.Name))
	out.Write(make([]byte, diskReservedSize))
	out.WriteByte(d.WriteProtect)
	out.WriteByte(d.DiskType)
	_ = binary.Write(&out, binary.LittleEndian, diskSize)
	for _, off := range offsets {
		_ = binary.Write(&out, binary.LittleEndian, off)
	}
	out.Write(body.Bytes())
	return out.Bytes()
}

// NewEmptyDisk builds a blank disk: 164 track slots, tracks 0..79 each
// holding 16 sectors of 256 bytes (N=1), tracks 80..163 left empty.
func NewEmptyDisk(name string) *Disk {
	d := &Disk{Name: name}
	for t := 0; t < 80; t++ {
		c := byte(t / HeadsPerCylinder)
		h := byte(t % HeadsPerCylinder)
		sectors := make([]Sector, SectorsPerTrack)
		for r := 0; r < SectorsPerTrack; r++ {
			sectors[r] = Sector{
				C:          c,
				H:          h,
				R:          byte(r + 1),
				N:          1,
				NumSectors: SectorsPerTrack,
				Density:    0,
				DataMark:   0,
				Status:     0,
				Data:       make([]byte, 256),
			}
		}
		d.Tracks[t].Sectors = sectors
	}
	return d
}

// ReadSector returns the first sector in the given physical track matching
// chr. When ignoreCH is true, only R is compared.
func (d *Disk) ReadSector(track int, chr CHR, ignoreCH bool) (*Sector, bool) {
	if track < 0 || track >= numTracks {
		return nil, false
	}
	sectors := d.Tracks[track].Sectors
	for i := range sectors {
		s := &sectors[i]
		if ignoreCH {
			if s.R == chr.R {
				return s, true
			}
		} else if s.C == chr.C && s.H == chr.H && s.R == chr.R {
			return s, true
		}
	}
	return nil, false
}

// ReadSectorIdx returns the sector at position idx (0-based, top of track)
// within the given physical track.
func (d *Disk) ReadSectorIdx(track, idx int) (*Sector, bool) {
	if track < 0 || track >= numTracks {
		return nil, false
	}
	sectors := d.Tracks[track].Sectors
	if idx < 0 || idx >= len(sectors) {
		return nil, false
	}
	return &sectors[idx], true
}

// ReadSectorLBA converts lba to (track, CHR) and reads by R only.
func (d *Disk) ReadSectorLBA(lba int) (*Sector, bool) {
	track, chr := LBAToCHR(lba)
	return d.ReadSector(track, chr, true)
}

// WriteSector overwrites the matching sector's payload and metadata,
// preserving NumSectors and the sector's position in the track. When no
// sector matches and createNew is true, a new sector is appended: the
// payload is rounded up to the next power of two, at least 128 bytes
// (zero padded), N is
// derived from that length, and NumSectors is re-established across every
// sector in the track.
func (d *Disk) WriteSector(track int, chr CHR, data []byte, density, dataMark, status byte, ignoreCH, createNew bool) error {
	if track < 0 || track >= numTracks {
		return errors.Errorf("container: track %d out of range", track)
	}
	if s, ok := d.ReadSector(track, chr, ignoreCH); ok {
		s.Data = append([]byte(nil), data...)
		s.Density = density
		s.DataMark = dataMark
		s.Status = status
		return nil
	}
	if !createNew {
		return errors.Errorf("container: sector %+v not found on track %d", chr, track)
	}

	padded, n := padToPowerOfTwo(data)
	newSector := Sector{
		C:        chr.C,
		H:        chr.H,
		R:        chr.R,
		N:        n,
		Density:  density,
		DataMark: dataMark,
		Status:   status,
		Data:     padded,
	}
	d.Tracks[track].Sectors = append(d.Tracks[track].Sectors, newSector)

	count := uint16(len(d.Tracks[track].Sectors))
	for i := range d.Tracks[track].Sectors {
		d.Tracks[track].Sectors[i].NumSectors = count
	}
	return nil
}

// WriteSectorLBA converts lba to (track, CHR) and writes by R only.
func (d *Disk) WriteSectorLBA(lba int, data []byte, density, dataMark, status byte, createNew bool) error {
	track, chr := LBAToCHR(lba)
	return d.WriteSector(track, chr, data, density, dataMark, status, true, createNew)
}

// WriteSectorIdx writes the sector at position idx within track, by index
// rather than address.
func (d *Disk) WriteSectorIdx(track, idx int, data []byte, density, dataMark, status byte) error {
	s, ok := d.ReadSectorIdx(track, idx)
	if !ok {
		return errors.Errorf("container: sector index %d not found on track %d", idx, track)
	}
	s.Data = append([]byte(nil), data...)
	s.Density = density
	s.DataMark = dataMark
	s.Status = status
	return nil
}

func padToPowerOfTwo(data []byte) ([]byte, byte) {
	size := 1
	for size < len(data) {
		size <<= 1
	}
	if size < 128 {
		size = 128
	}
	out := make([]byte, size)
	copy(out, data)

	n := 0
	for s := size; s > 128; s >>= 1 {
		n++
	}
	return out, byte(n)
}
