package fmfs

import (
	"strings"

	"github.com/pkg/errors"

	"fmdisk/container"
)

// File-type values for DirEntry.FileType.
const (
	FileTypeBasicSource = 0
	FileTypeBasicData   = 1
	FileTypeMachineCode = 2
)

// Ascii/random-access flag values.
const (
	FlagBinary     = 0x00
	FlagASCII      = 0xFF
	FlagSequential = 0x00
	FlagRandom     = 0xFF
)

const (
	entriesPerSector  = 256 / 32 // 8
	directorySectors  = 28
	dirEntrySize      = 32
	deletedMarker     = 0x00
	neverUsedMarker   = 0xFF
)

var directoryCHR = container.CHR{C: 1, H: 0, R: 4}
var directoryStartLBA = container.CHRToLBA(1, 0, 4)

// DirEntry is one 32-byte directory record, plus the bookkeeping the file
// system derives from the FAT chain when listing it.
type DirEntry struct {
	Name             [8]byte
	FileType         byte
	AsciiFlag        byte
	RandomAccessFlag byte
	TopCluster       byte

	DirIdx     int
	NumSectors int

	// Raw is the entry's undecoded 32-byte slot, including the reserved
	// and unused bytes decodeDirEntry doesn't interpret. Kept for verbose
	// directory listings, where a deleted/invalid entry's raw bytes are
	// the only useful thing to show.
	Raw [32]byte
}

// NameString returns the directory name with trailing padding spaces
// trimmed.
func (e DirEntry) NameString() string {
	return strings.TrimRight(string(e.Name[:]), " ")
}

func decodeDirEntry(raw []byte, dirIdx int) DirEntry {
	var e DirEntry
	copy(e.Name[:], raw[0:8])
	// bytes 8:11 are reserved and not decoded.
	e.FileType = raw[11]
	e.AsciiFlag = raw[12]
	e.RandomAccessFlag = raw[13]
	e.TopCluster = raw[14]
	e.DirIdx = dirIdx
	copy(e.Raw[:], raw[:dirEntrySize])
	return e
}

// encodeInto writes only the fields the disk format defines (name and the
// four attribute bytes) into the 32-byte slot, leaving the reserved bytes
// at offsets 8..10 and the unused tail at 15..31 exactly as they were.
func (e DirEntry) encodeInto(slot []byte) {
	copy(slot[0:8], e.Name[:])
	slot[11] = e.FileType
	slot[12] = e.AsciiFlag
	slot[13] = e.RandomAccessFlag
	slot[14] = e.TopCluster
}

func directorySectorLBA(sectorOffset int) int {
	return directoryStartLBA + sectorOffset
}

func (fs *FileSystem) readDirectorySector(sectorOffset int) ([]byte, error) {
	s, ok := fs.disk.ReadSectorLBA(directorySectorLBA(sectorOffset))
	if !ok {
		return nil, errors.Errorf("fmfs: directory sector %d missing", sectorOffset)
	}
	return s.Data, nil
}

func (fs *FileSystem) writeDirectorySector(sectorOffset int, data []byte) error {
	return fs.disk.WriteSectorLBA(directorySectorLBA(sectorOffset), data, 0, 0, 0, false)
}

// AllEntries walks every directory slot (28 sectors, 8 entries each, 224
// max) and returns every raw entry along with its num_sectors as derived
// from tracing its FAT chain.
func (fs *FileSystem) AllEntries() ([]DirEntry, error) {
	var entries []DirEntry
	dirIdx := 0
	for sectOfst := 0; sectOfst < directorySectors; sectOfst++ {
		data, err := fs.readDirectorySector(sectOfst)
		if err != nil {
			return nil, err
		}
		for slot := 0; slot < entriesPerSector; slot++ {
			raw := data[slot*dirEntrySize : slot*dirEntrySize+dirEntrySize]
			e := decodeDirEntry(raw, dirIdx)
			if int(e.TopCluster) <= MaxClusterNum {
				chain, last, err := fs.TraceChain(int(e.TopCluster))
				if err == nil {
					e.NumSectors = (len(chain)-1)*SectorsPerCluster + last
				}
			}
			entries = append(entries, e)
			dirIdx++
		}
	}
	return entries, nil
}

// ValidEntries filters AllEntries down to the entries that pass the
// validity checks: a live name byte, an in-range file type and flag byte,
// and a cluster number within the FAT's range.
func (fs *FileSystem) ValidEntries() ([]DirEntry, error) {
	all, err := fs.AllEntries()
	if err != nil {
		return nil, err
	}
	var valid []DirEntry
	for _, e := range all {
		if e.Name[0] == deletedMarker || e.Name[0] == neverUsedMarker {
			continue
		}
		if e.FileType != FileTypeBasicSource && e.FileType != FileTypeBasicData && e.FileType != FileTypeMachineCode {
			continue
		}
		if e.AsciiFlag != FlagBinary && e.AsciiFlag != FlagASCII {
			continue
		}
		if e.RandomAccessFlag != FlagSequential && e.RandomAccessFlag != FlagRandom {
			continue
		}
		if e.TopCluster > MaxClusterNum {
			continue
		}
		valid = append(valid, e)
	}
	return valid, nil
}

// normalizeName right-pads a query name to 8 bytes with spaces.
func normalizeName(name string) [8]byte {
	var out [8]byte
	for i := range out {
		out[i] = ' '
	}
	copy(out[:], name)
	return out
}

// Lookup finds a valid entry by name: case-sensitive, space-trimmed on
// both sides.
func (fs *FileSystem) Lookup(name string) (DirEntry, bool, error) {
	target := strings.TrimRight(name, " ")
	entries, err := fs.ValidEntries()
	if err != nil {
		return DirEntry{}, false, err
	}
	for _, e := range entries {
		if e.NameString() == target {
			return e, true, nil
		}
	}
	return DirEntry{}, false, nil
}

// FindEmptySlot scans the directory in order and returns the global index
// of the first entry whose name byte is 0x00 or 0xFF, or -1.
func (fs *FileSystem) FindEmptySlot() (int, error) {
	dirIdx := 0
	for sectOfst := 0; sectOfst < directorySectors; sectOfst++ {
		data, err := fs.readDirectorySector(sectOfst)
		if err != nil {
			return -1, err
		}
		for slot := 0; slot < entriesPerSector; slot++ {
			if data[slot*dirEntrySize] == deletedMarker || data[slot*dirEntrySize] == neverUsedMarker {
				return dirIdx, nil
			}
			dirIdx++
		}
	}
	return -1, nil
}

func splitDirIdx(dirIdx int) (sectOfst, slot int) {
	return dirIdx / entriesPerSector, dirIdx % entriesPerSector
}

// CreateEntry writes a new 32-byte record into the first empty slot.
func (fs *FileSystem) CreateEntry(name string, fileType, asciiFlag, randomFlag, topCluster byte) error {
	dirIdx, err := fs.FindEmptySlot()
	if err != nil {
		return err
	}
	if dirIdx == -1 {
		return ErrDirectoryFull
	}
	sectOfst, slot := splitDirIdx(dirIdx)
	data, err := fs.readDirectorySector(sectOfst)
	if err != nil {
		return err
	}
	data = append([]byte(nil), data...)

	e := DirEntry{FileType: fileType, AsciiFlag: asciiFlag, RandomAccessFlag: randomFlag, TopCluster: topCluster}
	copy(e.Name[:], normalizeName(name)[:])
	e.encodeInto(data[slot*dirEntrySize : slot*dirEntrySize+dirEntrySize])

	return fs.writeDirectorySector(sectOfst, data)
}

// DeleteEntry marks the entry at dirIdx as deleted.
func (fs *FileSystem) DeleteEntry(dirIdx int) error {
	sectOfst, slot := splitDirIdx(dirIdx)
	data, err := fs.readDirectorySector(sectOfst)
	if err != nil {
		return err
	}
	data = append([]byte(nil), data...)
	data[slot*dirEntrySize] = deletedMarker
	return fs.writeDirectorySector(sectOfst, data)
}
