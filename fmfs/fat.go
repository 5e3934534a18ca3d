package fmfs

import (
	"github.com/pkg/errors"

	"fmdisk/container"
)

// fatAddress is the FAT's own address: CHR (1, 0, 1). The physical track
// here is C*2+H = 2, matching the directory's CHR (1, 0, 4), which the
// geometry formula places at LBA 35 - the two sectors share a track.
// Computing the FAT's LBA from that same formula yields 32, one lower than
// the "(LBA 33)" aside in the written spec; the CHR address (and the
// track/R addressing it implies) is what the file system actually reads
// and writes by, so that's what's implemented here. See DESIGN.md.
var fatAddress = container.CHR{C: 1, H: 0, R: 1}

const fatBaseOffset = 5 // FAT byte for cluster k lives at index 5+k

// FAT terminator bytes.
const (
	fatReserved = 0xFE
	fatFree     = 0xFF
	fatEmptyTail = 0xFD
	fatTermLow  = 0xC0
	fatTermHigh = 0xC7
)

// ReadFAT reads the 256-byte FAT sector.
func (fs *FileSystem) ReadFAT() ([256]byte, error) {
	return fs.readFAT()
}

// readFAT reads the 256-byte FAT sector.
func (fs *FileSystem) readFAT() ([256]byte, error) {
	var fat [256]byte
	sector, ok := fs.disk.ReadSector(fatAddress.PhysicalTrack(), fatAddress, true)
	if !ok {
		return fat, errors.Wrap(ErrCorruptFAT, "FAT sector missing")
	}
	copy(fat[:], sector.Data)
	return fat, nil
}

// writeFAT writes the 256-byte FAT sector back.
func (fs *FileSystem) writeFAT(fat [256]byte) error {
	return fs.disk.WriteSector(fatAddress.PhysicalTrack(), fatAddress, fat[:], 0, 0, 0, true, false)
}

// TraceChain walks the FAT starting at start, returning the ordered list of
// clusters visited and the number of sectors used in the last cluster.
// Cycle/corruption is bounded by MaxClusterNum+1 steps.
func (fs *FileSystem) TraceChain(start int) (chain []int, lastSectors int, err error) {
	fat, err := fs.readFAT()
	if err != nil {
		return nil, -1, err
	}
	return traceChain(fat, start)
}

func traceChain(fat [256]byte, start int) ([]int, int, error) {
	var chain []int
	cur := start
	for i := 0; i <= MaxClusterNum+1; i++ {
		chain = append(chain, cur)
		next := fat[fatBaseOffset+cur]
		switch {
		case next <= MaxClusterNum:
			cur = int(next)
		case next >= fatTermLow && next <= fatTermHigh:
			return chain, int(next&0x0F) + 1, nil
		case next == fatEmptyTail:
			return chain, 0, nil
		default: // fatReserved, fatFree, or any unused code (e.g. 0xC8..0xCF)
			return nil, -1, errors.Wrapf(ErrCorruptFAT, "cluster %d -> 0x%02X", cur, next)
		}
		if len(chain) > MaxClusterNum+1 {
			return nil, -1, errors.Wrap(ErrCorruptFAT, "chain exceeds maximum cluster count")
		}
	}
	return nil, -1, errors.Wrap(ErrCorruptFAT, "chain exceeds maximum cluster count")
}

// DeleteChain frees every cluster in chain by writing 0xFF to its FAT
// entry, flushing the FAT sector once afterward.
func (fs *FileSystem) DeleteChain(chain []int) error {
	fat, err := fs.readFAT()
	if err != nil {
		return err
	}
	for _, c := range chain {
		if c < 0 || c > MaxClusterNum {
			continue
		}
		fat[fatBaseOffset+c] = fatFree
	}
	return fs.writeFAT(fat)
}

// FindEmptyCluster returns the first free cluster (FAT byte 0xFF), or -1
// when the disk is full.
func (fs *FileSystem) FindEmptyCluster() (int, error) {
	fat, err := fs.readFAT()
	if err != nil {
		return -1, err
	}
	for c := 0; c <= MaxClusterNum; c++ {
		if fat[fatBaseOffset+c] == fatFree {
			return c, nil
		}
	}
	return -1, nil
}

// FreeClusterCount returns the number of free clusters.
func (fs *FileSystem) FreeClusterCount() (int, error) {
	fat, err := fs.readFAT()
	if err != nil {
		return 0, err
	}
	count := 0
	for c := 0; c <= MaxClusterNum; c++ {
		if fat[fatBaseOffset+c] == fatFree {
			count++
		}
	}
	return count, nil
}

func clusterTerminator(sectorsUsed int) (byte, error) {
	if sectorsUsed < 1 || sectorsUsed > SectorsPerCluster {
		return 0, errors.Errorf("fmfs: invalid sector count %d for cluster terminator", sectorsUsed)
	}
	return fatTermLow + byte(sectorsUsed-1), nil
}
