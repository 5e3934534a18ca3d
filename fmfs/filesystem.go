// Package fmfs interprets a container.Disk as the FM BASIC file system:
// CHR/LBA/cluster arithmetic, FAT traversal, directory management, file
// I/O, and logical format. All operations go through the disk's sector
// read/write API - no caching of directory or FAT state beyond a single
// operation.
package fmfs

import (
	"github.com/pkg/errors"

	"fmdisk/container"
)

var (
	iplCHR    = container.CHR{C: 0, H: 0, R: 1}
	diskIDCHR = container.CHR{C: 0, H: 0, R: 3}
)

// FileSystem attaches FM BASIC file system semantics to a single disk.
type FileSystem struct {
	disk *container.Disk
}

// New attaches a file system view to disk.
func New(disk *container.Disk) *FileSystem {
	return &FileSystem{disk: disk}
}

// CheckDiskID reports whether the disk's ID sector starts with 'S', the
// marker logical format leaves behind.
func (fs *FileSystem) CheckDiskID() bool {
	s, ok := fs.disk.ReadSector(diskIDCHR.PhysicalTrack(), diskIDCHR, true)
	if !ok || len(s.Data) == 0 {
		return false
	}
	return s.Data[0] == 'S'
}

// Format writes the IPL, disk-ID, FAT, and empty-directory sectors that
// make a disk ready for use.
func (fs *FileSystem) Format() error {
	ipl := make([]byte, 256)
	ipl[0], ipl[1] = 0x20, 0xFE // BRA *
	if err := fs.disk.WriteSector(iplCHR.PhysicalTrack(), iplCHR, ipl, 0, 0, 0, true, false); err != nil {
		return errors.Wrap(err, "writing IPL sector")
	}

	id := make([]byte, 256)
	copy(id, "SYS")
	if err := fs.disk.WriteSector(diskIDCHR.PhysicalTrack(), diskIDCHR, id, 0, 0, 0, true, false); err != nil {
		return errors.Wrap(err, "writing disk ID sector")
	}

	var fat [256]byte
	fat[0] = 0x00
	for i := 1; i < 256; i++ {
		fat[i] = fatFree
	}
	if err := fs.writeFAT(fat); err != nil {
		return errors.Wrap(err, "writing FAT sector")
	}

	empty := make([]byte, 256)
	for i := range empty {
		empty[i] = 0xFF
	}
	for i := 0; i < directorySectors; i++ {
		if err := fs.writeDirectorySector(i, empty); err != nil {
			return errors.Wrapf(err, "clearing directory sector %d", i)
		}
	}
	return nil
}

func validateFileName(name string) bool {
	return len(name) >= 1 && len(name) <= 8
}

func validateFileAttributes(fileType, asciiFlag, randomFlag byte) bool {
	if fileType != FileTypeBasicSource && fileType != FileTypeBasicData && fileType != FileTypeMachineCode {
		return false
	}
	if asciiFlag != FlagBinary && asciiFlag != FlagASCII {
		return false
	}
	if randomFlag != FlagSequential && randomFlag != FlagRandom {
		return false
	}
	return true
}

// readClusterChain concatenates the payload of every sector in chain: 8
// sectors for every cluster but the last, lastSectors for the last one.
func (fs *FileSystem) readClusterChain(chain []int, lastSectors int) ([]byte, error) {
	var out []byte
	for i, cluster := range chain {
		count := SectorsPerCluster
		if i == len(chain)-1 {
			count = lastSectors
		}
		lba := ClusterToLBA(cluster)
		for s := 0; s < count; s++ {
			sector, ok := fs.disk.ReadSectorLBA(lba + s)
			if !ok {
				return nil, errors.Errorf("fmfs: cluster %d sector %d missing", cluster, s)
			}
			out = append(out, sector.Data...)
		}
	}
	return out, nil
}

// ReadFile reads a file's full payload and its directory entry by name.
func (fs *FileSystem) ReadFile(name string) ([]byte, DirEntry, error) {
	entry, ok, err := fs.Lookup(name)
	if err != nil {
		return nil, DirEntry{}, err
	}
	if !ok {
		return nil, DirEntry{}, ErrNotFound
	}
	return fs.readEntry(entry)
}

// ReadFileByIndex reads a file by its directory index rather than by name.
func (fs *FileSystem) ReadFileByIndex(dirIdx int) ([]byte, DirEntry, error) {
	entries, err := fs.ValidEntries()
	if err != nil {
		return nil, DirEntry{}, err
	}
	for _, e := range entries {
		if e.DirIdx == dirIdx {
			return fs.readEntry(e)
		}
	}
	return nil, DirEntry{}, ErrNotFound
}

func (fs *FileSystem) readEntry(entry DirEntry) ([]byte, DirEntry, error) {
	chain, last, err := fs.TraceChain(int(entry.TopCluster))
	if err != nil {
		return nil, entry, err
	}
	data, err := fs.readClusterChain(chain, last)
	if err != nil {
		return nil, entry, err
	}
	return data, entry, nil
}

// padTo256 right-pads data with 0xFF up to the next multiple of 256 bytes.
func padTo256(data []byte) []byte {
	rem := len(data) % 256
	if rem == 0 {
		out := make([]byte, len(data))
		copy(out, data)
		return out
	}
	pad := 256 - rem
	out := make([]byte, len(data)+pad)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = 0xFF
	}
	return out
}

// WriteFile writes data under name with the given attributes. If the file
// exists and overwrite is false, AlreadyExists is returned; otherwise the
// old file is deleted first. FAT updates are flushed to the in-memory FAT
// sector between cluster allocations so each FindEmptyCluster call sees
// prior allocations within the same write.
func (fs *FileSystem) WriteFile(name string, data []byte, fileType, asciiFlag, randomFlag byte, overwrite bool) error {
	if !validateFileName(name) {
		return errors.Wrap(ErrInvalidArgument, "file name must be 1..8 characters")
	}
	if !validateFileAttributes(fileType, asciiFlag, randomFlag) {
		return errors.Wrap(ErrInvalidArgument, "invalid file attribute byte")
	}

	_, exists, err := fs.Lookup(name)
	if err != nil {
		return err
	}
	if exists {
		if !overwrite {
			return ErrAlreadyExists
		}
		if err := fs.DeleteFile(name); err != nil {
			return err
		}
	}

	payload := padTo256(data)

	topCluster := -1
	prevCluster := -1

	for len(payload) > 0 {
		current, err := fs.FindEmptyCluster()
		if err != nil {
			return err
		}
		if current == -1 {
			return ErrDiskFull
		}
		if topCluster == -1 {
			topCluster = current
		}
		if prevCluster != -1 {
			if err := fs.linkCluster(prevCluster, current); err != nil {
				return err
			}
		}

		lba := ClusterToLBA(current)
		sectorsWritten := 0
		for sectorsWritten < SectorsPerCluster && len(payload) > 0 {
			chunk := payload[:256]
			payload = payload[256:]
			if err := fs.disk.WriteSectorLBA(lba+sectorsWritten, chunk, 0, 0, 0, true); err != nil {
				return errors.Wrap(err, "writing file sector")
			}
			sectorsWritten++
			term, err := clusterTerminator(sectorsWritten)
			if err != nil {
				return err
			}
			if err := fs.markCluster(current, term); err != nil {
				return err
			}
		}
		prevCluster = current
	}

	return fs.CreateEntry(name, fileType, asciiFlag, randomFlag, byte(topCluster))
}

func (fs *FileSystem) markCluster(cluster int, value byte) error {
	fat, err := fs.readFAT()
	if err != nil {
		return err
	}
	fat[fatBaseOffset+cluster] = value
	return fs.writeFAT(fat)
}

func (fs *FileSystem) linkCluster(from, to int) error {
	fat, err := fs.readFAT()
	if err != nil {
		return err
	}
	fat[fatBaseOffset+from] = byte(to)
	return fs.writeFAT(fat)
}

// DeleteFile removes the named file: its FAT chain is freed and its
// directory entry marked deleted.
func (fs *FileSystem) DeleteFile(name string) error {
	entry, ok, err := fs.Lookup(name)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	chain, _, err := fs.TraceChain(int(entry.TopCluster))
	if err != nil {
		return err
	}
	if err := fs.DeleteChain(chain); err != nil {
		return err
	}
	return fs.DeleteEntry(entry.DirIdx)
}

// Exists reports whether a valid directory entry exists for name.
func (fs *FileSystem) Exists(name string) (bool, error) {
	_, ok, err := fs.Lookup(name)
	return ok, err
}
