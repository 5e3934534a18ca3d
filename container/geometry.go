package container

// CHR is a sector's logical address: cylinder, head, record.
type CHR struct {
	C, H, R byte
}

// Geometry constants shared by the container and the FM file system that
// sits on top of it. 16 sectors per track, 2 heads per cylinder.
const (
	SectorsPerTrack  = 16
	HeadsPerCylinder = 2
)

// CHRToLBA converts a (C, H, R) address to a linear block address.
//
//	LBA = (C*2 + H) * 16 + R - 1
func CHRToLBA(c, h, r int) int {
	return (c*HeadsPerCylinder+h)*SectorsPerTrack + r - 1
}

// LBAToCHR converts a linear block address back to (C, H, R). The physical
// track number (0..163, the index used by the container's track table) is
// returned alongside for callers that need to pick a Track directly.
func LBAToCHR(lba int) (track int, chr CHR) {
	track = lba / SectorsPerTrack
	r := lba%SectorsPerTrack + 1
	return track, CHR{
		C: byte(track / HeadsPerCylinder),
		H: byte(track % HeadsPerCylinder),
		R: byte(r),
	}
}

// PhysicalTrack returns the container track-table index for a CHR address,
// i.e. C*2 + H.
func (chr CHR) PhysicalTrack() int {
	return int(chr.C)*HeadsPerCylinder + int(chr.H)
}

// SectorPayloadSize returns the payload length implied by a size code N:
// 128 * 2^N.
func SectorPayloadSize(n byte) int {
	return 128 << uint(n)
}
