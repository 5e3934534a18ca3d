// Package container implements the D88/D77 multi-disk container codec:
// parsing and reconstructing per-disk headers, per-track offset tables, and
// per-sector records, bit-exactly.
package container

import "github.com/pkg/errors"

// Container is an ordered sequence of Disks concatenated in a single blob.
// Disks are self-delimiting by their declared disk_size field.
type Container struct {
	Disks []*Disk
}

// Load parses a D88/D77 blob into a Container.
func Load(data []byte) (*Container, error) {
	c := &Container{}
	pos := 0
	for pos < len(data) {
		disk, size, err := parseDisk(data, pos)
		if err != nil {
			return nil, errors.Wrapf(err, "disk #%d at offset 0x%x", len(c.Disks), pos)
		}
		c.Disks = append(c.Disks, disk)
		pos += size
	}
	return c, nil
}

// Store reconstructs the container's byte layout: each disk's header is
// re-emitted with its track offset table recomputed from the track
// contents, followed by the concatenated sector regions.
func (c *Container) Store() []byte {
	var out []byte
	for _, d := range c.Disks {
		out = append(out, d.encode()...)
	}
	return out
}

// AppendEmptyDisk adds a freshly formatted, empty disk to the container.
func (c *Container) AppendEmptyDisk(name string) *Disk {
	d := NewEmptyDisk(name)
	c.Disks = append(c.Disks, d)
	return d
}

// ImageCount returns the number of disks held in the container.
func (c *Container) ImageCount() int {
	return len(c.Disks)
}

// Disk returns the n'th disk image, or an error if n is out of range.
func (c *Container) Disk(n int) (*Disk, error) {
	if n < 0 || n >= len(c.Disks) {
		return nil, errors.Errorf("container: image number %d out of range (have %d)", n, len(c.Disks))
	}
	return c.Disks[n], nil
}
