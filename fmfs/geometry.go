package fmfs

import "fmdisk/container"

// Disk geometry constants for the FM file system layer. These sit on top
// of the container's own sectors-per-track/heads-per-cylinder geometry.
const (
	SectorsPerCluster = 8
	MaxClusterNum     = 151  // clusters 0..151
	clusterBaseTrack  = 4    // clusters begin at physical track 4
	clusterBaseLBA    = container.SectorsPerTrack * clusterBaseTrack // 64
)

// CHRToLBA reuses the container's geometry formula; the FM file system
// never redefines it, it only adds cluster arithmetic on top.
func CHRToLBA(c, h, r int) int { return container.CHRToLBA(c, h, r) }

// ClusterToLBA converts a cluster number to its first LBA.
func ClusterToLBA(cluster int) int {
	return clusterBaseLBA + cluster*SectorsPerCluster
}

// LBAToCluster converts an LBA to a cluster number, or -1 if the LBA lies
// before the cluster area (track 4).
func LBAToCluster(lba int) int {
	if lba < clusterBaseLBA {
		return -1
	}
	return (lba - clusterBaseLBA) / SectorsPerCluster
}

// CHRToCluster converts a CHR address to a cluster number, or -1 if it
// lies before the cluster area (cylinder < 2). Addresses past cluster
// MaxClusterNum are not range-checked.
func CHRToCluster(c, h, r int) int {
	if c < 2 {
		return -1
	}
	return LBAToCluster(CHRToLBA(c, h, r))
}
