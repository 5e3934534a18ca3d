package fmfs

import "github.com/pkg/errors"

// Error kinds the FM file system distinguishes, per the core's error
// handling design: each is a sentinel so callers can match with errors.Is.
var (
	ErrNotFound      = errors.New("fmfs: file not found")
	ErrAlreadyExists = errors.New("fmfs: file already exists")
	ErrInvalidArgument = errors.New("fmfs: invalid argument")
	ErrCorruptFAT    = errors.New("fmfs: corrupt FAT chain")
	ErrDiskFull      = errors.New("fmfs: disk full")
	ErrDirectoryFull = errors.New("fmfs: directory full")
)
