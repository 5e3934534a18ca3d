package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fmdisk/fmfs"
	"fmdisk/internal/debugfmt"
)

var (
	dirFile        string
	dirImageNumber int
	dirVerboseFlag bool
	dirOriginal    bool
)

var dirCmd = &cobra.Command{
	Use:   "dir",
	Short: "List the directory of a disk image",
	RunE:  runDir,
}

func init() {
	dirCmd.Flags().StringVar(&dirFile, "file", "", "path to the D88/D77 container (required)")
	dirCmd.Flags().IntVar(&dirImageNumber, "image_number", 0, "disk index within the container")
	dirCmd.Flags().BoolVar(&dirVerboseFlag, "verbose", false, "list every directory slot, including deleted/invalid ones")
	dirCmd.Flags().BoolVar(&dirOriginal, "original", false, "use the original tool's column layout")
	_ = dirCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(dirCmd)
}

func runDir(cmd *cobra.Command, args []string) error {
	c, err := loadContainer(dirFile)
	if err != nil {
		return err
	}
	disk, err := c.Disk(dirImageNumber)
	if err != nil {
		return err
	}

	fs := fmfs.New(disk)
	log.Debug().Str("file", dirFile).Int("image_number", dirImageNumber).Msg("loaded disk")

	var entries []fmfs.DirEntry
	if dirVerboseFlag {
		entries, err = fs.AllEntries()
	} else {
		entries, err = fs.ValidEntries()
	}
	if err != nil {
		return err
	}

	printDirectory(os.Stdout, entries, dirOriginal, dirVerboseFlag)
	return nil
}

// printDirectory renders entries in one of two column layouts. In verbose
// mode, each entry's raw 32-byte slot is hex-dumped underneath its row,
// since a deleted or invalid entry's decoded fields aren't meaningful but
// its raw bytes are.
func printDirectory(w *os.File, entries []fmfs.DirEntry, original, verbose bool) {
	if original {
		for _, e := range entries {
			fmt.Fprintf(w, "%-8s %d %02X %02X %3d %3d\n", e.NameString(), e.FileType, e.AsciiFlag, e.RandomAccessFlag, e.TopCluster, e.NumSectors)
			if verbose {
				_ = debugfmt.HexDump(w, e.Raw[:])
			}
		}
		return
	}

	fmt.Fprintf(w, "%-4s %-8s %-4s %-6s %-6s %5s %5s\n", "IDX", "NAME", "TYPE", "ASCII", "RANDOM", "TOP", "SECTS")
	for _, e := range entries {
		tag, err := fmfs.AttributesToTag(e.FileType, e.AsciiFlag, e.RandomAccessFlag)
		if err != nil {
			tag = "???"
		}
		fmt.Fprintf(w, "%-4d %-8s %-4s %-6v %-6v %5d %5d\n",
			e.DirIdx, e.NameString(), tag, e.AsciiFlag == fmfs.FlagASCII, e.RandomAccessFlag == fmfs.FlagRandom, e.TopCluster, e.NumSectors)
		if verbose {
			_ = debugfmt.HexDump(w, e.Raw[:])
		}
	}
}
