package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"fmdisk/fmfs"
)

var (
	writeFile   string
	writeSource string
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a host file into a disk image, using its extension as the attribute tag",
	RunE:  runWrite,
}

func init() {
	writeCmd.Flags().StringVar(&writeFile, "file", "", "path to the D88/D77 container (required)")
	writeCmd.Flags().StringVar(&writeSource, "source", "", "host file to write; its extension encodes the attributes, e.g. NAME.0BS (required)")
	_ = writeCmd.MarkFlagRequired("file")
	_ = writeCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(writeCmd)
}

func runWrite(cmd *cobra.Command, args []string) error {
	base := filepath.Base(writeSource)
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	name := strings.TrimSuffix(base, filepath.Ext(base))

	fileType, asciiFlag, randomFlag, err := fmfs.TagToAttributes(strings.ToUpper(ext))
	if err != nil {
		return errors.Wrapf(err, "source filename %q must end in a 3-character attribute tag", writeSource)
	}

	data, err := os.ReadFile(writeSource)
	if err != nil {
		return errors.Wrapf(err, "reading %s", writeSource)
	}

	c, err := loadContainer(writeFile)
	if err != nil {
		return err
	}
	disk, err := c.Disk(0)
	if err != nil {
		return err
	}

	fs := fmfs.New(disk)
	if err := fs.WriteFile(strings.ToUpper(name), data, fileType, asciiFlag, randomFlag, true); err != nil {
		return errors.Wrap(err, "writing file into image")
	}
	log.Info().Str("name", name).Int("bytes", len(data)).Msg("wrote file")

	return storeContainer(writeFile, c)
}
