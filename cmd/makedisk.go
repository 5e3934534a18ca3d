package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"fmdisk/container"
	"fmdisk/fmfs"
)

var (
	makediskFile string
	makediskName string
)

var makediskCmd = &cobra.Command{
	Use:   "makedisk",
	Short: "Create a container holding one freshly formatted disk image",
	RunE:  runMakedisk,
}

func init() {
	makediskCmd.Flags().StringVar(&makediskFile, "file", "", "path to write the new container to (required)")
	makediskCmd.Flags().StringVar(&makediskName, "name", "", "disk name, stored in the container header")
	_ = makediskCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(makediskCmd)
}

func runMakedisk(cmd *cobra.Command, args []string) error {
	c := &container.Container{}
	disk := c.AppendEmptyDisk(makediskName)

	fs := fmfs.New(disk)
	if err := fs.Format(); err != nil {
		return errors.Wrap(err, "formatting new disk")
	}

	if err := storeContainer(makediskFile, c); err != nil {
		return err
	}
	log.Info().Str("file", makediskFile).Msg("created disk image")
	return nil
}
