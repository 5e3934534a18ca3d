// Package cmd implements the fmdisk command-line drivers: dir, read,
// write, and makedisk. Each wraps the container/fmfs/basic core packages
// and is itself considered an external collaborator of that core.
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var verbose bool

var log zerolog.Logger

var rootCmd = &cobra.Command{
	Use:   "fmdisk",
	Short: "fmdisk - read, write, and inspect D88/D77 FM-BASIC disk images",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "debug", "d", false, "enable debug logging")
	cobra.OnInitialize(initLogger)
}

func initLogger() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
}
