package cmd

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"fmdisk/basic"
	"fmdisk/fmfs"
	"fmdisk/internal/debugfmt"
	"fmdisk/internal/motorola"
)

var errUsage = errors.New("usage error")

var (
	readFile        string
	readImageNumber int
	readSource      string
	readIndex       int
	readDestination string
	readDecodeBasic bool
	readSrecord     bool
	readYAML        bool
	readJSON        bool
	readHex         bool
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Extract a file from a disk image",
	RunE:  runRead,
}

func init() {
	readCmd.Flags().StringVar(&readFile, "file", "", "path to the D88/D77 container (required)")
	readCmd.Flags().IntVar(&readImageNumber, "image_number", 0, "disk index within the container")
	readCmd.Flags().StringVar(&readSource, "source", "", "in-image file name")
	readCmd.Flags().IntVar(&readIndex, "index", -1, "directory slot index, as an alternative to --source")
	readCmd.Flags().StringVar(&readDestination, "destination", "", "host path to write (required)")
	readCmd.Flags().BoolVar(&readDecodeBasic, "decode_basic", false, "decode a tokenized BASIC source file to text")
	readCmd.Flags().BoolVar(&readSrecord, "srecord", false, "render a machine-code file as Motorola S-records")
	readCmd.Flags().BoolVar(&readYAML, "yaml", false, "dump the raw payload as YAML")
	readCmd.Flags().BoolVar(&readJSON, "json", false, "dump the raw payload as JSON")
	readCmd.Flags().BoolVar(&readHex, "hex", false, "use space-separated hex instead of base64 in --yaml/--json output")
	_ = readCmd.MarkFlagRequired("file")
	_ = readCmd.MarkFlagRequired("destination")
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	if readSource == "" && readIndex < 0 {
		return errors.Wrap(errUsage, "one of --source or --index is required")
	}
	exclusive := 0
	for _, v := range []bool{readSrecord, readYAML, readJSON} {
		if v {
			exclusive++
		}
	}
	if exclusive > 1 {
		return errors.Wrap(errUsage, "at most one of --srecord, --yaml, --json may be set")
	}

	c, err := loadContainer(readFile)
	if err != nil {
		return err
	}
	disk, err := c.Disk(readImageNumber)
	if err != nil {
		return err
	}
	fs := fmfs.New(disk)

	var (
		data  []byte
		entry fmfs.DirEntry
	)
	if readSource != "" {
		data, entry, err = fs.ReadFile(strings.ToUpper(readSource))
	} else {
		data, entry, err = fs.ReadFileByIndex(readIndex)
	}
	if err != nil {
		return errors.Wrap(err, "reading file from image")
	}

	out, ext, err := renderOutput(data, entry)
	if err != nil {
		return err
	}

	dest := readDestination
	if !strings.Contains(dest, ".") {
		dest = dest + "." + ext
	}
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", dest)
	}
	log.Info().Str("name", entry.NameString()).Str("destination", dest).Msg("extracted file")
	return nil
}

// renderOutput picks the emitted form per the requested flags and returns
// the bytes to write plus the extension that reflects them.
func renderOutput(data []byte, entry fmfs.DirEntry) ([]byte, string, error) {
	switch {
	case readYAML:
		out, err := debugfmt.MarshalFileYAML(entry.NameString(), entry.FileType, data, readHex)
		if err != nil {
			return nil, "", errors.Wrap(err, "marshalling payload YAML")
		}
		return out, "yaml", nil

	case readJSON:
		out, err := debugfmt.MarshalFileJSON(entry.NameString(), entry.FileType, data, readHex)
		if err != nil {
			return nil, "", errors.Wrap(err, "marshalling payload JSON")
		}
		return out, "json", nil

	case readDecodeBasic:
		content := fmfs.ExtractContents(data, entry.FileType, entry.AsciiFlag)
		if content.Kind != fmfs.KindBasicUnprotected && content.Kind != fmfs.KindBasicProtected {
			return nil, "", errors.Errorf("read: %s is not a tokenized BASIC source file", entry.NameString())
		}
		text, err := basic.Decode(content.Tokens, basic.PrimaryTable, basic.ExtendedTable, basic.DefaultCharset)
		if err != nil {
			return nil, "", errors.Wrap(err, "decoding tokenized BASIC")
		}
		return []byte(text), "txt", nil

	case readSrecord:
		content := fmfs.ExtractContents(data, entry.FileType, entry.AsciiFlag)
		if content.Kind != fmfs.KindMachineCode {
			return nil, "", errors.Errorf("read: %s is not a machine-code file", entry.NameString())
		}
		out := motorola.Encode(nil, content.Payload, uint32(content.LoadAddress), uint32(content.EntryAddress), 32)
		return []byte(out), "mot", nil

	default:
		tag, err := fmfs.AttributesToTag(entry.FileType, entry.AsciiFlag, entry.RandomAccessFlag)
		if err != nil {
			tag = "bin"
		}
		return data, tag, nil
	}
}
