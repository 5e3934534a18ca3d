package fmfs_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"fmdisk/container"
	"fmdisk/fmfs"
)

func newFormattedDisk(t *testing.T) (*container.Disk, *fmfs.FileSystem) {
	t.Helper()
	disk := container.NewEmptyDisk("TESTDISK")
	fs := fmfs.New(disk)
	require.NoError(t, fs.Format())
	require.True(t, fs.CheckDiskID())
	return disk, fs
}

func TestWriteThreeClusterFileMatchesExpectedChain(t *testing.T) {
	_, fs := newFormattedDisk(t)

	payload := bytes.Repeat([]byte{0x42}, 5120) // 20 sectors of 256 bytes
	require.NoError(t, fs.WriteFile("TESTFILE", payload, fmfs.FileTypeBasicSource, fmfs.FlagBinary, fmfs.FlagSequential, false))

	entry, ok, err := fs.Lookup("TESTFILE")
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 0, entry.TopCluster)
	require.Equal(t, 0, entry.DirIdx)

	chain, last, err := fs.TraceChain(int(entry.TopCluster))
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, chain)
	require.Equal(t, 4, last) // 5120 bytes = 20 sectors = 2 full 8-sector clusters + 4 in the third

	fat, err := fs.ReadFAT()
	require.NoError(t, err)
	// The FAT byte for cluster k sits at sector offset 5+k.
	require.Equal(t, byte(0x01), fat[5])
	require.Equal(t, byte(0x02), fat[6])
	require.Equal(t, byte(0xC3), fat[7]) // 4 sectors used encodes 0xC0+4-1
}

func TestLastClusterUsingExactlyEightSectorsEncodesC7(t *testing.T) {
	_, fs := newFormattedDisk(t)

	payload := bytes.Repeat([]byte{0x55}, 8*256) // exactly one full cluster
	require.NoError(t, fs.WriteFile("FULLCLUS", payload, fmfs.FileTypeBasicSource, fmfs.FlagBinary, fmfs.FlagSequential, false))

	fat, err := fs.ReadFAT()
	require.NoError(t, err)
	require.Equal(t, byte(0xC7), fat[5]) // cluster 0's FAT byte: 8 sectors used, not 0xC0+8
}

func TestWriteThenReadRoundTripsPaddedPayload(t *testing.T) {
	_, fs := newFormattedDisk(t)

	payload := []byte("HELLO, WORLD")
	require.NoError(t, fs.WriteFile("GREET", payload, fmfs.FileTypeBasicSource, fmfs.FlagASCII, fmfs.FlagSequential, false))

	data, _, err := fs.ReadFile("GREET")
	require.NoError(t, err)
	require.Len(t, data, 256)
	require.Equal(t, payload, data[:len(payload)])
	for _, b := range data[len(payload):] {
		require.Equal(t, byte(0xFF), b)
	}
}

func TestWriteExistingWithoutOverwriteFails(t *testing.T) {
	_, fs := newFormattedDisk(t)
	require.NoError(t, fs.WriteFile("DUP", []byte("one"), fmfs.FileTypeBasicSource, fmfs.FlagASCII, fmfs.FlagSequential, false))
	err := fs.WriteFile("DUP", []byte("two"), fmfs.FileTypeBasicSource, fmfs.FlagASCII, fmfs.FlagSequential, false)
	require.ErrorIs(t, err, fmfs.ErrAlreadyExists)
}

func TestWriteExistingWithOverwriteReplaces(t *testing.T) {
	_, fs := newFormattedDisk(t)
	require.NoError(t, fs.WriteFile("DUP", []byte("one"), fmfs.FileTypeBasicSource, fmfs.FlagASCII, fmfs.FlagSequential, false))
	require.NoError(t, fs.WriteFile("DUP", []byte("two"), fmfs.FileTypeBasicSource, fmfs.FlagASCII, fmfs.FlagSequential, true))

	data, _, err := fs.ReadFile("DUP")
	require.NoError(t, err)
	require.Equal(t, byte('t'), data[0])
}

func TestDeleteMiddleFileLeavesSiblingsReadableAndFreesClusters(t *testing.T) {
	_, fs := newFormattedDisk(t)

	twentySectors := bytes.Repeat([]byte{0xAA}, 20*256)
	require.NoError(t, fs.WriteFile("FILEA", twentySectors, fmfs.FileTypeBasicSource, fmfs.FlagBinary, fmfs.FlagSequential, false))
	require.NoError(t, fs.WriteFile("FILEB", twentySectors, fmfs.FileTypeBasicSource, fmfs.FlagBinary, fmfs.FlagSequential, false))
	require.NoError(t, fs.WriteFile("FILEC", twentySectors, fmfs.FileTypeBasicSource, fmfs.FlagBinary, fmfs.FlagSequential, false))

	before, err := fs.FreeClusterCount()
	require.NoError(t, err)

	require.NoError(t, fs.DeleteFile("FILEB"))

	after, err := fs.FreeClusterCount()
	require.NoError(t, err)
	require.Equal(t, before+3, after)

	_, ok, err := fs.Lookup("FILEB")
	require.NoError(t, err)
	require.False(t, ok)

	for _, name := range []string{"FILEA", "FILEC"} {
		data, _, err := fs.ReadFile(name)
		require.NoError(t, err)
		require.Len(t, data, len(twentySectors))
	}
}

func TestDeleteThenFreeClusterCountReturnsToPreWriteValue(t *testing.T) {
	_, fs := newFormattedDisk(t)

	before, err := fs.FreeClusterCount()
	require.NoError(t, err)

	require.NoError(t, fs.WriteFile("TEMP", bytes.Repeat([]byte{1}, 1024), fmfs.FileTypeBasicSource, fmfs.FlagBinary, fmfs.FlagSequential, false))
	require.NoError(t, fs.DeleteFile("TEMP"))

	after, err := fs.FreeClusterCount()
	require.NoError(t, err)
	require.Equal(t, before, after)

	_, ok, err := fs.Lookup("TEMP")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLookupIgnoresTrailingSpacesOnBothSides(t *testing.T) {
	_, fs := newFormattedDisk(t)
	require.NoError(t, fs.WriteFile("AB", []byte("x"), fmfs.FileTypeBasicSource, fmfs.FlagASCII, fmfs.FlagSequential, false))

	_, ok, err := fs.Lookup("AB  ")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDirectoryEntryWithFreeMarkerIsOverwritable(t *testing.T) {
	_, fs := newFormattedDisk(t)
	require.NoError(t, fs.WriteFile("A", []byte("x"), fmfs.FileTypeBasicSource, fmfs.FlagASCII, fmfs.FlagSequential, false))
	require.NoError(t, fs.DeleteFile("A"))

	// Slot 0's name byte is now 0x00 (deleted); writing again must reuse it
	// rather than treat the directory as full.
	require.NoError(t, fs.WriteFile("B", []byte("y"), fmfs.FileTypeBasicSource, fmfs.FlagASCII, fmfs.FlagSequential, false))

	entry, ok, err := fs.Lookup("B")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, entry.DirIdx)
}

func TestWriteDiskFullReturnsErrDiskFull(t *testing.T) {
	_, fs := newFormattedDisk(t)

	// 152 clusters * 8 sectors * 256 bytes is the whole cluster area; one
	// byte over must exhaust it.
	huge := make([]byte, (fmfs.MaxClusterNum+1)*fmfs.SectorsPerCluster*256+1)
	err := fs.WriteFile("BIG", huge, fmfs.FileTypeBasicSource, fmfs.FlagBinary, fmfs.FlagSequential, false)
	require.ErrorIs(t, err, fmfs.ErrDiskFull)
}

func TestAttributeTagRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		fileType, asciiFlag, randomFlag byte
		tag                             string
	}{
		{fmfs.FileTypeBasicSource, fmfs.FlagBinary, fmfs.FlagSequential, "0BS"},
		{fmfs.FileTypeMachineCode, fmfs.FlagBinary, fmfs.FlagRandom, "2BR"},
		{fmfs.FileTypeBasicData, fmfs.FlagASCII, fmfs.FlagSequential, "1AS"},
	} {
		tag, err := fmfs.AttributesToTag(tc.fileType, tc.asciiFlag, tc.randomFlag)
		require.NoError(t, err)
		require.Equal(t, tc.tag, tag)

		fileType, asciiFlag, randomFlag, err := fmfs.TagToAttributes(tag)
		require.NoError(t, err)
		require.Equal(t, tc.fileType, fileType)
		require.Equal(t, tc.asciiFlag, asciiFlag)
		require.Equal(t, tc.randomFlag, randomFlag)
	}
}

func TestExtractContentsUnprotectedBasic(t *testing.T) {
	data := append([]byte{0xFF, 0x0A, 0x00}, []byte{0x81, 0x20}...)
	data = append(data, 0x00, 0x00, 0x00, 0x1A)
	c := fmfs.ExtractContents(data, fmfs.FileTypeBasicSource, fmfs.FlagBinary)
	require.Equal(t, fmfs.KindBasicUnprotected, c.Kind)
	require.EqualValues(t, 10, c.Unlist)
	require.Equal(t, []byte{0x81, 0x20}, c.Tokens)
}

func TestExtractContentsASCII(t *testing.T) {
	data := append([]byte("10 PRINT \"HI\""), 0x1A)
	c := fmfs.ExtractContents(data, fmfs.FileTypeBasicSource, fmfs.FlagASCII)
	require.Equal(t, fmfs.KindASCII, c.Kind)
	require.Equal(t, "10 PRINT \"HI\"", c.Text)
}

func TestExtractContentsMachineCode(t *testing.T) {
	code := []byte{0x01, 0x02, 0x03}
	data := []byte{0x00, 0x00, 0x03, 0x10, 0x00}
	data = append(data, code...)
	data = append(data, 0xFF, 0x00, 0x00, 0x20, 0x00, 0x1A)

	c := fmfs.ExtractContents(data, fmfs.FileTypeMachineCode, fmfs.FlagBinary)
	require.Equal(t, fmfs.KindMachineCode, c.Kind)
	require.Equal(t, code, c.Payload)
	require.EqualValues(t, 3, c.Length)
	require.EqualValues(t, 0x1000, c.LoadAddress)
	require.EqualValues(t, 0x2000, c.EntryAddress)
}

func TestExtractContentsAsciiFlagOverridesFileTypeForBasicData(t *testing.T) {
	data := append([]byte("10 DATA 1,2,3"), 0x1A)
	c := fmfs.ExtractContents(data, fmfs.FileTypeBasicData, fmfs.FlagASCII)
	require.Equal(t, fmfs.KindASCII, c.Kind)
	require.Equal(t, "10 DATA 1,2,3", c.Text)
}

func TestExtractContentsAsciiFlagOverridesFileTypeForMachineCode(t *testing.T) {
	data := append([]byte("MACHINE CODE AS TEXT"), 0x1A)
	c := fmfs.ExtractContents(data, fmfs.FileTypeMachineCode, fmfs.FlagASCII)
	require.Equal(t, fmfs.KindASCII, c.Kind)
	require.Equal(t, "MACHINE CODE AS TEXT", c.Text)
}
