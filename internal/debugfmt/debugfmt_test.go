package debugfmt_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"fmdisk/container"
	"fmdisk/internal/debugfmt"
)

func sampleDisk() *container.Disk {
	c := &container.Container{}
	d := c.AppendEmptyDisk("DBGTEST")
	_ = d.WriteSector(0, container.CHR{C: 0, H: 0, R: 1}, []byte("hello world"), 0, 0, 0, true, false)
	return d
}

func TestYAMLRoundTripIsLossless(t *testing.T) {
	d := sampleDisk()
	out, err := debugfmt.MarshalYAML(d, false)
	require.NoError(t, err)

	reloaded, err := debugfmt.UnmarshalYAML(out)
	require.NoError(t, err)
	require.Equal(t, d.Name, reloaded.Name)

	s1, ok := d.ReadSector(0, container.CHR{R: 1}, true)
	require.True(t, ok)
	s2, ok := reloaded.ReadSector(0, container.CHR{R: 1}, true)
	require.True(t, ok)
	require.Equal(t, s1.Data, s2.Data)
}

func TestJSONRoundTripIsLossless(t *testing.T) {
	d := sampleDisk()
	out, err := debugfmt.MarshalJSON(d, false)
	require.NoError(t, err)

	reloaded, err := debugfmt.UnmarshalJSON(out)
	require.NoError(t, err)

	s1, ok := d.ReadSector(0, container.CHR{R: 1}, true)
	require.True(t, ok)
	s2, ok := reloaded.ReadSector(0, container.CHR{R: 1}, true)
	require.True(t, ok)
	require.Equal(t, s1.Data, s2.Data)
}

func TestHexModeRoundTrip(t *testing.T) {
	d := sampleDisk()
	out, err := debugfmt.MarshalYAML(d, true)
	require.NoError(t, err)
	require.Contains(t, string(out), "data_hex")

	reloaded, err := debugfmt.UnmarshalYAML(out)
	require.NoError(t, err)
	s1, ok := d.ReadSector(0, container.CHR{R: 1}, true)
	require.True(t, ok)
	s2, ok := reloaded.ReadSector(0, container.CHR{R: 1}, true)
	require.True(t, ok)
	require.Equal(t, s1.Data, s2.Data)
}

func TestFileYAMLRoundTripIsLossless(t *testing.T) {
	payload := []byte("10 PRINT \"HI\"\n")
	out, err := debugfmt.MarshalFileYAML("PROGRAM", 0, payload, false)
	require.NoError(t, err)

	doc, data, err := debugfmt.UnmarshalFileYAML(out)
	require.NoError(t, err)
	require.Equal(t, "PROGRAM", doc.Name)
	require.Equal(t, payload, data)
}

func TestFileJSONHexModeRoundTrip(t *testing.T) {
	payload := []byte{0x00, 0x01, 0xFE, 0xFF}
	out, err := debugfmt.MarshalFileJSON("BIN", 2, payload, true)
	require.NoError(t, err)
	require.Contains(t, string(out), "data_hex")

	doc, data, err := debugfmt.UnmarshalFileJSON(out)
	require.NoError(t, err)
	require.EqualValues(t, 2, doc.FileType)
	require.Equal(t, payload, data)
}

func TestHexDumpFormatsSixteenBytesPerLine(t *testing.T) {
	data := []byte("Hello, World! This is a test.")
	var buf bytes.Buffer
	require.NoError(t, debugfmt.HexDump(&buf, data))

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	require.Len(t, lines, 2)
	require.Contains(t, buf.String(), "48 65 6C 6C 6F")
	require.Contains(t, buf.String(), "Hello")
}
