package motorola_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fmdisk/internal/motorola"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	text := motorola.Encode([]byte("HDR"), data, 0x1000, 0x2000, 16)

	decoded, base, entry, header, err := motorola.Decode(text, true)
	require.NoError(t, err)
	require.Equal(t, data, decoded)
	require.EqualValues(t, 0x1000, base)
	require.EqualValues(t, 0x2000, entry)
	require.Equal(t, []byte("HDR"), header)
}

func TestDecodeDetectsChecksumMismatch(t *testing.T) {
	text := motorola.Encode(nil, []byte{0xAA}, 0, 0, 16)
	corrupted := text[:len(text)-3] + "00\n"

	_, _, _, _, err := motorola.Decode(corrupted, true)
	require.Error(t, err)

	var lineErr *motorola.LineError
	require.ErrorAs(t, err, &lineErr)
	require.Equal(t, 2, lineErr.Line)
}

func TestDecodeIgnoresChecksumWhenDisabled(t *testing.T) {
	text := motorola.Encode(nil, []byte{0xAA}, 0, 0, 16)
	corrupted := text[:len(text)-3] + "00\n"

	data, _, _, _, err := motorola.Decode(corrupted, false)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA}, data)
}
