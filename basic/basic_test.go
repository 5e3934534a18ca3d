package basic_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fmdisk/basic"
)

func decodeLine(t *testing.T, tokens []byte) string {
	t.Helper()
	line := append([]byte{0x12, 0x34}, 0x00, 0x0A) // link pointer (ignored, non-zero), line number (10)
	line = append(line, tokens...)
	text, err := basic.Decode(line, basic.PrimaryTable, basic.ExtendedTable, basic.DefaultCharset)
	require.NoError(t, err)
	return text
}

func TestDecodePrintStringLiteral(t *testing.T) {
	text := decodeLine(t, []byte{0x81, 0x20, 0x22, 0x48, 0x49, 0x22, 0x00})
	require.Equal(t, "10 PRINT \"HI\"\n", text)
}

func TestDecodeTwoByteIntegerLiteral(t *testing.T) {
	text := decodeLine(t, []byte{0x81, 0x20, 0xFE, 0x02, 0x01, 0x2C, 0x00})
	require.Equal(t, "10 PRINT 300\n", text)
}

func TestDecodeSinglePrecisionFloatLiteral(t *testing.T) {
	text := decodeLine(t, []byte{0x81, 0x20, 0xFE, 0x04, 0x81, 0x40, 0x00, 0x00, 0x00})
	require.Equal(t, "10 PRINT 1.5\n", text)
}

func TestDecodeIntegralFloatGetsSinglePrecisionSuffix(t *testing.T) {
	// exponent 2 (0x82), mantissa MSB set, mantissa bytes yield 0.5 -> 0.5*4=2.
	// The leading-space rule after a line number only applies to keyword and
	// plain-character tokens, not literals, so none is inserted here.
	text := decodeLine(t, []byte{0xFE, 0x04, 0x82, 0x00, 0x00, 0x00, 0x00})
	require.Equal(t, "102!\n", text)
}

func TestDecodeColonAfterLineNumberIsSuppressed(t *testing.T) {
	text := decodeLine(t, []byte{':', 0x81, 0x20, 0x22, 0x41, 0x22, 0x00})
	require.Equal(t, "10 PRINT \"A\"\n", text)
}

func TestDecodeDeferredColonFlushesBeforeNextToken(t *testing.T) {
	// PRINT "A" : PRINT "B"
	text := decodeLine(t, []byte{
		0x81, 0x20, 0x22, 0x41, 0x22, ':', 0x81, 0x20, 0x22, 0x42, 0x22, 0x00,
	})
	require.Equal(t, "10 PRINT \"A\":PRINT \"B\"\n", text)
}

func TestDecodeColonBeforeRemarkIsDropped(t *testing.T) {
	// PRINT "A" : REM comment - the deferred ':' is dropped because the
	// next keyword is REM, and REM itself gets no leading space since it
	// doesn't directly follow a line-number token.
	tokens := []byte{0x81, 0x20, 0x22, 0x41, 0x22, ':', 0x90}
	tokens = append(tokens, []byte(" comment")...)
	tokens = append(tokens, 0x00)
	text := decodeLine(t, tokens)
	require.Equal(t, "10 PRINT \"A\"REM comment\n", text)
}

func TestDecodeExtendedOpcodePrefix(t *testing.T) {
	text := decodeLine(t, []byte{0x81, 0x20, 0xFF, 0x0A, 0x00})
	require.Equal(t, "10 PRINT ABS\n", text)
}

func TestDecodeStopsAtEndOfProgramLinkPointer(t *testing.T) {
	text, err := basic.Decode([]byte{0x00, 0x00}, basic.PrimaryTable, basic.ExtendedTable, basic.DefaultCharset)
	require.NoError(t, err)
	require.Equal(t, "", text)
}

func TestDecodeFloatMatchesSpecWorkedExample(t *testing.T) {
	v := basic.DecodeFloat([]byte{0x81, 0x40, 0x00, 0x00})
	require.InDelta(t, 1.5, v, 1e-9)
}

func TestDecodeHalfWidthKatakanaByte(t *testing.T) {
	require.Equal(t, string(rune(0xFF71)), basic.DefaultCharset(0xB1))
}
