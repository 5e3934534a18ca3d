package basic

// PrimaryTable maps a single tokenized opcode byte to its keyword. 0x00 is
// reserved as the line terminator, 0xFE introduces a numeric literal, and
// 0xFF introduces an ExtendedTable lookup; none of the three appear here.
var PrimaryTable = map[byte]string{
	0x80: "GOTO",
	0x81: "PRINT",
	0x82: "INPUT",
	0x83: "LET",
	0x84: "IF",
	0x85: "THEN",
	0x86: "ELSE",
	0x87: "FOR",
	0x88: "TO",
	0x89: "STEP",
	0x8A: "NEXT",
	0x8B: "GOSUB",
	0x8C: "RETURN",
	0x8D: "END",
	0x8E: "STOP",
	0x8F: "DIM",
	0x90: "REM",
	0x91: "'",
	0x92: "DATA",
	0x93: "READ",
	0x94: "RESTORE",
	0x95: "ON",
	0x96: "CLS",
	0x97: "POKE",
	0x98: "OPEN",
	0x99: "CLOSE",
	0x9A: "AND",
	0x9B: "OR",
	0x9C: "NOT",
	0x9D: "XOR",
	0x9E: "LOCATE",
	0x9F: "COLOR",
	0xA0: "LIST",
	0xA1: "RUN",
	0xA2: "NEW",
	0xA3: "LOAD",
	0xA4: "SAVE",
	0xA5: "CONT",
	0xA6: "WIDTH",
	0xA7: "SWAP",
	0xA8: "ERASE",
	0xA9: "DEF",
	0xAA: "FN",
	0xAB: "TRON",
	0xAC: "TROFF",
	0xAD: "LINE",
	0xAE: "CIRCLE",
	0xAF: "PAINT",
	0xB0: "SOUND",
	0xB1: "PLAY",
	0xB2: "OUT",
	0xB3: "WAIT",
	0xB4: "KILL",
	0xB5: "FILES",
	0xB6: "NAME",
	0xB7: "FIELD",
	0xB8: "GET",
	0xB9: "PUT",
	0xBA: "LSET",
	0xBB: "RSET",
	0xBC: "BEEP",
	0xBD: "CHAIN",
	0xBE: "COMMON",
	0xBF: "RANDOMIZE",
}

// ExtendedTable maps the byte following a 0xFF prefix to its keyword.
var ExtendedTable = map[byte]string{
	0x01: "LEN",
	0x02: "VAL",
	0x03: "STR$",
	0x04: "CHR$",
	0x05: "ASC",
	0x06: "MID$",
	0x07: "LEFT$",
	0x08: "RIGHT$",
	0x09: "INSTR",
	0x0A: "ABS",
	0x0B: "SGN",
	0x0C: "INT",
	0x0D: "SQR",
	0x0E: "RND",
	0x0F: "SIN",
	0x10: "COS",
	0x11: "TAN",
	0x12: "ATN",
	0x13: "EXP",
	0x14: "LOG",
	0x15: "FRE",
	0x16: "PEEK",
	0x17: "USR",
	0x18: "INKEY$",
	0x19: "POINT",
	0x1A: "SCREEN",
	0x1B: "TIME$",
	0x1C: "DATE$",
	0x1D: "ERR",
	0x1E: "ERL",
	0x1F: "EOF",
}

// Literal type codes, as they appear immediately after a 0xFE marker byte.
const (
	literalInt8    = 0x01
	literalInt16   = 0x02
	literalFloat32 = 0x04
	literalFloat64 = 0x08
	literalLineNum = 0xF2
)

// DefaultCharset translates a single token byte to its source-text
// rendering: ASCII passes through unchanged; 0xA1..0xDF is the platform's
// half-width katakana range, mapped the same way JIS X 0201 maps onto the
// Unicode half-width katakana block (U+FF61..U+FF9F).
func DefaultCharset(b byte) string {
	if b >= 0xA1 && b <= 0xDF {
		return string(rune(0xFF61 + int(b) - 0xA1))
	}
	return string(rune(b))
}
