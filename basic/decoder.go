package basic

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

type tokenType int

const (
	tokKeyword tokenType = iota
	tokLiteral
	tokNewLine
	tokStringLiteral
	tokRemark
	tokLineNumber
	tokEOL
	tokPlainChars
	tokOthers
)

type decodeState int

const (
	stateSkipLink decodeState = iota
	stateLineNum
	stateToken
	stateTokenFF
	stateString
	stateRemark
	stateLiteral
)

// stringBuffer reproduces the original tokenizer's pretty-printer: a ':'
// right after a line number is dropped, and any other ':' is held back
// until the next token decides whether it survives.
type stringBuffer struct {
	data         strings.Builder
	deferred     string
	previousType tokenType
}

func (b *stringBuffer) addString(s string, t tokenType) {
	if s == ":" {
		switch {
		case b.previousType == tokLineNumber:
			return
		case b.deferred == ":":
			b.deferred = ""
		default:
			b.deferred = ":"
			return
		}
	}
	if s == "'" || s == "REM" || s == "ELSE" {
		b.deferred = ""
	}

	b.data.WriteString(b.deferred)
	if (t == tokKeyword || t == tokPlainChars) && b.previousType == tokLineNumber {
		b.data.WriteByte(' ')
	}
	b.data.WriteString(s)

	b.deferred = ""
	b.previousType = t
}

func (b *stringBuffer) finalize() string {
	b.data.WriteString(b.deferred)
	b.deferred = ""
	return b.data.String()
}

// Charset translates a single raw token byte to its source-text rendering.
type Charset func(b byte) string

// Decode walks a stream of tokenized BASIC lines and renders it back to
// source text. primary and extended are the single- and 0xFF-prefixed
// two-byte opcode tables; charset renders plain/string/remark bytes. The
// decoder is a pure function of its inputs: no package-level state
// survives a call.
func Decode(data []byte, primary, extended map[byte]string, charset Charset) (string, error) {
	buf := &stringBuffer{}
	state := stateSkipLink

	var linkBuf []byte
	var lineNumBuf []byte
	var literalBuf []byte
	var literalType byte
	var literalCount int

	for i := 0; i < len(data); i++ {
		b := data[i]

		switch state {
		case stateSkipLink:
			linkBuf = append(linkBuf, b)
			if len(linkBuf) < 2 {
				continue
			}
			if linkBuf[0] == 0x00 || linkBuf[1] == 0x00 {
				// Either link-pointer byte is 0: end of program.
				return buf.finalize(), nil
			}
			linkBuf = nil
			lineNumBuf = nil
			state = stateLineNum

		case stateLineNum:
			lineNumBuf = append(lineNumBuf, b)
			if len(lineNumBuf) < 2 {
				continue
			}
			lineNum := binary.BigEndian.Uint16(lineNumBuf)
			buf.addString(strconv.Itoa(int(lineNum)), tokLineNumber)
			state = stateToken

		case stateToken:
			switch {
			case b == 0x00:
				buf.addString("\n", tokEOL)
				state = stateSkipLink
			case b == 0xFE:
				literalBuf = nil
				literalCount = 0
				state = stateLiteral
			case b == 0xFF:
				state = stateTokenFF
			default:
				if keyword, ok := primary[b]; ok {
					buf.addString(keyword, tokKeyword)
					if keyword == "'" || keyword == "REM" {
						state = stateRemark
					}
					continue
				}
				buf.addString(charset(b), tokPlainChars)
				if b == '"' {
					state = stateString
				}
			}

		case stateTokenFF:
			if keyword, ok := extended[b]; ok {
				buf.addString(keyword, tokKeyword)
			}
			state = stateToken

		case stateString:
			buf.addString(charset(b), tokStringLiteral)
			switch b {
			case '"':
				state = stateToken
			case 0x00:
				buf.addString("\n", tokEOL)
				state = stateSkipLink
			}

		case stateRemark:
			if b == 0x00 {
				buf.addString("\n", tokEOL)
				state = stateSkipLink
				continue
			}
			buf.addString(charset(b), tokRemark)

		case stateLiteral:
			literalBuf = append(literalBuf, b)
			literalCount++
			if literalCount == 1 {
				literalType = b
				continue
			}
			str, done, err := decodeLiteral(literalType, literalBuf[1:], literalCount-1)
			if err != nil {
				return "", err
			}
			if !done {
				continue
			}
			buf.addString(str, tokLiteral)
			state = stateToken
		}
	}

	return buf.finalize(), nil
}

// decodeLiteral returns the decoded text for a literal once enough payload
// bytes (width, past the type byte) have accumulated; done is false while
// more bytes are still expected.
func decodeLiteral(literalType byte, payload []byte, haveBytes int) (string, bool, error) {
	switch literalType {
	case literalInt8:
		return strconv.Itoa(int(payload[0])), true, nil
	case literalInt16, literalLineNum:
		if haveBytes < 2 {
			return "", false, nil
		}
		return strconv.Itoa(int(binary.BigEndian.Uint16(payload))), true, nil
	case literalFloat32:
		if haveBytes < 4 {
			return "", false, nil
		}
		v := DecodeFloat(payload)
		return formatLiteralFloat(v, '!'), true, nil
	case literalFloat64:
		if haveBytes < 8 {
			return "", false, nil
		}
		v := DecodeDouble(payload)
		return formatLiteralFloat(v, '#'), true, nil
	default:
		return "", false, fmt.Errorf("basic: unknown literal type 0x%02X", literalType)
	}
}

// formatLiteralFloat renders a decoded float: an integral value gets the
// precision suffix (! for single, # for double); a fractional one doesn't.
func formatLiteralFloat(v float64, suffix byte) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10) + string(suffix)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
