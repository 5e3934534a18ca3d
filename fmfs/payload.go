package fmfs

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ContentKind discriminates the result of ExtractContents.
type ContentKind int

const (
	KindUnsupported ContentKind = iota
	KindBasicUnprotected
	KindBasicProtected
	KindMachineCode
	KindASCII
)

// ExtractedContent is the discriminated result of stripping a payload's
// wrapper per its directory entry's file_type/ascii_flag. Only the fields
// relevant to Kind are populated.
type ExtractedContent struct {
	Kind ContentKind

	Tokens []byte // Kind == KindBasicUnprotected | KindBasicProtected
	Unlist uint16

	Payload      []byte // Kind == KindMachineCode
	Length       uint16
	LoadAddress  uint16
	EntryAddress uint16

	Text string // Kind == KindASCII
}

const tokenEOF = 0x1A

// ExtractContents strips the BASIC/machine-code wrapper from data per
// fileType/asciiFlag and returns a discriminated result. Anything that
// doesn't match a known wrapper shape yields KindUnsupported rather than
// an error - unsupported content is not a fault.
//
// asciiFlag is checked before fileType: an ASCII-flagged file is always
// plain text regardless of its file type, matching the on-disk format's
// own dispatch order. Only a Binary-flagged file switches on fileType.
func ExtractContents(data []byte, fileType, asciiFlag byte) ExtractedContent {
	if asciiFlag == FlagASCII {
		return extractASCII(data)
	}
	switch fileType {
	case FileTypeBasicSource:
		return extractTokenizedBasic(data)
	case FileTypeMachineCode:
		if c, ok := extractMachineCode(data); ok {
			return c
		}
		return ExtractedContent{Kind: KindUnsupported}
	default:
		return ExtractedContent{Kind: KindUnsupported}
	}
}

func extractTokenizedBasic(data []byte) ExtractedContent {
	if len(data) < 3 {
		return ExtractedContent{Kind: KindUnsupported}
	}
	switch data[0] {
	case 0xFF:
		end := len(data) - 4
		for end >= 1 && !(end+4 <= len(data) && data[end] == 0 && data[end+1] == 0 && data[end+2] == 0 && data[end+3] == tokenEOF) {
			end--
		}
		if end < 1 {
			return ExtractedContent{Kind: KindUnsupported}
		}
		unlist := binary.LittleEndian.Uint16(data[1:3])
		return ExtractedContent{Kind: KindBasicUnprotected, Unlist: unlist, Tokens: data[3:end]}
	case 0xFE:
		end := len(data) - 1
		for end >= 1 && data[end] != tokenEOF {
			end--
		}
		if end < 3 {
			return ExtractedContent{Kind: KindUnsupported}
		}
		unlist := binary.BigEndian.Uint16(data[1:3])
		return ExtractedContent{Kind: KindBasicProtected, Unlist: unlist, Tokens: data[3:end]}
	default:
		return ExtractedContent{Kind: KindUnsupported}
	}
}

func extractASCII(data []byte) ExtractedContent {
	end := 0
	for end < len(data) && data[end] != tokenEOF {
		end++
	}
	return ExtractedContent{Kind: KindASCII, Text: string(data[:end])}
}

// extractMachineCode parses: 0x00, be16 length, be16 load address, length
// bytes of code, 0xFF 0x00 0x00, be16 entry address, 0x1A.
func extractMachineCode(data []byte) (ExtractedContent, bool) {
	if len(data) < 1 || data[0] != 0x00 {
		return ExtractedContent{}, false
	}
	if len(data) < 5 {
		return ExtractedContent{}, false
	}
	length := binary.BigEndian.Uint16(data[1:3])
	loadAddr := binary.BigEndian.Uint16(data[3:5])
	codeStart := 5
	codeEnd := codeStart + int(length)
	if codeEnd+6 > len(data) {
		return ExtractedContent{}, false
	}
	trailer := data[codeEnd : codeEnd+3]
	if trailer[0] != 0xFF || trailer[1] != 0x00 || trailer[2] != 0x00 {
		return ExtractedContent{}, false
	}
	entryAddr := binary.BigEndian.Uint16(data[codeEnd+3 : codeEnd+5])
	if data[codeEnd+5] != tokenEOF {
		return ExtractedContent{}, false
	}
	return ExtractedContent{
		Kind:         KindMachineCode,
		Payload:      data[codeStart:codeEnd],
		Length:       length,
		LoadAddress:  loadAddr,
		EntryAddress: entryAddr,
	}, true
}

// AttributesToTag renders the three directory attribute bytes as the
// 3-character tag CLI drivers use for destination file naming, e.g. "0BS"
// (file_type digit, B/A for ascii_flag, S/R for random_access_flag).
func AttributesToTag(fileType, asciiFlag, randomFlag byte) (string, error) {
	if fileType != FileTypeBasicSource && fileType != FileTypeBasicData && fileType != FileTypeMachineCode {
		return "", errors.Wrap(ErrInvalidArgument, "file type out of range")
	}
	var ascii byte
	switch asciiFlag {
	case FlagBinary:
		ascii = 'B'
	case FlagASCII:
		ascii = 'A'
	default:
		return "", errors.Wrap(ErrInvalidArgument, "ascii flag not 0x00/0xFF")
	}
	var random byte
	switch randomFlag {
	case FlagSequential:
		random = 'S'
	case FlagRandom:
		random = 'R'
	default:
		return "", errors.Wrap(ErrInvalidArgument, "random access flag not 0x00/0xFF")
	}
	return string([]byte{'0' + fileType, ascii, random}), nil
}

// TagToAttributes parses a 3-character tag back into the three directory
// attribute bytes.
func TagToAttributes(tag string) (fileType, asciiFlag, randomFlag byte, err error) {
	if len(tag) != 3 {
		return 0, 0, 0, errors.Wrap(ErrInvalidArgument, "attribute tag must be 3 characters")
	}
	if tag[0] < '0' || tag[0] > '2' {
		return 0, 0, 0, errors.Wrap(ErrInvalidArgument, "attribute tag file type digit out of range")
	}
	fileType = tag[0] - '0'

	switch tag[1] {
	case 'B':
		asciiFlag = FlagBinary
	case 'A':
		asciiFlag = FlagASCII
	default:
		return 0, 0, 0, errors.Wrap(ErrInvalidArgument, "attribute tag ascii character must be B or A")
	}

	switch tag[2] {
	case 'S':
		randomFlag = FlagSequential
	case 'R':
		randomFlag = FlagRandom
	default:
		return 0, 0, 0, errors.Wrap(ErrInvalidArgument, "attribute tag random-access character must be S or R")
	}
	return fileType, asciiFlag, randomFlag, nil
}
