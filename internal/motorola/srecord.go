// Package motorola encodes and decodes Motorola S-record text, the
// generic format used to carry machine-code payloads extracted from a
// BASIC-file-system image.
package motorola

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// addressBytes gives the address-field width, in bytes, for each S-record
// type (S0..S9); type 4 is unused and has no address field.
var addressBytes = [10]int{2, 2, 3, 4, 0, 2, 3, 4, 3, 2}

// LineError reports a checksum mismatch on one decoded S-record line.
type LineError struct {
	Line     int
	Record   string
	Expected byte
	Actual   byte
}

func (e *LineError) Error() string {
	return fmt.Sprintf("motorola: checksum mismatch on line %d (%q): want %02X, got %02X", e.Line, e.Record, e.Expected, e.Actual)
}

// encodeRecord renders one S-record line for recordType/address/payload.
func encodeRecord(recordType int, address uint32, payload []byte) string {
	addrBytes := addressBytes[recordType]
	numBytes := addrBytes + len(payload) + 1 // +1 for the checksum byte

	var b strings.Builder
	fmt.Fprintf(&b, "S%d", recordType)
	fmt.Fprintf(&b, "%02X", numBytes)
	fmt.Fprintf(&b, "%0*X", addrBytes*2, address)
	for _, d := range payload {
		fmt.Fprintf(&b, "%02X", d)
	}

	sum := 0
	hex := b.String()
	for pos := 2; pos < len(hex); pos += 2 {
		v, _ := strconv.ParseInt(hex[pos:pos+2], 16, 16)
		sum += int(v)
	}
	sum = (^sum) & 0xFF
	fmt.Fprintf(&b, "%02X\n", sum)
	return b.String()
}

// Encode renders header (if non-nil, as an S0 record), then data in
// recordSize-byte S1 chunks starting at baseAddress, then an S9 record
// carrying entryAddress.
func Encode(header []byte, data []byte, baseAddress uint32, entryAddress uint32, recordSize int) string {
	var out strings.Builder
	if header != nil {
		out.WriteString(encodeRecord(0, 0, header))
	}
	for off := 0; off < len(data); off += recordSize {
		end := off + recordSize
		if end > len(data) {
			end = len(data)
		}
		out.WriteString(encodeRecord(1, baseAddress+uint32(off), data[off:end]))
	}
	out.WriteString(encodeRecord(9, entryAddress, nil))
	return out.String()
}

// decodeLine parses one S-record line, returning its type, address, and
// payload. Non-S-record lines (blank, comment) yield recordType -1 and no
// error, meaning "skip".
func decodeLine(lineNo int, record string, checkChecksum bool) (recordType int, address uint32, payload []byte, err error) {
	record = strings.TrimRight(record, "\r\n")
	if record == "" {
		return -1, 0, nil, nil
	}
	if record[0] != 'S' || len(record) < 5 {
		return -1, 0, nil, nil
	}
	recordType = int(record[1] - '0')
	if recordType < 0 || recordType > 9 {
		return -1, 0, nil, nil
	}

	numBytes, err := strconv.ParseInt(record[2:4], 16, 32)
	if err != nil {
		return -1, 0, nil, nil
	}
	sum := int(numBytes)

	addrBytes := addressBytes[recordType]
	numData := int(numBytes) - addrBytes - 1
	addressOffset := 4
	dataOffset := addressOffset + addrBytes*2
	csumOffset := dataOffset + numData*2
	if len(record) < csumOffset+2 {
		return -1, 0, nil, errors.Errorf("motorola: line %d too short for declared length", lineNo)
	}

	addr64, err := strconv.ParseUint(record[addressOffset:addressOffset+addrBytes*2], 16, 32)
	if err != nil {
		return -1, 0, nil, errors.Errorf("motorola: line %d has malformed address", lineNo)
	}
	address = uint32(addr64)
	for n := 0; n < addrBytes; n++ {
		sum += int((address >> (uint(n) * 8)) & 0xFF)
	}

	payload = make([]byte, numData)
	for pos := 0; pos < numData; pos++ {
		v, err := strconv.ParseUint(record[dataOffset+pos*2:dataOffset+pos*2+2], 16, 8)
		if err != nil {
			return -1, 0, nil, errors.Errorf("motorola: line %d has malformed data byte", lineNo)
		}
		payload[pos] = byte(v)
		sum += int(payload[pos])
	}

	sum = (^sum) & 0xFF
	trueSum64, err := strconv.ParseUint(record[csumOffset:csumOffset+2], 16, 8)
	if err != nil {
		return -1, 0, nil, errors.Errorf("motorola: line %d has malformed checksum", lineNo)
	}
	trueSum := byte(trueSum64)
	if checkChecksum && byte(sum) != trueSum {
		return recordType, address, payload, &LineError{Line: lineNo, Record: record, Expected: trueSum, Actual: byte(sum)}
	}
	return recordType, address, payload, nil
}

// Decode reassembles the data buffer carried by srecords. S0 lines set
// header; S1/S2/S3 lines place payload bytes at their address (sparse
// gaps are zero-filled); S7/S8/S9 lines set entryAddress. Lines that
// aren't S-records are ignored. A checksum mismatch stops decoding and is
// returned as a *LineError for the offending line; no data is returned in
// that case.
func Decode(srecords string, checkChecksum bool) (data []byte, baseAddress uint32, entryAddress uint32, header []byte, err error) {
	var buf []byte
	top := ^uint32(0)
	bottom := uint32(0)
	haveEntry := false

	for i, line := range strings.Split(srecords, "\n") {
		recordType, address, payload, lineErr := decodeLine(i+1, line, checkChecksum)
		if recordType == -1 {
			if lineErr != nil {
				return nil, 0, 0, nil, lineErr
			}
			continue
		}
		if lineErr != nil {
			return nil, 0, 0, nil, lineErr
		}

		switch {
		case recordType == 0:
			header = payload
		case recordType >= 1 && recordType <= 3:
			end := address + uint32(len(payload))
			if int(end) > len(buf) {
				grown := make([]byte, end)
				copy(grown, buf)
				buf = grown
			}
			copy(buf[address:end], payload)
			if address < top {
				top = address
			}
			if end > bottom {
				bottom = end
			}
		case recordType >= 7 && recordType <= 9:
			entryAddress = address
			haveEntry = true
		default:
			return nil, 0, 0, nil, errors.Errorf("motorola: unsupported record type S%d on line %d", recordType, i+1)
		}
	}

	if !haveEntry {
		entryAddress = 0
	}
	if top > bottom {
		return nil, 0, entryAddress, header, nil
	}
	return buf[top:bottom], top, entryAddress, header, nil
}
