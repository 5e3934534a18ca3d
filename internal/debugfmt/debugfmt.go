// Package debugfmt renders a container.Disk, or a single file's payload,
// to and from YAML/JSON debug forms (the read driver emits the single-file
// form), plus a hex+ASCII dump for inspecting raw bytes (used by the dir
// driver's verbose listing).
package debugfmt

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"fmdisk/container"
)

// SectorDoc is one sector's debug-serializable form. Exactly one of
// DataBase64/DataHex is populated, chosen by the encoding mode requested.
type SectorDoc struct {
	C          byte   `yaml:"c" json:"c"`
	H          byte   `yaml:"h" json:"h"`
	R          byte   `yaml:"r" json:"r"`
	N          byte   `yaml:"n" json:"n"`
	NumSectors uint16 `yaml:"num_sectors" json:"num_sectors"`
	Density    byte   `yaml:"density" json:"density"`
	DataMark   byte   `yaml:"data_mark" json:"data_mark"`
	Status     byte   `yaml:"status" json:"status"`

	DataBase64 string `yaml:"data_base64,omitempty" json:"data_base64,omitempty"`
	DataHex    string `yaml:"data_hex,omitempty" json:"data_hex,omitempty"`
}

// TrackDoc is one track's debug-serializable form.
type TrackDoc struct {
	Sectors []SectorDoc `yaml:"sectors" json:"sectors"`
}

// DiskDoc is a container.Disk's debug-serializable form.
type DiskDoc struct {
	Name         string     `yaml:"name" json:"name"`
	WriteProtect byte       `yaml:"write_protect" json:"write_protect"`
	DiskType     byte       `yaml:"disk_type" json:"disk_type"`
	Tracks       []TrackDoc `yaml:"tracks" json:"tracks"`
}

func encodePayload(data []byte, hexMode bool) (b64, hx string) {
	if hexMode {
		return "", spaceSeparatedHex(data)
	}
	return base64.StdEncoding.EncodeToString(data), ""
}

func decodePayload(doc SectorDoc) ([]byte, error) {
	if doc.DataHex != "" {
		return parseSpaceSeparatedHex(doc.DataHex)
	}
	if doc.DataBase64 == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(doc.DataBase64)
}

func spaceSeparatedHex(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = hex.EncodeToString([]byte{b})
	}
	return strings.Join(parts, " ")
}

func parseSpaceSeparatedHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Fields(s)
	out := make([]byte, len(fields))
	for i, f := range fields {
		b, err := hex.DecodeString(f)
		if err != nil || len(b) != 1 {
			return nil, errors.Errorf("debugfmt: malformed hex byte %q", f)
		}
		out[i] = b[0]
	}
	return out, nil
}

// ToDoc converts a Disk to its debug-serializable form. hexMode selects
// space-separated hex payload encoding instead of base64.
func ToDoc(d *container.Disk, hexMode bool) DiskDoc {
	doc := DiskDoc{Name: d.Name, WriteProtect: d.WriteProtect, DiskType: d.DiskType}
	for _, track := range d.Tracks {
		var td TrackDoc
		for _, s := range track.Sectors {
			sd := SectorDoc{
				C: s.C, H: s.H, R: s.R, N: s.N,
				NumSectors: s.NumSectors, Density: s.Density, DataMark: s.DataMark, Status: s.Status,
			}
			sd.DataBase64, sd.DataHex = encodePayload(s.Data, hexMode)
			td.Sectors = append(td.Sectors, sd)
		}
		doc.Tracks = append(doc.Tracks, td)
	}
	return doc
}

// FromDoc reconstructs a Disk from its debug-serializable form.
func FromDoc(doc DiskDoc) (*container.Disk, error) {
	d := &container.Disk{Name: doc.Name, WriteProtect: doc.WriteProtect, DiskType: doc.DiskType}
	if len(doc.Tracks) > len(d.Tracks) {
		return nil, errors.Errorf("debugfmt: document has %d tracks, disk holds at most %d", len(doc.Tracks), len(d.Tracks))
	}
	for i, td := range doc.Tracks {
		for _, sd := range td.Sectors {
			data, err := decodePayload(sd)
			if err != nil {
				return nil, errors.Wrapf(err, "track #%d", i)
			}
			d.Tracks[i].Sectors = append(d.Tracks[i].Sectors, container.Sector{
				C: sd.C, H: sd.H, R: sd.R, N: sd.N,
				NumSectors: sd.NumSectors, Density: sd.Density, DataMark: sd.DataMark, Status: sd.Status,
				Data: data,
			})
		}
	}
	return d, nil
}

// FileDoc is a single extracted file's debug-serializable form, as emitted
// by the read driver's --yaml/--json modes. Exactly one of
// DataBase64/DataHex is populated, chosen by the encoding mode requested.
type FileDoc struct {
	Name     string `yaml:"name" json:"name"`
	FileType byte   `yaml:"file_type" json:"file_type"`
	Bytes    int    `yaml:"bytes" json:"bytes"`

	DataBase64 string `yaml:"data_base64,omitempty" json:"data_base64,omitempty"`
	DataHex    string `yaml:"data_hex,omitempty" json:"data_hex,omitempty"`
}

// FileToDoc converts a single file's raw payload to its debug-serializable
// form.
func FileToDoc(name string, fileType byte, data []byte, hexMode bool) FileDoc {
	doc := FileDoc{Name: name, FileType: fileType, Bytes: len(data)}
	doc.DataBase64, doc.DataHex = encodePayload(data, hexMode)
	return doc
}

// FileFromDoc reconstructs a file's raw payload from its debug-serializable
// form.
func FileFromDoc(doc FileDoc) ([]byte, error) {
	return decodePayload(SectorDoc{DataBase64: doc.DataBase64, DataHex: doc.DataHex})
}

// MarshalFileYAML renders a single file's payload as YAML, in the chosen
// payload encoding.
func MarshalFileYAML(name string, fileType byte, data []byte, hexMode bool) ([]byte, error) {
	return yaml.Marshal(FileToDoc(name, fileType, data, hexMode))
}

// UnmarshalFileYAML parses a file payload back out of its YAML debug form.
func UnmarshalFileYAML(raw []byte) (FileDoc, []byte, error) {
	var doc FileDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return FileDoc{}, nil, errors.Wrap(err, "parsing file YAML")
	}
	data, err := FileFromDoc(doc)
	return doc, data, err
}

// MarshalFileJSON renders a single file's payload as JSON, in the chosen
// payload encoding.
func MarshalFileJSON(name string, fileType byte, data []byte, hexMode bool) ([]byte, error) {
	return json.MarshalIndent(FileToDoc(name, fileType, data, hexMode), "", "  ")
}

// UnmarshalFileJSON parses a file payload back out of its JSON debug form.
func UnmarshalFileJSON(raw []byte) (FileDoc, []byte, error) {
	var doc FileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return FileDoc{}, nil, errors.Wrap(err, "parsing file JSON")
	}
	data, err := FileFromDoc(doc)
	return doc, data, err
}

// MarshalYAML renders a Disk as YAML, in the chosen payload encoding.
func MarshalYAML(d *container.Disk, hexMode bool) ([]byte, error) {
	return yaml.Marshal(ToDoc(d, hexMode))
}

// UnmarshalYAML parses a Disk back out of its YAML debug form.
func UnmarshalYAML(data []byte) (*container.Disk, error) {
	var doc DiskDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing disk YAML")
	}
	return FromDoc(doc)
}

// MarshalJSON renders a Disk as JSON, in the chosen payload encoding.
func MarshalJSON(d *container.Disk, hexMode bool) ([]byte, error) {
	return json.MarshalIndent(ToDoc(d, hexMode), "", "  ")
}

// UnmarshalJSON parses a Disk back out of its JSON debug form.
func UnmarshalJSON(data []byte) (*container.Disk, error) {
	var doc DiskDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing disk JSON")
	}
	return FromDoc(doc)
}

// HexDump writes data to w as 16 bytes per line, hex followed by its
// ASCII rendering (non-printable bytes shown as '.').
func HexDump(w io.Writer, data []byte) error {
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		line := data[off:end]

		if _, err := fmt.Fprintf(w, "%08X  ", off); err != nil {
			return err
		}
		for i := 0; i < 16; i++ {
			if i < len(line) {
				if _, err := fmt.Fprintf(w, "%02X ", line[i]); err != nil {
					return err
				}
			} else {
				if _, err := fmt.Fprint(w, "   "); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprint(w, " "); err != nil {
			return err
		}
		for _, b := range line {
			c := byte('.')
			if b >= 0x20 && b < 0x7F {
				c = b
			}
			if _, err := fmt.Fprintf(w, "%c", c); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
