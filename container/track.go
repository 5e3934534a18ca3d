package container

// Track is an ordered sequence of sectors. There is no track header in the
// D88 layout - a track's boundaries come from consecutive entries in the
// disk's track offset table. A Track with no sectors represents an absent
// track slot (offset 0 in the table).
type Track struct {
	Sectors []Sector
}

func parseSectors(data []byte) ([]Sector, error) {
	var sectors []Sector
	pos := 0
	for pos < len(data) {
		s, n, err := parseSector(data[pos:])
		if err != nil {
			return sectors, err
		}
		sectors = append(sectors, s)
		pos += n
	}
	return sectors, nil
}

func (t Track) encode() []byte {
	var out []byte
	for _, s := range t.Sectors {
		out = append(out, s.encode()...)
	}
	return out
}
