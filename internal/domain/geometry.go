package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Coord is a (longitude, latitude) pair.
type Coord [2]float64

func (c Coord) Lon() float64 { return c[0] }
func (c Coord) Lat() float64 { return c[1] }

// Line is the geometry of a block side as an ordered coordinate sequence.
type Line []Coord

// Equal compares two lines coordinate by coordinate.
func (l Line) Equal(other Line) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// UnmarshalJSON accepts the geometry shapes the store is known to emit:
// a GeoJSON geometry object (LineString or MultiLineString, in which case
// the first linestring is taken), a bare coordinate array, or a WKT
// LINESTRING string.
func (l *Line) UnmarshalJSON(data []byte) error {
	*l = nil

	var geo struct {
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &geo); err == nil && geo.Coordinates != nil {
		data = geo.Coordinates
	}

	var flat [][]float64
	if err := json.Unmarshal(data, &flat); err == nil {
		*l = pairsToLine(flat)
		return nil
	}

	var nested [][][]float64
	if err := json.Unmarshal(data, &nested); err == nil {
		if len(nested) > 0 {
			*l = pairsToLine(nested[0])
		}
		return nil
	}

	var wkt string
	if err := json.Unmarshal(data, &wkt); err == nil {
		*l = parseWKTLineString(wkt)
		return nil
	}

	// Unknown shapes decode to an empty line rather than failing the row.
	return nil
}

func (l Line) MarshalJSON() ([]byte, error) {
	pairs := make([][]float64, 0, len(l))
	for _, c := range l {
		pairs = append(pairs, []float64{c[0], c[1]})
	}
	return json.Marshal(pairs)
}

func pairsToLine(pairs [][]float64) Line {
	line := make(Line, 0, len(pairs))
	for _, p := range pairs {
		if len(p) < 2 {
			continue
		}
		line = append(line, Coord{p[0], p[1]})
	}
	return line
}

func parseWKTLineString(text string) Line {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(strings.ToUpper(text), "LINESTRING") {
		text = strings.TrimSpace(text[len("LINESTRING"):])
	}
	text = strings.Trim(text, "()")

	var line Line
	for _, pair := range strings.Split(text, ",") {
		parts := strings.Fields(pair)
		if len(parts) != 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(parts[0], 64)
		lat, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		line = append(line, Coord{lon, lat})
	}
	return line
}
