package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Rotation is a display rotation in degrees. Only the cardinal angles are
// supported by the hardware APIs this tool targets.
type Rotation int

// Allowed rotation values.
const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Rotations lists every allowed Rotation value.
var Rotations = []Rotation{Rotate0, Rotate90, Rotate180, Rotate270}

// Valid reports whether r is one of the allowed cardinal angles.
func (r Rotation) Valid() bool {
	for _, v := range Rotations {
		if r == v {
			return true
		}
	}
	return false
}

func (r Rotation) String() string {
	return fmt.Sprintf("%d", int(r))
}

// UnmarshalJSON decodes a rotation from its degree value, rejecting
// non-cardinal angles.
func (r *Rotation) UnmarshalJSON(data []byte) error {
	var degrees int
	if err := json.Unmarshal(data, &degrees); err != nil {
		return err
	}
	return r.set(degrees)
}

// UnmarshalYAML decodes a rotation from its degree value, rejecting
// non-cardinal angles.
func (r *Rotation) UnmarshalYAML(value *yaml.Node) error {
	var degrees int
	if err := value.Decode(&degrees); err != nil {
		return err
	}
	return r.set(degrees)
}

func (r *Rotation) set(degrees int) error {
	rot := Rotation(degrees)
	if !rot.Valid() {
		return fmt.Errorf("invalid rotation %d, expected one of: 0, 90, 180, 270", degrees)
	}
	*r = rot
	return nil
}

// Point is a location in the global display arrangement space. It doubles
// as a width/height pair when describing extents, which is common enough in
// graphics libraries not to warrant a second type.
//
// Points serialize as a two-element array [x, y] in every supported format.
type Point struct {
	X int64
	Y int64
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int64{p.X, p.Y})
}

// UnmarshalJSON decodes the point from [x, y].
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []int64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("invalid point: expected [x, y], got %d elements", len(pair))
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}

// MarshalYAML encodes the point as a flow-style [x, y] sequence.
func (p Point) MarshalYAML() (any, error) {
	node := &yaml.Node{}
	if err := node.Encode([2]int64{p.X, p.Y}); err != nil {
		return nil, err
	}
	node.Style = yaml.FlowStyle
	return node, nil
}

// UnmarshalYAML decodes the point from [x, y].
func (p *Point) UnmarshalYAML(value *yaml.Node) error {
	var pair []int64
	if err := value.Decode(&pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("invalid point: expected [x, y], got %d elements", len(pair))
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}
