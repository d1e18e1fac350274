package game

const (
	NLanes = 4

	SpawnPosition = 0.0
	EndPosition   = 100.0 // Past this a note is gone
)

type Note struct {
	ID       uint64
	Lane     uint8   // The lane, 0 to NLanes-1
	Position float64 // Percentage of travel, 0 at spawn and 100 at the miss line
	Hit      bool
}

// Live reports whether the note is still on the field and can be judged.
func (note *Note) Live() bool {
	return !note.Hit && note.Position >= SpawnPosition && note.Position <= EndPosition
}
