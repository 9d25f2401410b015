package chunk

// Status is a chunk's position in the generation state machine. Stages run
// strictly in declaration order.
type Status uint32

const (
	Created Status = iota
	BiomesPopulated
	Carved
	SurfaceBuilt
	Filled
	EntitiesPopulated
	Done
)

var statusNames = [...]string{
	Created:           "created",
	BiomesPopulated:   "biomes",
	Carved:            "carvers",
	SurfaceBuilt:      "surface",
	Filled:            "noise",
	EntitiesPopulated: "spawn",
	Done:              "full",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Next returns the status following s. Done is terminal.
func (s Status) Next() Status {
	if s >= Done {
		return Done
	}
	return s + 1
}
