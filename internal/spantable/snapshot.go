package spantable

// FrameKeys names the members of a frame compared by regression fixtures,
// in the order they are checked.
func FrameKeys() []string {
	return []string{"dims", "head", "body", "foot", "rows"}
}

// Snapshot is a materialised view of a frame. Absent sections and an
// undefined width are nil.
type Snapshot struct {
	Dims *[2]int     `json:"dims" yaml:"dims"`
	Head [][]*string `json:"head" yaml:"head"`
	Body [][]*string `json:"body" yaml:"body"`
	Foot [][]*string `json:"foot" yaml:"foot"`
	Rows [][]*string `json:"rows" yaml:"rows"`
}

func (f *Frame) Snapshot() Snapshot {
	snap := Snapshot{
		Head: sectionText(f.head),
		Body: sectionText(f.body),
		Foot: sectionText(f.foot),
		Rows: nonNil(f.Text()),
	}
	if depth, width, ok := f.Dims(); ok {
		snap.Dims = &[2]int{depth, width}
	}
	return snap
}

func sectionText(s *Section) [][]*string {
	if s == nil {
		return nil
	}
	return nonNil(s.Text())
}

func nonNil(rows [][]*string) [][]*string {
	if rows == nil {
		return [][]*string{}
	}
	return rows
}
