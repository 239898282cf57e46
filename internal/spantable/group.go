package spantable

// Classification tags a run of rows with the wrapper it came from.
type Classification int

const (
	Free Classification = iota
	Head
	Body
	Foot
)

func (c Classification) String() string {
	switch c {
	case Head:
		return "head"
	case Body:
		return "body"
	case Foot:
		return "foot"
	default:
		return "free"
	}
}

// bodyLike reports whether a group can serve as the frame body.
func (c Classification) bodyLike() bool {
	return c == Body || c == Free
}

var wrapperClass = map[string]Classification{
	"thead": Head,
	"tbody": Body,
	"tfoot": Foot,
}

// Group is a run of row elements sharing one classification.
type Group struct {
	Class Classification
	Rows  []Element
}

type groupState int

const (
	outsideRun groupState = iota
	inFreeRun
)

// GroupSections splits the direct children of table into row groups in
// document order. Each thead/tbody/tfoot is its own group; consecutive bare
// tr children form one free group. Groups are never merged or reordered.
func GroupSections(table Element) []Group {
	var (
		groups []Group
		state  = outsideRun
	)
	for _, child := range table.Children("thead", "tbody", "tfoot", "tr") {
		if child.Name() == "tr" {
			if state == outsideRun {
				groups = append(groups, Group{Class: Free})
				state = inFreeRun
			}
			last := &groups[len(groups)-1]
			last.Rows = append(last.Rows, child)
			continue
		}
		state = outsideRun
		groups = append(groups, Group{
			Class: wrapperClass[child.Name()],
			Rows:  child.Children("tr"),
		})
	}
	return groups
}
