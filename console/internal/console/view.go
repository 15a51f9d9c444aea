package console

// ViewState is what an entity page shows next to its table.
type ViewState interface {
	isViewState()
}

type Idle struct{}

// Creating means the empty form is open.
type Creating struct{}

// Editing means the form is open prefilled with Entity.
type Editing[T any] struct {
	Entity T
}

// ConfirmingDelete means the confirm dialog is open for Entity.
type ConfirmingDelete[T any] struct {
	Entity T
}

func (Idle) isViewState()                {}
func (Creating) isViewState()            {}
func (Editing[T]) isViewState()          {}
func (ConfirmingDelete[T]) isViewState() {}

const (
	ModeIdle     = "idle"
	ModeCreating = "creating"
	ModeEditing  = "editing"
	ModeDeleting = "deleting"
)

func modeOf(v ViewState) string {
	switch v.(type) {
	case Creating:
		return ModeCreating
	case interface{ editing() }:
		return ModeEditing
	case interface{ deleting() }:
		return ModeDeleting
	default:
		return ModeIdle
	}
}

func (Editing[T]) editing()           {}
func (ConfirmingDelete[T]) deleting() {}

// Snapshot is a consistent copy of a controller for rendering.
type Snapshot[T any] struct {
	Items    []T
	Loading  bool
	Loaded   bool
	Mode     string
	Selected *T
}

func (s Snapshot[T]) FormOpen() bool {
	return s.Mode == ModeCreating || s.Mode == ModeEditing
}

func (s Snapshot[T]) Empty() bool {
	return len(s.Items) == 0
}
