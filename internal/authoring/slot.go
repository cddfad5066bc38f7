package authoring

// Slot holds the state of one independent loader.
type Slot[T any] struct {
	Loading bool
	Loaded  bool
	Err     error
	Value   T
}

func (s *Slot[T]) start() {
	s.Loading, s.Err = true, nil
}

func (s *Slot[T]) finish(v T, err error) {
	s.Loading = false
	if err != nil {
		s.Err = err
		return
	}
	s.Loaded, s.Value = true, v
}

// Failed reports whether the last load ended in an error.
func (s Slot[T]) Failed() bool {
	return !s.Loading && s.Err != nil
}
