package scene

import "fmt"

// Selected returns the selected objects in creation order.
func (s *Scene) Selected() []*Object {
	var out []*Object
	for _, id := range s.order {
		if s.selected[id] {
			out = append(out, s.objects[id])
		}
	}
	return out
}

// IsSelected reports whether the object is selected.
func (s *Scene) IsSelected(id ObjectID) bool {
	return s.selected[id]
}

// Select sets the selection state of one object. Objects flagged
// HideSelect cannot be selected.
func (s *Scene) Select(id ObjectID, state bool) error {
	obj, ok := s.objects[id]
	if !ok {
		return fmt.Errorf("scene: select %s: %w", id.Short(), ErrNotFound)
	}
	if state && obj.HideSelect {
		return nil
	}
	if state {
		s.selected[id] = true
	} else {
		delete(s.selected, id)
	}
	return nil
}

// SelectByName selects the named objects, replacing the current selection.
// The last name becomes the active object.
func (s *Scene) SelectByName(names ...string) error {
	s.DeselectAll()
	for _, name := range names {
		obj, ok := s.Lookup(name)
		if !ok {
			return fmt.Errorf("scene: select %q: %w", name, ErrNotFound)
		}
		if err := s.Select(obj.ID, true); err != nil {
			return err
		}
		s.active = obj.ID
	}
	return nil
}

// DeselectAll clears the selection.
func (s *Scene) DeselectAll() {
	s.selected = make(map[ObjectID]bool)
}

// Active returns the active object, if any.
func (s *Scene) Active() (*Object, bool) {
	if s.active.IsZero() {
		return nil, false
	}
	return s.Object(s.active)
}

// SetActive makes the object active.
func (s *Scene) SetActive(id ObjectID) error {
	if _, ok := s.objects[id]; !ok {
		return fmt.Errorf("scene: set active %s: %w", id.Short(), ErrNotFound)
	}
	s.active = id
	return nil
}
