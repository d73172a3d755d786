package playback

// State is a snapshot of the controller. ActiveID is empty when nothing plays.
type State struct {
	ActiveID string
}

// Playing reports whether any item is active.
func (s State) Playing() bool {
	return s.ActiveID != ""
}

// IsActive reports whether id is the active item.
func (s State) IsActive(id string) bool {
	return id != "" && s.ActiveID == id
}
