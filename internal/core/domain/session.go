package domain

// State is the session store's in-memory state. IsAuthenticated and IsGuest
// are derived from User but stored explicitly; every mutation path must set
// them together with User, never independently.
type State struct {
	User            *User  `json:"user"`
	IsAuthenticated bool   `json:"is_authenticated"`
	IsGuest         bool   `json:"is_guest"`
	HasSelectedRole bool   `json:"has_selected_role"`
	IsLoading       bool   `json:"-"`
	Err             string `json:"-"`
}

// Snapshot is the projection of State persisted across restarts.
// IsLoading and Err are transient and deliberately excluded.
type Snapshot struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"is_authenticated"`
	IsGuest         bool  `json:"is_guest"`
	HasSelectedRole bool  `json:"has_selected_role"`
}

// Project extracts the persisted subset of the state.
func (s State) Project() Snapshot {
	return Snapshot{
		User:            s.User,
		IsAuthenticated: s.IsAuthenticated,
		IsGuest:         s.IsGuest,
		HasSelectedRole: s.HasSelectedRole,
	}
}

// Restore rebuilds a State from a persisted snapshot. Transient fields come
// back at their zero values regardless of what the process looked like when
// the snapshot was taken.
func (s Snapshot) Restore() State {
	return State{
		User:            s.User,
		IsAuthenticated: s.IsAuthenticated,
		IsGuest:         s.IsGuest,
		HasSelectedRole: s.HasSelectedRole,
	}
}
