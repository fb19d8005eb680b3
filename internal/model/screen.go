package model

// Screen is a top-level foregroundable UI container.
type Screen struct {
	ID        string `yaml:"id"                  json:"id"`
	Type      string `yaml:"type"                json:"type"`
	Finishing bool   `yaml:"finishing,omitempty" json:"finishing,omitempty"`
	RootID    string `yaml:"root_id,omitempty"   json:"root_id,omitempty"` // ID of the screen's own overlay root
}

// Is reports whether the screen has the given identity or type name.
func (s Screen) Is(name string) bool {
	return s.ID == name || s.Type == name
}
