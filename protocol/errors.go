package protocol

import "fmt"

// MalformedFrame is returned when a decode sees fewer bytes than the
// layout it was asked to parse requires.
type MalformedFrame struct {
	Layout string
	Want   int
	Got    int
}

func (e *MalformedFrame) Error() string {
	return fmt.Sprintf("malformed %s frame: want at least %d bytes, got %d", e.Layout, e.Want, e.Got)
}

// NewMalformedFrame builds a MalformedFrame error.
func NewMalformedFrame(layout string, want, got int) error {
	return &MalformedFrame{Layout: layout, Want: want, Got: got}
}
