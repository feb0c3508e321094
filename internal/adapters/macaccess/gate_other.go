//go:build !darwin || !cgo

package macaccess

// Gate always grants outside macOS. Other platforms report injection
// failures from the backend itself.
type Gate struct {
	Prompt bool
}

func (Gate) Granted() bool {
	return true
}
