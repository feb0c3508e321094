package linuxinput

import "golang.org/x/sys/unix"

const uinputPath = "/dev/uinput"

// PermissionGate reports whether the process may create uinput devices.
type PermissionGate struct {
	Path string
}

func (g PermissionGate) Granted() bool {
	path := g.Path
	if path == "" {
		path = uinputPath
	}
	return unix.Access(path, unix.W_OK) == nil
}
