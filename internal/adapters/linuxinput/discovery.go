//go:build linux

package linuxinput

import (
	"fmt"
	"os"
	"sort"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

const virtualDeviceName = "autoclick-virtual-mouse"

type DeviceInfo struct {
	Path       string
	Name       string
	IsVirtual  bool
	IsPointer  bool
	IsKeyboard bool
}

func ListInputDevices() ([]DeviceInfo, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}

	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Path < paths[j].Path
	})

	devices := make([]DeviceInfo, 0, len(paths))
	for _, path := range paths {
		dev, err := openInputDevice(path.Path)
		if err != nil {
			continue
		}

		name := path.Name
		if actualName, err := dev.Name(); err == nil && actualName != "" {
			name = actualName
		}

		devices = append(devices, DeviceInfo{
			Path:       path.Path,
			Name:       name,
			IsVirtual:  deviceIsVirtual(dev, name),
			IsPointer:  deviceIsPointer(dev),
			IsKeyboard: deviceIsKeyboard(dev),
		})
		_ = dev.Close()
	}

	return devices, nil
}

// OpenSources opens every physical device that reports keys or pointer
// buttons, in nonblocking mode. devicePaths restricts the set when non-empty.
func OpenSources(devicePaths []string) ([]*evdev.InputDevice, error) {
	if len(devicePaths) > 0 {
		devices := make([]*evdev.InputDevice, 0, len(devicePaths))
		for _, path := range devicePaths {
			dev, err := openInputDevice(path)
			if err != nil {
				closeInputDevices(devices)
				return nil, err
			}
			if len(dev.CapableEvents(evdev.EV_KEY)) == 0 {
				_ = dev.Close()
				closeInputDevices(devices)
				return nil, fmt.Errorf("%s does not expose key/button events", path)
			}
			if err := dev.NonBlock(); err != nil {
				_ = dev.Close()
				closeInputDevices(devices)
				return nil, fmt.Errorf("failed to set nonblocking mode for %s: %w", dev.Path(), err)
			}
			devices = append(devices, dev)
		}
		return devices, nil
	}

	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Path < paths[j].Path
	})

	devices := make([]*evdev.InputDevice, 0, len(paths))
	for _, path := range paths {
		dev, err := openInputDevice(path.Path)
		if err != nil {
			continue
		}

		name := path.Name
		if actualName, nameErr := dev.Name(); nameErr == nil && actualName != "" {
			name = actualName
		}
		if deviceIsVirtual(dev, name) || !(deviceIsKeyboard(dev) || deviceIsPointer(dev)) {
			_ = dev.Close()
			continue
		}
		if err := dev.NonBlock(); err != nil {
			_ = dev.Close()
			continue
		}
		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no readable input devices with key/button events found")
	}
	return devices, nil
}

func openInputDevice(path string) (*evdev.InputDevice, error) {
	return evdev.OpenWithFlags(path, os.O_RDONLY)
}

func closeInputDevices(devices []*evdev.InputDevice) {
	for _, dev := range devices {
		_ = dev.Close()
	}
}

func deviceSupportsCode(device *evdev.InputDevice, code evdev.EvCode) bool {
	for _, c := range device.CapableEvents(evdev.EV_KEY) {
		if c == code {
			return true
		}
	}
	return false
}

func deviceIsVirtual(device *evdev.InputDevice, name string) bool {
	id, err := device.InputID()
	if err == nil && id.BusType == uint16(evdev.BUS_VIRTUAL) {
		return true
	}
	lower := strings.ToLower(name)
	for _, token := range []string{"virtual", "uinput", "ydotool", virtualDeviceName} {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func deviceIsKeyboard(device *evdev.InputDevice) bool {
	return deviceSupportsCode(device, evdev.KEY_ESC) && deviceSupportsCode(device, evdev.KEY_A)
}

func deviceIsPointer(device *evdev.InputDevice) bool {
	if !deviceSupportsCode(device, evdev.BTN_LEFT) {
		return false
	}
	var hasRelX, hasRelY bool
	for _, code := range device.CapableEvents(evdev.EV_REL) {
		if code == evdev.REL_X {
			hasRelX = true
		}
		if code == evdev.REL_Y {
			hasRelY = true
		}
	}
	if hasRelX && hasRelY {
		return true
	}
	return len(device.CapableEvents(evdev.EV_ABS)) > 0
}
