package tensor

import (
	"fmt"
	"strconv"
	"strings"
)

// Device identifies where tensor memory lives, e.g. "cpu" or "cuda:0".
type Device string

// CPU is the default host device.
const CPU Device = "cpu"

// ParseDevice normalizes a device string. Empty means CPU.
func ParseDevice(s string) (Device, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "cpu" {
		return CPU, nil
	}
	kind, idx, hasIdx := strings.Cut(s, ":")
	switch kind {
	case "cuda", "mps", "xla":
	default:
		return "", fmt.Errorf("unknown device %q", s)
	}
	if !hasIdx {
		return Device(kind + ":0"), nil
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return "", fmt.Errorf("bad device index in %q", s)
	}
	return Device(kind + ":" + strconv.Itoa(n)), nil
}

func (d Device) String() string {
	if d == "" {
		return string(CPU)
	}
	return string(d)
}
