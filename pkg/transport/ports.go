package transport

import (
	"fmt"

	"go.bug.st/serial/enumerator"
)

// PortMetadata describes a serial port found on the system.
type PortMetadata struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// ListPorts returns metadata for every serial port on the system, keyed
// by port name.
func ListPorts() (map[string]PortMetadata, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate ports: %w", err)
	}

	out := make(map[string]PortMetadata, len(ports))
	for _, p := range ports {
		out[p.Name] = PortMetadata{
			Name:         p.Name,
			IsUSB:        p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			SerialNumber: p.SerialNumber,
			Product:      p.Product,
		}
	}
	return out, nil
}
