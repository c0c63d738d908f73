package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// ControlPort is the TCP port the speaker control API listens on. It is
// fixed across all WAM models.
const ControlPort = 55001

// Device represents a discovered WAM speaker on the network
type Device struct {
	// Name is the advertised instance name (usually the speaker name)
	Name string

	// Hostname is the mDNS hostname
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.100")
	IP string

	// Port is the control API port (always 55001)
	Port int

	// Verified is true when the control port answered a TCP probe
	Verified bool

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("WAM Speaker %q at %s:%d", d.Name, d.IP, d.Port)
}

// Addr returns the host:port of the speaker control API
func (d *Device) Addr() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
