// Package discovery finds WAM speakers on the local network.
//
// The speakers do not advertise their control API directly; they do
// advertise a Spotify Connect endpoint over mDNS, which is used here to
// locate candidates. Each candidate's control port is then probed over
// TCP, so only hosts that actually expose the speaker API are reported as
// verified.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/soundmesh/wam/internal/logging"
)

const (
	// ServiceType is the mDNS service type WAM speakers advertise
	ServiceType = "_spotify-connect._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for speaker discovery
	DefaultScanTimeout = 10 * time.Second

	// probeTimeout bounds the TCP probe of each candidate's control port
	probeTimeout = 2 * time.Second
)

// Scanner handles mDNS speaker discovery
type Scanner struct {
	// Timeout is the maximum time to wait for discovery
	Timeout time.Duration

	// SkipVerify disables the control port probe. All candidates are then
	// reported with Verified false.
	SkipVerify bool
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan discovers WAM speakers on the local network. It blocks for the
// scanner timeout (or until ctx ends) and returns everything found.
func (s *Scanner) Scan(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	collected := make(chan []*Device, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		var devices []*Device
		seen := make(map[string]bool)
		for entry := range entries {
			device := parseServiceEntry(entry)
			if device == nil || seen[device.IP] {
				continue
			}
			seen[device.IP] = true
			devices = append(devices, device)
		}
		collected <- devices
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	devices := <-collected

	if !s.SkipVerify {
		s.verify(devices)
	}

	logging.Info("Speaker scan finished",
		zap.Int("candidates", len(devices)),
	)
	return devices, nil
}

// Find scans until a speaker with the given name or IP appears, or the
// scanner timeout passes.
func (s *Scanner) Find(ctx context.Context, nameOrIP string) (*Device, error) {
	devices, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.IP == nameOrIP || strings.EqualFold(d.Name, nameOrIP) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("speaker %q not found", nameOrIP)
}

// verify probes each candidate's control port in parallel.
func (s *Scanner) verify(devices []*Device) {
	var wg sync.WaitGroup
	for _, d := range devices {
		wg.Add(1)
		go func(d *Device) {
			defer wg.Done()
			d.Verified = probeControlPort(d.Addr())
		}(d)
	}
	wg.Wait()
}

func probeControlPort(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// parseServiceEntry converts an mDNS entry to a Device, or nil when the
// entry carries no usable IPv4 address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry == nil || len(entry.AddrIPv4) == 0 {
		return nil
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		if k, v, ok := strings.Cut(txt, "="); ok {
			metadata[k] = v
		}
	}

	return &Device{
		Name:         cleanInstanceName(entry.Instance),
		Hostname:     entry.HostName,
		IP:           entry.AddrIPv4[0].String(),
		Port:         ControlPort,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// cleanInstanceName strips the escaping mDNS applies to spaces and dots
// in instance names.
func cleanInstanceName(instance string) string {
	name := strings.ReplaceAll(instance, "\\ ", " ")
	name = strings.ReplaceAll(name, "\\.", ".")
	return name
}
