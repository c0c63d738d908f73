package discovery

import (
	"strings"
	"testing"
	"time"
)

func TestDeviceString(t *testing.T) {
	d := &Device{
		Name: "Kitchen",
		IP:   "192.168.1.100",
		Port: ControlPort,
	}

	s := d.String()
	if !strings.Contains(s, "Kitchen") || !strings.Contains(s, "192.168.1.100") {
		t.Errorf("String() = %q, want name and IP included", s)
	}
}

func TestDeviceAddr(t *testing.T) {
	d := &Device{IP: "192.168.1.100", Port: 55001}
	if got := d.Addr(); got != "192.168.1.100:55001" {
		t.Errorf("Addr() = %q, want 192.168.1.100:55001", got)
	}
}

func TestDeviceGetMetadata(t *testing.T) {
	d := &Device{
		Metadata: map[string]string{"CPath": "/zc", "VERSION": "1.0"},
	}

	if got := d.GetMetadata("CPath"); got != "/zc" {
		t.Errorf(`GetMetadata("CPath") = %q, want /zc`, got)
	}
	if got := d.GetMetadata("missing"); got != "" {
		t.Errorf(`GetMetadata("missing") = %q, want empty`, got)
	}

	var empty Device
	if got := empty.GetMetadata("any"); got != "" {
		t.Errorf("GetMetadata on empty device = %q, want empty", got)
	}
}

func TestDeviceDiscoveredAt(t *testing.T) {
	d := &Device{DiscoveredAt: time.Now()}
	if d.DiscoveredAt.IsZero() {
		t.Error("DiscoveredAt is zero")
	}
}
