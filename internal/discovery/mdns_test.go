package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name   string
		entry  *zeroconf.ServiceEntry
		want   *Device
		wantIP string
	}{
		{
			name: "valid entry",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{
					Instance: "Kitchen",
				},
				HostName: "Samsung-Speaker.local.",
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.100")},
				Text:     []string{"CPath=/zc", "VERSION=1.0"},
			},
			wantIP: "192.168.1.100",
		},
		{
			name: "no IPv4 address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Kitchen"},
			},
		},
		{
			name: "nil entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := parseServiceEntry(tt.entry)

			if tt.wantIP == "" {
				if d != nil {
					t.Fatalf("parseServiceEntry() = %v, want nil", d)
				}
				return
			}
			if d == nil {
				t.Fatal("parseServiceEntry() = nil, want device")
			}
			if d.IP != tt.wantIP {
				t.Errorf("IP = %q, want %q", d.IP, tt.wantIP)
			}
			if d.Port != ControlPort {
				t.Errorf("Port = %d, want %d", d.Port, ControlPort)
			}
			if got := d.GetMetadata("CPath"); got != "/zc" {
				t.Errorf(`metadata CPath = %q, want /zc`, got)
			}
		})
	}
}

func TestCleanInstanceName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`Living\ Room`, "Living Room"},
		{`Speaker\.5`, "Speaker.5"},
		{"Kitchen", "Kitchen"},
	}

	for _, tt := range tests {
		if got := cleanInstanceName(tt.in); got != tt.want {
			t.Errorf("cleanInstanceName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProbeControlPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	if !probeControlPort(ln.Addr().String()) {
		t.Error("probeControlPort() = false for a listening port")
	}
	ln.Close()
	if probeControlPort(ln.Addr().String()) {
		t.Error("probeControlPort() = true for a closed port")
	}
}
