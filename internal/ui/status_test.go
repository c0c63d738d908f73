package ui

import (
	"strings"
	"testing"

	"github.com/soundmesh/wam/internal/discovery"
	"github.com/soundmesh/wam/internal/event"
	"github.com/soundmesh/wam/internal/state"
)

func TestRenderStatus(t *testing.T) {
	s := state.Speaker{
		Name:            "Kitchen",
		Model:           "HW-MS650",
		SoftwareVersion: "3112.0",
		Volume:          35,
		Muted:           false,
		Repeat:          "off",
		Playback: state.Playback{
			State:  event.PlaybackPlaying,
			Source: "Bluetooth",
		},
		Group: state.Group{Role: event.GroupRoleNone},
		Track: state.Track{Title: "Song", Artist: "Band"},
	}

	out := RenderStatus(s, "192.168.1.100:55001", 80)

	for _, want := range []string{"Kitchen", "HW-MS650", "35%", "Bluetooth", "not grouped", "3112.0", "Band · Song"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderStatus() missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStatusMutedAndGrouped(t *testing.T) {
	s := state.Speaker{
		Name:   "Dining",
		Volume: 10,
		Muted:  true,
		Group: state.Group{
			Role:         event.GroupRoleMaster,
			Name:         "Downstairs",
			SpeakerCount: 3,
		},
	}

	out := RenderStatus(s, "192.168.1.101:55001", 80)

	if !strings.Contains(out, MarkerMuted) {
		t.Error("RenderStatus() missing mute marker")
	}
	if !strings.Contains(out, "Downstairs") || !strings.Contains(out, "master of 3") {
		t.Errorf("RenderStatus() missing group line:\n%s", out)
	}
}

func TestRenderStatusFallsBackToAddr(t *testing.T) {
	out := RenderStatus(state.Speaker{}, "192.168.1.102:55001", 80)
	if !strings.Contains(out, "192.168.1.102:55001") {
		t.Errorf("RenderStatus() should show the address when the name is unknown:\n%s", out)
	}
}

func TestRenderDeviceList(t *testing.T) {
	devices := []*discovery.Device{
		{Name: "Kitchen", IP: "192.168.1.100", Port: 55001, Verified: true},
		{Name: "Garage", IP: "192.168.1.105", Port: 55001},
	}

	out := RenderDeviceList(devices)

	for _, want := range []string{"Kitchen", "192.168.1.100:55001", "Garage"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderDeviceList() missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDeviceListEmpty(t *testing.T) {
	out := RenderDeviceList(nil)
	if !strings.Contains(out, "No speakers found") {
		t.Errorf("RenderDeviceList(nil) = %q", out)
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{60, "1:00"},
		{185, "3:05"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.seconds); got != tt.want {
			t.Errorf("formatSeconds(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
