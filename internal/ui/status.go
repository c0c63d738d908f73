package ui

import (
	"fmt"
	"strings"

	"github.com/soundmesh/wam/internal/discovery"
	"github.com/soundmesh/wam/internal/event"
	"github.com/soundmesh/wam/internal/state"
)

// RenderStatus renders a one-shot status box for a speaker snapshot.
func RenderStatus(s state.Speaker, addr string, width int) string {
	var b strings.Builder

	title := s.Name
	if title == "" {
		title = addr
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s · %s", s.Model, addr)))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Playback", renderPlayback(s)},
		{"Volume", renderVolume(s)},
		{"Source", s.Playback.Source},
		{"Shuffle", onOff(s.Shuffle)},
		{"Repeat", s.Repeat},
		{"Group", renderGroup(s)},
		{"Network", renderNetwork(s)},
		{"Firmware", s.SoftwareVersion},
	}
	if s.Track.Title != "" {
		rows = append(rows, [2]string{"Track", renderTrack(s)})
	}

	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		b.WriteString(KeyStyle.Render(row[0] + ":"))
		b.WriteString(ValueStyle.Render(row[1]))
		b.WriteString("\n")
	}

	return BoxStyle(width).Render(strings.TrimRight(b.String(), "\n"))
}

// RenderDeviceList renders the result of a network scan.
func RenderDeviceList(devices []*discovery.Device) string {
	if len(devices) == 0 {
		return SubtitleStyle.Render("No speakers found.")
	}

	var b strings.Builder
	for _, d := range devices {
		marker := SubtitleStyle.Render("?")
		if d.Verified {
			marker = PlayingStyle.Render(SuccessMarker)
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			marker,
			TitleStyle.Render(d.Name),
			SubtitleStyle.Render(d.Addr()),
		))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderPlayback(s state.Speaker) string {
	switch s.Playback.State {
	case event.PlaybackPlaying:
		label := "playing"
		if s.AssumedURLPlaying {
			label = "playing (url stream)"
		}
		return PlayingStyle.Render(MarkerPlaying + " " + label)
	case event.PlaybackPaused:
		return PausedStyle.Render(MarkerPaused + " paused")
	case event.PlaybackStopped:
		return StoppedStyle.Render(MarkerStopped + " stopped")
	default:
		return StoppedStyle.Render("unknown")
	}
}

func renderVolume(s state.Speaker) string {
	v := fmt.Sprintf("%d%%", s.Volume)
	if s.Muted {
		return v + " " + MarkerMuted
	}
	return v
}

func renderGroup(s state.Speaker) string {
	switch s.Group.Role {
	case event.GroupRoleMaster:
		return fmt.Sprintf("%s (master of %d speakers)", s.Group.Name, s.Group.SpeakerCount)
	case event.GroupRoleMember:
		return fmt.Sprintf("member of group at %s", s.Group.MainIP)
	default:
		return "not grouped"
	}
}

func renderNetwork(s state.Speaker) string {
	switch s.Network.ConnectionType {
	case "wireless":
		return fmt.Sprintf("%s (channel %d)", s.Network.SSID, s.Network.Channel)
	case "ethernet":
		return "ethernet"
	default:
		return ""
	}
}

func renderTrack(s state.Speaker) string {
	if s.Track.Artist != "" {
		return fmt.Sprintf("%s · %s", s.Track.Artist, s.Track.Title)
	}
	return s.Track.Title
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
