package state

import (
	"sync"
	"time"

	"github.com/soundmesh/wam/internal/event"
	"github.com/soundmesh/wam/internal/protocol"
)

// Playback is the playback block of a speaker's state.
type Playback struct {
	State    string // event.PlaybackPlaying, PlaybackPaused or PlaybackStopped
	Source   string // user-facing source name
	Function string // raw API function value
	Submode  string
	CPName   string
}

// Track is the current track metadata block.
type Track struct {
	Title     string
	Artist    string
	Album     string
	Thumbnail string
	Duration  int
	Position  int
}

// Network is the network attachment block. Channel, RSSI and SSID are
// meaningful only when ConnectionType is "wireless".
type Network struct {
	ConnectionType string
	SSID           string
	Channel        int
	RSSI           int
}

// Group is the multiroom membership block.
type Group struct {
	Role         string // event.GroupRoleMaster, GroupRoleMember or GroupRoleNone
	Name         string
	MainIP       string
	MainMAC      string
	SpeakerCount int
}

// Grouped reports whether the speaker is part of a multiroom group.
func (g Group) Grouped() bool {
	return g.Role == event.GroupRoleMaster || g.Role == event.GroupRoleMember
}

// Speaker is the full last known state of one speaker. The zero value
// means nothing is known yet.
type Speaker struct {
	Connected bool

	Name            string
	Model           string
	MAC             string
	BTMAC           string
	SoftwareVersion string

	Volume  int // 0-100 user scale
	Muted   bool
	Shuffle bool
	Repeat  string

	Playback Playback
	Track    Track
	Group    Group
	Network  Network

	// LastSeen is when the speaker last sent a decodable message.
	LastSeen time.Time

	// AssumedURLPlaying is true while the library believes the speaker is
	// playing a caller-supplied URL. See the package documentation.
	AssumedURLPlaying bool
}

// Store holds a Speaker value behind a snapshot interface. Apply is meant
// to run as the event dispatcher's apply hook; all other methods are safe
// from any goroutine.
type Store struct {
	mu sync.RWMutex
	s  Speaker
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{s: Speaker{Group: Group{Role: event.GroupRoleNone}}}
}

// Snapshot returns a copy of the current state.
func (st *Store) Snapshot() Speaker {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

// Resync discards everything learned from the speaker, keeping only the
// connection flag. Call it after reconnecting, before re-reading state,
// so stale values from the previous session cannot be mistaken for fresh
// ones.
func (st *Store) Resync() {
	st.mu.Lock()
	defer st.mu.Unlock()
	connected := st.s.Connected
	st.s = Speaker{Connected: connected, Group: Group{Role: event.GroupRoleNone}}
}

// Apply merges one event into the state. Fields the event does not carry
// keep their previous values.
func (st *Store) Apply(e event.Event) {
	st.mu.Lock()
	defer st.mu.Unlock()

	switch ev := e.(type) {
	case event.VolumeEvent:
		st.s.Volume = ev.Level

	case event.MuteEvent:
		st.s.Muted = ev.Muted

	case event.PlaybackEvent:
		st.applyPlayback(ev)

	case event.SourceEvent:
		st.s.Playback.Source = ev.Source
		st.s.Playback.Function = ev.Function
		st.s.Playback.Submode = ev.Submode
		if ev.Function != "wifi" {
			st.s.AssumedURLPlaying = false
		}

	case event.TrackEvent:
		st.s.Track = Track{
			Title:     ev.Title,
			Artist:    ev.Artist,
			Album:     ev.Album,
			Thumbnail: ev.Thumbnail,
			Duration:  ev.Duration,
			Position:  ev.Position,
		}

	case event.InfoEvent:
		st.s.MAC = ev.MAC
		st.s.Model = ev.Model
		st.s.BTMAC = ev.BTMAC

	case event.NameEvent:
		st.s.Name = ev.Name

	case event.VersionEvent:
		st.s.SoftwareVersion = ev.Version

	case event.GroupEvent:
		st.applyGroup(ev)

	case event.NetworkEvent:
		st.s.Network = Network{
			ConnectionType: ev.ConnectionType,
			SSID:           ev.SSID,
			Channel:        ev.Channel,
			RSSI:           ev.RSSI,
		}

	case event.ShuffleEvent:
		st.s.Shuffle = ev.On

	case event.RepeatEvent:
		st.s.Repeat = ev.Mode

	case event.URLPlaybackEvent:
		st.s.AssumedURLPlaying = true
		st.s.Playback.State = event.PlaybackPlaying
		st.s.Playback.Submode = "url"
		st.s.Playback.Source = "Wi-Fi"
		st.s.Playback.Function = "wifi"

	case event.ConnectionEvent:
		st.s.Connected = ev.State == event.ConnStateConnected

	// Every decoded message ends in a FrameEvent, so this is the one spot
	// that sees all device traffic.
	case event.FrameEvent:
		st.s.LastSeen = time.Now()
	}
}

// applyPlayback merges a playback event. The speaker's own reports always
// override the assumed URL playback flag: a non-URL submode or a stop
// means the assumption no longer holds.
func (st *Store) applyPlayback(ev event.PlaybackEvent) {
	st.s.Playback.State = ev.State
	if ev.Function != "" {
		st.s.Playback.Function = ev.Function
		st.s.Playback.Source = protocol.DecodeSource(ev.Function)
	}
	if ev.Submode != "" {
		st.s.Playback.Submode = ev.Submode
		if ev.Submode != "url" {
			st.s.AssumedURLPlaying = false
		}
	}
	if ev.CPName != "" {
		st.s.Playback.CPName = ev.CPName
	}
	if ev.State == event.PlaybackStopped {
		st.s.AssumedURLPlaying = false
	}
}

func (st *Store) applyGroup(ev event.GroupEvent) {
	if ev.Role == event.GroupRoleNone {
		st.s.Group = Group{Role: event.GroupRoleNone}
		return
	}
	if ev.Role != "" {
		st.s.Group.Role = ev.Role
	}
	if ev.Name != "" {
		st.s.Group.Name = ev.Name
	}
	if ev.MainIP != "" {
		st.s.Group.MainIP = ev.MainIP
	}
	if ev.MainMAC != "" {
		st.s.Group.MainMAC = ev.MainMAC
	}
	if ev.SpeakerCount > 0 {
		st.s.Group.SpeakerCount = ev.SpeakerCount
	}
}
