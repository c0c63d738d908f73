package event

import (
	"fmt"

	"github.com/soundmesh/wam/internal/protocol"
)

// Kind identifies the category of an event.
type Kind int

const (
	KindUnknown Kind = iota
	KindVolume
	KindMute
	KindPlayback
	KindSource
	KindTrack
	KindInfo
	KindName
	KindVersion
	KindGroup
	KindShuffle
	KindRepeat
	KindURLPlayback
	KindNetwork
	KindConnection
	KindFrame
	KindDecodeError
)

var kindNames = map[Kind]string{
	KindUnknown:     "unknown",
	KindVolume:      "volume",
	KindMute:        "mute",
	KindPlayback:    "playback",
	KindSource:      "source",
	KindTrack:       "track",
	KindInfo:        "info",
	KindName:        "name",
	KindVersion:     "version",
	KindGroup:       "group",
	KindShuffle:     "shuffle",
	KindRepeat:      "repeat",
	KindURLPlayback: "url-playback",
	KindNetwork:     "network",
	KindConnection:  "connection",
	KindFrame:       "frame",
	KindDecodeError: "decode-error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is one observed change on a speaker. Events are immutable values.
type Event interface {
	Kind() Kind
	String() string
}

// VolumeEvent reports a volume change. Level is on the 0-100 user scale.
type VolumeEvent struct {
	Level int
}

func (VolumeEvent) Kind() Kind       { return KindVolume }
func (e VolumeEvent) String() string { return fmt.Sprintf("volume=%d", e.Level) }

// MuteEvent reports a mute state change.
type MuteEvent struct {
	Muted bool
}

func (MuteEvent) Kind() Kind       { return KindMute }
func (e MuteEvent) String() string { return fmt.Sprintf("mute=%t", e.Muted) }

// Playback states as reported by the speaker.
const (
	PlaybackPlaying = "play"
	PlaybackPaused  = "pause"
	PlaybackStopped = "stop"
)

// PlaybackEvent reports a playback state change. Function, Submode and
// CPName are empty when the triggering message did not carry them.
type PlaybackEvent struct {
	State    string
	Function string
	Submode  string
	CPName   string
}

func (PlaybackEvent) Kind() Kind { return KindPlayback }
func (e PlaybackEvent) String() string {
	return fmt.Sprintf("playback=%s function=%s submode=%s", e.State, e.Function, e.Submode)
}

// SourceEvent reports an input source change. Source is the user-facing
// name, Function the raw API value.
type SourceEvent struct {
	Source   string
	Function string
	Submode  string
}

func (SourceEvent) Kind() Kind       { return KindSource }
func (e SourceEvent) String() string { return fmt.Sprintf("source=%s", e.Source) }

// TrackEvent reports metadata for the current track or stream. Duration
// and Position are in seconds, zero when unknown.
type TrackEvent struct {
	Title     string
	Artist    string
	Album     string
	Thumbnail string
	Duration  int
	Position  int
}

func (TrackEvent) Kind() Kind       { return KindTrack }
func (e TrackEvent) String() string { return fmt.Sprintf("track=%q artist=%q", e.Title, e.Artist) }

// Group roles as reported in the grouptype field.
const (
	GroupRoleMaster = "M"
	GroupRoleMember = "S"
	GroupRoleNone   = "N"
)

// InfoEvent reports the speaker identity block.
type InfoEvent struct {
	MAC     string
	Model   string
	BTMAC   string
	Channel int
}

func (InfoEvent) Kind() Kind       { return KindInfo }
func (e InfoEvent) String() string { return fmt.Sprintf("info mac=%s model=%s", e.MAC, e.Model) }

// NameEvent reports the speaker's name.
type NameEvent struct {
	Name string
}

func (NameEvent) Kind() Kind       { return KindName }
func (e NameEvent) String() string { return fmt.Sprintf("name=%q", e.Name) }

// VersionEvent reports the firmware version.
type VersionEvent struct {
	Version string
}

func (VersionEvent) Kind() Kind       { return KindVersion }
func (e VersionEvent) String() string { return fmt.Sprintf("version=%s", e.Version) }

// GroupEvent reports multiroom group membership. Fields the triggering
// message did not carry are empty; an empty Role means the role did not
// change.
type GroupEvent struct {
	Role         string // GroupRoleMaster, GroupRoleMember or GroupRoleNone
	Name         string
	MainIP       string
	MainMAC      string
	SpeakerCount int
}

func (GroupEvent) Kind() Kind       { return KindGroup }
func (e GroupEvent) String() string { return fmt.Sprintf("group role=%s name=%q", e.Role, e.Name) }

// ShuffleEvent reports the shuffle mode.
type ShuffleEvent struct {
	On bool
}

func (ShuffleEvent) Kind() Kind       { return KindShuffle }
func (e ShuffleEvent) String() string { return fmt.Sprintf("shuffle=%t", e.On) }

// RepeatEvent reports the repeat mode: "all", "one" or "off".
type RepeatEvent struct {
	Mode string
}

func (RepeatEvent) Kind() Kind       { return KindRepeat }
func (e RepeatEvent) String() string { return fmt.Sprintf("repeat=%s", e.Mode) }

// URLPlaybackEvent reports that the speaker accepted a stream URL. The
// speaker never reports URL playback as such afterwards, so the state
// layer treats this as the start of assumed URL playback.
type URLPlaybackEvent struct{}

func (URLPlaybackEvent) Kind() Kind     { return KindURLPlayback }
func (URLPlaybackEvent) String() string { return "url-playback" }

// NetworkEvent reports how the speaker is attached to the network.
// Channel, RSSI and SSID carry values only on wireless connections.
type NetworkEvent struct {
	ConnectionType string // "ethernet" or "wireless"
	SSID           string
	Channel        int
	RSSI           int
}

func (NetworkEvent) Kind() Kind { return KindNetwork }
func (e NetworkEvent) String() string {
	return fmt.Sprintf("network=%s ssid=%q", e.ConnectionType, e.SSID)
}

// FrameEvent wraps a raw decoded frame. It is published after the events
// projected from the same frame, so a waiter matching a FrameEvent is
// guaranteed the frame's state changes are already applied. The state
// store ignores it.
type FrameEvent struct {
	Frame *protocol.Frame
}

func (FrameEvent) Kind() Kind       { return KindFrame }
func (e FrameEvent) String() string { return "frame " + e.Frame.Method }

// DecodeErrorEvent reports bytes on the speaker stream that could not be
// decoded. The decoder has already resynced past them; no frame before or
// after the bad bytes is lost.
type DecodeErrorEvent struct {
	Err error
}

func (DecodeErrorEvent) Kind() Kind       { return KindDecodeError }
func (e DecodeErrorEvent) String() string { return fmt.Sprintf("decode-error: %v", e.Err) }

// Connection states.
const (
	ConnStateConnected    = "connected"
	ConnStateDisconnected = "disconnected"
)

// ConnectionEvent reports a connection lifecycle change. It is produced by
// the connection layer, not projected from frames. Err is set when the
// disconnect was not requested.
type ConnectionEvent struct {
	State string
	Err   error
}

func (ConnectionEvent) Kind() Kind { return KindConnection }
func (e ConnectionEvent) String() string {
	if e.Err != nil {
		return fmt.Sprintf("connection=%s err=%v", e.State, e.Err)
	}
	return fmt.Sprintf("connection=%s", e.State)
}
