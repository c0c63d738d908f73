package event

import (
	"github.com/soundmesh/wam/internal/protocol"
)

// Project translates one decoded frame into typed events. Frames whose
// method carries no state project to nothing; a single frame can project
// to several events when it carries more than one concern (MainInfo
// carries both identity and group membership).
func Project(f *protocol.Frame) []Event {
	switch f.Method {
	case "VolumeLevel":
		if level, ok := f.Int("volume"); ok {
			return []Event{VolumeEvent{Level: protocol.DecodeVolume(level)}}
		}

	case "MuteStatus":
		if f.Has("mute") {
			return []Event{MuteEvent{Muted: f.Field("mute") == "on"}}
		}

	case "PlaybackStatus", "PlayStatus":
		if f.Has("playstatus") {
			return []Event{PlaybackEvent{
				State:    normalizePlayState(f.Field("playstatus")),
				Function: f.Field("function"),
				Submode:  f.Field("submode"),
				CPName:   f.Field("cpname"),
			}}
		}

	case "StartPlaybackEvent", "MediaBufferEndEvent":
		return []Event{PlaybackEvent{State: PlaybackPlaying}}

	case "PausePlaybackEvent":
		return []Event{PlaybackEvent{State: PlaybackPaused}}

	case "StopPlaybackEvent", "EndPlaybackEvent":
		return []Event{PlaybackEvent{State: PlaybackStopped}}

	case "CurrentFunc":
		fn := f.Field("function")
		return []Event{SourceEvent{
			Source:   protocol.DecodeSource(fn),
			Function: fn,
			Submode:  f.Field("submode"),
		}}

	case "MusicInfo":
		duration, _ := f.Int("timelength")
		position, _ := f.Int("playtime")
		return []Event{TrackEvent{
			Title:     f.Field("title"),
			Artist:    f.Field("artist"),
			Album:     f.Field("album"),
			Thumbnail: f.Field("thumbnail"),
			Duration:  duration,
			Position:  position,
		}}

	case "RadioInfo":
		events := []Event{TrackEvent{
			Title:     f.Field("title"),
			Artist:    f.Field("description"),
			Thumbnail: f.Field("thumbnail"),
		}}
		if f.Has("playstatus") {
			events = append(events, PlaybackEvent{
				State:  normalizePlayState(f.Field("playstatus")),
				CPName: f.Field("cpname"),
			})
		}
		return events

	case "MainInfo":
		spkNum, _ := f.Int("groupspknum")
		channel, _ := f.Int("channeltype")
		return []Event{
			InfoEvent{
				MAC:     f.Field("spkmacaddr"),
				Model:   f.Field("spkmodelname"),
				BTMAC:   f.Field("btmacaddr"),
				Channel: channel,
			},
			GroupEvent{
				Role:         groupRole(f.Field("grouptype")),
				MainIP:       f.Field("groupmainip"),
				MainMAC:      f.Field("groupmainmacaddr"),
				SpeakerCount: spkNum,
			},
		}

	case "ApInfo":
		channel, _ := f.Int("ch")
		rssi, _ := f.Int("rssi")
		ssid := f.Field("ssid")
		if ssid == "None" {
			ssid = ""
		}
		return []Event{NetworkEvent{
			ConnectionType: f.Field("connectiontype"),
			SSID:           ssid,
			Channel:        channel,
			RSSI:           rssi,
		}}

	case "SpkName":
		return []Event{NameEvent{Name: f.Field("spkname")}}

	case "SoftwareVersion":
		return []Event{VersionEvent{Version: f.Field("version")}}

	case "MultispkGroup":
		spkNum, _ := f.Int("spknum")
		return []Event{GroupEvent{
			Role:         GroupRoleMaster,
			Name:         f.Field("groupname"),
			SpeakerCount: spkNum,
		}}

	case "GroupName":
		return []Event{GroupEvent{Name: f.Field("groupname")}}

	case "Ungroup":
		return []Event{GroupEvent{Role: GroupRoleNone}}

	case "ShuffleMode":
		return []Event{ShuffleEvent{On: f.Field("shuffle") == "on"}}

	case "RepeatMode":
		return []Event{RepeatEvent{Mode: f.Field("repeat")}}

	case "UrlPlayback":
		return []Event{URLPlaybackEvent{}}
	}

	return nil
}

// normalizePlayState collapses the speaker's playback vocabulary onto the
// three states the rest of the library uses. Speakers report "resume" for
// ongoing playback on some sources.
func normalizePlayState(s string) string {
	switch s {
	case "play", "resume":
		return PlaybackPlaying
	case "pause":
		return PlaybackPaused
	default:
		return PlaybackStopped
	}
}

func groupRole(s string) string {
	switch s {
	case GroupRoleMaster, GroupRoleMember:
		return s
	default:
		return GroupRoleNone
	}
}
