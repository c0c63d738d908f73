package protocol

// Command constructors for the WAM API surface. Each function returns a
// ready-to-encode Command; responses to these calls are documented on the
// event projections in the event package.

// GetSoftwareVersion (UIC) reads the speaker firmware version.
func GetSoftwareVersion() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "GetSoftwareVersion",
		ExpectedResponse: "SoftwareVersion",
	}
}

// GetSpkName (UIC) reads the speaker name.
func GetSpkName() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "GetSpkName",
		ExpectedResponse: "SpkName",
	}
}

// SetSpkName (UIC) renames the speaker.
func SetSpkName(name string) *Command {
	return &Command{
		API:              APIUIC,
		Method:           "SetSpkName",
		Args:             []Arg{{"spkname", name, HintCDATA}},
		ExpectedResponse: "SpkName",
	}
}

// GetMainInfo (UIC) reads the main speaker block: model, MAC addresses and
// group membership. The speaker answers with an empty RequestDeviceInfo
// first and the MainInfo response after it.
func GetMainInfo() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "GetMainInfo",
		ExpectedResponse: "MainInfo",
	}
}

// GetApInfo (UIC) reads information about the network connection.
func GetApInfo() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "GetApInfo",
		ExpectedResponse: "ApInfo",
	}
}

// GetVolume (UIC) reads the current volume level (device scale).
func GetVolume() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "GetVolume",
		ExpectedResponse: "VolumeLevel",
	}
}

// SetVolume (UIC) sets the volume level. The level is in the device scale
// (0..MaxDeviceVolume); use EncodeVolume to convert from the 0-100 user
// scale.
func SetVolume(level int) *Command {
	return &Command{
		API:              APIUIC,
		Method:           "SetVolume",
		PowerOn:          true,
		Args:             []Arg{{"volume", level, HintDec}},
		ExpectedResponse: "VolumeLevel",
	}
}

// GetMute (UIC) reads the mute state.
func GetMute() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "GetMute",
		ExpectedResponse: "MuteStatus",
	}
}

// SetMute (UIC) mutes or unmutes the speaker.
func SetMute(mute bool) *Command {
	return &Command{
		API:              APIUIC,
		Method:           "SetMute",
		PowerOn:          true,
		Args:             []Arg{{"mute", onOff(mute), HintStr}},
		ExpectedResponse: "MuteStatus",
	}
}

// GetShuffleMode (UIC) reads the shuffle mode.
func GetShuffleMode() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "GetShuffleMode",
		ExpectedResponse: "ShuffleMode",
	}
}

// SetShuffleMode (UIC) enables or disables shuffle.
func SetShuffleMode(shuffle bool) *Command {
	return &Command{
		API:              APIUIC,
		Method:           "SetShuffleMode",
		PowerOn:          true,
		Args:             []Arg{{"shufflemode", onOff(shuffle), HintStr}},
		ExpectedResponse: "ShuffleMode",
	}
}

// GetRepeatMode (UIC) reads the repeat mode.
func GetRepeatMode() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "GetRepeatMode",
		ExpectedResponse: "RepeatMode",
	}
}

// SetRepeatMode (UIC) sets the repeat mode: "all", "one" or "off".
func SetRepeatMode(mode string) *Command {
	return &Command{
		API:              APIUIC,
		Method:           "SetRepeatMode",
		PowerOn:          true,
		Args:             []Arg{{"repeatmode", mode, HintStr}},
		ExpectedResponse: "RepeatMode",
	}
}

// GetFunc (UIC) reads the current input source.
func GetFunc() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "GetFunc",
		ExpectedResponse: "CurrentFunc",
	}
}

// SetFunc (UIC) selects an input source. The function name is the API
// value ("aux", "bt", "wifi", ...); use EncodeSource to convert from the
// user-facing name.
func SetFunc(function string) *Command {
	return &Command{
		API:              APIUIC,
		Method:           "SetFunc",
		PowerOn:          true,
		Args:             []Arg{{"function", function, HintStr}},
		ExpectedResponse: "CurrentFunc",
	}
}

// SetPlaybackControl (UIC) controls DLNA and URL playback: "resume" or
// "pause". Note that "play" and "stop" are not accepted on this API; use
// SetCPMPlaybackControl for app sources.
func SetPlaybackControl(action string) *Command {
	return &Command{
		API:              APIUIC,
		Method:           "SetPlaybackControl",
		PowerOn:          true,
		Args:             []Arg{{"playbackcontrol", action, HintStr}},
		ExpectedResponse: "PlaybackStatus",
	}
}

// SetCPMPlaybackControl (CPM) controls app playback: "play", "pause" or
// "stop".
func SetCPMPlaybackControl(action string) *Command {
	return &Command{
		API:              APICPM,
		Method:           "SetPlaybackControl",
		PowerOn:          true,
		Args:             []Arg{{"playbackcontrol", action, HintStr}},
		ExpectedResponse: "PlaybackStatus",
		TimeoutScale:     5,
	}
}

// SetTrickMode (UIC) skips to the "next" or "previous" track. The speaker
// sends no direct reply; the track change arrives as a MusicInfo
// notification.
func SetTrickMode(direction string) *Command {
	return &Command{
		API:     APIUIC,
		Method:  "SetTrickMode",
		PowerOn: true,
		Args:    []Arg{{"trickmode", direction, HintStr}},
	}
}

// GetMusicInfo (UIC) reads metadata for the currently playing DLNA track.
func GetMusicInfo() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "GetMusicInfo",
		ExpectedResponse: "MusicInfo",
	}
}

// GetRadioInfo (CPM) reads metadata for the currently playing app stream.
func GetRadioInfo() *Command {
	return &Command{
		API:              APICPM,
		Method:           "GetRadioInfo",
		ExpectedResponse: "RadioInfo",
	}
}

// SetURLPlayback (UIC) starts playback of an audio stream URL. The speaker
// plays whatever the URL serves without checking the content; callers are
// expected to validate first.
func SetURLPlayback(streamURL string, bufferSize, seekTime, resume int) *Command {
	return &Command{
		API:     APIUIC,
		Method:  "SetUrlPlayback",
		PowerOn: true,
		Args: []Arg{
			{"url", streamURL, HintCDATA},
			{"buffersize", bufferSize, HintDec},
			{"seektime", seekTime, HintDec},
			{"resume", resume, HintDec},
		},
		ExpectedResponse: "UrlPlayback",
		TimeoutScale:     5,
	}
}

// SetSelectRadio (CPM) selects TuneIn as the active content provider.
// Required before preset list operations.
func SetSelectRadio() *Command {
	return &Command{
		API:              APICPM,
		Method:           "SetSelectRadio",
		ExpectedResponse: "RadioSelected",
	}
}

// GetPresetList (CPM) reads stored TuneIn presets.
func GetPresetList(startIndex, count int) *Command {
	return &Command{
		API:    APICPM,
		Method: "GetPresetList",
		Args: []Arg{
			{"startindex", startIndex, HintDec},
			{"listcount", count, HintDec},
		},
		ExpectedResponse: "PresetList",
	}
}

// SetPlayPreset (CPM) plays a stored TuneIn preset.
func SetPlayPreset(presetType, presetIndex int) *Command {
	return &Command{
		API:     APICPM,
		Method:  "SetPlayPreset",
		PowerOn: true,
		Args: []Arg{
			{"presettype", presetType, HintDec},
			{"presetindex", presetIndex, HintDec},
		},
		ExpectedResponse: "RadioInfo",
		TimeoutScale:     5,
	}
}

// BrowseMain (CPM) opens the TuneIn browse tree at its root. Browse
// replies are broadcast to every connected client, so reply matching must
// check the user identifier.
func BrowseMain(startIndex, count int) *Command {
	return &Command{
		API:    APICPM,
		Method: "BrowseMain",
		Args: []Arg{
			{"startindex", startIndex, HintDec},
			{"listcount", count, HintDec},
		},
		ExpectedResponse: "RadioList",
		UserCheck:        true,
	}
}

// GetGroupName (UIC) reads the multiroom group name.
func GetGroupName() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "GetGroupName",
		ExpectedResponse: "GroupName",
	}
}

// GroupMember identifies one member speaker when forming a group.
type GroupMember struct {
	IP  string
	MAC string
}

// SetMultispkGroupMain (UIC) forms a group with this speaker as master.
// Sent to the master; spkNum counts the master plus all members.
func SetMultispkGroupMain(name string, spkNum int, masterMAC, masterName string, members []GroupMember) *Command {
	args := []Arg{
		{"name", name, HintCDATA},
		{"index", 1, HintDec},
		{"type", "main", HintStr},
		{"spknum", spkNum, HintDec},
		{"audiosourcemacaddr", masterMAC, HintStr},
		{"audiosourcename", masterName, HintCDATA},
		{"audiosourcetype", "speaker", HintStr},
	}
	for _, m := range members {
		args = append(args,
			Arg{"subspkip", m.IP, HintStr},
			Arg{"subspkmacaddr", m.MAC, HintStr},
		)
	}
	return &Command{
		API:              APIUIC,
		Method:           "SetMultispkGroup",
		PowerOn:          true,
		Args:             args,
		ExpectedResponse: "MultispkGroup",
		TimeoutScale:     3,
	}
}

// SetMultispkGroupSub (UIC) attaches a member speaker to a group. Sent to
// the member.
func SetMultispkGroupSub(name string, spkNum int, masterIP, masterMAC string) *Command {
	return &Command{
		API:     APIUIC,
		Method:  "SetMultispkGroup",
		PowerOn: true,
		Args: []Arg{
			{"name", name, HintCDATA},
			{"index", 1, HintDec},
			{"type", "sub", HintStr},
			{"spknum", spkNum, HintDec},
			{"mainspkip", masterIP, HintStr},
			{"mainspkmacaddr", masterMAC, HintStr},
		},
		TimeoutScale: 3,
	}
}

// SetUngroup (UIC) detaches the speaker from its group.
func SetUngroup() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "SetUngroup",
		ExpectedResponse: "Ungroup",
	}
}

// GetCurrentEQMode (UIC) reads the active equalizer preset.
func GetCurrentEQMode() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "GetCurrentEQMode",
		ExpectedResponse: "CurrentEQMode",
	}
}

// Get7BandEQList (UIC) reads all equalizer presets stored on the speaker.
func Get7BandEQList() *Command {
	return &Command{
		API:              APIUIC,
		Method:           "Get7BandEQList",
		ExpectedResponse: "7BandEQList",
	}
}

// Set7BandEQMode (UIC) selects an equalizer preset by index.
func Set7BandEQMode(presetIndex int) *Command {
	return &Command{
		API:              APIUIC,
		Method:           "Set7bandEQMode",
		Args:             []Arg{{"presetindex", presetIndex, HintDec}},
		ExpectedResponse: "7bandEQMode",
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
