package protocol

import "sort"

// MaxDeviceVolume is the top of the speaker's native volume scale. The
// public API uses a 0-100 scale; these helpers translate between the two.
const MaxDeviceVolume = 30

// EncodeVolume converts a 0-100 user volume to the device scale, clamping
// out-of-range input. Both translations round to nearest so a decode
// followed by an encode returns the original device level.
func EncodeVolume(user int) int {
	if user <= 0 {
		return 0
	}
	if user >= 100 {
		return MaxDeviceVolume
	}
	return (user*MaxDeviceVolume + 50) / 100
}

// DecodeVolume converts a device volume to the 0-100 user scale, clamping
// out-of-range input.
func DecodeVolume(device int) int {
	if device <= 0 {
		return 0
	}
	if device >= MaxDeviceVolume {
		return 100
	}
	return (device*100 + MaxDeviceVolume/2) / MaxDeviceVolume
}

// sourcesByName maps user-facing input source names to API function values.
// Not every model supports every source; the speaker rejects unsupported
// ones.
var sourcesByName = map[string]string{
	"AUX":             "aux",
	"Bluetooth":       "bt",
	"Coaxial":         "coaxial",
	"HDMI":            "hdmi",
	"HDMI 1":          "hdmi1",
	"HDMI 2":          "hdmi2",
	"Optical":         "optical",
	"TV SoundConnect": "soundshare",
	"USB":             "usb",
	"Wi-Fi":           "wifi",
}

var sourcesByAPI = func() map[string]string {
	m := make(map[string]string, len(sourcesByName))
	for name, api := range sourcesByName {
		m[api] = name
	}
	return m
}()

// EncodeSource converts a user-facing source name to its API function
// value. The second return is false for unknown names.
func EncodeSource(name string) (string, bool) {
	api, ok := sourcesByName[name]
	return api, ok
}

// DecodeSource converts an API function value back to the user-facing
// source name. Unknown values are returned unchanged so new firmware
// sources still surface.
func DecodeSource(api string) string {
	if name, ok := sourcesByAPI[api]; ok {
		return name
	}
	return api
}

// SourceNames returns all user-facing source names in sorted order.
func SourceNames() []string {
	names := make([]string, 0, len(sourcesByName))
	for name := range sourcesByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
