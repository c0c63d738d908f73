// Package config provides user configuration management for the wam tools.
//
// This package manages a YAML-based configuration file that stores
// client-side metadata for WAM speakers: nicknames, last known addresses
// and multiroom group rosters. The configuration follows OS-specific
// conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/wamctl/config.yaml or $HOME/.config/wamctl/config.yaml
//   - macOS: $HOME/.config/wamctl/config.yaml
//   - Windows: %LOCALAPPDATA%\wamctl\config.yaml
//
// # Group Rosters
//
// A group master only knows how many speakers it streams to, not which
// ones. The rosters stored here are the client's only record of group
// membership, and what makes later group changes possible.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	meta := registry.EnsureSpeaker("aa:bb:cc:dd:ee:ff")
//	meta.Nickname = "Kitchen"
//	registry.UpdateSpeakerLastSeen("aa:bb:cc:dd:ee:ff", "192.168.1.100")
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
package config
