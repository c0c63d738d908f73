package main

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundmesh/wam/internal/config"
	"github.com/soundmesh/wam/internal/discovery"
	"github.com/soundmesh/wam/internal/protocol"
	"github.com/soundmesh/wam/internal/speaker"
	"github.com/soundmesh/wam/internal/ui"
)

// Command flags
var (
	scanTimeout    int
	noVerify       bool
	requestTimeout int
)

func init() {
	rootCmd.PersistentFlags().IntVar(&requestTimeout, "timeout", 0, "Speaker command timeout in seconds (0 uses the config default)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(muteCmd)
	rootCmd.AddCommand(unmuteCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
	rootCmd.AddCommand(playURLCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(shuffleCmd)
	rootCmd.AddCommand(repeatCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(nicknameCmd)
	rootCmd.AddCommand(eqCmd)
	rootCmd.AddCommand(presetCmd)
	rootCmd.AddCommand(radioCmd)
}

// scanCmd discovers speakers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for WAM speakers on the network",
	Long: `Scan for WAM speakers using mDNS discovery.

Speakers advertise a Spotify Connect endpoint over mDNS; every candidate
found that way is probed on the speaker control port, so only hosts that
actually answer the speaker API are marked as verified. Discovered
speakers are remembered in the wamctl config file.`,
	Example: `  # Scan for 10 seconds (default)
  wamctl scan

  # Quick 3-second scan
  wamctl scan --scan-timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 10, "Scan timeout in seconds")
	scanCmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip the control port probe")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for WAM speakers (timeout: %ds)...\n\n", scanTimeout)

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second
	scanner.SkipVerify = noVerify

	devices, err := scanner.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Println(ui.RenderDeviceList(devices))

	if len(devices) == 0 {
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the speakers are powered on and on the same network")
		fmt.Println("  - Try increasing --scan-timeout for slower networks")
		fmt.Println("  - Speakers can always be addressed by IP directly")
		return nil
	}

	rememberDevices(devices)

	fmt.Println()
	fmt.Println("Use 'wamctl status <speaker>' to inspect a speaker")
	return nil
}

// rememberDevices refreshes the last seen timestamps of registry
// speakers found again by the scan. The mDNS announcement carries no MAC
// address, so matching is by last known IP; new speakers enter the
// registry through 'wamctl nickname'. A failure here only costs the
// nickname shortcut, so it is not fatal.
func rememberDevices(devices []*discovery.Device) {
	registry, err := config.LoadRegistry()
	if err != nil {
		fmt.Printf("Warning: cannot update config: %v\n", err)
		return
	}

	changed := false
	for _, d := range devices {
		if !d.Verified {
			continue
		}
		for mac, meta := range registry.Speakers {
			if meta.LastIP == d.IP {
				registry.UpdateSpeakerLastSeen(mac, d.IP)
				changed = true
			}
		}
	}
	if !changed {
		return
	}
	if err := registry.Save(); err != nil {
		fmt.Printf("Warning: cannot save config: %v\n", err)
	}
}

// statusCmd shows the current state of one speaker
var statusCmd = &cobra.Command{
	Use:   "status <speaker>",
	Short: "Show speaker status",
	Long: `Connect to a speaker, read its full state and print it.

The speaker can be given as an IP address or as a nickname from the
wamctl config file.`,
	Example: `  wamctl status 192.168.1.100
  wamctl status kitchen`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			fmt.Println(ui.RenderStatus(sp.State(), sp.Addr(), ui.GetTerminalWidth()))
			return nil
		})
	},
}

// monitorCmd follows a speaker's state live
var monitorCmd = &cobra.Command{
	Use:   "monitor <speaker>",
	Short: "Follow speaker state live",
	Long: `Open a live view of a speaker that updates on every state change
the speaker reports: volume turns, track changes, grouping, anything
done from the Samsung app or another controller.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, err := connectSpeaker(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer sp.Close()
		return ui.RunMonitor(sp)
	},
}

// volumeCmd reads or sets the volume
var volumeCmd = &cobra.Command{
	Use:   "volume <speaker> [level]",
	Short: "Get or set the volume (0-100)",
	Example: `  # Read the current volume
  wamctl volume kitchen

  # Set the volume to 35
  wamctl volume kitchen 35`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			if len(args) == 1 {
				fmt.Printf("%d\n", sp.State().Volume)
				return nil
			}
			level, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid volume %q", args[1])
			}
			if err := sp.SetVolume(ctx, level); err != nil {
				return err
			}
			fmt.Printf("%s Volume set to %d\n", ui.SuccessMarker, level)
			return nil
		})
	},
}

var muteCmd = &cobra.Command{
	Use:   "mute <speaker>",
	Short: "Mute a speaker",
	Args:  cobra.ExactArgs(1),
	RunE:  setMute(true),
}

var unmuteCmd = &cobra.Command{
	Use:   "unmute <speaker>",
	Short: "Unmute a speaker",
	Args:  cobra.ExactArgs(1),
	RunE:  setMute(false),
}

func setMute(mute bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			if err := sp.SetMute(ctx, mute); err != nil {
				return err
			}
			if mute {
				fmt.Printf("%s Muted\n", ui.SuccessMarker)
			} else {
				fmt.Printf("%s Unmuted\n", ui.SuccessMarker)
			}
			return nil
		})
	}
}

var playCmd = &cobra.Command{
	Use:   "play <speaker>",
	Short: "Resume playback",
	Args:  cobra.ExactArgs(1),
	RunE:  playbackAction("Playing", (*speaker.Speaker).Play),
}

var pauseCmd = &cobra.Command{
	Use:   "pause <speaker>",
	Short: "Pause playback",
	Args:  cobra.ExactArgs(1),
	RunE:  playbackAction("Paused", (*speaker.Speaker).Pause),
}

var stopCmd = &cobra.Command{
	Use:   "stop <speaker>",
	Short: "Stop playback",
	Args:  cobra.ExactArgs(1),
	RunE:  playbackAction("Stopped", (*speaker.Speaker).Stop),
}

var nextCmd = &cobra.Command{
	Use:   "next <speaker>",
	Short: "Skip to the next track",
	Args:  cobra.ExactArgs(1),
	RunE:  playbackAction("Skipped forward", (*speaker.Speaker).Next),
}

var prevCmd = &cobra.Command{
	Use:     "prev <speaker>",
	Aliases: []string{"previous"},
	Short:   "Skip to the previous track",
	Args:    cobra.ExactArgs(1),
	RunE:    playbackAction("Skipped back", (*speaker.Speaker).Previous),
}

func playbackAction(done string, fn func(*speaker.Speaker, context.Context) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			if err := fn(sp, ctx); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", ui.SuccessMarker, done)
			return nil
		})
	}
}

// playURLCmd streams an audio URL
var playURLCmd = &cobra.Command{
	Use:   "play-url <speaker> <url>",
	Short: "Play an audio stream URL",
	Long: `Hand the speaker an http(s) audio stream URL to play, for example an
internet radio stream.

The speaker plays whatever the URL serves without checking it first. An
unplayable stream can freeze the speaker until a power cycle, so only
use URLs you trust.`,
	Example: `  wamctl play-url kitchen http://ice1.somafm.com/groovesalad-128-mp3`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			if err := sp.PlayURL(ctx, args[1]); err != nil {
				return err
			}
			fmt.Printf("%s Streaming %s\n", ui.SuccessMarker, args[1])
			return nil
		})
	},
}

// sourceCmd reads or switches the input source
var sourceCmd = &cobra.Command{
	Use:   "source <speaker> [name]",
	Short: "Get or set the input source",
	Long: `Without a name, prints the speaker's current input source and the
sources it can switch to. With a name, switches to that source.`,
	Example: `  wamctl source kitchen
  wamctl source kitchen Bluetooth
  wamctl source kitchen "Wi-Fi"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			if len(args) == 1 {
				fmt.Printf("Current source: %s\n\nAvailable sources:\n", sp.State().Playback.Source)
				for _, name := range protocol.SourceNames() {
					fmt.Printf("  %s\n", name)
				}
				return nil
			}
			if err := sp.SelectSource(ctx, args[1]); err != nil {
				return err
			}
			fmt.Printf("%s Source set to %s\n", ui.SuccessMarker, args[1])
			return nil
		})
	},
}

// shuffleCmd switches shuffle on or off
var shuffleCmd = &cobra.Command{
	Use:       "shuffle <speaker> <on|off>",
	Short:     "Enable or disable shuffle",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := parseOnOff(args[1])
		if err != nil {
			return err
		}
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			if err := sp.SetShuffle(ctx, on); err != nil {
				return err
			}
			fmt.Printf("%s Shuffle %s\n", ui.SuccessMarker, args[1])
			return nil
		})
	},
}

// repeatCmd sets the repeat mode
var repeatCmd = &cobra.Command{
	Use:   "repeat <speaker> <all|one|off>",
	Short: "Set the repeat mode",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			if err := sp.SetRepeat(ctx, args[1]); err != nil {
				return err
			}
			fmt.Printf("%s Repeat %s\n", ui.SuccessMarker, args[1])
			return nil
		})
	},
}

// nameCmd renames the speaker itself
var nameCmd = &cobra.Command{
	Use:   "name <speaker> <new-name>",
	Short: "Rename a speaker",
	Long: `Set the name the speaker reports about itself. This is the name shown
in the Samsung app and in mDNS discovery, stored on the device.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			if err := sp.SetName(ctx, args[1]); err != nil {
				return err
			}
			fmt.Printf("%s Speaker renamed to %q\n", ui.SuccessMarker, args[1])
			return nil
		})
	},
}

// nicknameCmd sets a client-side nickname in the config file
var nicknameCmd = &cobra.Command{
	Use:   "nickname <speaker> <nickname>",
	Short: "Give a speaker a local nickname",
	Long: `Store a nickname for a speaker in the wamctl config file. Unlike
'wamctl name' this changes nothing on the device; the nickname is only a
local shorthand usable wherever a speaker address is expected.`,
	Example: `  wamctl nickname 192.168.1.100 kitchen
  wamctl volume kitchen 35`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			mac := sp.State().MAC
			if mac == "" {
				return fmt.Errorf("speaker did not report a MAC address")
			}

			registry, err := config.LoadRegistry()
			if err != nil {
				return err
			}
			meta := registry.EnsureSpeaker(mac)
			meta.Nickname = args[1]
			meta.Model = sp.State().Model
			registry.UpdateSpeakerLastSeen(mac, sp.Host())
			if err := registry.Save(); err != nil {
				return err
			}
			fmt.Printf("%s %s is now %q\n", ui.SuccessMarker, sp.Host(), args[1])
			return nil
		})
	},
}

// eqCmd lists or selects equalizer presets
var eqCmd = &cobra.Command{
	Use:   "eq <speaker> [preset]",
	Short: "List or select equalizer presets",
	Example: `  # List the presets stored on the speaker
  wamctl eq kitchen

  # Select preset 2
  wamctl eq kitchen 2`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			if len(args) == 1 {
				presets, err := sp.EQPresets(ctx)
				if err != nil {
					return err
				}
				for _, p := range presets {
					fmt.Printf("  %d  %s\n", p.Index, p.Name)
				}
				return nil
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid preset index %q", args[1])
			}
			if err := sp.SetEQPreset(ctx, index); err != nil {
				return err
			}
			fmt.Printf("%s Equalizer preset set to %d\n", ui.SuccessMarker, index)
			return nil
		})
	},
}

// presetCmd lists or plays TuneIn presets
var presetCmd = &cobra.Command{
	Use:   "preset <speaker> [number]",
	Short: "List or play TuneIn presets",
	Long: `Without a number, lists the TuneIn presets stored on the speaker.
With a number, plays that preset.`,
	Example: `  # List the presets
  wamctl preset kitchen

  # Play the first one
  wamctl preset kitchen 1`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			presets, err := sp.RadioPresets(ctx)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if len(presets) == 0 {
					fmt.Println("No presets stored on the speaker.")
					return nil
				}
				for i, p := range presets {
					line := p.Title
					if p.Description != "" {
						line += " · " + p.Description
					}
					fmt.Printf("  %d  %s\n", i+1, line)
				}
				return nil
			}

			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 || n > len(presets) {
				return fmt.Errorf("preset number must be 1-%d", len(presets))
			}
			p := presets[n-1]
			if err := sp.PlayPreset(ctx, p); err != nil {
				return err
			}
			fmt.Printf("%s Playing %s\n", ui.SuccessMarker, p.Title)
			return nil
		})
	},
}

// radioCmd browses the TuneIn directory
var radioCmd = &cobra.Command{
	Use:     "radio <speaker>",
	Short:   "Browse the TuneIn directory",
	Long:    `Lists the top level of the TuneIn directory as the speaker sees it.`,
	Example: `  wamctl radio kitchen`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			items, err := sp.BrowseRadio(ctx)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("The speaker returned an empty directory.")
				return nil
			}
			for _, item := range items {
				line := item.Title
				if item.Folder {
					line += "/"
				} else if item.Description != "" {
					line += " · " + item.Description
				}
				fmt.Printf("  %s\n", line)
			}
			return nil
		})
	},
}

// resolveHost turns a speaker argument (IP address or nickname) into a
// host address using the config registry.
func resolveHost(arg string) (string, error) {
	if net.ParseIP(arg) != nil {
		return arg, nil
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return "", err
	}
	if mac := registry.FindByNickname(arg); mac != "" {
		if meta := registry.GetSpeaker(mac); meta != nil && meta.LastIP != "" {
			return meta.LastIP, nil
		}
		return "", fmt.Errorf("no known address for %q, run 'wamctl scan' first", arg)
	}

	var nicknames []string
	for _, meta := range registry.Speakers {
		if meta.Nickname != "" {
			nicknames = append(nicknames, meta.Nickname)
		}
	}
	sort.Strings(nicknames)
	if len(nicknames) > 0 {
		return "", fmt.Errorf("unknown speaker %q (known nicknames: %v)", arg, nicknames)
	}
	return "", fmt.Errorf("unknown speaker %q, give an IP address or run 'wamctl scan'", arg)
}

// connectSpeaker resolves, connects and populates a speaker client. The
// caller owns the returned speaker and must Close it.
func connectSpeaker(ctx context.Context, arg string) (*speaker.Speaker, error) {
	host, err := resolveHost(arg)
	if err != nil {
		return nil, err
	}

	var opts []speaker.Option
	if requestTimeout > 0 {
		opts = append(opts, speaker.WithRequestTimeout(time.Duration(requestTimeout)*time.Second))
	} else if registry, err := config.LoadRegistry(); err == nil && registry.Preferences.RequestTimeout > 0 {
		opts = append(opts, speaker.WithRequestTimeout(time.Duration(registry.Preferences.RequestTimeout)*time.Second))
	}

	sp := speaker.New(host, opts...)
	if err := sp.Connect(ctx); err != nil {
		sp.Close()
		return nil, err
	}
	if err := sp.Update(ctx); err != nil {
		sp.Close()
		return nil, fmt.Errorf("failed to read state of %s: %w", host, err)
	}
	return sp, nil
}

// withSpeaker runs fn against a connected speaker and cleans up after.
func withSpeaker(ctx context.Context, arg string, fn func(context.Context, *speaker.Speaker) error) error {
	sp, err := connectSpeaker(ctx, arg)
	if err != nil {
		return err
	}
	defer sp.Close()
	return fn(ctx, sp)
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value %q, want on or off", s)
	}
}
