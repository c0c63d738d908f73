package speaker

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/soundmesh/wam/internal/event"
	"github.com/soundmesh/wam/internal/protocol"
	"github.com/soundmesh/wam/internal/state"
)

// Speaker is the client for one WAM speaker. Create one with New, call
// Connect, then Update to populate the state. All methods are safe for
// concurrent use.
type Speaker struct {
	host string
	opts options
	user string

	dispatcher *event.Dispatcher
	store      *state.Store
	conn       *conn
}

// New creates a client for the speaker at host. The connection is not
// established until Connect.
func New(host string, opts ...Option) *Speaker {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.user == "" {
		o.user = newUserID()
	}

	d := event.NewDispatcher(o.queueSize)
	st := state.NewStore()
	d.SetApply(st.Apply)

	return &Speaker{
		host:       host,
		opts:       o,
		user:       o.user,
		dispatcher: d,
		store:      st,
		conn:       newConn(host, o.port, o.user, d, o.dialTimeout),
	}
}

// Host returns the speaker's address as given to New.
func (s *Speaker) Host() string { return s.host }

// Addr returns the host:port of the control connection.
func (s *Speaker) Addr() string { return s.conn.addr() }

// Connect establishes the control connection. Connecting a connected
// speaker is a no-op.
func (s *Speaker) Connect(ctx context.Context) error {
	return s.conn.connect(ctx)
}

// Disconnect closes the control connection and releases the event
// delivery goroutine. The last known state remains readable. Idempotent.
func (s *Speaker) Disconnect() {
	s.conn.disconnect()
}

// Close disconnects and shuts down event delivery. The Speaker cannot be
// reused afterwards.
func (s *Speaker) Close() {
	s.conn.disconnect()
	s.dispatcher.Close()
}

// Connected reports whether the control connection is established.
func (s *Speaker) Connected() bool {
	return s.conn.connected()
}

// State returns a snapshot of the last known speaker state.
func (s *Speaker) State() state.Speaker {
	return s.store.Snapshot()
}

// Subscribe registers a handler for speaker events. Lower priorities run
// earlier. The returned id releases the handler via Unsubscribe.
func (s *Speaker) Subscribe(priority int, fn event.Handler) int {
	return s.dispatcher.Subscribe(priority, fn)
}

// Unsubscribe releases an event handler.
func (s *Speaker) Unsubscribe(id int) {
	s.dispatcher.Unsubscribe(id)
}

// Update re-reads the full speaker state. Call it once after Connect;
// afterwards the state tracks notifications on its own. The previous
// state is discarded first so values from an earlier session cannot
// survive a reconnect.
func (s *Speaker) Update(ctx context.Context) error {
	s.store.Resync()

	// Identity first: later steps branch on group role and submode.
	if _, err := s.request(ctx, protocol.GetMainInfo()); err != nil {
		return err
	}
	if _, err := s.request(ctx, protocol.GetSpkName()); err != nil {
		return err
	}
	if s.store.Snapshot().Group.Grouped() {
		if _, err := s.request(ctx, protocol.GetGroupName()); err != nil {
			return err
		}
	}
	if _, err := s.request(ctx, protocol.GetSoftwareVersion()); err != nil {
		return err
	}
	if _, err := s.request(ctx, protocol.GetApInfo()); err != nil {
		return err
	}

	for _, cmd := range []*protocol.Command{
		protocol.GetFunc(),
		protocol.GetVolume(),
		protocol.GetMute(),
		protocol.GetShuffleMode(),
		protocol.GetRepeatMode(),
	} {
		if _, err := s.request(ctx, cmd); err != nil {
			return err
		}
	}

	// Media metadata depends on what is currently playing.
	pb := s.store.Snapshot().Playback
	switch {
	case pb.Function == "wifi" && pb.Submode == "cp":
		if _, err := s.request(ctx, protocol.GetRadioInfo()); err != nil {
			return err
		}
	case pb.Function == "wifi" && pb.Submode == "dlna":
		if _, err := s.request(ctx, protocol.GetMusicInfo()); err != nil {
			return err
		}
	}

	return nil
}

// SetVolume sets the volume on the 0-100 user scale.
func (s *Speaker) SetVolume(ctx context.Context, level int) error {
	if level < 0 || level > 100 {
		return NewInvalidArgumentError(fmt.Sprintf("volume %d out of range 0-100", level))
	}
	_, err := s.request(ctx, protocol.SetVolume(protocol.EncodeVolume(level)))
	return err
}

// SetMute mutes or unmutes the speaker.
func (s *Speaker) SetMute(ctx context.Context, mute bool) error {
	_, err := s.request(ctx, protocol.SetMute(mute))
	return err
}

// SetShuffle enables or disables shuffle.
func (s *Speaker) SetShuffle(ctx context.Context, shuffle bool) error {
	_, err := s.request(ctx, protocol.SetShuffleMode(shuffle))
	return err
}

// Repeat modes accepted by SetRepeat.
var repeatModes = map[string]bool{"all": true, "one": true, "off": true}

// SetRepeat sets the repeat mode: "all", "one" or "off".
func (s *Speaker) SetRepeat(ctx context.Context, mode string) error {
	if !repeatModes[mode] {
		return NewInvalidArgumentError(fmt.Sprintf("repeat mode %q, want all, one or off", mode))
	}
	_, err := s.request(ctx, protocol.SetRepeatMode(mode))
	return err
}

// SetName renames the speaker.
func (s *Speaker) SetName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 64 {
		return NewInvalidArgumentError("speaker name must be 1-64 characters")
	}
	_, err := s.request(ctx, protocol.SetSpkName(name))
	return err
}

// SelectSource switches the input source by its user-facing name, e.g.
// "Bluetooth" or "Wi-Fi". Source names are listed by protocol.SourceNames.
func (s *Speaker) SelectSource(ctx context.Context, source string) error {
	fn, ok := protocol.EncodeSource(source)
	if !ok {
		return NewInvalidArgumentError(fmt.Sprintf("unknown source %q", source))
	}
	_, err := s.request(ctx, protocol.SetFunc(fn))
	return err
}

// Play resumes playback. The right command depends on what is playing:
// app sources take a CPM play, DLNA takes a UIC resume. Assumed URL
// playback cannot be resumed by the speaker at all.
func (s *Speaker) Play(ctx context.Context) error {
	pb := s.store.Snapshot().Playback
	switch pb.Submode {
	case "cp":
		_, err := s.request(ctx, protocol.SetCPMPlaybackControl("play"))
		return err
	case "dlna":
		_, err := s.request(ctx, protocol.SetPlaybackControl("resume"))
		return err
	default:
		return NewInvalidArgumentError(fmt.Sprintf("play is not supported in submode %q", pb.Submode))
	}
}

// Pause pauses playback. For assumed URL playback the speaker supports
// pause but no resume, so the speaker is muted as well and the state set
// to stopped.
func (s *Speaker) Pause(ctx context.Context) error {
	snap := s.store.Snapshot()
	switch {
	case snap.Playback.Submode == "cp":
		_, err := s.request(ctx, protocol.SetCPMPlaybackControl("pause"))
		return err
	case snap.Playback.Submode == "dlna":
		_, err := s.request(ctx, protocol.SetPlaybackControl("pause"))
		return err
	case snap.AssumedURLPlaying || snap.Playback.Submode == "url":
		if _, err := s.request(ctx, protocol.SetPlaybackControl("pause")); err != nil {
			return err
		}
		if err := s.SetMute(ctx, true); err != nil {
			return err
		}
		s.dispatcher.Publish(event.PlaybackEvent{State: event.PlaybackStopped})
		return nil
	default:
		return NewInvalidArgumentError(fmt.Sprintf("pause is not supported in submode %q", snap.Playback.Submode))
	}
}

// Stop stops playback of app sources.
func (s *Speaker) Stop(ctx context.Context) error {
	_, err := s.request(ctx, protocol.SetCPMPlaybackControl("stop"))
	return err
}

// Next skips to the next track. The speaker answers with a MusicInfo
// notification instead of a direct reply.
func (s *Speaker) Next(ctx context.Context) error {
	_, err := s.request(ctx, protocol.SetTrickMode("next"))
	return err
}

// Previous skips to the previous track.
func (s *Speaker) Previous(ctx context.Context) error {
	_, err := s.request(ctx, protocol.SetTrickMode("previous"))
	return err
}

// PlayURL starts playback of an audio stream URL. The speaker plays the
// response body unchecked; an unplayable stream can freeze the device, so
// only hand it URLs you trust. On success the state assumes URL playback
// until the speaker reports otherwise.
func (s *Speaker) PlayURL(ctx context.Context, streamURL string) error {
	u, err := url.Parse(streamURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewInvalidArgumentError(fmt.Sprintf("invalid stream URL %q", streamURL))
	}
	_, err = s.request(ctx, protocol.SetURLPlayback(streamURL, 0, 0, 0))
	return err
}

// RadioPreset is one TuneIn preset stored on the speaker. Kind is "my"
// for app-stored presets and "speaker" for device-stored ones; playing a
// preset needs both the kind and the content id.
type RadioPreset struct {
	ContentID   int
	Kind        string
	Title       string
	Description string
	Thumbnail   string
}

// RadioPresets reads the TuneIn presets stored on the speaker. TuneIn
// must be selected as the content provider first, which this does.
func (s *Speaker) RadioPresets(ctx context.Context) ([]RadioPreset, error) {
	if _, err := s.request(ctx, protocol.SetSelectRadio()); err != nil {
		return nil, err
	}
	f, err := s.request(ctx, protocol.GetPresetList(0, 30))
	if err != nil {
		return nil, err
	}

	titles := f.Values("title")
	kinds := f.Values("kind")
	ids := f.Values("contentid")
	descriptions := f.Values("description")
	thumbnails := f.Values("thumbnail")

	presets := make([]RadioPreset, 0, len(titles))
	for i, title := range titles {
		p := RadioPreset{ContentID: i, Title: title}
		if i < len(ids) {
			if n, err := strconv.Atoi(ids[i]); err == nil {
				p.ContentID = n
			}
		}
		if i < len(kinds) {
			p.Kind = kinds[i]
		}
		if i < len(descriptions) {
			p.Description = descriptions[i]
		}
		if i < len(thumbnails) {
			p.Thumbnail = thumbnails[i]
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// PlayPreset starts playback of a TuneIn preset from RadioPresets. The
// speaker replies with the new radio info, which lands in the state like
// any other track change.
func (s *Speaker) PlayPreset(ctx context.Context, p RadioPreset) error {
	presetType := 0
	if p.Kind == "speaker" {
		presetType = 1
	}
	_, err := s.request(ctx, protocol.SetPlayPreset(presetType, p.ContentID))
	return err
}

// RadioItem is one entry in the TuneIn browse tree, either a folder or a
// playable station.
type RadioItem struct {
	ContentID   int
	Title       string
	Description string
	Folder      bool
}

// BrowseRadio lists the root of the TuneIn browse tree. The speaker
// broadcasts browse replies to every connected client, so the reply here
// is matched on our own user identifier; another client browsing at the
// same time cannot satisfy the wait.
func (s *Speaker) BrowseRadio(ctx context.Context) ([]RadioItem, error) {
	if _, err := s.request(ctx, protocol.SetSelectRadio()); err != nil {
		return nil, err
	}
	f, err := s.request(ctx, protocol.BrowseMain(0, 30))
	if err != nil {
		return nil, err
	}

	// Folders carry no description, so the flattened frame fields do not
	// line up per item; decode the menu entries structurally instead.
	var doc struct {
		Items []struct {
			Type        string `xml:"type,attr"`
			Title       string `xml:"title"`
			ContentID   string `xml:"contentid"`
			Description string `xml:"description"`
		} `xml:"response>menulist>menuitem"`
	}
	// f.Raw already decoded once, so well-formedness cannot fail here.
	_ = xml.Unmarshal(f.Raw, &doc)

	items := make([]RadioItem, 0, len(doc.Items))
	for i, entry := range doc.Items {
		item := RadioItem{
			ContentID:   i,
			Title:       entry.Title,
			Description: entry.Description,
			Folder:      entry.Type == "0",
		}
		if n, err := strconv.Atoi(entry.ContentID); err == nil {
			item.ContentID = n
		}
		items = append(items, item)
	}
	return items, nil
}

// EQPreset is one equalizer preset stored on the speaker.
type EQPreset struct {
	Index int
	Name  string
}

// EQPresets reads the equalizer presets stored on the speaker.
func (s *Speaker) EQPresets(ctx context.Context) ([]EQPreset, error) {
	f, err := s.request(ctx, protocol.Get7BandEQList())
	if err != nil {
		return nil, err
	}

	names := f.Values("presetname")
	indexes := f.Values("presetindex")
	presets := make([]EQPreset, 0, len(names))
	for i, name := range names {
		p := EQPreset{Index: i, Name: name}
		if i < len(indexes) {
			if n, err := strconv.Atoi(indexes[i]); err == nil {
				p.Index = n
			}
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// CurrentEQPreset reads the active equalizer preset.
func (s *Speaker) CurrentEQPreset(ctx context.Context) (EQPreset, error) {
	f, err := s.request(ctx, protocol.GetCurrentEQMode())
	if err != nil {
		return EQPreset{}, err
	}
	p := EQPreset{Name: f.Field("presetname")}
	if n, ok := f.Int("presetindex"); ok {
		p.Index = n
	}
	return p, nil
}

// SetEQPreset selects an equalizer preset by index.
func (s *Speaker) SetEQPreset(ctx context.Context, index int) error {
	if index < 0 {
		return NewInvalidArgumentError("equalizer preset index must not be negative")
	}
	_, err := s.request(ctx, protocol.Set7BandEQMode(index))
	return err
}

// request sends a command and waits for its reply frame. Commands without
// an expected response return after the write. The waiter is registered
// before the write so a fast reply cannot be missed, and it matches only
// after the reply's state changes are applied.
func (s *Speaker) request(ctx context.Context, cmd *protocol.Command) (*protocol.Frame, error) {
	if cmd.ExpectedResponse == "" {
		return nil, s.conn.send(cmd)
	}

	match := func(e event.Event) bool {
		fe, ok := e.(event.FrameEvent)
		if !ok {
			return false
		}
		if fe.Frame.API != cmd.API || fe.Frame.Method != cmd.ExpectedResponse {
			return false
		}
		if cmd.UserCheck && fe.Frame.User != s.user {
			return false
		}
		return true
	}

	id, ch := s.dispatcher.Watch(match)
	defer s.dispatcher.Unwatch(id)

	if err := s.conn.send(cmd); err != nil {
		return nil, err
	}

	timeout := s.opts.requestTimeout * time.Duration(cmd.TimeoutMultiplier())
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e := <-ch:
		f := e.(event.FrameEvent).Frame
		if !f.OK {
			return f, NewRejectedError(cmd.Method, s.conn.addr())
		}
		return f, nil
	case <-timer.C:
		return nil, NewTimeoutError(cmd.ExpectedResponse, s.conn.addr(), nil)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// newUserID generates the per-client identifier sent as mobileUUID.
func newUserID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "wam-client"
	}
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		hex.EncodeToString(b[0:4]),
		hex.EncodeToString(b[4:6]),
		hex.EncodeToString(b[6:8]),
		hex.EncodeToString(b[8:10]),
		hex.EncodeToString(b[10:16]),
	)
}
