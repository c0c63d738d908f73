package config

import "time"

// Registry represents the entire user configuration file.
// This stores user-defined metadata for speakers and application preferences.
type Registry struct {
	Version     int                     `yaml:"version"`
	Speakers    map[string]*SpeakerMeta `yaml:"speakers,omitempty"` // Keyed by speaker MAC address
	Groups      map[string]*GroupMeta   `yaml:"groups,omitempty"`   // Keyed by group name
	Preferences *Preferences            `yaml:"preferences,omitempty"`
}

// SpeakerMeta represents user-defined metadata for a single speaker.
// This is keyed by the speaker's MAC address in the Registry. The speaker
// itself stores its name; everything here is purely client-side.
type SpeakerMeta struct {
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	Model    string    `yaml:"model,omitempty"`     // Model name reported by the speaker
	LastIP   string    `yaml:"last_ip,omitempty"`   // Last known IP address
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery/connection time
}

// GroupMeta remembers the membership of a multiroom group. The master
// speaker does not know who its members are, only how many, so the client
// keeps the roster to make group changes possible.
type GroupMeta struct {
	Master  string   `yaml:"master"`  // MAC address of the master speaker
	Members []string `yaml:"members"` // MAC addresses of member speakers
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool `yaml:"auto_discover"`    // Enable automatic mDNS discovery on startup
	DiscoverTimeout int  `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
	RequestTimeout  int  `yaml:"request_timeout"`  // Speaker command timeout in seconds
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:  1,
		Speakers: make(map[string]*SpeakerMeta),
		Groups:   make(map[string]*GroupMeta),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 10,
			RequestTimeout:  5,
		},
	}
}

// GetSpeaker retrieves speaker metadata by MAC address.
// Returns nil if the speaker doesn't exist in the registry.
func (r *Registry) GetSpeaker(mac string) *SpeakerMeta {
	return r.Speakers[mac]
}

// EnsureSpeaker ensures a speaker entry exists in the registry.
// Returns the entry (existing or newly created).
func (r *Registry) EnsureSpeaker(mac string) *SpeakerMeta {
	if r.Speakers == nil {
		r.Speakers = make(map[string]*SpeakerMeta)
	}
	if sp, exists := r.Speakers[mac]; exists {
		return sp
	}
	sp := &SpeakerMeta{}
	r.Speakers[mac] = sp
	return sp
}

// UpdateSpeakerLastSeen updates the last seen timestamp and IP for a speaker.
func (r *Registry) UpdateSpeakerLastSeen(mac, ip string) {
	sp := r.EnsureSpeaker(mac)
	sp.LastSeen = time.Now()
	sp.LastIP = ip
}

// FindByNickname returns the MAC of the speaker with the given nickname,
// or empty string when no speaker carries it.
func (r *Registry) FindByNickname(nickname string) string {
	for mac, sp := range r.Speakers {
		if sp.Nickname == nickname {
			return mac
		}
	}
	return ""
}

// SetGroup records the membership of a multiroom group.
func (r *Registry) SetGroup(name, master string, members []string) {
	if r.Groups == nil {
		r.Groups = make(map[string]*GroupMeta)
	}
	r.Groups[name] = &GroupMeta{Master: master, Members: members}
}

// DeleteGroup forgets a group roster.
func (r *Registry) DeleteGroup(name string) {
	delete(r.Groups, name)
}
