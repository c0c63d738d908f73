package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}
	if !strings.Contains(configDir, "wamctl") {
		t.Errorf("GetConfigDir() = %v, should contain 'wamctl'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Speakers == nil || reg.Groups == nil {
		t.Error("NewRegistry() maps not initialized")
	}
	if reg.Preferences == nil || !reg.Preferences.AutoDiscover {
		t.Errorf("NewRegistry().Preferences = %+v, want auto discover on", reg.Preferences)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	reg := NewRegistry()
	meta := reg.EnsureSpeaker("aa:bb:cc")
	meta.Nickname = "Kitchen"
	meta.Model = "WAM1500"
	reg.UpdateSpeakerLastSeen("aa:bb:cc", "192.168.1.100")
	reg.SetGroup("Downstairs", "aa:bb:cc", []string{"dd:ee:ff"})

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	sp := loaded.GetSpeaker("aa:bb:cc")
	if sp == nil {
		t.Fatal("speaker missing after round trip")
	}
	if sp.Nickname != "Kitchen" || sp.Model != "WAM1500" || sp.LastIP != "192.168.1.100" {
		t.Errorf("speaker meta = %+v", sp)
	}
	if sp.LastSeen.IsZero() {
		t.Error("LastSeen is zero after round trip")
	}

	g := loaded.Groups["Downstairs"]
	if g == nil || g.Master != "aa:bb:cc" || len(g.Members) != 1 || g.Members[0] != "dd:ee:ff" {
		t.Errorf("group = %+v", g)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	reg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if reg.Version != 1 {
		t.Errorf("Version = %d, want default registry", reg.Version)
	}
}

func TestLoadFromRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 99\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() accepted unsupported version")
	}
}

func TestSaveToWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := NewRegistry().SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# wamctl Configuration File") {
		t.Errorf("config file missing header:\n%s", data)
	}
}

func TestFindByNickname(t *testing.T) {
	reg := NewRegistry()
	reg.EnsureSpeaker("aa").Nickname = "Kitchen"
	reg.EnsureSpeaker("bb").Nickname = "Bedroom"

	if got := reg.FindByNickname("Bedroom"); got != "bb" {
		t.Errorf(`FindByNickname("Bedroom") = %q, want "bb"`, got)
	}
	if got := reg.FindByNickname("Garage"); got != "" {
		t.Errorf(`FindByNickname("Garage") = %q, want empty`, got)
	}
}

func TestUpdateSpeakerLastSeen(t *testing.T) {
	reg := NewRegistry()
	before := time.Now().Add(-time.Second)

	reg.UpdateSpeakerLastSeen("aa", "10.0.0.5")

	sp := reg.GetSpeaker("aa")
	if sp == nil {
		t.Fatal("speaker not created")
	}
	if sp.LastIP != "10.0.0.5" {
		t.Errorf("LastIP = %q, want 10.0.0.5", sp.LastIP)
	}
	if sp.LastSeen.Before(before) {
		t.Errorf("LastSeen = %v, want recent", sp.LastSeen)
	}
}
