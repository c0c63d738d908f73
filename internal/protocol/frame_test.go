package protocol

import (
	"strings"
	"testing"
)

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		verify  func(t *testing.T, f *Frame)
	}{
		{
			name: "volume response",
			body: `<UIC><method>VolumeLevel</method><version>1.0</version>` +
				`<speakerip>10.0.0.5</speakerip><user_identifier>u1</user_identifier>` +
				`<response result="ok"><volume>21</volume></response></UIC>`,
			verify: func(t *testing.T, f *Frame) {
				if f.API != APIUIC {
					t.Errorf("API = %q, want UIC", f.API)
				}
				if f.Method != "VolumeLevel" {
					t.Errorf("Method = %q, want VolumeLevel", f.Method)
				}
				if f.SpeakerIP != "10.0.0.5" {
					t.Errorf("SpeakerIP = %q, want 10.0.0.5", f.SpeakerIP)
				}
				if v, ok := f.Int("volume"); !ok || v != 21 {
					t.Errorf(`Int("volume") = %d, %t, want 21, true`, v, ok)
				}
			},
		},
		{
			name: "ng result",
			body: `<UIC><method>ErrorEvent</method><version>1.0</version>` +
				`<response result="ng"><errcode>43</errcode></response></UIC>`,
			verify: func(t *testing.T, f *Frame) {
				if f.OK {
					t.Error("OK = true, want false")
				}
				if v, _ := f.Int("errcode"); v != 43 {
					t.Errorf("errcode = %d, want 43", v)
				}
			},
		},
		{
			name: "nested fields and attributes",
			body: `<UIC><method>MultispkGroup</method><version>1.0</version>` +
				`<response result="ok"><groupname>Home</groupname>` +
				`<subspk idx="1"><subspkip>10.0.0.2</subspkip></subspk>` +
				`<subspk idx="2"><subspkip>10.0.0.3</subspkip></subspk>` +
				`</response></UIC>`,
			verify: func(t *testing.T, f *Frame) {
				if got := f.Field("groupname"); got != "Home" {
					t.Errorf(`Field("groupname") = %q, want Home`, got)
				}
				ips := f.Values("subspkip")
				if len(ips) != 2 || ips[0] != "10.0.0.2" || ips[1] != "10.0.0.3" {
					t.Errorf(`Values("subspkip") = %v, want both member IPs`, ips)
				}
				if got := f.Field("subspk@idx"); got != "1" {
					t.Errorf(`Field("subspk@idx") = %q, want 1`, got)
				}
			},
		},
		{
			name: "cdata field",
			body: `<UIC><method>SpkName</method><version>1.0</version>` +
				`<response result="ok"><spkname><![CDATA[Kitchen <3]]></spkname></response></UIC>`,
			verify: func(t *testing.T, f *Frame) {
				if got := f.Field("spkname"); got != "Kitchen <3" {
					t.Errorf(`Field("spkname") = %q, want "Kitchen <3"`, got)
				}
			},
		},
		{
			name: "empty response",
			body: `<UIC><method>RequestDeviceInfo</method><version>1.0</version>` +
				`<response result="ok"></response></UIC>`,
			verify: func(t *testing.T, f *Frame) {
				if !f.OK {
					t.Error("OK = false, want true")
				}
				if f.Has("volume") {
					t.Error(`Has("volume") = true, want false`)
				}
			},
		},
		{
			name:    "wrong root element",
			body:    `<html><body>404</body></html>`,
			wantErr: true,
		},
		{
			name:    "truncated document",
			body:    `<UIC><method>VolumeLevel`,
			wantErr: true,
		},
		{
			name:    "empty body",
			body:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFrame([]byte(tt.body))

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFrame() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tt.verify != nil {
				tt.verify(t, f)
			}
		})
	}
}

func TestFrameString(t *testing.T) {
	f, err := ParseFrame([]byte(
		`<UIC><method>MuteStatus</method><version>1.0</version>` +
			`<response result="ok"><mute>on</mute></response></UIC>`))
	if err != nil {
		t.Fatalf("ParseFrame() error = %v", err)
	}

	s := f.String()
	if !strings.Contains(s, "MuteStatus") {
		t.Errorf("String() = %q, want method name included", s)
	}
}
