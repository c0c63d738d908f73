package protocol

import (
	"errors"
	"fmt"
	"testing"
)

// response builds one wire message the way a speaker emits it.
func response(api, body string) []byte {
	return []byte(fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nContent-Length: %d\r\n\r\n%s",
		len(body), body))
}

func volumeBody(level int) string {
	return fmt.Sprintf(
		`<UIC><method>VolumeLevel</method><version>1.0</version>`+
			`<speakerip>10.0.0.5</speakerip><user_identifier>u1</user_identifier>`+
			`<response result="ok"><volume>%d</volume></response></UIC>`, level)
}

func TestStreamDecoderSingleFrame(t *testing.T) {
	dec := NewStreamDecoder()

	frames, errs := dec.Feed(response("UIC", volumeBody(12)))
	if len(errs) != 0 {
		t.Fatalf("Feed() errors = %v, want none", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("Feed() frames = %d, want 1", len(frames))
	}

	f := frames[0]
	if f.API != APIUIC {
		t.Errorf("API = %q, want %q", f.API, APIUIC)
	}
	if f.Method != "VolumeLevel" {
		t.Errorf("Method = %q, want VolumeLevel", f.Method)
	}
	if !f.OK {
		t.Error("OK = false, want true")
	}
	if f.User != "u1" {
		t.Errorf("User = %q, want u1", f.User)
	}
	if v, ok := f.Int("volume"); !ok || v != 12 {
		t.Errorf(`Int("volume") = %d, %t, want 12, true`, v, ok)
	}
	if dec.Buffered() != 0 {
		t.Errorf("Buffered() = %d, want 0", dec.Buffered())
	}
}

// Feeding the same stream in different chunkings must produce identical
// frames.
func TestStreamDecoderChunkingInvariance(t *testing.T) {
	var stream []byte
	stream = append(stream, response("UIC", volumeBody(5))...)
	stream = append(stream, response("UIC", volumeBody(10))...)
	stream = append(stream, response("UIC", volumeBody(15))...)

	for _, chunkSize := range []int{1, 2, 7, 64, len(stream)} {
		t.Run(fmt.Sprintf("chunk=%d", chunkSize), func(t *testing.T) {
			dec := NewStreamDecoder()
			var frames []*Frame

			for i := 0; i < len(stream); i += chunkSize {
				end := i + chunkSize
				if end > len(stream) {
					end = len(stream)
				}
				got, errs := dec.Feed(stream[i:end])
				if len(errs) != 0 {
					t.Fatalf("Feed() errors = %v, want none", errs)
				}
				frames = append(frames, got...)
			}

			if len(frames) != 3 {
				t.Fatalf("decoded %d frames, want 3", len(frames))
			}
			want := []int{5, 10, 15}
			for i, f := range frames {
				if v, _ := f.Int("volume"); v != want[i] {
					t.Errorf("frame %d volume = %d, want %d", i, v, want[i])
				}
			}
		})
	}
}

func TestStreamDecoderGarbageBetweenFrames(t *testing.T) {
	var stream []byte
	stream = append(stream, response("UIC", volumeBody(5))...)
	stream = append(stream, []byte("xxxx not a response xxxx")...)
	stream = append(stream, response("UIC", volumeBody(20))...)

	dec := NewStreamDecoder()
	frames, errs := dec.Feed(stream)

	if len(frames) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(frames))
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	var mfe *MalformedFrameError
	if !errors.As(errs[0], &mfe) {
		t.Fatalf("error type = %T, want *MalformedFrameError", errs[0])
	}
	if mfe.Discarded == 0 {
		t.Error("Discarded = 0, want > 0")
	}
	if v, _ := frames[1].Int("volume"); v != 20 {
		t.Errorf("second frame volume = %d, want 20", v)
	}
}

func TestStreamDecoderInvalidXMLBody(t *testing.T) {
	var stream []byte
	stream = append(stream, response("UIC", "<UIC><broken")...)
	stream = append(stream, response("UIC", volumeBody(8))...)

	dec := NewStreamDecoder()
	frames, errs := dec.Feed(stream)

	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if len(frames) != 1 {
		t.Fatalf("decoded %d frames, want 1", len(frames))
	}
	if v, _ := frames[0].Int("volume"); v != 8 {
		t.Errorf("frame volume = %d, want 8", v)
	}
}

func TestStreamDecoderMissingContentLength(t *testing.T) {
	stream := []byte("HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n")
	stream = append(stream, response("UIC", volumeBody(3))...)

	dec := NewStreamDecoder()
	frames, errs := dec.Feed(stream)

	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if len(frames) != 1 {
		t.Fatalf("decoded %d frames, want 1", len(frames))
	}
}

func TestStreamDecoderReset(t *testing.T) {
	dec := NewStreamDecoder()

	full := response("UIC", volumeBody(9))
	dec.Feed(full[:10])
	if dec.Buffered() == 0 {
		t.Fatal("Buffered() = 0 after partial feed, want > 0")
	}

	dec.Reset()
	if dec.Buffered() != 0 {
		t.Fatalf("Buffered() = %d after Reset, want 0", dec.Buffered())
	}

	frames, errs := dec.Feed(full)
	if len(errs) != 0 || len(frames) != 1 {
		t.Fatalf("Feed() after Reset = %d frames, %v errors, want 1 frame", len(frames), errs)
	}
}

func TestStreamDecoderCPMFrame(t *testing.T) {
	body := `<CPM><method>RadioInfo</method><version>0.1</version>` +
		`<response result="ok"><title>News</title><cpname>TuneIn</cpname></response></CPM>`

	dec := NewStreamDecoder()
	frames, errs := dec.Feed(response("CPM", body))

	if len(errs) != 0 || len(frames) != 1 {
		t.Fatalf("Feed() = %d frames, %v errors, want 1 frame", len(frames), errs)
	}
	f := frames[0]
	if f.API != APICPM {
		t.Errorf("API = %q, want %q", f.API, APICPM)
	}
	if got := f.Field("cpname"); got != "TuneIn" {
		t.Errorf(`Field("cpname") = %q, want TuneIn`, got)
	}
}
