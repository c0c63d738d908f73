package protocol

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Frame is one decoded message from a speaker, either the reply to a
// command or an unsolicited notification. The two are indistinguishable on
// the wire. A Frame is immutable once produced by the decoder.
type Frame struct {
	// API is the family that produced this message, APIUIC or APICPM.
	API string

	// Method is the response method name, e.g. "VolumeLevel".
	Method string

	// Version is the API version reported by the speaker.
	Version string

	// SpeakerIP is the sender address as reported inside the message.
	SpeakerIP string

	// User is the identifier of the client whose command triggered this
	// message. Notifications caused by other clients carry their
	// identifier, not ours.
	User string

	// OK reports whether the response element carried result="ok".
	OK bool

	// Raw is the XML body the frame was decoded from.
	Raw []byte

	fields map[string][]string
}

// Field returns the text of the named response field, or "" when absent.
// Attribute values are addressed as "element@attr".
func (f *Frame) Field(name string) string {
	if vs := f.fields[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Values returns all occurrences of the named response field, for fields
// the speaker repeats (e.g. group member entries).
func (f *Frame) Values(name string) []string {
	return f.fields[name]
}

// Int returns the named field parsed as an integer. The second return is
// false when the field is absent or not numeric.
func (f *Frame) Int(name string) (int, bool) {
	v := f.Field(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Has reports whether the named field is present, even if empty.
func (f *Frame) Has(name string) bool {
	_, ok := f.fields[name]
	return ok
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame{api=%s, method=%s, ok=%t, fields=%d}",
		f.API, f.Method, f.OK, len(f.fields))
}

// ParseFrame decodes one XML message body into a Frame. The body is the
// payload of a single HTTP response from the speaker:
//
//	<UIC>
//	  <method>VolumeLevel</method>
//	  <version>1.0</version>
//	  <speakerip>192.168.1.100</speakerip>
//	  <user_identifier>8a2f...</user_identifier>
//	  <response result="ok"><volume>15</volume></response>
//	</UIC>
//
// Fields under <response> are flattened by element name; element attributes
// are stored as "element@attr". Repeated elements accumulate in order and
// are available via Values.
func ParseFrame(body []byte) (*Frame, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	frame := &Frame{
		Raw:    append([]byte(nil), body...),
		fields: make(map[string][]string),
	}

	// Stack of open element names. Depth 0 is outside the root, depth 1 is
	// the root (UIC/CPM), depth 2 its direct children, depth 3+ response
	// content.
	var stack []string
	var text strings.Builder
	inResponse := false

	record := func(name, value string) {
		frame.fields[name] = append(frame.fields[name], value)
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			stack = append(stack, name)
			text.Reset()

			switch len(stack) {
			case 1:
				if name != APIUIC && name != APICPM {
					return nil, fmt.Errorf("unexpected root element <%s>", name)
				}
				frame.API = name
			case 2:
				if name == "response" {
					inResponse = true
					for _, attr := range t.Attr {
						if attr.Name.Local == "result" {
							frame.OK = attr.Value == "ok"
						}
					}
				}
			default:
				if inResponse {
					for _, attr := range t.Attr {
						record(name+"@"+attr.Name.Local, attr.Value)
					}
				}
			}

		case xml.CharData:
			text.Write(t)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced element </%s>", t.Name.Local)
			}
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			value := strings.TrimSpace(text.String())
			text.Reset()

			switch len(stack) {
			case 1:
				switch name {
				case "method":
					frame.Method = value
				case "version":
					frame.Version = value
				case "speakerip":
					frame.SpeakerIP = value
				case "user_identifier":
					frame.User = value
				case "response":
					inResponse = false
				}
			default:
				if inResponse && len(stack) >= 2 {
					record(name, value)
				}
			}
		}
	}

	if frame.API == "" {
		return nil, fmt.Errorf("no UIC or CPM root element")
	}
	return frame, nil
}
