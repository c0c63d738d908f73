package protocol

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
)

// API families understood by WAM speakers.
const (
	APIUIC = "UIC" // speaker control (volume, playback, grouping, ...)
	APICPM = "CPM" // content provider services (TuneIn, apps, ...)
)

// Argument type hints. The speaker dispatches on these when parsing the
// command payload, so they must match the vendor API exactly.
const (
	HintStr    = "str"
	HintDec    = "dec"
	HintCDATA  = "cdata"
	HintStrArr = "str_arr"
	HintDecArr = "dec_arr"
)

// Arg is one typed parameter of an API command.
type Arg struct {
	Name  string
	Value any // string, int, []string or []int depending on Hint
	Hint  string
}

// Command describes one API request to a speaker. Commands are built with
// the constructor functions in this package (SetVolume, GetMute, ...) and
// encoded with EncodeRequest.
type Command struct {
	API    string // APIUIC or APICPM
	Method string
	Args   []Arg

	// PowerOn asks the speaker to wake from standby before executing.
	PowerOn bool

	// ExpectedResponse is the method name of the reply this command
	// produces, or empty when the speaker does not answer. The protocol
	// carries no correlation token, so this name is the only way to match
	// a reply to a command.
	ExpectedResponse string

	// UserCheck restricts reply matching to responses carrying our own
	// user identifier. Some notifications are broadcast with the
	// identifier of whichever client triggered them.
	UserCheck bool

	// TimeoutScale multiplies the caller's request timeout. Grouping
	// commands in particular take longer than regular calls.
	TimeoutScale int
}

// Payload returns the XML command payload, before URL encoding.
func (c *Command) Payload() string {
	var b strings.Builder

	if c.PowerOn {
		b.WriteString("<pwron>on</pwron>")
	}
	b.WriteString("<name>")
	b.WriteString(c.Method)
	b.WriteString("</name>")

	for _, arg := range c.Args {
		writeArg(&b, arg)
	}

	return b.String()
}

// URL returns the request path carrying the URL-encoded payload, e.g.
// "/UIC?cmd=%3Cname%3EGetVolume%3C%2Fname%3E". The payload goes in a query
// parameter, so ampersands from escaped XML entities must be percent-encoded.
// Spaces are sent as %20 rather than "+" to match what the vendor app sends.
func (c *Command) URL() string {
	cmd := strings.ReplaceAll(url.QueryEscape(c.Payload()), "+", "%20")
	return fmt.Sprintf("/%s?cmd=%s", c.API, cmd)
}

// EncodeRequest produces the complete wire request for this command. The
// speaker identifies the sender by the mobileUUID header; responses to
// commands sent with a UUID echo it back as the user identifier.
func (c *Command) EncodeRequest(host string, port int, user string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", c.URL())
	fmt.Fprintf(&b, "Host: %s:%d\r\n", host, port)
	fmt.Fprintf(&b, "mobileUUID: %s\r\n", user)
	b.WriteString("mobileName: Wireless Audio\r\n")
	b.WriteString("mobileVersion: 1.0\r\n")
	b.WriteString("\r\n")
	return b.Bytes()
}

// TimeoutMultiplier returns the effective timeout scale, treating the zero
// value as 1.
func (c *Command) TimeoutMultiplier() int {
	if c.TimeoutScale < 1 {
		return 1
	}
	return c.TimeoutScale
}

func (c *Command) String() string {
	return fmt.Sprintf("Command{api=%s, method=%s, args=%d, expect=%s}",
		c.API, c.Method, len(c.Args), c.ExpectedResponse)
}

func writeArg(b *strings.Builder, arg Arg) {
	switch arg.Hint {
	case HintCDATA:
		fmt.Fprintf(b, `<p type="cdata" name="%s" val="empty"><![CDATA[%v]]></p>`,
			arg.Name, arg.Value)

	case HintStrArr, HintDecArr:
		fmt.Fprintf(b, `<p type="%s" name="%s" val="empty">`, arg.Hint, arg.Name)
		for _, item := range argItems(arg.Value) {
			fmt.Fprintf(b, "<item>%s</item>", escapeXML(item))
		}
		b.WriteString("</p>")

	default:
		fmt.Fprintf(b, `<p type="%s" name="%s" val="%s"/>`,
			arg.Hint, arg.Name, escapeXML(fmt.Sprintf("%v", arg.Value)))
	}
}

// argItems normalizes an array argument value to its item strings. A scalar
// value becomes a single-item array, matching the vendor API's behavior.
func argItems(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []int:
		items := make([]string, len(v))
		for i, n := range v {
			items[i] = fmt.Sprintf("%d", n)
		}
		return items
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}

func escapeXML(s string) string {
	var b bytes.Buffer
	// xml.EscapeText only fails on writer errors, which bytes.Buffer
	// never returns.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
