// Package protocol implements the Samsung WAM speaker wire protocol.
//
// This package handles construction of API requests and incremental decoding
// of the speaker's notification stream. WAM speakers listen on TCP port 55001
// for HTTP GET requests whose path carries a URL-encoded XML command; the
// speaker answers on the same stream with HTTP/1.1 responses whose bodies are
// XML documents. As long as the connection stays open, the speaker also
// pushes unsolicited responses for every state change, including changes
// caused by other clients.
//
// # Request Format
//
// A command is an XML payload wrapped in an HTTP GET request:
//
//	GET /UIC?cmd=%3Cname%3ESetVolume%3C%2Fname%3E... HTTP/1.1
//	Host: 192.168.1.100:55001
//	mobileUUID: 8a2f...
//	mobileName: Wireless Audio
//	mobileVersion: 1.0
//
// The XML payload names the API method and its typed parameters:
//
//	<pwron>on</pwron><name>SetVolume</name><p type="dec" name="volume" val="15"/>
//
// Two API families exist: UIC (speaker control) and CPM (content providers,
// e.g. TuneIn). Encoding is pure: any well-formed Command encodes without
// error. Argument validation happens above this layer.
//
// # Notification Stream
//
// The inbound stream is a concatenation of HTTP/1.1 responses with no
// delimiter between messages and no chunked encoding. Messages are recovered
// by scanning for the status line and honoring Content-Length, carrying any
// unparsed suffix over to the next read. StreamDecoder implements this as an
// incremental decoder:
//
//	dec := protocol.NewStreamDecoder()
//	for {
//	    n, err := conn.Read(buf)
//	    frames, errs := dec.Feed(buf[:n])
//	    ...
//	}
//
// Corrupt bytes between messages surface as a MalformedFrameError and the
// decoder resynchronizes at the next status line; a single bad notification
// never terminates the stream.
//
// # Frames
//
// Each decoded body becomes a Frame: the API family, the response method
// name, the sender identity and a field tree parsed from the <response>
// element. Frames are immutable once produced. The protocol has no
// request/response correlation token; replies are matched to commands only
// by method name (Command.ExpectedResponse).
//
// # Thread Safety
//
// Command construction and frame decoding are stateless and safe for
// concurrent use. A StreamDecoder instance serves a single connection and is
// not safe for concurrent Feed calls.
package protocol
