//go:build ignore

// Decode-capture replays a raw TCP capture of speaker traffic through
// the stream decoder and prints every frame it finds.
//
// Captures can be taken with e.g.
//
//	tcpdump -i any -w - tcp port 55001 | tcpflow -r - -o capture/
//
// and fed in as the raw byte stream of one connection. The tool reports
// decode errors inline, which makes it useful for checking the decoder
// against traffic from speaker models not seen before.
//
// Usage: go run decode-capture.go <capture-file> [chunk-size]
package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/soundmesh/wam/internal/protocol"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: decode-capture <capture-file> [chunk-size]")
		fmt.Println("Example: decode-capture capture/192.168.001.100.55001.raw")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	// Feeding in small chunks exercises the decoder's reassembly the way
	// a live socket would.
	chunkSize := 1024
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			chunkSize = n
		}
	}

	fmt.Printf("=== WAM Capture Decoder ===\n")
	fmt.Printf("File: %s (%d bytes, %d byte chunks)\n\n", os.Args[1], len(data), chunkSize)

	decoder := protocol.NewStreamDecoder()
	methods := make(map[string]int)
	frameCount := 0
	errorCount := 0

	for off := 0; off < len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}

		frames, errs := decoder.Feed(data[off:end])
		for _, err := range errs {
			errorCount++
			fmt.Printf("  ! decode error near offset %d: %v\n", off, err)
		}
		for _, f := range frames {
			frameCount++
			methods[f.API+"/"+f.Method]++
			status := "ok"
			if !f.OK {
				status = "ng"
			}
			fmt.Printf("#%04d %-4s %-30s %s (%d bytes)\n",
				frameCount, f.API, f.Method, status, len(f.Raw))
		}
	}

	if buffered := decoder.Buffered(); buffered > 0 {
		fmt.Printf("\n%d bytes left undecoded at end of capture\n", buffered)
	}

	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Frames: %d, errors: %d\n\n", frameCount, errorCount)

	keys := make([]string, 0, len(methods))
	for k := range methods {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %4d  %s\n", methods[k], k)
	}
}
