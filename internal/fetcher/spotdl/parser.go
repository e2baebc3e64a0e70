package spotdl

import (
	"regexp"
	"strconv"
	"strings"
)

type eventKind int

const (
	eventTotal eventKind = iota
	eventDownloaded
	eventItemError
)

type event struct {
	Kind  eventKind
	Total int
	Item  string
	Err   string
}

var (
	// Found 12 songs in Road Trip (Playlist)
	foundRe = regexp.MustCompile(`^Found (\d+) songs? in `)
	// Downloaded "Artist - Title": https://...
	downloadedRe = regexp.MustCompile(`^Downloaded "([^"]+)"`)
	// Skipping Artist - Title (file already exists)
	skippedRe = regexp.MustCompile(`^Skipping (.+) \(file already exists\)`)
	// LookupError: No results found for song: Artist - Title
	lookupRe = regexp.MustCompile(`^LookupError: No results found for song: (.+)$`)
	// AudioProviderError: YT-DLP download error - ...
	toolErrRe = regexp.MustCompile(`^([A-Za-z]+Error): (.+)$`)
)

// parseLine classifies a single line of spotdl stdout. Lines that carry no
// progress information return ok=false.
func parseLine(line string) (event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return event{}, false
	}

	if m := foundRe.FindStringSubmatch(line); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return event{}, false
		}
		return event{Kind: eventTotal, Total: n}, true
	}
	if m := downloadedRe.FindStringSubmatch(line); m != nil {
		return event{Kind: eventDownloaded, Item: m[1]}, true
	}
	// An already-present file still counts as a produced item.
	if m := skippedRe.FindStringSubmatch(line); m != nil {
		return event{Kind: eventDownloaded, Item: m[1]}, true
	}
	if m := lookupRe.FindStringSubmatch(line); m != nil {
		return event{Kind: eventItemError, Item: m[1], Err: "no results found"}, true
	}
	if m := toolErrRe.FindStringSubmatch(line); m != nil {
		return event{Kind: eventItemError, Item: "", Err: m[1] + ": " + m[2]}, true
	}
	return event{}, false
}
