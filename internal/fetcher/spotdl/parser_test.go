package spotdl

import "testing"

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want event
		ok   bool
	}{
		{
			name: "playlist total",
			line: "Found 12 songs in Road Trip (Playlist)",
			want: event{Kind: eventTotal, Total: 12},
			ok:   true,
		},
		{
			name: "single song total",
			line: "Found 1 song in Album Name (Album)",
			want: event{Kind: eventTotal, Total: 1},
			ok:   true,
		},
		{
			name: "downloaded",
			line: `Downloaded "Artist - Title": https://youtube.com/watch?v=abc`,
			want: event{Kind: eventDownloaded, Item: "Artist - Title"},
			ok:   true,
		},
		{
			name: "skipped counts as produced",
			line: "Skipping Artist - Title (file already exists)",
			want: event{Kind: eventDownloaded, Item: "Artist - Title"},
			ok:   true,
		},
		{
			name: "lookup error",
			line: "LookupError: No results found for song: Artist - Obscure B-Side",
			want: event{Kind: eventItemError, Item: "Artist - Obscure B-Side", Err: "no results found"},
			ok:   true,
		},
		{
			name: "audio provider error",
			line: "AudioProviderError: YT-DLP download error - Video unavailable",
			want: event{Kind: eventItemError, Err: "AudioProviderError: YT-DLP download error - Video unavailable"},
			ok:   true,
		},
		{
			name: "surrounding whitespace",
			line: "  Downloaded \"Artist - Title\": link  ",
			want: event{Kind: eventDownloaded, Item: "Artist - Title"},
			ok:   true,
		},
		{
			name: "progress bar noise",
			line: "Processing query: https://open.spotify.com/track/abc",
			ok:   false,
		},
		{
			name: "empty line",
			line: "",
			ok:   false,
		},
		{
			name: "blank line",
			line: "   ",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("parseLine(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Errorf("parseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}
