// Package reference validates caller-supplied source references against the
// allow-list of Spotify link shapes the download tool understands.
package reference

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

type Kind string

const (
	KindTrack    Kind = "track"
	KindPlaylist Kind = "playlist"
	KindAlbum    Kind = "album"
)

const acceptedHost = "open.spotify.com"

var ErrUnsupported = errors.New("unsupported source reference")

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Reference is a parsed, validated source reference.
type Reference struct {
	Kind Kind
	ID   string
	URL  string
}

// Multi reports whether the reference may resolve to more than one item.
func (r Reference) Multi() bool {
	return r.Kind == KindPlaylist || r.Kind == KindAlbum
}

// Parse validates raw against the accepted link shapes:
// https://open.spotify.com/{track|playlist|album}/{id}. Anything else is
// rejected with ErrUnsupported.
func Parse(raw string) (Reference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Reference{}, fmt.Errorf("%w: empty reference", ErrUnsupported)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %s", ErrUnsupported, raw)
	}
	if u.Scheme != "https" || u.Host != acceptedHost {
		return Reference{}, fmt.Errorf("%w: expected an %s link", ErrUnsupported, acceptedHost)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	// Localized links carry an intl-xx prefix before the content type.
	if len(segments) == 3 && strings.HasPrefix(segments[0], "intl-") {
		segments = segments[1:]
	}
	if len(segments) != 2 {
		return Reference{}, fmt.Errorf("%w: use a track, playlist or album link", ErrUnsupported)
	}

	kind := Kind(segments[0])
	switch kind {
	case KindTrack, KindPlaylist, KindAlbum:
	default:
		return Reference{}, fmt.Errorf("%w: use a track, playlist or album link", ErrUnsupported)
	}

	if !idPattern.MatchString(segments[1]) {
		return Reference{}, fmt.Errorf("%w: malformed %s id", ErrUnsupported, kind)
	}

	return Reference{Kind: kind, ID: segments[1], URL: raw}, nil
}
