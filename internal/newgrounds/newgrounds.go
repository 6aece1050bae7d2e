// Package newgrounds scrapes song metadata from Newgrounds audio pages.
package newgrounds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/louisbranch/geometrydash/internal/gd"
	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/platform/timeouts"
	"golang.org/x/net/html"
)

// DefaultBaseURL is the audio listen page prefix.
const DefaultBaseURL = "https://www.newgrounds.com/audio/listen/"

const maxPageBytes = 4 << 20

// Client fetches listen pages.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New returns a Client for the public site.
func New() *Client {
	return &Client{BaseURL: DefaultBaseURL, HTTPClient: &http.Client{}, Timeout: timeouts.Request}
}

// GetSong loads song id's listen page and extracts its metadata.
func (c *Client) GetSong(ctx context.Context, id int) (gd.Song, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = timeouts.Request
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%d", base, id), nil)
	if err != nil {
		return gd.Song{}, fmt.Errorf("build newgrounds request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return gd.Song{}, apperrors.Wrap(apperrors.CodeUpstream, "newgrounds request", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return gd.Song{}, apperrors.New(apperrors.CodeNothingFound, fmt.Sprintf("newgrounds song %d not found", id))
	case resp.StatusCode != http.StatusOK:
		return gd.Song{}, apperrors.New(apperrors.CodeUpstream, fmt.Sprintf("newgrounds returned %s", resp.Status))
	}
	song, err := ParseListenPage(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return gd.Song{}, err
	}
	song.ID = id
	return song, nil
}

var playerURL = regexp.MustCompile(`"url":("(?:[^"\\]|\\.)*")`)

// ParseListenPage extracts the name, artist, and download URL from a listen
// page. Pages without an og:title are treated as missing songs.
func ParseListenPage(r io.Reader) (gd.Song, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return gd.Song{}, apperrors.Wrap(apperrors.CodeDecode, "parse newgrounds page", err)
	}
	song := gd.Song{Custom: true}
	var scripts strings.Builder
	walk(doc, func(n *html.Node) {
		switch n.Data {
		case "meta":
			key := attr(n, "property")
			if key == "" {
				key = attr(n, "name")
			}
			switch key {
			case "og:title":
				song.Name = strings.TrimSpace(attr(n, "content"))
			case "author":
				if song.Artist == "" {
					song.Artist = strings.TrimSpace(attr(n, "content"))
				}
			}
		case "a":
			if song.Artist == "" {
				song.Artist = artistFromLink(n)
			}
		case "script":
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					scripts.WriteString(c.Data)
				}
			}
		}
	})
	if song.Name == "" {
		return gd.Song{}, apperrors.New(apperrors.CodeNothingFound, "newgrounds page has no song")
	}
	if m := playerURL.FindStringSubmatch(scripts.String()); m != nil {
		var link string
		if err := json.Unmarshal([]byte(m[1]), &link); err == nil {
			song.DownloadURL = link
		}
	}
	return song, nil
}

// artistFromLink recognizes user pages such as https://artist.newgrounds.com.
func artistFromLink(n *html.Node) string {
	u, err := url.Parse(attr(n, "href"))
	if err != nil {
		return ""
	}
	sub, ok := strings.CutSuffix(u.Hostname(), ".newgrounds.com")
	if !ok || sub == "" || sub == "www" || strings.Trim(u.Path, "/") != "" {
		return ""
	}
	text := strings.TrimSpace(textContent(n))
	if text == "" || !strings.EqualFold(text, sub) {
		return ""
	}
	return text
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}
