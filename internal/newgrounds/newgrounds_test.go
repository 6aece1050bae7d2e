package newgrounds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
)

const listenPage = `<!DOCTYPE html>
<html><head>
<meta property="og:title" content="Xtrullor - Supernova">
<meta name="description" content="song">
</head><body>
<div class="item-user"><a href="https://xtrullor.newgrounds.com">Xtrullor</a></div>
<script>
var embed = new embedController([{"url":"https:\/\/audio.ngfiles.com\/700000\/700001_Supernova.mp3?f1","filesize":9000000}]);
</script>
</body></html>`

func TestParseListenPage(t *testing.T) {
	t.Parallel()

	song, err := ParseListenPage(strings.NewReader(listenPage))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if song.Name != "Xtrullor - Supernova" {
		t.Fatalf("name = %q", song.Name)
	}
	if song.Artist != "Xtrullor" {
		t.Fatalf("artist = %q", song.Artist)
	}
	if song.DownloadURL != "https://audio.ngfiles.com/700000/700001_Supernova.mp3?f1" {
		t.Fatalf("download url = %q", song.DownloadURL)
	}
	if !song.Custom {
		t.Fatal("expected custom song")
	}
}

func TestParseListenPageWithoutTitle(t *testing.T) {
	t.Parallel()

	_, err := ParseListenPage(strings.NewReader("<html><body>gone</body></html>"))
	if !errors.Is(err, apperrors.ErrNothingFound) {
		t.Fatalf("err = %v, want nothing found", err)
	}
}

func TestGetSong(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/listen/700001" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(listenPage))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL + "/audio/listen/", HTTPClient: srv.Client()}
	song, err := c.GetSong(context.Background(), 700001)
	if err != nil {
		t.Fatalf("get song: %v", err)
	}
	if song.ID != 700001 || song.Artist != "Xtrullor" {
		t.Fatalf("song = %+v", song)
	}

	_, err = c.GetSong(context.Background(), 1)
	if apperrors.CodeOf(err) != apperrors.CodeNothingFound {
		t.Fatalf("code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeNothingFound)
	}
}
