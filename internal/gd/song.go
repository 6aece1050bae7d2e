package gd

import (
	"fmt"

	"github.com/louisbranch/geometrydash/internal/wire"
)

// Song field indexes ("~|~" delimited).
const (
	songID       = 1
	songName     = 2
	songArtistID = 3
	songArtist   = 4
	songSize     = 5
	songVideoID  = 6
	songYouTube  = 7
	songPriority = 9
	songLink     = 10
)

// Song is a level soundtrack: an official track or a Newgrounds upload.
type Song struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Artist      string  `json:"artist"`
	ArtistID    int     `json:"artist_id,omitempty"`
	SizeMB      float64 `json:"size_mb,omitempty"`
	YouTube     string  `json:"youtube,omitempty"`
	DownloadURL string  `json:"download_url,omitempty"`
	Custom      bool    `json:"custom"`
}

// SongFromMap builds a custom Song from a "~|~" record.
func SongFromMap(m wire.Map) Song {
	return Song{
		ID:          m.Int(songID),
		Name:        m.String(songName),
		Artist:      m.String(songArtist),
		ArtistID:    m.Int(songArtistID),
		SizeMB:      m.Float(songSize),
		YouTube:     m.String(songYouTube),
		DownloadURL: m.Unescape(songLink),
		Custom:      true,
	}
}

// SongsFromSection parses the songs section of a level search, whose
// records are joined by "~:~".
func SongsFromSection(s string) map[int]Song {
	out := make(map[int]Song)
	for _, record := range splitNonEmpty(s, "~:~") {
		song := SongFromMap(wire.ParseMap(record, wire.DelimSong))
		if song.ID > 0 {
			out[song.ID] = song
		}
	}
	return out
}

// NewgroundsURL is the song's listen page.
func (s Song) NewgroundsURL() string {
	if !s.Custom {
		return ""
	}
	return fmt.Sprintf("https://www.newgrounds.com/audio/listen/%d", s.ID)
}

type officialTrack struct {
	name   string
	artist string
}

var officialTracks = []officialTrack{
	{"Stereo Madness", "ForeverBound"},
	{"Back On Track", "DJVI"},
	{"Polargeist", "Step"},
	{"Dry Out", "DJVI"},
	{"Base After Base", "DJVI"},
	{"Cant Let Go", "DJVI"},
	{"Jumper", "Waterflame"},
	{"Time Machine", "Waterflame"},
	{"Cycles", "DJVI"},
	{"xStep", "DJVI"},
	{"Clutterfunk", "Waterflame"},
	{"Theory of Everything", "DJ-Nate"},
	{"Electroman Adventures", "Waterflame"},
	{"Clubstep", "DJ-Nate"},
	{"Electrodynamix", "DJ-Nate"},
	{"Hexagon Force", "Waterflame"},
	{"Blast Processing", "Waterflame"},
	{"Theory of Everything 2", "DJ-Nate"},
	{"Geometrical Dominator", "Waterflame"},
	{"Deadlocked", "F-777"},
	{"Fingerdash", "MDK"},
	{"Dash", "MDK"},
}

// OfficialSong returns the built-in track for a level's official song index.
func OfficialSong(index int) (Song, bool) {
	if index < 0 || index >= len(officialTracks) {
		return Song{}, false
	}
	track := officialTracks[index]
	return Song{ID: index, Name: track.name, Artist: track.artist}, true
}
