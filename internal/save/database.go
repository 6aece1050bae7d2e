// Package save reads and writes the game's local save files.
package save

import (
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/robtop"
)

// Save file names inside the save directory.
const (
	MainFile   = "CCGameManager.dat"
	LevelsFile = "CCLocalLevels.dat"
)

// Options selects the on-disk encoding.
type Options struct {
	// Mac selects AES-ECB instead of XOR+Base64+gzip.
	Mac bool
}

// Database is a decoded pair of save files.
type Database struct {
	// Manager is CCGameManager: settings, stats, and account data.
	Manager *Dict
	// Local is CCLocalLevels: the editor's created levels.
	Local *Dict
}

// Load reads and decodes both save files from dir.
func Load(dir string, opts Options) (*Database, error) {
	main, err := loadFile(filepath.Join(dir, MainFile), opts)
	if err != nil {
		return nil, err
	}
	levels, err := loadFile(filepath.Join(dir, LevelsFile), opts)
	if err != nil {
		return nil, err
	}
	return &Database{Manager: main, Local: levels}, nil
}

// FromXML parses already-decoded plist documents, such as a cloud backup.
func FromXML(main, levels []byte) (*Database, error) {
	mainDict, err := ParsePlist(main)
	if err != nil {
		return nil, fmt.Errorf("main: %w", err)
	}
	levelsDict, err := ParsePlist(levels)
	if err != nil {
		return nil, fmt.Errorf("levels: %w", err)
	}
	return &Database{Manager: mainDict, Local: levelsDict}, nil
}

func loadFile(path string, opts Options) (*Dict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.CodeNotFound, "save file "+path+" not found", err)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	xml, err := DecodeFile(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return ParsePlist(xml)
}

// DecodeFile decodes raw save file bytes into plist XML.
func DecodeFile(data []byte, opts Options) ([]byte, error) {
	if opts.Mac {
		return robtop.DecodeMacSave(data)
	}
	return robtop.DecodeSave(data, true)
}

// EncodeFile encodes plist XML into save file bytes.
func EncodeFile(xml []byte, opts Options) ([]byte, error) {
	if opts.Mac {
		return robtop.EncodeMacSave(xml)
	}
	return robtop.EncodeSave(xml, true)
}

// Save encodes both dictionaries and writes them into dir.
func (db *Database) Save(dir string, opts Options) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	files := []struct {
		name string
		dict *Dict
	}{
		{MainFile, db.Manager},
		{LevelsFile, db.Local},
	}
	for _, f := range files {
		data, err := EncodeFile(MarshalPlist(f.dict), opts)
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := writeFileAtomic(filepath.Join(dir, f.name), data); err != nil {
			return err
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// PlayerName is the name stored in the game manager.
func (db *Database) PlayerName() string {
	return db.Manager.String("playerName")
}

// Level keys inside each LLM_01 entry.
const (
	localLevelID          = "k1"
	localLevelName        = "k2"
	localLevelDescription = "k3"
	localLevelData        = "k4"
	localLevelCreator     = "k5"
	localLevelSong        = "k8"
	localLevelVersion     = "k16"
	localLevelCustomSong  = "k45"
)

// LocalLevel is a level from the editor's created levels list.
type LocalLevel struct {
	// Index is the "k_N" position in the list.
	Index        int    `json:"index"`
	ID           int64  `json:"id,omitempty"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Version      int64  `json:"version"`
	OfficialSong int64  `json:"official_song"`
	CustomSongID int64  `json:"custom_song_id,omitempty"`
	Data         string `json:"-"`
}

// DecodedData returns the plain object text of the level.
func (l LocalLevel) DecodedData() (string, error) {
	if l.Data == "" {
		return "", nil
	}
	return robtop.DecodeLevelData(l.Data)
}

// Levels lists created levels in editor order.
func (db *Database) Levels() []LocalLevel {
	list, ok := db.Local.Dict("LLM_01")
	if !ok {
		return nil
	}
	keys := levelKeys(list)
	out := make([]LocalLevel, 0, len(keys))
	for i, key := range keys {
		entry, ok := list.Dict(key)
		if !ok {
			continue
		}
		out = append(out, LocalLevel{
			Index:        i,
			ID:           entry.Int(localLevelID),
			Name:         entry.String(localLevelName),
			Description:  robtop.DecodeBase64String(entry.String(localLevelDescription)),
			Creator:      entry.String(localLevelCreator),
			Version:      entry.Int(localLevelVersion),
			OfficialSong: entry.Int(localLevelSong),
			CustomSongID: entry.Int(localLevelCustomSong),
			Data:         entry.String(localLevelData),
		})
	}
	return out
}
