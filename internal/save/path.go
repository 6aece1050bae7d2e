package save

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/louisbranch/geometrydash/internal/platform/config"
)

// steamAppID is the game's Steam application ID, used to find the Proton
// prefix on Linux.
const steamAppID = "322170"

// Platform describes where to look for saves.
type Platform struct {
	GOOS         string
	Home         string
	LocalAppData string
}

// CurrentPlatform reads the running system's platform details.
func CurrentPlatform() Platform {
	home, _ := os.UserHomeDir()
	return Platform{GOOS: runtime.GOOS, Home: home, LocalAppData: os.Getenv("LOCALAPPDATA")}
}

// DefaultDir is the save directory the game uses on p.
func DefaultDir(p Platform) string {
	switch p.GOOS {
	case "windows":
		return filepath.Join(p.LocalAppData, "GeometryDash")
	case "darwin":
		return filepath.Join(p.Home, "Library", "Application Support", "GeometryDash")
	default:
		return filepath.Join(p.Home, ".local", "share", "Steam", "steamapps", "compatdata", steamAppID,
			"pfx", "drive_c", "users", "steamuser", "AppData", "Local", "GeometryDash")
	}
}

// Locate resolves the save directory and format from GD_SAVE_DIR and
// GD_SAVE_MAC, falling back to the platform default.
func Locate() (dir string, opts Options, err error) {
	env, err := config.LoadSaveEnv()
	if err != nil {
		return "", Options{}, err
	}
	p := CurrentPlatform()
	dir = env.Dir
	if dir == "" {
		dir = DefaultDir(p)
	}
	return dir, Options{Mac: env.Mac || p.GOOS == "darwin"}, nil
}
