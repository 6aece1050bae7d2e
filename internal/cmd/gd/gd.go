// Package gd implements the gd command-line tool: profile, level and song
// lookups against the game server plus offline save and checksum utilities.
package gd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/geometrydash/internal/client"
	"github.com/louisbranch/geometrydash/internal/editor"
	gdtypes "github.com/louisbranch/geometrydash/internal/gd"
	"github.com/louisbranch/geometrydash/internal/newgrounds"
	entrypoint "github.com/louisbranch/geometrydash/internal/platform/cmd"
	"github.com/louisbranch/geometrydash/internal/platform/config"
	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	platformgrpc "github.com/louisbranch/geometrydash/internal/platform/grpc"
	"github.com/louisbranch/geometrydash/internal/platform/i18n/catalog"
	"github.com/louisbranch/geometrydash/internal/robtop"
	"github.com/louisbranch/geometrydash/internal/save"
	"golang.org/x/text/message"
)

const usage = `usage: gd [flags] <command> [args]

commands:
  user <account-id>          show a player profile
  level <level-id>           show a level
  song <song-id>             show a song, falling back to Newgrounds
  daily [-weekly]            show the current daily or weekly level
  save-decode [-mac] [-o out] <file>
  save-encode [-mac] [-o out] <file>
  levels [-dir dir] [-objects]
                             list levels from the local save
  chk -kind <kind> <values...>
                             compute a request checksum
  health [addr]              probe a server's gRPC health endpoint
`

// Config holds gd command configuration.
type Config struct {
	Client config.ClientEnv
	// Lang selects the output locale, as in LANG=pt_BR.UTF-8.
	Lang string `env:"LANG"`
	// HealthAddr is the default target of the health command.
	HealthAddr string `env:"GD_SERVER_HEALTH_ADDR" envDefault:"localhost:8001"`

	Args []string
}

// ParseConfig parses environment and global flags. The remaining arguments
// are the command and its own flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Client.BaseURL, "base-url", cfg.Client.BaseURL, "Game server database root")
	fs.DurationVar(&cfg.Client.RequestTimeout, "timeout", cfg.Client.RequestTimeout, "Per-attempt request timeout")
	fs.IntVar(&cfg.Client.Retries, "retries", cfg.Client.Retries, "Retries after transport failures")
	fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "Output locale")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	if len(cfg.Args) == 0 {
		return Config{}, errors.New("a command is required\n" + usage)
	}
	return cfg, nil
}

// Run executes the configured command, writing results to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCLI, func(ctx context.Context) error {
		bundle, err := catalog.LoadEmbedded()
		if err != nil {
			return err
		}
		if err := bundle.Register(); err != nil {
			return err
		}
		a := &app{
			game: client.New(client.Config{
				BaseURL: cfg.Client.BaseURL,
				Timeout: cfg.Client.RequestTimeout,
				Retries: cfg.Client.Retries,
				Logf:    log.Printf,
			}),
			songs:      newgrounds.New(),
			printer:    bundle.Printer(cfg.Lang),
			out:        out,
			locate:     save.Locate,
			healthAddr: cfg.HealthAddr,
		}
		return a.run(ctx, cfg.Args)
	})
}

// gameAPI is the part of the game client the CLI calls.
type gameAPI interface {
	GetUser(ctx context.Context, accountID int) (gdtypes.User, error)
	GetLevel(ctx context.Context, id int) (gdtypes.Level, error)
	GetDaily(ctx context.Context) (gdtypes.Level, error)
	GetWeekly(ctx context.Context) (gdtypes.Level, error)
	GetSong(ctx context.Context, id int) (gdtypes.Song, error)
}

type songLookup interface {
	GetSong(ctx context.Context, id int) (gdtypes.Song, error)
}

type app struct {
	game       gameAPI
	songs      songLookup
	printer    *message.Printer
	out        io.Writer
	locate     func() (string, save.Options, error)
	healthAddr string
}

func (a *app) println(key string, args ...any) {
	a.printer.Fprintf(a.out, key, args...)
	fmt.Fprintln(a.out)
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("a command is required\n" + usage)
	}
	name, rest := args[0], args[1:]
	switch name {
	case "user":
		return a.user(ctx, rest)
	case "level":
		return a.level(ctx, rest)
	case "song":
		return a.song(ctx, rest)
	case "daily":
		return a.daily(ctx, rest)
	case "save-decode":
		return a.saveCodec(rest, true)
	case "save-encode":
		return a.saveCodec(rest, false)
	case "levels":
		return a.levels(rest)
	case "chk":
		return a.chk(rest)
	case "health":
		return a.health(ctx, rest)
	}
	return fmt.Errorf("unknown command %q\n%s", name, usage)
}

// idArg parses the single numeric argument of lookup commands.
func idArg(name string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s takes exactly one id", name)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, apperrors.WithMetadata(apperrors.CodeInvalidArgument, name+" id must be an integer", map[string]string{"id": args[0]})
	}
	return id, nil
}

func (a *app) user(ctx context.Context, args []string) error {
	accountID, err := idArg("user", args)
	if err != nil {
		return err
	}
	u, err := a.game.GetUser(ctx, accountID)
	if err != nil {
		return err
	}
	a.println("cli.user.title", u.Name, strconv.Itoa(u.AccountID), strconv.Itoa(u.PlayerID))
	a.println("cli.user.role", u.Role)
	a.println("cli.user.stars", u.Stats.Stars)
	a.println("cli.user.moons", u.Stats.Moons)
	a.println("cli.user.demons", u.Stats.Demons)
	a.println("cli.user.diamonds", u.Stats.Diamonds)
	a.println("cli.user.coins", u.Stats.SecretCoins, u.Stats.UserCoins)
	a.println("cli.user.creator_points", u.Stats.CreatorPoints)
	if u.Stats.Rank > 0 {
		a.println("cli.user.rank", u.Stats.Rank)
	}
	return nil
}

func (a *app) printLevel(l gdtypes.Level) {
	creator := l.Creator.Name
	if creator == "" {
		creator = "-"
	}
	a.println("cli.level.title", l.Name, strconv.Itoa(l.ID), creator)
	a.println("cli.level.difficulty", l.Difficulty, l.Stars)
	a.println("cli.level.length", l.Length)
	a.println("cli.level.downloads", l.Downloads)
	a.println("cli.level.likes", l.Likes)
	if l.TimelyNumber > 0 {
		a.println("cli.level.timely", l.TimelyNumber)
	}
}

func (a *app) level(ctx context.Context, args []string) error {
	levelID, err := idArg("level", args)
	if err != nil {
		return err
	}
	l, err := a.game.GetLevel(ctx, levelID)
	if err != nil {
		return err
	}
	a.printLevel(l)
	return nil
}

func (a *app) daily(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("daily", flag.ContinueOnError)
	weekly := fs.Bool("weekly", false, "show the weekly demon instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	get := a.game.GetDaily
	if *weekly {
		get = a.game.GetWeekly
	}
	l, err := get(ctx)
	if err != nil {
		return err
	}
	a.printLevel(l)
	return nil
}

func (a *app) song(ctx context.Context, args []string) error {
	songID, err := idArg("song", args)
	if err != nil {
		return err
	}
	s, err := a.game.GetSong(ctx, songID)
	if err != nil && a.songs != nil &&
		(errors.Is(err, apperrors.ErrNothingFound) || errors.Is(err, apperrors.ErrMissingAccess)) {
		s, err = a.songs.GetSong(ctx, songID)
	}
	if err != nil {
		return err
	}
	a.println("cli.song.title", s.Name, s.Artist, strconv.Itoa(s.ID))
	if s.SizeMB > 0 {
		a.println("cli.song.size", s.SizeMB)
	}
	if s.DownloadURL != "" {
		a.println("cli.song.download", s.DownloadURL)
	}
	return nil
}

// saveCodec decodes or encodes one save file to -o or to out.
func (a *app) saveCodec(args []string, decode bool) error {
	name := "save-encode"
	if decode {
		name = "save-decode"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	mac := fs.Bool("mac", false, "use the macOS AES format")
	output := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%s takes exactly one file", name)
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	opts := save.Options{Mac: *mac}
	var result []byte
	if decode {
		result, err = save.DecodeFile(data, opts)
	} else {
		result, err = save.EncodeFile(data, opts)
	}
	if err != nil {
		return err
	}
	if *output == "" {
		_, err = a.out.Write(result)
		return err
	}
	if err := os.WriteFile(*output, result, 0o644); err != nil {
		return err
	}
	a.println("cli.save.written", len(result), *output)
	return nil
}

func (a *app) levels(args []string) error {
	fs := flag.NewFlagSet("levels", flag.ContinueOnError)
	dirFlag := fs.String("dir", "", "save directory (default GD_SAVE_DIR or the platform default)")
	mac := fs.Bool("mac", false, "use the macOS AES format")
	objects := fs.Bool("objects", false, "count each level's objects")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dir, opts, err := a.locate()
	if err != nil {
		return err
	}
	if *dirFlag != "" {
		dir = *dirFlag
	}
	if *mac {
		opts.Mac = true
	}
	db, err := save.Load(dir, opts)
	if err != nil {
		return err
	}
	levels := db.Levels()
	if len(levels) == 0 {
		a.println("cli.levels.none", dir)
		return nil
	}
	for _, l := range levels {
		a.println("cli.levels.entry", l.Index+1, l.Name, l.Version)
		if !*objects || l.Data == "" {
			continue
		}
		parsed, err := editor.Parse(l.Data)
		if err != nil {
			return fmt.Errorf("level %q: %w", l.Name, err)
		}
		a.println("cli.levels.objects", len(parsed.Objects))
	}
	return nil
}

// chkKinds maps checksum names to their key and salt.
var chkKinds = map[string]struct {
	key  robtop.Key
	salt robtop.Salt
}{
	"level":             {robtop.KeyLevel, robtop.SaltLevel},
	"comment":           {robtop.KeyComment, robtop.SaltComment},
	"like":              {robtop.KeyLikeRate, robtop.SaltLikeRate},
	"leaderboard":       {robtop.KeyUserLeaderboard, robtop.SaltUserLeaderboard},
	"level-leaderboard": {robtop.KeyLevelLeaderboard, robtop.SaltLevelLeaderboard},
}

func (a *app) chk(args []string) error {
	fs := flag.NewFlagSet("chk", flag.ContinueOnError)
	kind := fs.String("kind", "level", "checksum kind: level, comment, like, leaderboard, level-leaderboard")
	if err := fs.Parse(args); err != nil {
		return err
	}
	params, ok := chkKinds[strings.ToLower(*kind)]
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeInvalidArgument, "unknown checksum kind", map[string]string{"kind": *kind})
	}
	values := make([]any, 0, fs.NArg())
	for _, v := range fs.Args() {
		values = append(values, v)
	}
	fmt.Fprintln(a.out, robtop.CHK(values, params.key, params.salt))
	return nil
}

func (a *app) health(ctx context.Context, args []string) error {
	addr := a.healthAddr
	if len(args) > 0 {
		addr = args[0]
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := platformgrpc.Probe(ctx, addr, nil); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s SERVING\n", addr)
	return nil
}
