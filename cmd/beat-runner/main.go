package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/beat-runner/audio"
	"github.com/lixenwraith/beat-runner/broadcast"
	"github.com/lixenwraith/beat-runner/config"
	"github.com/lixenwraith/beat-runner/input"
	"github.com/lixenwraith/beat-runner/status"
)

var (
	configFlag   = flag.String("config", "", "Path to a TOML config file")
	musicFlag    = flag.String("music", "", "Track to play (.wav or .mp3); a drum loop at the configured BPM when empty")
	keymapFlag   = flag.String("keymap", "", "Path to a TOML keymap, overrides input.keymap")
	debugFlag    = flag.Bool("debug", false, "Write logs to logs/beat-runner.log")
	spectateFlag = flag.String("spectate", "", "Serve spectators on this address, e.g. :8080")
	seedFlag     = flag.Uint64("seed", 0, "Spawn RNG seed; 0 picks one from the clock")
	colorFlag    = flag.String("color", "auto", "Color mode: auto, on, off")
	lanesFlag    = flag.Int("lanes", 0, "Lane count override")
	bpmFlag      = flag.Float64("bpm", 0, "Track BPM override")
	dumpFlag     = flag.Bool("dump-config", false, "Print the resolved config as TOML and exit")
)

func main() {
	flag.Parse()

	logFile := setupLogging(*debugFlag)
	if logFile != nil {
		defer logFile.Close()
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "beat-runner: %v\n", err)
		os.Exit(2)
	}
	if *dumpFlag {
		if err := cfg.Encode(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "beat-runner: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "beat-runner: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, environment and flags, then validates
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()

	if *lanesFlag > 0 {
		cfg.Track.LaneCount = *lanesFlag
		cfg.Vehicle.StartLane = *lanesFlag / 2
	}
	if *bpmFlag > 0 {
		cfg.Track.BPM = *bpmFlag
	}
	if *spectateFlag != "" {
		cfg.Spectator.Addr = *spectateFlag
	}
	if *keymapFlag != "" {
		cfg.Input.Keymap = *keymapFlag
	}
	return cfg, cfg.Validate()
}

func run(cfg config.Config) error {
	keys, err := input.LoadKeyFile(cfg.Input.Keymap)
	if err != nil {
		return err
	}

	reg := status.NewRegistry()

	player := audio.NewPlayer(cfg.Audio, reg)
	if err := player.Start(); err != nil {
		// Non-fatal, the game runs silently and still follows the music
		log.Printf("audio output unavailable: %v", err)
	}
	defer player.Close()

	if *musicFlag != "" {
		if err := player.Load(*musicFlag); err != nil {
			return err
		}
	} else {
		player.LoadDrums(cfg.Track.BPM)
	}

	var hub *broadcast.Hub
	if cfg.Spectator.Addr != "" {
		hub = broadcast.NewHub(cfg.Spectator, log.Default(), reg)
		if _, err := hub.Start(); err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			hub.Shutdown(ctx)
		}()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	// Normal exit terminal cleanup
	defer screen.Fini()

	// Panic Recovery: restore the terminal before printing the crash
	setCrashScreen(screen)
	defer func() {
		handleCrash(recover())
	}()

	seed := *seedFlag
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	log.Printf("session start: seed=%d lanes=%d bpm=%.0f track=%q", seed, cfg.Track.LaneCount, cfg.Track.BPM, player.Track())

	g := newGame(gameDeps{
		cfg:    cfg,
		screen: screen,
		player: player,
		keys:   keys,
		hub:    hub,
		reg:    reg,
		seed:   seed,
		color:  useColor(*colorFlag, screen),
	})
	g.run()

	log.Printf("session end: score=%d distance=%.0f", g.engine.Score().Score, g.engine.Distance())
	return nil
}

// useColor resolves the -color flag against the terminal's palette
func useColor(mode string, screen tcell.Screen) bool {
	switch mode {
	case "on", "true", "truecolor":
		return true
	case "off", "false", "mono":
		return false
	default:
		return screen.Colors() >= 256
	}
}
