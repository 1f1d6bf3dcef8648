// Anglo — a voice assistant for the terminal.
//
// Usage:
//
//	anglo [-verbose] [-quiet] [-no-speech]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/easimeng/anglo/internal/audio"
	"github.com/easimeng/anglo/internal/brain"
	"github.com/easimeng/anglo/internal/config"
	"github.com/easimeng/anglo/internal/domain"
	"github.com/easimeng/anglo/internal/logger"
	"github.com/easimeng/anglo/internal/stt"
	"github.com/easimeng/anglo/internal/tts"
	"github.com/easimeng/anglo/internal/ui"
	"github.com/easimeng/anglo/internal/vad"
)

func main() {
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", "", "file to write logs to (default <data-dir>/anglo.log, \"stderr\" for console)")
	dataDir := flag.String("data-dir", "", "directory for recordings, cache, history and settings")
	model := flag.String("model", "", "chat model to use")
	noSpeech := flag.Bool("no-speech", false, "disable spoken replies even when the TTS key is set")
	diskCache := flag.Bool("disk-cache", true, "persist synthesized audio to disk (reads from disk even when false)")
	flag.Parse()

	var cfgOpts []config.Option
	if *dataDir != "" {
		cfgOpts = append(cfgOpts, config.WithDataDir(*dataDir))
	}
	if *model != "" {
		cfgOpts = append(cfgOpts, config.WithModel(*model))
	}
	cfg := config.Load(cfgOpts...)

	if *noSpeech {
		if cfg.OpenAIKey == "" {
			fatal("missing required environment variable: %s", config.EnvOpenAIKey)
		}
	} else if err := cfg.Validate(); err != nil {
		fatal("%v\nSet them in the environment or a .env file, or pass -no-speech to run without a voice.", err)
	}

	if err := cfg.EnsureDirs(); err != nil {
		fatal("%v", err)
	}

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Logs go to a file by default so the terminal stays clean.
	path := cfg.LogFile
	if *logFile != "" {
		path = *logFile
	}
	var logOut io.Writer = os.Stderr
	if path != "stderr" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package to the same output so third-party
	// libraries can't garble the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	// Context cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies.
	transcriber, err := stt.New(cfg.OpenAIKey, log, stt.WithLanguage(cfg.LanguageCode()))
	if err != nil {
		fatal("%v", err)
	}

	history := brain.NewHistory(cfg.MaxHistory, cfg.HistoryFile)
	if err := history.Load(); err != nil {
		log.Warn("could not load conversation history: %v", err)
	}

	mind, err := brain.New(cfg.OpenAIKey, brain.DefaultPersona(cfg.AssistantName), log,
		brain.WithModel(cfg.Model),
		brain.WithHistory(history),
	)
	if err != nil {
		fatal("%v", err)
	}

	// Microphone and recorder. A missing audio device isn't fatal — the
	// user can still type; /record will explain what's wrong.
	mic, err := audio.NewMicrophone(log)
	if err != nil {
		log.Error("microphone init failed, voice input disabled: %v", err)
		mic = nil
	} else {
		defer mic.Close()
	}
	recorder := audio.NewRecorder(vad.New(), log)

	// Speech output stack.
	var speaker *tts.Speaker
	var voiceClient *tts.Client
	var cache *tts.Cache
	if !*noSpeech {
		voiceClient, err = tts.NewClient(cfg.ElevenLabsKey, log)
		if err != nil {
			fatal("%v", err)
		}
		player, err := audio.NewPlayer(log)
		if err != nil {
			log.Error("audio player init failed, speech disabled: %v", err)
			voiceClient = nil
		} else {
			cache = tts.NewCache(cfg.VoiceName, cfg.CacheDir, *diskCache, log)
			speaker = tts.NewSpeaker(voiceClient, player, log, tts.WithCache(cache))
			speaker.Start(ctx)
		}
	}

	term := ui.NewUI(cfg.AssistantName)

	app := &app{
		cfg:        cfg,
		log:        log,
		ui:         term,
		mic:        mic,
		recorder:   recorder,
		stt:        transcriber,
		brain:      mind,
		history:    history,
		speaker:    speaker,
		voice:      voiceClient,
		cache:      cache,
		transcript: domain.NewTranscript(),
	}

	// Run the controller in the background; Bubble Tea owns the terminal.
	go func() {
		term.WaitReady()
		app.run(ctx)
		term.Quit()
	}()

	if err := term.Run(); err != nil {
		log.Error("ui: %v", err)
	}
	cancel()
}

func fatal(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "anglo: "+format+"\n", a...)
	os.Exit(1)
}
