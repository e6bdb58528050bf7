package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/vsariola/noteroll"
	"github.com/vsariola/noteroll/config"
	"github.com/vsariola/noteroll/editor"
	"github.com/vsariola/noteroll/oto"
	"github.com/vsariola/noteroll/strict"
	"github.com/vsariola/noteroll/version"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "Config file. By default, config.yml in the user config directory.")
	debug := pflag.BoolP("debug", "d", false, "Log at debug level, overriding the config.")
	logPath := pflag.String("log", "", "Write the log to this file. By default, nothing is logged while the terminal UI runs.")
	noAudio := pflag.Bool("no-audio", false, "Do not open the audio device.")
	recoverFlag := pflag.BoolP("recover", "r", false, "Restore the session saved when the player last quit.")
	versionFlag := pflag.BoolP("version", "v", false, "Print version.")
	pflag.Usage = printUsage
	pflag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if pflag.NArg() > 1 {
		pflag.Usage()
		os.Exit(1)
	}
	if err := run(*configPath, *logPath, pflag.Arg(0), *debug, *noAudio, *recoverFlag); err != nil {
		fmt.Fprintf(os.Stderr, "noteroll-play: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logPath, path string, debug, noAudio, recoverSession bool) error {
	if configPath == "" {
		var err error
		if configPath, err = config.Path(); err != nil {
			return err
		}
	}
	opts, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := log.New(io.Discard)
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("could not open log file: %w", err)
		}
		defer f.Close()
		logger = log.NewWithOptions(f, log.Options{ReportTimestamp: true, Prefix: "noteroll"})
	}
	level, _ := opts.Level()
	if debug {
		level = log.DebugLevel
	}
	logger.SetLevel(level)

	var backend noteroll.Backend = noteroll.NullBackend{}
	if !noAudio {
		out, err := oto.NewOutput(opts.Audio.SampleRate, opts.Audio.BufferSize, logger)
		if err != nil {
			logger.Warn("playing without audio", "err", err)
		} else {
			defer out.Close()
			backend = out
		}
	}
	model := editor.New(backend, nil, opts.Editor(logger))
	defer model.Close()

	recoveryPath := filepath.Join(filepath.Dir(configPath), editor.RecoveryFile)
	switch {
	case recoverSession:
		if err := model.LoadRecovery(recoveryPath); err != nil {
			return err
		}
	case path != "":
		state, err := strict.Load(path)
		if errors.Is(err, os.ErrNotExist) {
			state = noteroll.NewMidiState()
		} else if err != nil {
			return err
		}
		model.Execute(editor.ReplaceState{State: state})
		model.MarkSaved()
	}
	model.TakeEvents()

	ui := newUI(model, path, opts.SwingRatio, logger)
	if _, err := tea.NewProgram(ui, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	if err := model.SaveRecovery(recoveryPath); err != nil {
		logger.Error("could not save recovery data", "err", err)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "noteroll-play plays and edits a single-track MIDI file (.mid, .yml or .json) in the terminal.\nUsage: %s [flags] [path]\n", os.Args[0])
	pflag.PrintDefaults()
}
