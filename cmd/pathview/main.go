// Command pathview runs the walking game in a terminal: tiles are drawn as
// glyphs, clicks and arrow keys drive the avatar.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/tilewalk/session"
	"go.uber.org/zap"
)

func main() {
	levelName := flag.String("level", "", "level name in levels/ (basename, .json optional)")
	skin := flag.String("skin", "", "avatar skin from prefabs/avatar.yaml")
	logPath := flag.String("log", "", "write logs to this file (the terminal is busy drawing)")
	mute := flag.Bool("mute", false, "disable the rejection cue")
	flag.Parse()

	logger, err := newFileLogger(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pathview: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	world, err := session.New(*levelName, *skin, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pathview: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pathview: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "pathview: %v\n", err)
		os.Exit(1)
	}

	v := newViewer(screen, world, logger)
	if !*mute {
		c, err := newCue()
		if err != nil {
			// non-fatal, the viewer runs silent
			logger.Warn("audio unavailable", zap.Error(err))
		} else {
			v.cue = c
			defer c.Close()
		}
	}
	defer screen.Fini()

	v.run()
}

func newFileLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
