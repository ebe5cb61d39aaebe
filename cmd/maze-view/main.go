package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/puzzlebox/maze"
	"github.com/lixenwraith/puzzlebox/viewer"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr, tcell.NewScreen))
}

// run loads the mazes from a SCAD or report file and browses them on the
// screen newScreen returns
func run(args []string, stderr io.Writer, newScreen func() (tcell.Screen, error)) int {
	fs := flag.NewFlagSet("maze-view", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: maze-view [-log-level level] file.scad")
		fs.PrintDefaults()
	}
	level := fs.String("log-level", "warn", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	lvl, err := logrus.ParseLevel(*level)
	if err != nil {
		fmt.Fprintf(stderr, "maze-view: %v\n", err)
		return 2
	}
	log.SetLevel(lvl)

	path := fs.Arg(0)
	dumps, err := load(path)
	if err == nil && len(dumps) == 0 {
		err = viewer.ErrNoMazes
	}
	if err != nil {
		log.WithError(err).WithField("file", path).Error("failed to read mazes")
		return 1
	}
	log.WithFields(logrus.Fields{"file": path, "mazes": len(dumps)}).Debug("mazes loaded")

	screen, err := newScreen()
	if err != nil {
		log.WithError(err).Error("failed to create screen")
		return 1
	}
	if err := screen.Init(); err != nil {
		log.WithError(err).Error("failed to initialise screen")
		return 1
	}
	defer screen.Fini()

	v, err := viewer.New(screen, dumps)
	if err != nil {
		log.WithError(err).WithField("file", path).Error("nothing to view")
		return 1
	}
	v.Run()
	return 0
}

func load(path string) ([]*maze.Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return maze.ParseMachine(f)
}
