package main

import (
	"fmt"
	"log"
	"os"

	"git.lost.host/meutraa/lanes/internal/config"
	logging "github.com/ipfs/go-log/v2"
)

var logger = logging.Logger("lanes")

func main() {
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func run() error {
	o, err := config.Parse(os.Args[1:])
	if nil != err {
		return err
	}

	level, err := logging.LevelFromString(o.LogLevel)
	if nil != err {
		return fmt.Errorf("log level: %w", err)
	}
	// Both commands own the terminal, so logs go to a file
	logging.SetupLogging(logging.Config{
		Format: logging.PlaintextOutput,
		Level:  level,
		File:   o.LogFile,
		Stderr: o.LogFile == "",
	})

	switch o.Command {
	case config.SerialCommand:
		return terminal(o)
	}
	return play(o)
}
