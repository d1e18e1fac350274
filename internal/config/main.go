package config

import (
	"fmt"
	"time"

	"git.lost.host/meutraa/lanes/internal/game"
	"git.lost.host/meutraa/lanes/internal/serial"
	"gopkg.in/alecthomas/kingpin.v2"
)

const (
	PlayCommand   = "play"
	SerialCommand = "serial"
)

type Options struct {
	Command string

	// play
	Difficulty  game.Difficulty
	Keys        []rune
	Delay       time.Duration
	FramePeriod time.Duration
	Seed        uint64
	Music       string
	Mute        bool
	Volume      float64

	// serial
	Port    string
	Baud    int
	List    bool
	Objects bool
	Scroll  int

	LogLevel string
	LogFile  string
}

// Parse reads the command line, args excludes the program name
func Parse(args []string) (*Options, error) {
	var (
		o          Options
		difficulty string
		keys       string
	)

	app := kingpin.New("lanes", "Four lane rhythm game and serial terminal")
	app.Version("0.3.0")
	app.Flag("log-level", "Log level").Default("info").EnumVar(&o.LogLevel, "debug", "info", "warn", "error")
	app.Flag("log-file", "Log file, the terminal is busy").Default("lanes.log").StringVar(&o.LogFile)

	play := app.Command(PlayCommand, "Play the rhythm game").Default()
	play.Flag("difficulty", "Initial difficulty").Default("normal").Short('d').EnumVar(&difficulty, "easy", "normal", "hard")
	play.Flag("keys", "Keys for lanes 0 to 3").Default("dfjk").Short('k').StringVar(&keys)
	play.Flag("delay", "Start delay").Default("1.5s").DurationVar(&o.Delay)
	play.Flag("frame-period", "Render frame period").Default("16ms").Short('p').DurationVar(&o.FramePeriod)
	play.Flag("seed", "Note pattern seed, 0 for random").Default("0").Uint64Var(&o.Seed)
	play.Flag("music", "Backing track (.mp3 or .ogg)").ExistingFileVar(&o.Music)
	play.Flag("mute", "No sound").BoolVar(&o.Mute)
	play.Flag("volume", "Volume, 0 is unchanged").Default("0").Float64Var(&o.Volume)

	term := app.Command(SerialCommand, "Serial terminal")
	term.Flag("port", "Serial device").Short('P').StringVar(&o.Port)
	term.Flag("baud", "Baud rate").Default(fmt.Sprint(serial.DefaultBaudRate)).Short('b').IntVar(&o.Baud)
	term.Flag("list", "List serial devices and exit").Short('l').BoolVar(&o.List)
	term.Flag("objects", "Show the latest parsed object").Default("true").BoolVar(&o.Objects)
	term.Flag("scrollback", "Lines kept in the terminal").Default("1000").IntVar(&o.Scroll)

	command, err := app.Parse(args)
	if nil != err {
		return nil, err
	}
	o.Command = command

	if o.Command == PlayCommand {
		o.Difficulty, err = game.ParseDifficulty(difficulty)
		if nil != err {
			return nil, err
		}
		o.Keys = []rune(keys)
		if len(o.Keys) != game.NLanes {
			return nil, fmt.Errorf("need %d keys, got %q", game.NLanes, keys)
		}
	}

	return &o, nil
}
