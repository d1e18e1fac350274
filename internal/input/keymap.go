package input

import (
	"unicode"

	"git.lost.host/meutraa/lanes/internal/game"
	"github.com/eiannone/keyboard"
)

type Action uint8

const (
	None Action = iota
	Press
	Start
	Pause
	Back // Reset during a session, quit from the menu
	Quit
	Select
)

func (a Action) String() string {
	switch a {
	case Press:
		return "press"
	case Start:
		return "start"
	case Pause:
		return "pause"
	case Back:
		return "back"
	case Quit:
		return "quit"
	case Select:
		return "select"
	}
	return "none"
}

type Command struct {
	Action     Action
	Lane       uint8
	Difficulty game.Difficulty
}

// Keymap maps lane keys case insensitively, lane keys win over the fixed bindings
type Keymap struct {
	lanes []rune
}

func NewKeymap(lanes []rune) Keymap {
	k := Keymap{lanes: make([]rune, len(lanes))}
	for i, r := range lanes {
		k.lanes[i] = unicode.ToLower(r)
	}
	return k
}

func (k Keymap) Translate(key keyboard.Key, r rune) Command {
	if r != 0 {
		lower := unicode.ToLower(r)
		for i, c := range k.lanes {
			if c == lower {
				return Command{Action: Press, Lane: uint8(i)}
			}
		}
	}

	switch key {
	case keyboard.KeySpace:
		return Command{Action: Pause}
	case keyboard.KeyEnter:
		return Command{Action: Start}
	case keyboard.KeyEsc:
		return Command{Action: Back}
	case keyboard.KeyCtrlC:
		return Command{Action: Quit}
	}

	switch r {
	case ' ':
		return Command{Action: Pause}
	case 'q', 'Q':
		return Command{Action: Quit}
	case '1', '2', '3':
		return Command{Action: Select, Difficulty: game.Difficulties[r-'1']}
	}
	return Command{}
}
