package input

import (
	"sync"

	"github.com/eiannone/keyboard"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("input")

type DefaultReader struct {
	Keymap Keymap

	once sync.Once
	done chan struct{}
}

func (r *DefaultReader) Open() (<-chan Command, error) {
	events, err := keyboard.GetKeys(128)
	if nil != err {
		return nil, err
	}
	r.done = make(chan struct{})

	commands := make(chan Command, 128)
	go func() {
		for {
			select {
			case <-r.done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if nil != ev.Err {
					log.Warnw("keyboard error", "err", ev.Err)
					continue
				}
				c := r.Keymap.Translate(ev.Key, ev.Rune)
				if c.Action == None {
					continue
				}
				select {
				case commands <- c:
				default:
					log.Debugw("dropping command, queue full", "action", c.Action.String())
				}
			}
		}
	}()
	return commands, nil
}

func (r *DefaultReader) Close() error {
	var err error
	r.once.Do(func() {
		if nil != r.done {
			close(r.done)
		}
		err = keyboard.Close()
	})
	return err
}
