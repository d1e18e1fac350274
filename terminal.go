package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.lost.host/meutraa/lanes/internal/config"
	"git.lost.host/meutraa/lanes/internal/console"
	"git.lost.host/meutraa/lanes/internal/parser"
	"git.lost.host/meutraa/lanes/internal/serial"
	"github.com/gdamore/tcell/v2"
)

func terminal(o *config.Options) error {
	if o.List {
		ports, err := serial.Ports()
		if nil != err {
			return err
		}
		if len(ports) == 0 {
			fmt.Println("no serial devices found")
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	}

	screen, err := tcell.NewScreen()
	if nil != err {
		return fmt.Errorf("unable to open screen: %w", err)
	}
	if err := screen.Init(); nil != err {
		return fmt.Errorf("unable to open screen: %w", err)
	}
	defer screen.Fini()

	psr := parser.NewDefaultParser()
	conn := serial.NewConn(serial.OpenDevice, psr)
	c := console.New(screen, conn, console.Options{
		Port:       o.Port,
		Baud:       o.Baud,
		Objects:    o.Objects,
		Scrollback: o.Scroll,
		Stats:      psr.Stats,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infow("serial terminal", "port", o.Port, "baud", o.Baud)
	return c.Run(ctx)
}
