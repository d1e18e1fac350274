package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"git.lost.host/meutraa/lanes/internal/audio"
	"git.lost.host/meutraa/lanes/internal/config"
	"git.lost.host/meutraa/lanes/internal/engine"
	"git.lost.host/meutraa/lanes/internal/game"
	"git.lost.host/meutraa/lanes/internal/input"
	"git.lost.host/meutraa/lanes/internal/render"
	"git.lost.host/meutraa/lanes/internal/score"
	"git.lost.host/meutraa/lanes/internal/theme"
)

const (
	columnSpacing = 6
	fieldTop      = 4
	sideWidth     = 28
	missFrames    = 18
)

type Program struct {
	Renderer render.Renderer
	Theme    theme.Theme
	Input    input.Reader
	Sounds   audio.Sounds
	Engine   *engine.Engine
	Store    *score.Store

	Keys  []rune
	Delay time.Duration

	commands <-chan input.Command
	counting bool
	startAt  time.Time

	columns, rows int
	layout        layout

	best    map[game.Difficulty]int
	history []score.Session // Sessions on the selected difficulty, best first
}

func play(o *config.Options) error {
	store, err := score.Open()
	if nil != err {
		return err
	}
	defer store.Close()

	sm := audio.NewSoundManager()
	if !o.Mute {
		if err := sm.Init(); nil != err {
			logger.Warnw("playing without sound", "err", err)
		} else if o.Music != "" {
			if err := sm.LoadMusic(o.Music, o.Volume); nil != err {
				return err
			}
		}
	}
	defer sm.Close()

	p := &Program{
		Renderer: &render.DefaultRenderer{FramePeriod: o.FramePeriod},
		Theme:    &theme.DefaultTheme{},
		Input:    &input.DefaultReader{Keymap: input.NewKeymap(o.Keys)},
		Sounds:   sm,
		Store:    store,
		Keys:     o.Keys,
		Delay:    o.Delay,
	}
	p.Engine = engine.New(engine.Options{Seed: o.Seed, Store: store, Listener: p.listen})
	if err := p.Engine.SetDifficulty(o.Difficulty); nil != err {
		return err
	}
	return p.Run()
}

func (p *Program) Run() error {
	var err error
	p.best, err = p.Store.BestScores()
	if nil != err {
		return err
	}
	p.loadHistory(p.Engine.Difficulty())

	p.commands, err = p.Input.Open()
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := p.Input.Close(); nil != err {
			logger.Warnw("unable to close keyboard", "err", err)
		}
	}()

	if err := p.Renderer.Init(); nil != err {
		return fmt.Errorf("unable to set up terminal: %w", err)
	}
	defer p.Renderer.Deinit()

	p.Renderer.RenderLoop(p.frame)
	return nil
}

func (p *Program) frame(now time.Time, delta time.Duration) bool {
	if columns, rows, err := p.Renderer.Size(); nil == err && (columns != p.columns || rows != p.rows) {
		p.columns, p.rows = columns, rows
		p.layout = newLayout(columns, rows)
		p.Renderer.Clear()
	}

	for pending := true; pending; {
		select {
		case c := <-p.commands:
			if !p.apply(c, now) {
				return false
			}
		default:
			pending = false
		}
	}

	p.countdown(now)
	p.Engine.Tick(delta)
	p.draw(p.Engine.Snapshot(), now)
	return true
}

// countdown starts the session once the start delay has passed
func (p *Program) countdown(now time.Time) {
	if !p.counting || now.Before(p.startAt) {
		return
	}
	p.counting = false
	if err := p.Engine.Start(); nil != err {
		logger.Warnw("unable to start", "err", err)
		return
	}
	p.Sounds.PlayMusic()
}

func (p *Program) apply(c input.Command, now time.Time) bool {
	phase := p.Engine.Phase()
	switch c.Action {
	case input.Press:
		p.Engine.Press(c.Lane)
	case input.Start:
		if phase == engine.Idle && !p.counting {
			p.counting = true
			p.startAt = now.Add(p.Delay)
		}
	case input.Pause:
		p.Engine.TogglePause()
		if after := p.Engine.Phase(); after != phase {
			p.Sounds.SetPaused(after == engine.Paused)
		}
	case input.Select:
		if phase == engine.Idle && !p.counting {
			if err := p.Engine.SetDifficulty(c.Difficulty); nil != err {
				logger.Warnw("unable to change difficulty", "err", err)
				break
			}
			p.loadHistory(c.Difficulty)
		}
	case input.Back:
		switch {
		case p.counting:
			p.counting = false
		case phase == engine.Idle:
			return false
		default:
			p.Engine.Reset()
			p.Sounds.SetPaused(true)
		}
	case input.Quit:
		return false
	}
	return true
}

// listen runs on the render goroutine, from inside Tick or Press
func (p *Program) listen(ev engine.Event) {
	switch ev.Kind {
	case engine.EventHit:
		p.Sounds.PlayHit(ev.Result.Index)
	case engine.EventMiss:
		if int(ev.Lane) < len(p.layout.lanes) {
			col := p.layout.lanes[ev.Lane]
			p.Renderer.AddDecoration(uint16(col), uint16(p.layout.bottom+2), "\033[1;31m✗\033[0m", missFrames)
		}
	case engine.EventBeat:
		p.Sounds.PlayBeat()
	case engine.EventEnd:
		p.Sounds.SetPaused(true)
		best, err := p.Store.BestScores()
		if nil != err {
			logger.Errorw("unable to read best scores", "err", err)
			return
		}
		p.best = best
		p.loadHistory(ev.Summary.Session.Difficulty)
		p.verify(ev.Summary.Session)
	}
}

func (p *Program) loadHistory(d game.Difficulty) {
	history, err := p.Store.Load(d)
	if nil != err {
		logger.Errorw("unable to load sessions", "difficulty", d.String(), "err", err)
		return
	}
	p.history = history
}

// verify replays the best stored session of the difficulty and reports
// whether its recorded score holds up
func (p *Program) verify(last score.Session) bool {
	for _, s := range p.history {
		if s.Difficulty != last.Difficulty {
			continue
		}
		replayed := engine.Replay(s.Difficulty, s.Seed, s.Inputs).Score
		if replayed != s.Score {
			logger.Errorw("replay disagrees with the recorded score",
				"session", s.ID.String(), "recorded", s.Score, "replayed", replayed)
			return false
		}
		logger.Debugw("replay verified", "session", s.ID.String(), "score", s.Score)
		return true
	}
	return true
}

// layout places the lanes in the middle of the terminal, position 0 on
// fieldTop and the end of travel on bottom
type layout struct {
	lanes  [game.NLanes]int
	bottom int
	side   int
}

func newLayout(columns, rows int) layout {
	mid := columns / 2
	l := layout{bottom: rows - 3}
	for i := range l.lanes {
		l.lanes[i] = mid + (2*i-game.NLanes+1)*columnSpacing/2
	}
	if l.bottom <= fieldTop {
		l.bottom = fieldTop + 1
	}
	l.side = l.lanes[0] - sideWidth - 4
	if l.side < 2 {
		l.side = 2
	}
	return l
}

func (l layout) row(position float64) int {
	return fieldTop + int(math.Round(position/game.EndPosition*float64(l.bottom-fieldTop)))
}

func (p *Program) draw(v engine.View, now time.Time) {
	r, th, l := p.Renderer, p.Theme, p.layout
	zoneStart, zoneEnd, ideal := l.row(game.HitWindowStart), l.row(game.HitWindowEnd), l.row(game.IdealPosition)

	for lane, col := range l.lanes {
		for row := fieldTop; row <= l.bottom; row++ {
			cell := " "
			if row >= zoneStart && row <= zoneEnd {
				cell = th.RenderHitZone(uint8(lane), row == ideal, v.Effects[lane])
			}
			r.Fill(uint16(row), uint16(col), cell)
		}
		if lane < len(p.Keys) {
			r.FillColor(uint16(l.bottom+1), uint16(col), th.LaneColor(uint8(lane)), string(p.Keys[lane]))
		}
	}
	for _, n := range v.State.Notes {
		if n.Hit || int(n.Lane) >= len(l.lanes) {
			continue
		}
		r.Fill(uint16(l.row(n.Position)), uint16(l.lanes[n.Lane]), th.RenderNote(n.Lane))
	}

	center := l.lanes[0] + (l.lanes[game.NLanes-1]-l.lanes[0])/2
	feedback := fmt.Sprintf("%-9s", v.Feedback)
	r.FillColor(uint16(fieldTop-2), uint16(center-4), th.FeedbackColor(v.Feedback), feedback)

	lines := []string{
		fmt.Sprintf("Score      %8d", v.State.Score),
		fmt.Sprintf("Combo      %8d", v.State.Combo),
		fmt.Sprintf("Time       %7ds", v.Remaining),
		fmt.Sprintf("Difficulty %8s", v.Difficulty),
		fmt.Sprintf("Best       %8d", p.best[v.Difficulty]),
		"",
	}
	switch {
	case p.counting:
		lines = append(lines, fmt.Sprintf("Ready      %7.1fs", p.startAt.Sub(now).Seconds()))
	case v.Phase == engine.Paused:
		lines = append(lines, "PAUSED", "space resumes", "esc abandons")
	case v.Phase == engine.Playing:
		lines = append(lines, "space pauses", "esc abandons")
	default:
		lines = append(lines, "1 easy  2 normal  3 hard", "enter starts", "esc quits")
		if nil != v.Last {
			last := fmt.Sprintf("Last %v on %v", v.Last.Session.Score, v.Last.Session.Difficulty)
			if v.Last.NewBest {
				last += ", new best"
			}
			lines = append(lines, "", last,
				fmt.Sprintf("%v hits %v misses, combo %v", v.Last.Session.Hits, v.Last.Session.Misses, v.Last.Session.MaxCombo))
		}
		for i, s := range p.history {
			if i == 3 {
				break
			}
			if i == 0 {
				lines = append(lines, "", "Top")
			}
			lines = append(lines, fmt.Sprintf("%d. %8d  %v", i+1, s.Score, s.EndedAt.Format("15:04")))
		}
	}
	for len(lines) < 16 {
		lines = append(lines, "")
	}
	for i, line := range lines {
		r.Fill(uint16(fieldTop+i), uint16(l.side), pad(line, sideWidth))
	}
}

func pad(s string, w int) string {
	n := len([]rune(s))
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}
