package theme

import (
	"fmt"
	"image/color"

	"git.lost.host/meutraa/lanes/internal/game"
)

type DefaultTheme struct {
}

func (t *DefaultTheme) LaneColor(lane uint8) color.RGBA {
	if int(lane) >= len(laneColors) {
		return white
	}
	return laneColors[lane]
}

func (t *DefaultTheme) RenderNote(lane uint8) string {
	return paint(t.LaneColor(lane), noteSym)
}

func (t *DefaultTheme) RenderHitZone(lane uint8, ideal bool, effect game.Effect) string {
	sym := zoneSym
	if ideal {
		sym = idealSym
	}
	switch effect {
	case game.EffectHit:
		return paint(white, sym)
	case game.EffectMiss:
		return paint(red, sym)
	}
	c := t.LaneColor(lane)
	return paint(color.RGBA{R: c.R / 3, G: c.G / 3, B: c.B / 3, A: 255}, sym)
}

func (t *DefaultTheme) FeedbackColor(feedback string) color.RGBA {
	switch feedback {
	case game.MissFeedback:
		return red
	case "":
		return white
	}
	return gold
}

func paint(c color.RGBA, s string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, s)
}

const (
	noteSym  = "⬤"
	zoneSym  = "─"
	idealSym = "━"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	red   = color.RGBA{239, 68, 68, 255}
	gold  = color.RGBA{253, 224, 71, 255}

	laneColors = [game.NLanes]color.RGBA{
		{251, 191, 36, 255}, // amber
		{251, 146, 60, 255}, // orange
		{236, 72, 153, 255}, // pink
		{168, 85, 247, 255}, // purple
	}
)
