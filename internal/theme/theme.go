package theme

import (
	"image/color"

	"git.lost.host/meutraa/lanes/internal/game"
)

type Theme interface {
	LaneColor(lane uint8) color.RGBA
	RenderNote(lane uint8) string
	RenderHitZone(lane uint8, ideal bool, effect game.Effect) string
	FeedbackColor(feedback string) color.RGBA
}
