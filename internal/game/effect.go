package game

// Effect is the transient per-lane visual/audio cue
type Effect uint8

const (
	EffectNone Effect = iota
	EffectHit
	EffectMiss
)

func (e Effect) String() string {
	switch e {
	case EffectHit:
		return "hit"
	case EffectMiss:
		return "miss"
	}
	return "none"
}
