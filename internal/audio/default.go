package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("audio")

const SampleRate = beep.SampleRate(44100)

// SoundManager mixes generated tones and an optional backing track onto the
// speaker. A zero SoundManager is silent.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	output      *beep.Ctrl
	music       *beep.Ctrl
	musicCloser beep.StreamSeekCloser
	initialized bool
}

func NewSoundManager() *SoundManager {
	return &SoundManager{mixer: &beep.Mixer{}}
}

func (sm *SoundManager) Init() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/60)); nil != err {
		return fmt.Errorf("unable to open speaker: %w", err)
	}
	sm.output = &beep.Ctrl{Streamer: sm.mixer}
	speaker.Play(sm.output)
	sm.initialized = true
	return nil
}

// LoadMusic decodes an .mp3 or .ogg file, it starts paused. A volume of 0
// leaves the track unchanged, each step of 1 doubles or halves it.
func (sm *SoundManager) LoadMusic(path string, volume float64) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return nil
	}

	f, err := os.Open(path)
	if nil != err {
		return err
	}
	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		f.Close()
		return fmt.Errorf("unsupported audio file %v", path)
	}
	if nil != err {
		return fmt.Errorf("unable to decode %v: %w", path, err)
	}

	var s beep.Streamer = streamer
	if format.SampleRate != SampleRate {
		s = beep.Resample(4, format.SampleRate, SampleRate, s)
	}
	s = &effects.Volume{Streamer: s, Base: 2, Volume: volume}

	sm.musicCloser = streamer
	sm.music = &beep.Ctrl{Streamer: s, Paused: true}
	speaker.Lock()
	sm.mixer.Add(sm.music)
	speaker.Unlock()

	log.Infow("loaded music", "path", path, "rate", int(format.SampleRate), "channels", format.NumChannels)
	return nil
}

func (sm *SoundManager) PlayHit(judgement int) {
	if judgement < 0 || judgement >= len(HitTones) {
		return
	}
	sm.add(Tone(SampleRate, HitTones[judgement], HitLength))
}

func (sm *SoundManager) PlayBeat() {
	sm.add(Drum(SampleRate))
}

// PlayMusic starts the backing track from the beginning
func (sm *SoundManager) PlayMusic() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if nil == sm.music {
		return
	}
	speaker.Lock()
	defer speaker.Unlock()
	if err := sm.musicCloser.Seek(0); nil != err {
		log.Warnw("unable to rewind music", "err", err)
	}
	sm.music.Paused = false
}

// SetPaused holds the backing track, generated tones finish on their own
func (sm *SoundManager) SetPaused(paused bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if nil == sm.music {
		return
	}
	speaker.Lock()
	sm.music.Paused = paused
	speaker.Unlock()
}

func (sm *SoundManager) Close() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return nil
	}
	speaker.Lock()
	sm.output.Paused = true
	speaker.Unlock()

	sm.initialized = false
	if nil != sm.musicCloser {
		return sm.musicCloser.Close()
	}
	return nil
}

func (sm *SoundManager) add(s beep.Streamer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}
