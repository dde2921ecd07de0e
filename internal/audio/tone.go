// Package audio plays a short tone when the focus collides.
package audio

import (
	"context"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"

	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/observability/log"
)

const sampleRate = beep.SampleRate(44100)

// Player receives the finished streamer. speaker.Play in production.
type Player func(s ...beep.Streamer)

// Tone implements loop.Notifier.
type Tone struct {
	Freq     float64
	Duration time.Duration

	play   Player
	logger log.Log
}

var _ loop.Notifier = (*Tone)(nil)

// NewSpeakerTone opens the default audio device. Callers that cannot get
// one should run without sound rather than fail.
func NewSpeakerTone(freq float64, d time.Duration, logger log.Log) (*Tone, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, errors.Wrap(err, "audio initialization failed")
	}
	return NewTone(freq, d, speaker.Play, logger), nil
}

func NewTone(freq float64, d time.Duration, play Player, logger log.Log) *Tone {
	if logger == nil {
		logger = log.Nop()
	}
	return &Tone{Freq: freq, Duration: d, play: play, logger: logger.Named("audio")}
}

// Streamer builds the tone without playing it.
func (t *Tone) Streamer() (beep.Streamer, error) {
	sine, err := generators.SineTone(sampleRate, t.Freq)
	if err != nil {
		return nil, errors.Wrapf(err, "tone %vHz", t.Freq)
	}
	return beep.Take(sampleRate.N(t.Duration), sine), nil
}

// Notify queues the tone and returns without waiting for playback.
func (t *Tone) Notify(_ context.Context, ev loop.CollisionEvent) {
	s, err := t.Streamer()
	if err != nil {
		t.logger.Warn("no collision tone", log.Error(err))
		return
	}
	t.play(s)
	t.logger.Debug("collision tone", log.Uint64("frame", ev.Frame))
}
