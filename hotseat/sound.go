package main

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Cues are the sound events the game loop emits.
type Cues interface {
	Capture(cells int)
	Elimination()
	Pickup()
	GameOver()
}

// SoundManager mixes short synthesized cues onto the speaker. Until
// Initialize succeeds every Play call is a no-op.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

func NewSoundManager() *SoundManager {
	return &SoundManager{mixer: &beep.Mixer{}}
}

// Initialize opens the audio device.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup silences the mixer and releases the device.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.initialized {
		return
	}
	speaker.Clear()
	sm.mixer.Clear()
	speaker.Close()
	sm.initialized = false
}

func (sm *SoundManager) play(s beep.Streamer) {
	if s == nil {
		return
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// Capture plays a rising two-note chime; bigger captures ring higher.
func (sm *SoundManager) Capture(cells int) { sm.play(captureCue(cells)) }

// Elimination plays a low buzz.
func (sm *SoundManager) Elimination() {
	sm.play(beep.Take(sampleRate.N(180*time.Millisecond), NewBuzzGenerator(sampleRate, 110)))
}

// Pickup plays an upward sweep.
func (sm *SoundManager) Pickup() {
	sm.play(beep.Take(sampleRate.N(220*time.Millisecond), NewSweepGenerator(sampleRate, 300, 900, 220*time.Millisecond)))
}

// GameOver plays a short descending arpeggio.
func (sm *SoundManager) GameOver() {
	sm.play(melody(120*time.Millisecond, 523.25, 392.0, 329.63, 261.63))
}

func captureCue(cells int) beep.Streamer {
	base := 440.0 + 10*math.Min(float64(cells), 40)
	return melody(70*time.Millisecond, base, base*1.5)
}

// melody chains quiet sine notes of equal length.
func melody(note time.Duration, freqs ...float64) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		tone, err := generators.SineTone(sampleRate, f)
		if err != nil {
			continue
		}
		parts = append(parts, beep.Take(sampleRate.N(note), tone))
	}
	if len(parts) == 0 {
		return nil
	}
	return &effects.Volume{Streamer: beep.Seq(parts...), Base: 2, Volume: -3}
}

// BuzzGenerator is a decaying square wave.
type BuzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

func NewBuzzGenerator(sr beep.SampleRate, freq float64) *BuzzGenerator {
	return &BuzzGenerator{sr: sr, freq: freq}
}

func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		v := 0.2
		if math.Sin(2*math.Pi*g.freq*t) < 0 {
			v = -0.2
		}
		v *= math.Exp(-6 * t)
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *BuzzGenerator) Err() error { return nil }

// SweepGenerator glides a sine from one frequency to another over dur,
// then holds the final pitch.
type SweepGenerator struct {
	sr       beep.SampleRate
	from, to float64
	length   int
	pos      int
	phase    float64
}

func NewSweepGenerator(sr beep.SampleRate, from, to float64, dur time.Duration) *SweepGenerator {
	return &SweepGenerator{sr: sr, from: from, to: to, length: max(1, sr.N(dur))}
}

func (g *SweepGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		p := math.Min(float64(g.pos)/float64(g.length), 1)
		freq := g.from + (g.to-g.from)*p
		g.phase += 2 * math.Pi * freq / float64(g.sr)
		v := 0.15 * math.Sin(g.phase) * (1 - 0.5*p)
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *SweepGenerator) Err() error { return nil }
