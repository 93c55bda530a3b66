//go:build !ci

// Package sound plays short cues in the terminal client. Cues are synthesized
// sine tones; a WAV file named after a cue in assets/sounds replaces the tone.
package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const sampleRate = beep.SampleRate(44100)

var standardFormat = beep.Format{
	SampleRate:  sampleRate,
	NumChannels: 2,
	Precision:   4,
}

// SoundManager 在后台初始化，Play 可与 Init 并发调用
type SoundManager struct {
	mu      sync.RWMutex
	buffers map[string]*beep.Buffer
	enabled bool
}

func NewSoundManager() *SoundManager {
	return &SoundManager{
		buffers: make(map[string]*beep.Buffer),
	}
}

func (sm *SoundManager) Init() error {
	// Init speaker with smaller buffer for lower latency
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if err := sm.loadTones(); err != nil {
		return err
	}
	if err := sm.loadSoundFiles("assets/sounds"); err != nil {
		return err
	}
	sm.enabled = true
	return nil
}

// loadTones synthesizes the built-in cues
func (sm *SoundManager) loadTones() error {
	for name, notes := range cueNotes {
		buffer := beep.NewBuffer(standardFormat)
		for _, n := range notes {
			tone, err := generators.SineTone(sampleRate, n.freq)
			if err != nil {
				return fmt.Errorf("failed to generate %s tone: %w", name, err)
			}
			quiet := &effects.Volume{Streamer: tone, Base: 2, Volume: -2}
			buffer.Append(beep.Take(sampleRate.N(n.length), quiet))
		}
		sm.buffers[name] = buffer
	}
	return nil
}

// loadSoundFiles loads WAV overrides from dir, a missing dir is fine
func (sm *SoundManager) loadSoundFiles(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	for _, file := range files {
		name := file.Name()
		if file.IsDir() || strings.ToLower(filepath.Ext(name)) != ".wav" {
			continue
		}
		// Continue loading other files even if one fails
		_ = sm.loadSoundFile(filepath.Join(dir, name), strings.TrimSuffix(name, filepath.Ext(name)))
	}
	return nil
}

func (sm *SoundManager) loadSoundFile(path, cue string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return err
	}
	defer func() { _ = streamer.Close() }()

	var resampled beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		resampled = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buffer := beep.NewBuffer(standardFormat)
	buffer.Append(resampled)
	sm.buffers[cue] = buffer
	return nil
}

func (sm *SoundManager) Play(name string) {
	sm.mu.RLock()
	buffer, ok := sm.buffers[name]
	enabled := sm.enabled
	sm.mu.RUnlock()

	if !enabled || !ok {
		return
	}
	speaker.Play(buffer.Streamer(0, buffer.Len()))
}

func (sm *SoundManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.enabled = false
}
