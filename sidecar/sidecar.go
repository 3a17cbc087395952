// Package sidecar persists signal state next to a recording as a JSON
// document of named sections.
package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/RyanBlaney/sonido-pulse/signal"
)

// Section names
const (
	AudioSection  = "Audio Data"
	SignalSection = "Signal Data"
)

// AudioData is the "Audio Data" section
type AudioData struct {
	Channels        int       `json:"Channels"`
	SampleWidth     int       `json:"Sample Width"`
	SampleRate      int       `json:"Sample Rate"`
	NumberOfSamples int       `json:"Number Of Samples"`
	DecimalSignal   []float64 `json:"Decimal Signal"`
}

// SignalData is the "Signal Data" section
type SignalData struct {
	PulseWidth             int       `json:"PulseWidth"`
	PulseSampleIndices     []int     `json:"Pulse Sample Indices"`
	NoiseDropSampleIndices []int     `json:"Noise Drop Sample Indices"`
	TimeDomainSignal       []float64 `json:"Time Domain Signal,omitempty"`
}

const timeDomainKey = "Time Domain Signal"

type section map[string]json.RawMessage

// Store is a side-car file held in memory. Sections and keys it does not
// know about are kept and written back unchanged.
type Store struct {
	path     string
	sections map[string]section
}

// Open reads the side-car at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{
		path:     path,
		sections: make(map[string]section),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read side-car file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s.sections); err != nil {
		return nil, fmt.Errorf("failed to parse side-car file %s: %w", path, err)
	}
	if s.sections == nil {
		s.sections = make(map[string]section)
	}

	return s, nil
}

// Path returns the file the store reads from and saves to
func (s *Store) Path() string {
	return s.path
}

// ReadAudioData decodes the audio section. Missing keys stay zero or empty.
func (s *Store) ReadAudioData() (AudioData, error) {
	var audio AudioData
	if err := s.get(AudioSection, &audio); err != nil {
		return AudioData{}, err
	}
	if audio.DecimalSignal == nil {
		audio.DecimalSignal = []float64{}
	}
	return audio, nil
}

// ReadSignalData decodes the signal section. Missing keys stay zero or empty.
func (s *Store) ReadSignalData() (SignalData, error) {
	var sig SignalData
	if err := s.get(SignalSection, &sig); err != nil {
		return SignalData{}, err
	}
	if sig.PulseSampleIndices == nil {
		sig.PulseSampleIndices = []int{}
	}
	if sig.NoiseDropSampleIndices == nil {
		sig.NoiseDropSampleIndices = []int{}
	}
	return sig, nil
}

// WriteAudioData replaces the keys of the audio section
func (s *Store) WriteAudioData(audio AudioData) error {
	return s.set(AudioSection, audio)
}

// WriteSignalData replaces the keys of the signal section
func (s *Store) WriteSignalData(sig SignalData) error {
	return s.set(SignalSection, sig)
}

// ReadData builds a signal.Data from both sections. The time-domain signal
// falls back to the decimal signal when the signal section has none.
func (s *Store) ReadData() (*signal.Data, error) {
	audio, err := s.ReadAudioData()
	if err != nil {
		return nil, err
	}
	sig, err := s.ReadSignalData()
	if err != nil {
		return nil, err
	}

	data := signal.New(audio.DecimalSignal, audio.SampleRate)
	data.Channels = audio.Channels
	data.SampleWidth = audio.SampleWidth
	data.PulseWidth = sig.PulseWidth
	data.PulseSampleIndices = sig.PulseSampleIndices
	data.NoiseDropSampleIndices = sig.NoiseDropSampleIndices
	if len(sig.TimeDomainSignal) > 0 {
		data.SetTimeDomainSignal(sig.TimeDomainSignal)
	}

	return data, nil
}

// WriteData writes data into both sections. The time-domain signal is only
// kept when it differs from the decimal signal.
func (s *Store) WriteData(data *signal.Data) error {
	audio := AudioData{
		Channels:        data.Channels,
		SampleWidth:     data.SampleWidth,
		SampleRate:      data.SampleRate,
		NumberOfSamples: len(data.DecimalSignal),
		DecimalSignal:   data.DecimalSignal,
	}
	if err := s.WriteAudioData(audio); err != nil {
		return err
	}

	sig := SignalData{
		PulseWidth:             data.PulseWidth,
		PulseSampleIndices:     nonNil(data.PulseSampleIndices),
		NoiseDropSampleIndices: nonNil(data.NoiseDropSampleIndices),
	}
	if !slices.Equal(data.TimeDomainSignal(), data.DecimalSignal) {
		sig.TimeDomainSignal = data.TimeDomainSignal()
	}
	if err := s.WriteSignalData(sig); err != nil {
		return err
	}
	if sig.TimeDomainSignal == nil {
		delete(s.sections[SignalSection], timeDomainKey)
	}
	return nil
}

// Save writes the store back to its file, replacing it atomically
func (s *Store) Save() error {
	out, err := json.MarshalIndent(s.sections, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode side-car: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create side-car file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(out, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write side-car file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write side-car file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace side-car file: %w", err)
	}
	return nil
}

func (s *Store) get(name string, v any) error {
	sec, ok := s.sections[name]
	if !ok {
		return nil
	}

	raw, err := json.Marshal(sec)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %q section: %w", name, err)
	}
	return nil
}

func (s *Store) set(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q section: %w", name, err)
	}

	var fields section
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}

	sec, ok := s.sections[name]
	if !ok {
		sec = make(section, len(fields))
		s.sections[name] = sec
	}
	for key, value := range fields {
		sec[key] = value
	}
	return nil
}

func nonNil(indices []int) []int {
	if indices == nil {
		return []int{}
	}
	return indices
}
