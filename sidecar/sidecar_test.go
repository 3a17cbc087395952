package sidecar

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-pulse/signal"
)

func TestOpenMissingFile(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "capture.json"))
	require.NoError(t, err)

	audio, err := store.ReadAudioData()
	require.NoError(t, err)
	assert.Zero(t, audio.SampleRate)
	assert.Empty(t, audio.DecimalSignal)
	assert.NotNil(t, audio.DecimalSignal)

	sig, err := store.ReadSignalData()
	require.NoError(t, err)
	assert.NotNil(t, sig.PulseSampleIndices)
	assert.NotNil(t, sig.NoiseDropSampleIndices)
}

func TestReadOriginalKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "Audio Data": {"Channels": 2, "Sample Width": 2, "Sample Rate": 44100, "Decimal Signal": [0.5, -0.5, 0.25]},
  "Signal Data": {"PulseWidth": 2, "Pulse Sample Indices": [1]},
  "Operator": {"Name": "bench 3"}
}`), 0o644))

	store, err := Open(path)
	require.NoError(t, err)

	data, err := store.ReadData()
	require.NoError(t, err)

	assert.Equal(t, 2, data.Channels)
	assert.Equal(t, 2, data.SampleWidth)
	assert.Equal(t, 44100, data.SampleRate)
	assert.Equal(t, 2, data.PulseWidth)
	assert.Equal(t, []int{1}, data.PulseSampleIndices)
	assert.Empty(t, data.NoiseDropSampleIndices)
	// no time-domain signal stored, so the decimal signal is used
	assert.Equal(t, []float64{0.5, -0.5, 0.25}, data.TimeDomainSignal())
}

func TestWriteDataRoundTripPreservesUnknownSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "Operator": {"Name": "bench 3"},
  "Signal Data": {"Notes": "keep me"}
}`), 0o644))

	data := signal.New([]float64{0.1, 0.2, 0.3, 0.4}, 8000)
	data.SampleWidth = 2
	data.PulseWidth = 2
	data.PulseSampleIndices = []int{1}
	data.NoiseDropSampleIndices = []int{3}
	data.SetTimeDomainSignal([]float64{0, 0.2, 0.3, 0})

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.WriteData(data))
	require.NoError(t, store.Save())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "bench 3", doc["Operator"]["Name"])
	assert.Equal(t, "keep me", doc[SignalSection]["Notes"])
	assert.EqualValues(t, 4, doc[AudioSection]["Number Of Samples"])

	reopened, err := Open(path)
	require.NoError(t, err)
	loaded, err := reopened.ReadData()
	require.NoError(t, err)

	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4}, loaded.DecimalSignal)
	assert.Equal(t, []float64{0, 0.2, 0.3, 0}, loaded.TimeDomainSignal())
	assert.Equal(t, []int{1}, loaded.PulseSampleIndices)
	assert.Equal(t, []int{3}, loaded.NoiseDropSampleIndices)
	assert.Equal(t, 8000, loaded.SampleRate)
}

func TestWriteDataDropsRedundantTimeDomainSignal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.json")
	store, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, store.WriteSignalData(SignalData{TimeDomainSignal: []float64{9}}))
	require.NoError(t, store.WriteData(signal.New([]float64{1, 2}, 100)))

	sig, err := store.ReadSignalData()
	require.NoError(t, err)
	assert.Empty(t, sig.TimeDomainSignal)
	assert.Equal(t, path, store.Path())
}

func TestOpenInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Audio Data": [`), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}
