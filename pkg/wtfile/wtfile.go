// Package wtfile moves wavetables and rendered audio between the engine
// and WAV files. Nothing in here runs on the audio path: loading happens
// on whatever goroutine the caller likes and hands the engine an immutable
// table to swap in.
package wtfile

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/justyntemme/wtosc/pkg/dsp/gain"
	"github.com/justyntemme/wtosc/pkg/dsp/wavetable"
)

// renderBlockLen is the chunk size RenderWAV pulls from the render
// callback, matching a typical host block.
const renderBlockLen = 512

// WAV fmt chunk format tags for the sample encodings the loader accepts.
const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

// LoadFrames reads a mono WAV holding exactly NumFrames frames of FrameLen
// samples each and slices it into frames. Samples may be integer PCM or
// 32-bit IEEE float. Any other shape, channel count, sample format or an
// undecodable file is rejected; shape and format failures wrap
// wavetable.ErrMalformedTable so callers can keep their previous table.
func LoadFrames(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wtfile: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("wtfile: %s: not a valid WAV file", path)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("wtfile: %s: %w", path, err)
	}
	format := dec.Format()
	if format.NumChannels != 1 {
		return nil, fmt.Errorf("wtfile: %s: %w: want mono, got %d channels",
			path, wavetable.ErrMalformedTable, format.NumChannels)
	}
	bitDepth := int(dec.SampleBitDepth())
	if bitDepth == 0 {
		return nil, fmt.Errorf("wtfile: %s: unknown bit depth", path)
	}
	sampleFormat := int(dec.WavAudioFormat)
	switch {
	case sampleFormat == wavFormatPCM:
	case sampleFormat == wavFormatFloat && bitDepth == 32:
	default:
		return nil, fmt.Errorf("wtfile: %s: %w: unsupported sample format %d at %d bits",
			path, wavetable.ErrMalformedTable, sampleFormat, bitDepth)
	}
	bytesPerSample := (bitDepth-1)/8 + 1
	numSamples := int(dec.PCMLen()) / bytesPerSample

	const wantSamples = wavetable.FrameLen * wavetable.NumFrames
	if numSamples != wantSamples {
		return nil, fmt.Errorf("wtfile: %s: %w: %d samples, want %d",
			path, wavetable.ErrMalformedTable, numSamples, wantSamples)
	}

	buf := &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, numSamples),
		SourceBitDepth: bitDepth,
	}
	if _, err := dec.PCMBuffer(buf); err != nil {
		return nil, fmt.Errorf("wtfile: %s: %w", path, err)
	}

	flat := make([]float32, numSamples)
	switch {
	case sampleFormat == wavFormatFloat:
		// PCMBuffer hands float files back as the raw 32-bit words.
		for i, s := range buf.Data {
			flat[i] = math.Float32frombits(uint32(int32(s)))
		}
	case bitDepth == 8:
		// 8-bit WAV samples are unsigned.
		for i, s := range buf.Data {
			flat[i] = float32(s-128) / 128
		}
	default:
		scale := 1.0 / math.Pow(2, float64(bitDepth-1))
		for i, s := range buf.Data {
			flat[i] = float32(float64(s) * scale)
		}
	}
	frames := make([][]float32, wavetable.NumFrames)
	for i := range frames {
		frames[i] = flat[i*wavetable.FrameLen : (i+1)*wavetable.FrameLen]
	}
	return frames, nil
}

// Load reads a wavetable WAV and builds the mip-mapped table in one step.
func Load(path string) (*wavetable.Table, error) {
	frames, err := LoadFrames(path)
	if err != nil {
		return nil, err
	}
	return wavetable.NewFromFrames(frames)
}

// RenderWAV pulls stereo blocks from render and writes them to path as a
// 16-bit WAV of the given length. The callback signature matches
// engine.ProcessBlock so an engine can be rendered offline directly.
func RenderWAV(path string, sampleRate int, seconds float64, render func(left, right []float32)) error {
	if sampleRate <= 0 || seconds <= 0 {
		return fmt.Errorf("wtfile: invalid render length %gs at %dHz", seconds, sampleRate)
	}
	total := int(seconds * float64(sampleRate))

	data := make([]int, 0, total*2)
	left := make([]float32, renderBlockLen)
	right := make([]float32, renderBlockLen)
	for done := 0; done < total; done += renderBlockLen {
		n := renderBlockLen
		if total-done < n {
			n = total - done
		}
		render(left[:n], right[:n])
		for i := 0; i < n; i++ {
			data = append(data,
				int(gain.Clamp(left[i], 1)*32767),
				int(gain.Clamp(right[i], 1)*32767))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wtfile: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 2, wavFormatPCM)
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(intBuf); err != nil {
		enc.Close()
		return fmt.Errorf("wtfile: write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wtfile: finalize %s: %w", path, err)
	}
	return nil
}
