// Package audio normalizes uploaded learner recordings into the fixed PCM
// format the speech backend expects: 16 kHz, mono, 16-bit, WAV-wrapped.
package audio

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/windfall/kalam_service/internal/errors"
)

// TargetSampleRate is the sample rate required by the speech backend.
const TargetSampleRate = 16000

// Normalizer decodes arbitrary uploaded audio and converts it to
// 16 kHz mono PCM WAV. Plain PCM WAV uploads are converted in-process;
// anything else is handed to ffmpeg, which covers the compressed mobile
// recording formats clients actually send.
type Normalizer struct {
	// FFmpegPath overrides the ffmpeg binary, mainly for tests.
	FFmpegPath string
}

// NewNormalizer creates a Normalizer using the ffmpeg on PATH as fallback
// decoder.
func NewNormalizer() *Normalizer {
	return &Normalizer{FFmpegPath: "ffmpeg"}
}

// Normalize converts raw uploaded bytes to 16 kHz mono 16-bit WAV.
// Returns an AUDIO_DECODE_ERROR AppError if the bytes cannot be decoded as
// audio at all. Content is not inspected further: silence or the wrong
// language are valid audio here.
func (n *Normalizer) Normalize(ctx context.Context, raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, errors.New(errors.ErrAudioDecode, "empty audio payload")
	}

	if pcm, err := DecodeWAV(raw); err == nil {
		return normalizePCM(pcm), nil
	}

	samples, err := n.decodeWithFFmpeg(ctx, raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrAudioDecode, "failed to decode audio", err)
	}
	return EncodeWAV(&PCM{Samples: samples, SampleRate: TargetSampleRate, Channels: 1}), nil
}

func normalizePCM(pcm *PCM) []byte {
	samples := pcm.Samples
	if pcm.Channels == 2 {
		samples = StereoToMono(samples)
	}
	samples = Resample(samples, pcm.SampleRate, TargetSampleRate)
	return EncodeWAV(&PCM{Samples: samples, SampleRate: TargetSampleRate, Channels: 1})
}

// decodeWithFFmpeg pipes the upload through ffmpeg and reads back raw
// s16le samples at the target rate.
func (n *Normalizer) decodeWithFFmpeg(ctx context.Context, raw []byte) ([]int16, error) {
	cmd := exec.CommandContext(ctx, n.FFmpegPath,
		"-i", "pipe:0",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(raw)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	data := out.Bytes()
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
	}
	if len(samples) == 0 {
		return nil, errors.New(errors.ErrAudioDecode, "decoder produced no samples")
	}
	return samples, nil
}
