package audio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/windfall/kalam_service/internal/errors"
)

func TestStereoToMono(t *testing.T) {
	in := []int16{100, 200, -100, -200, 32767, 32767}
	out := StereoToMono(in)
	require.Equal(t, []int16{150, -150, 32767}, out)
}

func TestResampleIdentity(t *testing.T) {
	in := []int16{1, 2, 3, 4}
	require.Equal(t, in, Resample(in, 16000, 16000))
}

func TestResampleDownsamplesByRatio(t *testing.T) {
	in := make([]int16, 320) // 10ms at 32kHz
	out := Resample(in, 32000, 16000)
	require.Len(t, out, 160)
}

func TestResampleInterpolates(t *testing.T) {
	// Doubling the rate of a ramp should keep values within the input range
	// and preserve ordering.
	in := []int16{0, 100, 200, 300}
	out := Resample(in, 8000, 16000)
	require.Len(t, out, 8)
	for i := 1; i < len(out); i++ {
		require.GreaterOrEqual(t, out[i], out[i-1])
	}
	require.EqualValues(t, 0, out[0])
}

func TestWAVRoundTrip(t *testing.T) {
	pcm := &PCM{
		Samples:    []int16{0, 1000, -1000, 32767, -32768},
		SampleRate: 16000,
		Channels:   1,
	}

	decoded, err := DecodeWAV(EncodeWAV(pcm))
	require.NoError(t, err)
	require.Equal(t, pcm.Samples, decoded.Samples)
	require.Equal(t, 16000, decoded.SampleRate)
	require.Equal(t, 1, decoded.Channels)
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, err := DecodeWAV([]byte("definitely not audio"))
	require.Error(t, err)
}

func TestDecodeWAVRejectsBadSampleRate(t *testing.T) {
	for _, rate := range []int{0, -8000, 500000} {
		src := EncodeWAV(&PCM{Samples: []int16{1, 2, 3, 4}, SampleRate: rate, Channels: 1})
		_, err := DecodeWAV(src)
		require.Error(t, err, "sample rate %d", rate)
	}
}

func TestNormalizeZeroSampleRateWAV(t *testing.T) {
	// A structurally valid WAV declaring sample rate 0 must surface as an
	// audio decode error, not crash the fast path.
	src := EncodeWAV(&PCM{Samples: []int16{1, 2, 3, 4}, SampleRate: 0, Channels: 1})

	n := &Normalizer{FFmpegPath: "/nonexistent"}
	_, err := n.Normalize(context.Background(), src)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, apperrors.ErrAudioDecode, appErr.Code)
}

func TestNormalizeWAVFastPath(t *testing.T) {
	// 32 kHz stereo input must come out as 16 kHz mono WAV without ffmpeg.
	samples := make([]int16, 640)
	src := EncodeWAV(&PCM{Samples: samples, SampleRate: 32000, Channels: 2})

	n := &Normalizer{FFmpegPath: "/nonexistent"}
	out, err := n.Normalize(context.Background(), src)
	require.NoError(t, err)

	pcm, err := DecodeWAV(out)
	require.NoError(t, err)
	require.Equal(t, TargetSampleRate, pcm.SampleRate)
	require.Equal(t, 1, pcm.Channels)
	require.Len(t, pcm.Samples, 160)
}

func TestNormalizeEmptyPayload(t *testing.T) {
	n := NewNormalizer()
	_, err := n.Normalize(context.Background(), nil)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, apperrors.ErrAudioDecode, appErr.Code)
}

func TestNormalizeUndecodableBytes(t *testing.T) {
	n := &Normalizer{FFmpegPath: "/nonexistent"}
	_, err := n.Normalize(context.Background(), []byte("not audio at all"))
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, apperrors.ErrAudioDecode, appErr.Code)
}
