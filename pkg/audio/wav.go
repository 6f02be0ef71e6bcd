package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// PCM holds decoded 16-bit PCM audio.
type PCM struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// DecodeWAV parses a RIFF/WAVE container holding 16-bit PCM data.
// Containers with other codecs (float, ADPCM, compressed) are rejected so the
// caller can fall back to a full decoder.
func DecodeWAV(data []byte) (*PCM, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE container")
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		pcmData       []byte
		haveFmt       bool
	)

	// Walk the chunk list. Chunks are 8-byte headers (id + size) with
	// word-aligned payloads.
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("wav fmt chunk too short: %d bytes", size)
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			if audioFormat != 1 { // PCM
				return nil, fmt.Errorf("unsupported wav audio format: %d", audioFormat)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			pcmData = data[body : body+size]
		}

		offset = body + size
		if size%2 == 1 {
			offset++
		}
	}

	if !haveFmt || pcmData == nil {
		return nil, fmt.Errorf("wav missing fmt or data chunk")
	}
	if sampleRate <= 0 || sampleRate > 384000 {
		return nil, fmt.Errorf("unsupported wav sample rate: %d", sampleRate)
	}
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported wav bit depth: %d", bitsPerSample)
	}
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("unsupported wav channel count: %d", channels)
	}

	samples := make([]int16, len(pcmData)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcmData[i*2 : i*2+2]))
	}

	return &PCM{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   channels,
	}, nil
}

// EncodeWAV serializes 16-bit PCM into a RIFF/WAVE container.
func EncodeWAV(pcm *PCM) []byte {
	dataLen := len(pcm.Samples) * 2
	byteRate := pcm.SampleRate * pcm.Channels * 2
	blockAlign := pcm.Channels * 2

	var buf bytes.Buffer
	buf.Grow(44 + dataLen)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(pcm.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(pcm.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	for _, s := range pcm.Samples {
		binary.Write(&buf, binary.LittleEndian, uint16(s))
	}

	return buf.Bytes()
}
