package audio

// StereoToMono averages L+R per stereo frame to produce mono int16 samples.
// Uses int32 arithmetic to prevent overflow and clamps to int16 range.
func StereoToMono(samples []int16) []int16 {
	frames := len(samples) / 2
	out := make([]int16, frames)
	for i := 0; i < frames; i++ {
		avg := (int32(samples[i*2]) + int32(samples[i*2+1])) / 2
		if avg > 32767 {
			avg = 32767
		} else if avg < -32768 {
			avg = -32768
		}
		out[i] = int16(avg)
	}
	return out
}

// Resample converts mono int16 samples from srcRate to dstRate using linear
// interpolation. If srcRate == dstRate the input is returned unchanged.
func Resample(samples []int16, srcRate, dstRate int) []int16 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}

	outLen := int(int64(len(samples)) * int64(dstRate) / int64(srcRate))
	if outLen == 0 {
		return nil
	}

	out := make([]int16, outLen)
	ratio := float64(srcRate) / float64(dstRate)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		a := float64(samples[idx])
		b := float64(samples[idx+1])
		out[i] = int16(a + (b-a)*frac)
	}
	return out
}
