package vad

import (
	"encoding/binary"
	"math"
)

// EnergyVAD flags a frame as speech when the RMS of its samples exceeds a
// fixed threshold.
type EnergyVAD struct {
	threshold float64
}

func NewEnergyVAD(threshold float64) *EnergyVAD {
	return &EnergyVAD{threshold: threshold}
}

// IsSpeech implements Detector.
func (e *EnergyVAD) IsSpeech(frame []byte, _ int) bool {
	return RMS(frame) > e.threshold
}

// RMS computes the root mean square of int16 LE samples in raw amplitude units.
func RMS(frame []byte) float64 {
	n := len(frame) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i+1 < len(frame); i += 2 {
		s := float64(int16(binary.LittleEndian.Uint16(frame[i : i+2])))
		sum += s * s
	}
	return math.Sqrt(sum / float64(n))
}
