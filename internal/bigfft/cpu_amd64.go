//go:build amd64

package bigfft

import "golang.org/x/sys/cpu"

// SIMDLevel classifies the widest vector instruction set this process can
// use, from widest to narrowest relevance to word-vector arithmetic.
type SIMDLevel int

const (
	SIMDNone SIMDLevel = iota
	SIMDAVX2
	SIMDAVX512
)

func (l SIMDLevel) String() string {
	switch l {
	case SIMDAVX512:
		return "AVX512"
	case SIMDAVX2:
		return "AVX2"
	default:
		return "none"
	}
}

// CPUFeatures records the subset of x86-64 extensions this package's
// arithmetic paths care about.
type CPUFeatures struct {
	AVX2      bool
	AVX512    bool
	BMI2      bool
	ADX       bool
	SIMDLevel SIMDLevel
}

func (f CPUFeatures) String() string {
	return "SIMD=" + f.SIMDLevel.String()
}

// GetCPUFeatures reports the detected CPU extensions for the running
// process. Detection happens once per call; callers that need it in a hot
// path should cache the result.
func GetCPUFeatures() CPUFeatures {
	f := CPUFeatures{
		AVX2:   cpu.X86.HasAVX2,
		AVX512: cpu.X86.HasAVX512F,
		BMI2:   cpu.X86.HasBMI2,
		ADX:    cpu.X86.HasADX,
	}
	switch {
	case f.AVX512:
		f.SIMDLevel = SIMDAVX512
	case f.AVX2:
		f.SIMDLevel = SIMDAVX2
	default:
		f.SIMDLevel = SIMDNone
	}
	return f
}

// GetSIMDLevel is a convenience wrapper returning only the SIMD tier.
func GetSIMDLevel() SIMDLevel { return GetCPUFeatures().SIMDLevel }

// HasAVX2 reports whether the CPU supports AVX2.
func HasAVX2() bool { return cpu.X86.HasAVX2 }

// HasAVX512 reports whether the CPU supports AVX512F.
func HasAVX512() bool { return cpu.X86.HasAVX512F }

// HasBMI2 reports whether the CPU supports BMI2 (used by shift-heavy
// Fermat-ring arithmetic).
func HasBMI2() bool { return cpu.X86.HasBMI2 }

// HasADX reports whether the CPU supports ADX (multi-precision add-with-carry).
func HasADX() bool { return cpu.X86.HasADX }
