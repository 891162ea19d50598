// Package sysmon provides the hardware fingerprint calibration snapshots are
// validated against: core count and a short string summarizing the CPU
// feature flags relevant to big-integer arithmetic (the Fermat-ring FFT path
// only behaves differently across CPUs with different vector ISA support).
package sysmon

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// CoreCount returns the number of logical CPUs available to the process, the
// same count a calibration run was taken on.
func CoreCount() int {
	return runtime.NumCPU()
}

// Fingerprint returns a short, stable string of the form
// "GOARCH-features-goversion" identifying the CPU's instruction-set feature
// support relevant to wide-integer multiplication (SIMD width mostly
// determines Karatsuba/FFT crossover points) and the Go runtime version.
// Two runs on genuinely different hardware are expected to produce different
// strings; two runs of the same build on the same machine always agree.
func Fingerprint() string {
	var feats []string
	switch runtime.GOARCH {
	case "amd64":
		if cpu.X86.HasAVX512F {
			feats = append(feats, "avx512")
		}
		if cpu.X86.HasAVX2 {
			feats = append(feats, "avx2")
		}
		if cpu.X86.HasAVX {
			feats = append(feats, "avx")
		}
		if cpu.X86.HasSSE42 {
			feats = append(feats, "sse4.2")
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			feats = append(feats, "asimd")
		}
		if cpu.ARM64.HasSHA3 {
			feats = append(feats, "sha3")
		}
	}
	if len(feats) == 0 {
		feats = []string{"generic"}
	}
	return fmt.Sprintf("%s-%s-%s", runtime.GOARCH, strings.Join(feats, "+"), runtime.Version())
}
