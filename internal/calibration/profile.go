package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/agbruneau/fibcore/internal/sysmon"
)

// CurrentProfileVersion is bumped whenever CalibrationProfile's fields or
// their meaning change in a way that makes an older on-disk profile
// unsafe to trust.
const CurrentProfileVersion = 1

// DefaultProfileFileName is the file name a profile is saved under when the
// caller does not specify an explicit path.
const DefaultProfileFileName = "fibcalc-calibration.json"

// CalibrationProfile is a hardware-validated snapshot of the threshold
// values a calibration run found optimal on this machine. It is only
// trusted (IsValid) on the core count, CPU architecture, word size, hardware
// fingerprint and profile version it was produced with; anything else
// invalidates its thresholds rather than risk silently misapplying them.
type CalibrationProfile struct {
	NumCPU         int       `json:"num_cpu"`
	GOARCH         string    `json:"goarch"`
	GOOS           string    `json:"goos"`
	GoVersion      string    `json:"go_version"`
	ProfileVersion int       `json:"profile_version"`
	WordSize       int       `json:"word_size"`
	CalibratedAt   time.Time `json:"calibrated_at"`

	// Fingerprint is the CPU feature-flag summary sysmon.Fingerprint
	// produced at calibration time (architecture, CPU feature flags and Go
	// version). IsValid rejects a profile whose fingerprint differs from the
	// running process's.
	Fingerprint string `json:"fingerprint"`

	OptimalParallelThreshold int `json:"optimal_parallel_threshold"`
	OptimalFFTThreshold      int `json:"optimal_fft_threshold"`
	OptimalStrassenThreshold int `json:"optimal_strassen_threshold"`

	CalibrationN    uint64 `json:"calibration_n"`
	CalibrationTime string `json:"calibration_time"`
}

// NewProfile returns a profile stamped with the running process's hardware
// identity and the current time. Callers fill in the Optimal* thresholds
// after running a calibration pass.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		ProfileVersion: CurrentProfileVersion,
		WordSize:       32 << (^uint(0) >> 63),
		CalibratedAt:   time.Now(),
		Fingerprint:    sysmon.Fingerprint(),
	}
}

// IsValid reports whether p was produced on hardware and a Go build
// compatible enough with the running process that its thresholds can be
// trusted. A nil profile is never valid.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	return p.NumCPU == runtime.NumCPU() &&
		p.GOARCH == runtime.GOARCH &&
		p.WordSize == 32<<(^uint(0)>>63) &&
		p.ProfileVersion == CurrentProfileVersion &&
		p.Fingerprint == sysmon.Fingerprint()
}

// IsStale reports whether p is older than maxAge. A nil profile is always
// stale.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

// String renders a human-readable summary of the profile's thresholds.
func (p *CalibrationProfile) String() string {
	return fmt.Sprintf(
		"calibration profile: cpu=%d arch=%s os=%s go=%s fingerprint=%s calibrated=%s\n"+
			"  parallel-threshold=%d fft-threshold=%d strassen-threshold=%d\n"+
			"  calibration-n=%d calibration-time=%s",
		p.NumCPU, p.GOARCH, p.GOOS, p.GoVersion, p.Fingerprint, p.CalibratedAt.Format(time.RFC3339),
		p.OptimalParallelThreshold, p.OptimalFFTThreshold, p.OptimalStrassenThreshold,
		p.CalibrationN, p.CalibrationTime,
	)
}

// SaveProfile writes p as JSON to path, creating any parent directories.
func (p *CalibrationProfile) SaveProfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("calibration: creating profile directory: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("calibration: marshaling profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("calibration: writing profile: %w", err)
	}
	return nil
}

// loadProfile reads and parses a CalibrationProfile from path.
func loadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("calibration: reading profile: %w", err)
	}
	var p CalibrationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("calibration: parsing profile: %w", err)
	}
	return &p, nil
}

// LoadOrCreateProfile loads the profile at path if present, otherwise
// returns a fresh NewProfile(). The bool result reports whether an
// existing file was loaded.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	if p, err := loadProfile(path); err == nil {
		return p, true
	}
	return NewProfile(), false
}

// GetDefaultProfilePath returns the path a profile is saved to when the
// caller does not specify one: the user cache directory, falling back to
// the current directory if the cache directory cannot be determined.
func GetDefaultProfilePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "fibcalc", DefaultProfileFileName)
}
