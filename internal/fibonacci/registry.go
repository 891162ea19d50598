package fibonacci

import (
	"fmt"
	"sort"
	"sync"
)

// CalculatorFactory looks up Calculator implementations by name, lazily
// constructing each one at most once.
type CalculatorFactory interface {
	// Get returns the named Calculator, or an error if name is unknown.
	Get(name string) (Calculator, error)
	// List returns every registered name, sorted.
	List() []string
}

// registryEntry lazily builds and caches a single Calculator.
type registryEntry struct {
	once sync.Once
	calc Calculator
	new  func() coreCalculator
}

func (e *registryEntry) get() Calculator {
	e.once.Do(func() {
		e.calc = NewCalculator(e.new())
	})
	return e.calc
}

// defaultFactory is the package's built-in CalculatorFactory, registering
// the three coreCalculator implementations under short names plus the
// alias "fastdoubling" for "fast".
type defaultFactory struct {
	entries map[string]*registryEntry
	aliases map[string]string
}

// NewDefaultFactory builds a CalculatorFactory pre-registered with every
// coreCalculator implementation this package provides:
//
//	"fast"   -> OptimizedFastDoubling
//	"matrix" -> MatrixExponentiation
//	"fft"    -> FFTBasedCalculator
func NewDefaultFactory() CalculatorFactory {
	return &defaultFactory{
		entries: map[string]*registryEntry{
			"fast":   {new: func() coreCalculator { return &OptimizedFastDoubling{} }},
			"matrix": {new: func() coreCalculator { return &MatrixExponentiation{} }},
			"fft":    {new: func() coreCalculator { return &FFTBasedCalculator{} }},
		},
		aliases: map[string]string{
			"fastdoubling": "fast",
		},
	}
}

var (
	globalFactoryOnce sync.Once
	globalFactory     CalculatorFactory
)

// GlobalFactory returns the package-wide default CalculatorFactory, built
// once on first use. Most callers should prefer constructing their own via
// NewDefaultFactory; GlobalFactory exists for call sites (and tests) that
// just need a ready-made factory without plumbing one through.
func GlobalFactory() CalculatorFactory {
	globalFactoryOnce.Do(func() {
		globalFactory = NewDefaultFactory()
	})
	return globalFactory
}

// Get implements CalculatorFactory.
func (f *defaultFactory) Get(name string) (Calculator, error) {
	if canonical, ok := f.aliases[name]; ok {
		name = canonical
	}
	entry, ok := f.entries[name]
	if !ok {
		return nil, fmt.Errorf("fibonacci: unknown calculator %q (available: %v)", name, f.List())
	}
	return entry.get(), nil
}

// List implements CalculatorFactory.
func (f *defaultFactory) List() []string {
	names := make([]string, 0, len(f.entries))
	for name := range f.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
