package steps

import "math/rand/v2"

// Rand — источник случайности для симулируемых шагов.
//
// Вероятностные исходы inventory-check и payment-processing берутся
// только отсюда: тесты подставляют seeded-источник или стаб и
// полностью прибивают результаты.
type Rand interface {
	// Float64 возвращает число в [0.0, 1.0).
	Float64() float64

	// IntN возвращает число в [0, n).
	IntN(n int) int
}

// NewRand возвращает детерминированный источник с заданным seed.
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// SystemRand возвращает источник на глобальном генераторе.
func SystemRand() Rand {
	return systemRand{}
}

type systemRand struct{}

func (systemRand) Float64() float64 { return rand.Float64() }
func (systemRand) IntN(n int) int   { return rand.IntN(n) }
