package systems

import (
	"math"
	"math/cmplx"
	"math/rand/v2"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/critter/components"
)

// HRRComparator encodes each memory flag as a vector, TRUE (a random unitary
// vector) or FALSE (the convolution identity), binds all flags together by
// cascaded pairwise circular convolution, and scores the result by cosine
// similarity with TRUE bound Count times. Unseen colours leave the joint
// unchanged, so the joint equals TRUE^k for k colours seen and only matches
// the target when k equals the target count.
type HRRComparator struct {
	dim    int
	fft    *fourier.FFT
	truth  []float64
	falsy  []float64
	target Target
	goal   []float64
	noise  *distuv.Normal
}

// NewHRRComparator builds the vocabulary from rng. noiseSigma adds gaussian
// noise, relative to the joint's norm, before comparison.
func NewHRRComparator(dim int, target Target, noiseSigma float64, rng *rand.Rand) *HRRComparator {
	h := &HRRComparator{
		dim:    dim,
		fft:    fourier.NewFFT(dim),
		target: target,
	}
	h.truth = h.unitary(rng)
	h.falsy = make([]float64, dim)
	h.falsy[0] = 1

	h.goal = h.truth
	for i := 1; i < target.Count; i++ {
		h.goal = h.Convolve(h.goal, h.truth)
	}
	if noiseSigma > 0 {
		h.noise = &distuv.Normal{Mu: 0, Sigma: noiseSigma / math.Sqrt(float64(dim)), Src: rng}
	}
	return h
}

// unitary draws a random vector whose Fourier coefficients all have unit
// magnitude, so binding with it preserves vector length.
func (h *HRRComparator) unitary(rng *rand.Rand) []float64 {
	v := make([]float64, h.dim)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	coeff := h.fft.Coefficients(nil, v)
	for i, c := range coeff {
		if m := cmplx.Abs(c); m > 1e-12 {
			coeff[i] = c / complex(m, 0)
		} else {
			coeff[i] = 1
		}
	}
	u := h.fft.Sequence(nil, coeff)
	floats.Scale(1/floats.Norm(u, 2), u)
	return u
}

// Convolve returns the circular convolution a (*) b.
func (h *HRRComparator) Convolve(a, b []float64) []float64 {
	ca := h.fft.Coefficients(nil, a)
	cb := h.fft.Coefficients(nil, b)
	for i := range ca {
		ca[i] *= cb[i]
	}
	out := h.fft.Sequence(nil, ca)
	floats.Scale(1/float64(h.dim), out)
	return out
}

// Joint binds the memory vectors of the given colours.
func (h *HRRComparator) Joint(mem components.Memory, colors []components.Color) []float64 {
	vecs := make([][]float64, 0, len(colors))
	for _, c := range colors {
		if mem.Seen.Has(c) {
			vecs = append(vecs, h.truth)
		} else {
			vecs = append(vecs, h.falsy)
		}
	}
	if len(vecs) == 0 {
		return h.falsy
	}
	// Pairwise cascade: bind neighbours, then bind the results, until one remains.
	for len(vecs) > 1 {
		next := make([][]float64, 0, (len(vecs)+1)/2)
		for i := 0; i+1 < len(vecs); i += 2 {
			next = append(next, h.Convolve(vecs[i], vecs[i+1]))
		}
		if len(vecs)%2 == 1 {
			next = append(next, vecs[len(vecs)-1])
		}
		vecs = next
	}
	return vecs[0]
}

// Score compares the bound memory with the target vector.
func (h *HRRComparator) Score(mem components.Memory) float64 {
	colors := mem.Tracked.Colors()
	if h.target.Colors != 0 {
		colors = h.target.Colors.Colors()
	}
	joint := h.Joint(mem, colors)
	if h.noise != nil {
		joint = append([]float64(nil), joint...)
		norm := floats.Norm(joint, 2)
		for i := range joint {
			joint[i] += h.noise.Rand() * norm
		}
	}
	return cosine(joint, h.goal)
}

func cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
