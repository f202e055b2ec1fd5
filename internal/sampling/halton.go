package sampling

// haltonSequence is a Halton sequence over the first D primes with an
// independent random digit permutation for every digit position.
//
// Each coordinate is computed in integer arithmetic as num / base^digits with
// base^digits <= 2^53, so the float result is exact and strictly below 1.
type haltonSequence struct {
	bases  []uint64
	digits []int
	denom  []float64
	perms  [][][]uint64
	index  uint64
}

const haltonMaxDenominator = uint64(1) << 53

func newHaltonSequence(dim int, seed int64) *haltonSequence {
	r := scrambleRand(seed, 0x68616c746f6e)
	primes := firstPrimes(dim)

	h := &haltonSequence{
		bases:  make([]uint64, dim),
		digits: make([]int, dim),
		denom:  make([]float64, dim),
		perms:  make([][][]uint64, dim),
	}

	for d, b := range primes {
		n, pow := 0, uint64(1)
		for pow <= haltonMaxDenominator/b {
			pow *= b
			n++
		}
		h.bases[d] = b
		h.digits[d] = n
		h.denom[d] = float64(pow)

		h.perms[d] = make([][]uint64, n)
		for i := range h.perms[d] {
			perm := r.Perm(int(b))
			h.perms[d][i] = make([]uint64, b)
			for k, p := range perm {
				h.perms[d][i][k] = uint64(p)
			}
		}
	}

	return h
}

func (h *haltonSequence) next(dst []float64) {
	for d := range dst {
		b := h.bases[d]
		n := h.index
		var num uint64
		for i := 0; i < h.digits[d]; i++ {
			num = num*b + h.perms[d][i][n%b]
			n /= b
		}
		dst[d] = float64(num) / h.denom[d]
	}
	h.index++
}

func firstPrimes(n int) []uint64 {
	primes := make([]uint64, 0, n)
	for c := uint64(2); len(primes) < n; c++ {
		prime := true
		for _, p := range primes {
			if p*p > c {
				break
			}
			if c%p == 0 {
				prime = false
				break
			}
		}
		if prime {
			primes = append(primes, c)
		}
	}
	return primes
}
