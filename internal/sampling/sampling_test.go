package sampling_test

import (
	"math/rand"
	"testing"

	"github.com/cwbudde/rngevo/internal/sampling"
	"github.com/stretchr/testify/require"
)

// exercise runs a fixed mixed call sequence and records every result.
func exercise(t *testing.T, s sampling.Sampler) []float64 {
	t.Helper()

	var out []float64
	for i := 0; i < 50; i++ {
		out = append(out, s.DrawScalar())

		v, err := s.DrawVector(-3, 7)
		require.NoError(t, err)
		out = append(out, v...)

		n, err := s.DrawInt(-4, 9)
		require.NoError(t, err)
		out = append(out, float64(n))

		c, err := sampling.Choose(s, []float64{10, 20, 30, 40, 50})
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func TestSameSeedSameSequence(t *testing.T) {
	for _, strategy := range sampling.Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			a, err := sampling.New(strategy, 5, 42)
			require.NoError(t, err)
			b, err := sampling.New(strategy, 5, 42)
			require.NoError(t, err)

			require.Equal(t, exercise(t, a), exercise(t, b))
		})
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	for _, strategy := range sampling.Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			a, err := sampling.New(strategy, 5, 1)
			require.NoError(t, err)
			b, err := sampling.New(strategy, 5, 2)
			require.NoError(t, err)

			require.NotEqual(t, exercise(t, a), exercise(t, b))
		})
	}
}

func TestDrawScalarRangeAndVariability(t *testing.T) {
	for _, strategy := range sampling.Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			s, err := sampling.New(strategy, 5, 42)
			require.NoError(t, err)

			seen := make(map[float64]struct{})
			for i := 0; i < 1000; i++ {
				u := s.DrawScalar()
				require.GreaterOrEqual(t, u, 0.0)
				require.Less(t, u, 1.0)
				seen[u] = struct{}{}
			}
			require.Greater(t, len(seen), 1)
		})
	}
}

func TestDrawIntRangeAndVariability(t *testing.T) {
	for _, strategy := range sampling.Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			s, err := sampling.New(strategy, 5, 42)
			require.NoError(t, err)

			seen := make(map[int]struct{})
			for i := 0; i < 1000; i++ {
				n, err := s.DrawInt(1, 10)
				require.NoError(t, err)
				require.GreaterOrEqual(t, n, 1)
				require.Less(t, n, 10)
				seen[n] = struct{}{}
			}
			require.Greater(t, len(seen), 1)
		})
	}
}

func TestDrawVectorShapeAndRange(t *testing.T) {
	for _, strategy := range sampling.Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			s, err := sampling.New(strategy, 7, 42)
			require.NoError(t, err)

			for i := 0; i < 200; i++ {
				v, err := s.DrawVector(-10, 10)
				require.NoError(t, err)
				require.Len(t, v, 7)
				for _, x := range v {
					require.GreaterOrEqual(t, x, -10.0)
					require.Less(t, x, 10.0)
				}
			}
		})
	}
}

func TestChoose(t *testing.T) {
	for _, strategy := range sampling.Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			s, err := sampling.New(strategy, 3, 7)
			require.NoError(t, err)

			items := []string{"a", "b", "c"}
			seen := make(map[string]struct{})
			for i := 0; i < 300; i++ {
				c, err := sampling.Choose(s, items)
				require.NoError(t, err)
				require.Contains(t, items, c)
				seen[c] = struct{}{}
			}
			require.Len(t, seen, len(items))

			_, err = sampling.Choose(s, []string{})
			require.ErrorIs(t, err, sampling.ErrEmptyCollection)
		})
	}
}

func TestConstructionErrors(t *testing.T) {
	_, err := sampling.New("bogus", 3, 1)
	require.ErrorIs(t, err, sampling.ErrUnknownStrategy)

	_, err = sampling.New(sampling.Sobol, 0, 1)
	require.ErrorIs(t, err, sampling.ErrInvalidDimension)

	_, err = sampling.New(sampling.PCG, -2, 1)
	require.ErrorIs(t, err, sampling.ErrInvalidDimension)
}

func TestInvalidRange(t *testing.T) {
	for _, strategy := range sampling.Strategies() {
		s, err := sampling.New(strategy, 2, 1)
		require.NoError(t, err)

		_, err = s.DrawInt(5, 5)
		require.ErrorIs(t, err, sampling.ErrInvalidRange)
		_, err = s.DrawInt(6, 5)
		require.ErrorIs(t, err, sampling.ErrInvalidRange)

		_, err = s.Index(0)
		require.ErrorIs(t, err, sampling.ErrEmptyCollection)
	}
}

func TestParseStrategy(t *testing.T) {
	for _, strategy := range sampling.Strategies() {
		got, err := sampling.ParseStrategy(string(strategy))
		require.NoError(t, err)
		require.Equal(t, strategy, got)
	}

	_, err := sampling.ParseStrategy("numpy")
	require.ErrorIs(t, err, sampling.ErrUnknownStrategy)

	require.True(t, sampling.Sobol.IsQuasiRandom())
	require.False(t, sampling.MT19937.IsQuasiRandom())
}

func TestAccessors(t *testing.T) {
	s, err := sampling.New(sampling.Halton, 4, 99)
	require.NoError(t, err)
	require.Equal(t, sampling.Halton, s.Strategy())
	require.Equal(t, 4, s.Dim())
	require.Equal(t, int64(99), s.Seed())
}

func TestSourceIsDeterministic(t *testing.T) {
	for _, strategy := range sampling.Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			a, err := sampling.New(strategy, 4, 5)
			require.NoError(t, err)
			b, err := sampling.New(strategy, 4, 5)
			require.NoError(t, err)

			ra := rand.New(sampling.NewSource(a))
			rb := rand.New(sampling.NewSource(b))
			for i := 0; i < 100; i++ {
				x := ra.Int63()
				require.GreaterOrEqual(t, x, int64(0))
				require.Equal(t, x, rb.Int63())
				require.Equal(t, ra.Float64(), rb.Float64())
			}
		})
	}
}
