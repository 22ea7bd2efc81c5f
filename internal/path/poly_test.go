package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit(t *testing.T) {
	t.Parallel()

	t.Run("recovers known cubic coefficients", func(t *testing.T) {
		t.Parallel()
		want := Polynomial{1.5, -0.25, 0.03, -0.002}
		xs := []float64{-10, -4, 0, 3, 8, 15, 22}
		ys := make([]float64, len(xs))
		for i, x := range xs {
			ys[i] = want.Eval(x)
		}

		got, err := Fit(xs, ys, 3)
		require.NoError(t, err)
		require.Len(t, got, 4)
		for i := range want {
			assert.InDelta(t, want[i], got[i], 1e-8, "coefficient %d", i)
		}
	})

	t.Run("exact with minimum point count", func(t *testing.T) {
		t.Parallel()
		want := Polynomial{0, 1, 0, 0.01}
		xs := []float64{0, 10, 20, 30}
		ys := make([]float64, len(xs))
		for i, x := range xs {
			ys[i] = want.Eval(x)
		}

		got, err := Fit(xs, ys, 3)
		require.NoError(t, err)
		for i := range want {
			assert.InDelta(t, want[i], got[i], 1e-8, "coefficient %d", i)
		}
	})

	t.Run("least squares through noisy straight line", func(t *testing.T) {
		t.Parallel()
		xs := []float64{0, 1, 2, 3, 4, 5}
		ys := []float64{0.01, 0.99, 2.02, 2.98, 4.01, 4.99}
		got, err := Fit(xs, ys, 1)
		require.NoError(t, err)
		assert.InDelta(t, 0, got[0], 0.05)
		assert.InDelta(t, 1, got[1], 0.05)
	})

	t.Run("rejects insufficient points", func(t *testing.T) {
		t.Parallel()
		_, err := Fit([]float64{0, 10}, []float64{0, 0}, 3)
		assert.ErrorIs(t, err, ErrInsufficientPoints)
	})

	t.Run("rejects mismatched sample lengths", func(t *testing.T) {
		t.Parallel()
		_, err := Fit([]float64{0, 1, 2, 3}, []float64{0, 1, 2}, 3)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInsufficientPoints)
	})

	t.Run("rejects invalid degree", func(t *testing.T) {
		t.Parallel()
		_, err := Fit([]float64{0, 1}, []float64{0, 1}, 0)
		assert.Error(t, err)
	})
}

func TestEval(t *testing.T) {
	t.Parallel()

	p := Polynomial{2, -3, 0.5, 0.125}
	assert.InDelta(t, 2, p.Eval(0), 1e-12)
	// 2 - 3*2 + 0.5*4 + 0.125*8 = -1
	assert.InDelta(t, -1, p.Eval(2), 1e-12)
}

func TestSlope(t *testing.T) {
	t.Parallel()

	t.Run("slope at origin is the degree-1 coefficient", func(t *testing.T) {
		t.Parallel()
		p := Polynomial{7, -0.42, 3, 9}
		assert.InDelta(t, -0.42, p.Slope(0), 1e-12)
	})

	t.Run("general derivative", func(t *testing.T) {
		t.Parallel()
		p := Polynomial{1, 2, 3, 4}
		// 2 + 6x + 12x^2 at x=2 -> 2 + 12 + 48 = 62
		assert.InDelta(t, 62, p.Slope(2), 1e-12)
	})
}
