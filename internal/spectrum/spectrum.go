// Package spectrum sweeps a structure across a wavelength grid and
// post-processes the resulting Jones matrices into power coefficient
// series.
package spectrum

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/514687572h/Berreman4x4/internal/stack"
)

// Point is the solver output at one wavelength.
type Point struct {
	Lambda float64
	K0     float64
	Jones  stack.JonesPair
}

// Linspace returns n evenly spaced wavelengths from min to max
// inclusive.
func Linspace(min, max float64, n int) []float64 {
	return floats.Span(make([]float64, n), min, max)
}

// Sweep evaluates the structure at every wavelength in lbdas with the
// tangential wavenumber Kx, fanning the work across a bounded pool of
// goroutines. Results are returned in wavelength-grid order no matter
// which worker finishes first. workers ≤ 0 selects one per CPU.
func Sweep(ctx context.Context, s *stack.Structure, kx float64, lbdas []float64, workers int) ([]Point, error) {
	if len(lbdas) == 0 {
		return nil, fmt.Errorf("empty wavelength grid")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(lbdas) {
		workers = len(lbdas)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	points := make([]Point, len(lbdas))
	jobs := make(chan int)
	errc := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				lbda := lbdas[i]
				k0 := 2 * math.Pi / lbda
				j, err := s.Jones(kx, k0)
				if err != nil {
					errc <- fmt.Errorf("lambda %g: %w", lbda, err)
					cancel() // unblock the feeder
					return
				}
				points[i] = Point{Lambda: lbda, K0: k0, Jones: j}
			}
		}()
	}

	feedErr := func() error {
		defer close(jobs)
		for i := range lbdas {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}()
	wg.Wait()

	// A solver error is more informative than the cancellation it
	// triggered.
	select {
	case err := <-errc:
		return nil, err
	default:
	}
	if feedErr != nil {
		return nil, feedErr
	}
	return points, nil
}

// Series extracts one named power coefficient (see
// stack.ParseCoefficient) from every point.
func Series(points []Point, name string) ([]float64, error) {
	c, err := stack.ParseCoefficient(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = c.Extract(p.Jones)
	}
	return out, nil
}

// Wavelengths returns the wavelength column of a sweep.
func Wavelengths(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Lambda
	}
	return out
}

// Unpolarized returns the reflection and transmission series for
// unpolarized light.
func Unpolarized(points []Point) (r, t []float64) {
	r = make([]float64, len(points))
	t = make([]float64, len(points))
	for i, p := range points {
		r[i], t[i] = p.Jones.UnpolarizedPower()
	}
	return r, t
}

// ArgClosest returns the index of the grid point nearest to lbda.
func ArgClosest(points []Point, lbda float64) int {
	best, idx := math.Inf(1), 0
	for i, p := range points {
		if d := math.Abs(p.Lambda - lbda); d < best {
			best, idx = d, i
		}
	}
	return idx
}
