// Package bench provides the standard continuous test functions used to
// compare sampling strategies. All functions are minimised and have a global
// minimum of zero.
package bench

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrUnknownFunction is returned by Lookup for unregistered names.
var ErrUnknownFunction = errors.New("unknown benchmark function")

// Function is a named benchmark objective.
type Function struct {
	Name string
	Eval func(x []float64) float64

	// Optimum returns the global minimiser in dimension dim.
	Optimum func(dim int) []float64
}

var registry = map[string]Function{
	"sphere":     {Name: "sphere", Eval: Sphere, Optimum: constant(0)},
	"ellipsoid":  {Name: "ellipsoid", Eval: Ellipsoid, Optimum: constant(0)},
	"bent-cigar": {Name: "bent-cigar", Eval: BentCigar, Optimum: constant(0)},
	"zakharov":   {Name: "zakharov", Eval: Zakharov, Optimum: constant(0)},
	"rosenbrock": {Name: "rosenbrock", Eval: Rosenbrock, Optimum: constant(1)},
	"rastrigin":  {Name: "rastrigin", Eval: Rastrigin, Optimum: constant(0)},
	"ackley":     {Name: "ackley", Eval: Ackley, Optimum: constant(0)},
	"griewank":   {Name: "griewank", Eval: Griewank, Optimum: constant(0)},
	"schwefel":   {Name: "schwefel", Eval: Schwefel, Optimum: constant(schwefelOptimum)},
	"levy":       {Name: "levy", Eval: Levy, Optimum: constant(1)},
}

// Lookup returns the function registered under name.
func Lookup(name string) (Function, error) {
	f, ok := registry[strings.ToLower(name)]
	if !ok {
		return Function{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownFunction, name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names lists the registered functions in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func constant(v float64) func(int) []float64 {
	return func(dim int) []float64 {
		x := make([]float64, dim)
		for i := range x {
			x[i] = v
		}
		return x
	}
}

// Sphere is sum x_i^2.
func Sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// Ellipsoid is sum 10^(6 i/(D-1)) x_i^2.
func Ellipsoid(x []float64) float64 {
	if len(x) == 1 {
		return x[0] * x[0]
	}
	var sum float64
	for i, v := range x {
		sum += math.Pow(1e6, float64(i)/float64(len(x)-1)) * v * v
	}
	return sum
}

// BentCigar is x_0^2 + 10^6 sum_{i>0} x_i^2.
func BentCigar(x []float64) float64 {
	sum := x[0] * x[0]
	for _, v := range x[1:] {
		sum += 1e6 * v * v
	}
	return sum
}

// Zakharov is sum x_i^2 + (sum 0.5 i x_i)^2 + (sum 0.5 i x_i)^4 with 1-based i.
func Zakharov(x []float64) float64 {
	var sq, lin float64
	for i, v := range x {
		sq += v * v
		lin += 0.5 * float64(i+1) * v
	}
	l2 := lin * lin
	return sq + l2 + l2*l2
}

// Rosenbrock is sum 100 (x_{i+1} - x_i^2)^2 + (1 - x_i)^2.
func Rosenbrock(x []float64) float64 {
	var sum float64
	for i := 0; i+1 < len(x); i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum
}

// Rastrigin is 10 D + sum x_i^2 - 10 cos(2 pi x_i).
func Rastrigin(x []float64) float64 {
	sum := 10 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum
}

// Ackley is the standard Ackley function with a=20, b=0.2, c=2 pi.
func Ackley(x []float64) float64 {
	n := float64(len(x))
	var sq, cos float64
	for _, v := range x {
		sq += v * v
		cos += math.Cos(2 * math.Pi * v)
	}
	return -20*math.Exp(-0.2*math.Sqrt(sq/n)) - math.Exp(cos/n) + 20 + math.E
}

// Griewank is 1 + sum x_i^2/4000 - prod cos(x_i/sqrt(i)) with 1-based i.
func Griewank(x []float64) float64 {
	sum, prod := 0.0, 1.0
	for i, v := range x {
		sum += v * v / 4000
		prod *= math.Cos(v / math.Sqrt(float64(i+1)))
	}
	return 1 + sum - prod
}

const schwefelOptimum = 420.9687462275036

// Schwefel is 418.9829 D - sum x_i sin(sqrt|x_i|). Its minimum sits near the
// corner of the usual [-500, 500] box.
func Schwefel(x []float64) float64 {
	sum := 418.9828872724338 * float64(len(x))
	for _, v := range x {
		sum -= v * math.Sin(math.Sqrt(math.Abs(v)))
	}
	return sum
}

// Levy is the Levy function with w_i = 1 + (x_i - 1)/4.
func Levy(x []float64) float64 {
	w := func(v float64) float64 { return 1 + (v-1)/4 }

	first := math.Sin(math.Pi * w(x[0]))
	sum := first * first
	for _, v := range x[:len(x)-1] {
		wi := w(v)
		s := math.Sin(math.Pi*wi + 1)
		sum += (wi - 1) * (wi - 1) * (1 + 10*s*s)
	}
	wd := w(x[len(x)-1])
	s := math.Sin(2 * math.Pi * wd)
	return sum + (wd-1)*(wd-1)*(1+s*s)
}
