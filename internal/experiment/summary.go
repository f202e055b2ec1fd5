package experiment

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cwbudde/rngevo/internal/store"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary describes the best scores of one (objective, strategy) cell.
type Summary struct {
	Objective string
	Strategy  string
	Runs      int
	Mean      float64
	Std       float64 // population standard deviation
	Min       float64
	Median    float64
	Max       float64

	// Wall time per run, population standard deviation.
	MeanDuration time.Duration
	StdDuration  time.Duration
}

type cell struct {
	objective, strategy string
}

func groupScores(records []*store.RunRecord) (map[cell][]float64, []cell) {
	groups := make(map[cell][]float64)
	var order []cell
	for _, r := range records {
		if r == nil {
			continue
		}
		k := cell{r.Objective, r.Strategy}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r.BestScore)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].objective != order[j].objective {
			return order[i].objective < order[j].objective
		}
		return order[i].strategy < order[j].strategy
	})
	return groups, order
}

// Summarize computes per-cell statistics, ordered by objective then strategy.
func Summarize(records []*store.RunRecord) []Summary {
	groups, order := groupScores(records)

	seconds := make(map[cell][]float64)
	for _, r := range records {
		if r != nil {
			k := cell{r.Objective, r.Strategy}
			seconds[k] = append(seconds[k], r.Duration.Seconds())
		}
	}

	out := make([]Summary, 0, len(order))
	for _, k := range order {
		scores := append([]float64(nil), groups[k]...)
		sort.Float64s(scores)

		mean, std := stat.PopMeanStdDev(scores, nil)
		meanSec, stdSec := stat.PopMeanStdDev(seconds[k], nil)
		out = append(out, Summary{
			Objective: k.objective,
			Strategy:  k.strategy,
			Runs:      len(scores),
			Mean:      mean,
			Std:       std,
			Min:       floats.Min(scores),
			Median:    stat.Quantile(0.5, stat.Empirical, scores, nil),
			Max:       floats.Max(scores),

			MeanDuration: secondsToDuration(meanSec),
			StdDuration:  secondsToDuration(stdSec),
		})
	}
	return out
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ErrIdenticalScores is returned by KruskalWallis when every observation is
// equal and ranks carry no information.
var ErrIdenticalScores = errors.New("all scores are identical")

// KruskalWallis tests whether the groups come from the same distribution.
// It returns the tie-corrected H statistic and its chi-squared p-value with
// len(groups)-1 degrees of freedom.
func KruskalWallis(groups [][]float64) (h, p float64, err error) {
	if len(groups) < 2 {
		return 0, 0, fmt.Errorf("need at least 2 groups, got %d", len(groups))
	}

	type obs struct {
		value float64
		group int
	}
	var all []obs
	for g, values := range groups {
		if len(values) == 0 {
			return 0, 0, fmt.Errorf("group %d is empty", g)
		}
		for _, v := range values {
			all = append(all, obs{v, g})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].value < all[j].value })

	n := float64(len(all))
	rankSums := make([]float64, len(groups))
	var ties float64
	for i := 0; i < len(all); {
		j := i
		for j < len(all) && all[j].value == all[i].value {
			j++
		}
		// Positions i..j-1 share the average of ranks i+1..j.
		rank := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			rankSums[all[k].group] += rank
		}
		t := float64(j - i)
		ties += t*t*t - t
		i = j
	}

	correction := 1 - ties/(n*n*n-n)
	if correction <= 0 {
		return 0, 0, ErrIdenticalScores
	}

	for g, values := range groups {
		h += rankSums[g] * rankSums[g] / float64(len(values))
	}
	h = (12/(n*(n+1))*h - 3*(n+1)) / correction

	chi := distuv.ChiSquared{K: float64(len(groups) - 1)}
	return h, chi.Survival(h), nil
}

// Comparison is the Kruskal-Wallis result across strategies for one objective.
type Comparison struct {
	Objective  string
	Strategies []string
	H          float64
	PValue     float64
}

// Compare runs KruskalWallis per objective over the strategies' best scores.
// Objectives with fewer than two strategies or identical scores are skipped.
func Compare(records []*store.RunRecord) []Comparison {
	groups, order := groupScores(records)

	var out []Comparison
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && order[j].objective == order[i].objective {
			j++
		}

		var names []string
		var samples [][]float64
		for _, k := range order[i:j] {
			names = append(names, k.strategy)
			samples = append(samples, groups[k])
		}
		if h, p, err := KruskalWallis(samples); err == nil {
			out = append(out, Comparison{Objective: order[i].objective, Strategies: names, H: h, PValue: p})
		}
		i = j
	}
	return out
}
