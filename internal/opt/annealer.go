package opt

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Annealer is the built-in combinatorial solver: a single-vehicle
// ruin-and-recreate search with simulated-annealing acceptance. It removes a
// few stops at a time (random or geographically related), reinserts them at
// their cheapest positions, applies 2-opt, and keeps the best order seen.
// Search stops at the context deadline or after NoImproveLimit consecutive
// iterations without improvement.
type Annealer struct {
	InitialTemp float64 // default 1.0
	Cooling     float64 // default 0.995
}

func NewAnnealer() *Annealer {
	return &Annealer{InitialTemp: 1.0, Cooling: 0.995}
}

func (a *Annealer) Solve(ctx context.Context, p Problem) (Solution, error) {
	n := len(p.DemandKg)
	if n == 0 {
		return Solution{}, errors.New("annealer: empty problem")
	}
	if len(p.TravelSec) != n+1 {
		return Solution{}, errors.New("annealer: matrix does not match stop count")
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	curr := greedySeedOrder(p)
	currCost := orderCost(p, curr)
	best := append([]int(nil), curr...)
	bestCost := currCost

	temp := a.InitialTemp
	if temp <= 0 {
		temp = 1.0
	}
	cool := a.Cooling
	if cool <= 0 || cool >= 1 {
		cool = 0.995
	}
	noImproveLimit := p.NoImproveLimit
	if noImproveLimit <= 0 {
		noImproveLimit = DefaultNoImproveLimit
	}

	noImprove := 0
	for noImprove < noImproveLimit {
		select {
		case <-ctx.Done():
			return Solution{Order: best, CostSec: bestCost}, nil
		default:
		}

		cand := append([]int(nil), curr...)
		k := 1 + rng.Intn(3)
		if k > len(cand) {
			k = len(cand)
		}
		var removed []int
		if rng.Intn(2) == 0 {
			cand, removed = removeRandom(cand, k, rng)
		} else {
			cand, removed = removeRelated(p, cand, k, rng)
		}
		cand = cheapestReinsert(p, cand, removed)
		cand = twoOptPass(p, cand)
		candCost := orderCost(p, cand)

		delta := float64(candCost - currCost)
		if delta < 0 || rng.Float64() < math.Exp(-delta/(temp*float64(bestCost)+1e-9)) {
			curr, currCost = cand, candCost
		}
		if candCost < bestCost {
			best = append(best[:0:0], cand...)
			bestCost = candCost
			noImprove = 0
		} else {
			noImprove++
		}
		temp *= cool
	}
	return Solution{Order: best, CostSec: bestCost}, nil
}

// greedySeedOrder builds the initial order by repeatedly appending the stop
// with the cheapest travel time from the current position.
func greedySeedOrder(p Problem) []int {
	n := len(p.DemandKg)
	used := make([]bool, n)
	order := make([]int, 0, n)
	cur := 0 // depot
	for len(order) < n {
		best, bestSec := -1, 0
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			sec := p.TravelSec[cur][i+1]
			if best == -1 || sec < bestSec {
				best, bestSec = i, sec
			}
		}
		used[best] = true
		order = append(order, best)
		cur = best + 1
	}
	return order
}

// orderCost walks the order and totals travel plus service seconds, with
// penalties for soft time-window lateness and horizon overflow.
func orderCost(p Problem, order []int) int {
	const latePenalty = 4
	t := 0
	cur := 0
	cost := 0
	for _, idx := range order {
		t += p.TravelSec[cur][idx+1]
		cost += p.TravelSec[cur][idx+1]
		if w := p.Windows[idx]; w != nil {
			if t < w.StartSec {
				t = w.StartSec // wait for the window to open
			}
			if w.EndSec > 0 && t > w.EndSec {
				cost += (t - w.EndSec) * latePenalty
			}
		}
		t += p.ServiceSec
		cur = idx + 1
	}
	if p.ReturnToDepot && len(order) > 0 {
		t += p.TravelSec[cur][0]
		cost += p.TravelSec[cur][0]
	}
	if t > p.HorizonSec && p.HorizonSec > 0 {
		cost += (t - p.HorizonSec) * latePenalty
	}
	return cost
}

func removeRandom(order []int, k int, rng *rand.Rand) (remaining, removed []int) {
	removed = make([]int, 0, k)
	for i := 0; i < k && len(order) > 0; i++ {
		j := rng.Intn(len(order))
		removed = append(removed, order[j])
		order = append(order[:j], order[j+1:]...)
	}
	return order, removed
}

// removeRelated removes a random seed stop plus its nearest assigned
// neighbors, so reinsertion can untangle a whole cluster at once.
func removeRelated(p Problem, order []int, k int, rng *rand.Rand) (remaining, removed []int) {
	if len(order) == 0 {
		return order, nil
	}
	seed := order[rng.Intn(len(order))]
	type scored struct {
		idx  int
		dist int
	}
	rel := make([]scored, 0, len(order))
	for _, idx := range order {
		if idx == seed {
			continue
		}
		rel = append(rel, scored{idx: idx, dist: p.DistM[seed+1][idx+1]})
	}
	for i := 0; i < len(rel); i++ {
		for j := i + 1; j < len(rel); j++ {
			if rel[j].dist < rel[i].dist {
				rel[i], rel[j] = rel[j], rel[i]
			}
		}
	}
	removed = []int{seed}
	for i := 0; i < len(rel) && len(removed) < k; i++ {
		removed = append(removed, rel[i].idx)
	}
	rm := map[int]bool{}
	for _, idx := range removed {
		rm[idx] = true
	}
	remaining = order[:0]
	for _, idx := range order {
		if !rm[idx] {
			remaining = append(remaining, idx)
		}
	}
	return remaining, removed
}

// cheapestReinsert puts each removed stop back at its cheapest position.
func cheapestReinsert(p Problem, order, removed []int) []int {
	for _, idx := range removed {
		bestPos, bestCost := 0, math.MaxInt
		for pos := 0; pos <= len(order); pos++ {
			cand := make([]int, 0, len(order)+1)
			cand = append(cand, order[:pos]...)
			cand = append(cand, idx)
			cand = append(cand, order[pos:]...)
			c := orderCost(p, cand)
			if c < bestCost {
				bestPos, bestCost = pos, c
			}
		}
		next := make([]int, 0, len(order)+1)
		next = append(next, order[:bestPos]...)
		next = append(next, idx)
		next = append(next, order[bestPos:]...)
		order = next
	}
	return order
}

// twoOptPass reverses segments while doing so reduces cost; one sweep.
func twoOptPass(p Problem, order []int) []int {
	n := len(order)
	if n < 4 {
		return order
	}
	base := orderCost(p, order)
	for i := 0; i < n-2; i++ {
		for k := i + 1; k < n-1; k++ {
			cand := append([]int(nil), order...)
			for a, b := i, k; a < b; a, b = a+1, b-1 {
				cand[a], cand[b] = cand[b], cand[a]
			}
			if c := orderCost(p, cand); c < base {
				order = cand
				base = c
			}
		}
	}
	return order
}
