package routing

import (
	"fmt"
	"math"

	"github.com/passbi/transitmap/internal/models"
)

// Result is the output of one solver run: a RouteInfo for every stop of the
// network, keyed by stop code. Unreachable stops keep an infinite cost.
type Result struct {
	Origin    *models.Stop
	Criterion string
	Penalty   float64
	infos     map[string]models.RouteInfo
}

func (r *Result) relax(from, to *models.Stop, route *models.Route, t models.Transport, weight float64, apply bool) bool {
	candidate := r.infos[from.Code].CostToArrive + weight
	if !(r.infos[to.Code].CostToArrive > candidate) {
		return false
	}
	if apply {
		r.infos[to.Code] = models.RouteInfo{
			CameFrom:       from,
			ArrivedAt:      to,
			RouteTaken:     route,
			TransportTaken: t,
			CostToArrive:   candidate,
			Criterion:      r.Criterion,
		}
	}
	return true
}

// Info returns the record of the stop with the given code
func (r *Result) Info(code string) (models.RouteInfo, bool) {
	info, ok := r.infos[code]
	return info, ok
}

// Cost returns the raw accumulated cost (penalties included) to reach code
func (r *Result) Cost(code string) float64 {
	info, ok := r.infos[code]
	if !ok {
		return math.Inf(1)
	}
	return info.CostToArrive
}

// Reachable reports whether code was reached from the origin
func (r *Result) Reachable(code string) bool {
	return !math.IsInf(r.Cost(code), 1)
}

// All returns a copy of every record
func (r *Result) All() map[string]models.RouteInfo {
	result := make(map[string]models.RouteInfo, len(r.infos))
	for code, info := range r.infos {
		result[code] = info
	}
	return result
}

// PathTo reconstructs the hops from the origin to dest, first hop first.
// Each hop's cost is the accumulated cost with the boarding penalty removed
// once per hop taken so far. A path to the origin itself is empty.
func (r *Result) PathTo(dest *models.Stop) ([]models.RouteInfo, error) {
	if dest == nil {
		return nil, fmt.Errorf("%w: nil destination", ErrNoPath)
	}
	info, ok := r.infos[dest.Code]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not in the network", ErrNoPath, dest.Code)
	}
	if dest.Code == r.Origin.Code {
		return []models.RouteInfo{}, nil
	}
	if info.CameFrom == nil {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoPath, r.Origin.Code, dest.Code)
	}

	var hops []models.RouteInfo
	for info.CameFrom != nil {
		if len(hops) > len(r.infos) {
			return nil, fmt.Errorf("%w: predecessor chain of %s does not end", ErrNegativeCycle, dest.Code)
		}
		hops = append(hops, info)
		info = r.infos[info.CameFrom.Code]
	}

	// Reverse into travel order
	for i, j := 0, len(hops)-1; i < j; i, j = i+1, j-1 {
		hops[i], hops[j] = hops[j], hops[i]
	}
	for i := range hops {
		hops[i].CostToArrive -= float64(i+1) * r.Penalty
	}
	return hops, nil
}
