package neuro

import "math"

// AveragePair reduces a (left, right) reading to one normalized score,
// rounded to 3 decimals. A missing pair or a missing side degrades to
// absent; it never fails, and one bad metric never affects the others.
func AveragePair(p *MetricPair) *float64 {
	if p == nil || p.Left == nil || p.Right == nil {
		return nil
	}
	v := math.Round((*p.Left+*p.Right)/2*1000) / 1000
	return &v
}
