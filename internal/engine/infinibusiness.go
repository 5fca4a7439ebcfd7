// Infinibusinesses have no patron cap; all copies of one kind share a
// revenue pool with diminishing returns in their summed efficiency.
package engine

import (
	"math"

	"github.com/talgya/gridtown/internal/tuning"
)

// InfinibusinessRevenue is the combined revenue of every copy of one
// infinibusiness kind with business value value, given the city's population
// and the copies' summed connected efficiency.
//
//	revenue = value × popScale × (1 − e^(−k·S)) / k
//	popScale = base + ln(1 + population/divisor)
func InfinibusinessRevenue(value, population, summedEfficiency float64, rules tuning.Business) float64 {
	if summedEfficiency <= 0 || rules.InfiniSaturation <= 0 {
		return 0
	}
	k := rules.InfiniSaturation
	return value * infiniPopScale(population, rules) * (1 - math.Exp(-k*summedEfficiency)) / k
}

// infiniMarginal is the revenue added by one more copy at efficiency e when
// the kind already sums to S: value × popScale × e^(−kS) × (1 − e^(−ke)) / k.
func infiniMarginal(value, population, summed, e float64, rules tuning.Business) float64 {
	if rules.InfiniSaturation <= 0 || e <= 0 {
		return 0
	}
	k := rules.InfiniSaturation
	return value * infiniPopScale(population, rules) * math.Exp(-k*summed) * (1 - math.Exp(-k*e)) / k
}

func infiniPopScale(population float64, rules tuning.Business) float64 {
	scale := rules.InfiniBaseFraction
	if rules.InfiniPopDivisor > 0 {
		scale += math.Log1p(max(population, 0) / rules.InfiniPopDivisor)
	}
	return scale
}

// InfinibusinessMarginalValue previews the extra pre-tax revenue b would add
// at full efficiency, given the copies of its kind already operating.
// Returns 0 for anything that is not an infinibusiness.
func (c *City) InfinibusinessMarginalValue(b *Building) float64 {
	biz, ok := b.Behavior.(Business)
	if !ok || biz.PatronCap(b, c) != InfinitePatrons {
		return 0
	}
	var summed float64
	for _, o := range c.Buildings {
		if o != b && o.Kind == b.Kind && !o.Failed {
			summed += c.ConnectedEfficiency(o)
		}
	}
	return infiniMarginal(biz.BusinessValue(b, c), c.Population(), summed, 1, c.Tuning.Business)
}
