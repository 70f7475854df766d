package quota

import "math"

// AdjustedAllocation is the optimizer output: per-category bed values after
// applying the adjustment, kept real-valued for auditability. Rounding to
// integer beds for persistence is the caller's job.
type AdjustedAllocation struct {
	Beds            map[Category]float64
	Delta           float64
	TargetFreeQuota int
	ShouldOptimize  bool
}

// Rounded returns the per-category values rounded to the nearest integer bed.
func (a AdjustedAllocation) Rounded() map[Category]int {
	out := make(map[Category]int, len(a.Beds))
	for c, v := range a.Beds {
		out[c] = int(math.Round(v))
	}
	return out
}

// Optimize computes the allocation that makes free capacity match exactly the
// value required to hit targetOccupancy.
//
// The dormitory category absorbs the whole adjustment when it has capacity;
// otherwise the adjustment is spread evenly across the remaining categories
// that have capacity. Every category is floored at zero independently, and no
// upper bound is enforced.
func Optimize(effective *Quota, targetOccupancy, currentBooked, currentFreeQuota int) AdjustedAllocation {
	beds := make(map[Category]float64, 4)
	for _, c := range Categories() {
		beds[c] = 0
	}
	if effective == nil {
		return AdjustedAllocation{Beds: beds}
	}

	for _, c := range Categories() {
		beds[c] = float64(effective.CategoryBeds(c))
	}

	neededFreeQuota := targetOccupancy - currentBooked
	delta := float64(neededFreeQuota - currentFreeQuota)
	if delta == 0 {
		return AdjustedAllocation{Beds: beds, TargetFreeQuota: neededFreeQuota}
	}

	if beds[CategoryML] > 0 {
		beds[CategoryML] = math.Max(0, beds[CategoryML]+delta)
		return AdjustedAllocation{
			Beds:            beds,
			Delta:           delta,
			TargetFreeQuota: neededFreeQuota,
			ShouldOptimize:  true,
		}
	}

	var open []Category
	for _, c := range []Category{CategoryMBZ, CategoryTwoBZ, CategorySK} {
		if beds[c] > 0 {
			open = append(open, c)
		}
	}
	if len(open) == 0 {
		// No category can absorb the adjustment.
		return AdjustedAllocation{Beds: beds, Delta: delta, TargetFreeQuota: neededFreeQuota}
	}

	share := delta / float64(len(open))
	for _, c := range open {
		beds[c] = math.Max(0, beds[c]+share)
	}
	return AdjustedAllocation{
		Beds:            beds,
		Delta:           delta,
		TargetFreeQuota: neededFreeQuota,
		ShouldOptimize:  true,
	}
}
