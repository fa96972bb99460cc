package orchestrate

import (
	"log"
	"runtime"
)

// DefaultMemoryPressurePercent is the fraction of total RAM the dense path
// is allowed to claim before the orchestrator falls back to the sparse COO
// path instead.
const DefaultMemoryPressurePercent = 0.90

// accumulatorBytesPerPixel mirrors Slab's per-pixel footprint: one float64
// of working state, one touched bool, and (for order-sensitive reducers)
// one int32 feature-index stamp.
func accumulatorBytesPerPixel(orderSensitive bool) int64 {
	b := int64(8 + 1)
	if orderSensitive {
		b += 4
	}
	return b
}

// computeMemoryBudget returns the number of bytes the dense path may use
// before spilling to the sparse path. Returns 0 if RAM detection fails,
// which callers should treat as "always prefer sparse."
func computeMemoryBudget(fraction float64, verbose bool) int64 {
	totalRAM, err := totalSystemRAM()
	if err != nil {
		if verbose {
			log.Printf("cannot detect system RAM: %v; dense/sparse auto-select disabled", err)
		}
		return 0
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	overhead := m.Sys + 512*1024*1024

	budget := int64(float64(totalRAM)*fraction) - int64(overhead)
	if budget < 64*1024*1024 {
		if verbose {
			log.Printf("computed memory budget too small (%.0f MB); preferring sparse path", float64(budget)/(1024*1024))
		}
		return 0
	}
	return budget
}

// ShouldUseDense decides between the dense per-thread-slab path and the
// sparse COO path for a raster of the given shape (spec's "auto" mode
// knob). It estimates peak transient memory as
// workers × bands × rows × cols × sizeof(accumulator) and compares against
// a budget derived from detected system RAM; unions of burned pixels far
// smaller than rows×cols should use sparse regardless, which callers
// signal by passing estimatedBurnedPixels >= 0.
func ShouldUseDense(bands, rows, cols, workers int, orderSensitive bool, estimatedBurnedPixels int64, verbose bool) bool {
	if bands <= 0 || rows <= 0 || cols <= 0 || workers <= 0 {
		return false
	}

	total := int64(rows) * int64(cols)
	if estimatedBurnedPixels >= 0 && estimatedBurnedPixels < total/4 {
		// Sparse union is comfortably smaller than the dense grid; no need
		// to even consult the memory budget.
		return false
	}

	budget := computeMemoryBudget(DefaultMemoryPressurePercent, verbose)
	if budget == 0 {
		return false
	}

	perPixel := accumulatorBytesPerPixel(orderSensitive)
	peak := int64(workers) * int64(bands) * total * perPixel
	if verbose {
		log.Printf("dense path would use ~%.1f MB (budget %.1f MB)", float64(peak)/(1024*1024), float64(budget)/(1024*1024))
	}
	return peak <= budget
}
