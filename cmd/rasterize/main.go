// Command rasterize burns a set of vector features into a raster and
// writes the result as a raw band buffer (and optionally a PNG/JPEG
// preview composited over a basemap image).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/vectorraster/rasterize"
	"github.com/vectorraster/rasterize/internal/encode"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		xmin, ymax, xres, yres float64
		rows, cols             int
		reducer                string
		dtype                  string
		background             float64
		allTouched             bool
		strict                 bool
		workers                int
		sparseFlag             string
		verbose                bool
		showVersion            bool
		cpuProfile             string
		memProfile             string
		outPath                string
		basemapPath            string
		previewPath            string
		previewFormat          string
	)

	flag.Float64Var(&xmin, "xmin", 0, "Raster origin X (world units)")
	flag.Float64Var(&ymax, "ymax", 0, "Raster origin Y, north edge (world units)")
	flag.Float64Var(&xres, "xres", 1, "Pixel width (world units)")
	flag.Float64Var(&yres, "yres", 1, "Pixel height (world units, positive)")
	flag.IntVar(&rows, "rows", 0, "Raster height in pixels")
	flag.IntVar(&cols, "cols", 0, "Raster width in pixels")
	flag.StringVar(&reducer, "reducer", "last", "Pixel reducer: sum, first, last, min, max, count, any")
	flag.StringVar(&dtype, "dtype", "f64", "Output dtype: u8,u16,u32,u64,i8,i16,i32,i64,f32,f64")
	flag.Float64Var(&background, "background", 0, "Fill value for untouched pixels")
	flag.BoolVar(&allTouched, "all-touched", false, "Burn every pixel touched by a polygon edge, not just interior")
	flag.BoolVar(&strict, "strict", false, "Fail on the first unsupported/malformed feature instead of counting it")
	flag.IntVar(&workers, "workers", runtime.NumCPU(), "Number of parallel workers")
	flag.StringVar(&sparseFlag, "accum", "auto", "Accumulation path: auto, dense, sparse")
	flag.BoolVar(&verbose, "verbose", false, "Verbose diagnostic logging")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	flag.StringVar(&memProfile, "memprofile", "", "Write memory profile to file")
	flag.StringVar(&outPath, "o", "", "Output path for the raw band buffer (float64, row-major, band-major)")
	flag.StringVar(&basemapPath, "basemap", "", "Optional PNG/JPEG/WebP image to composite the preview over")
	flag.StringVar(&previewPath, "preview", "", "Optional path to write a rendered preview image")
	flag.StringVar(&previewFormat, "preview-format", "png", "Preview image format: png, jpeg")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rasterize [flags] <features.json>\n\n")
		fmt.Fprintf(os.Stderr, "Burn a list of vector features (read as a JSON array of feature objects) into a raster.\n")
		fmt.Fprintf(os.Stderr, "Output band count and ordering are derived from each feature's optional\n")
		fmt.Fprintf(os.Stderr, "\"group\" key, in first-appearance order; features without one share a band.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("rasterize %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatalf("Creating CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Starting CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if memProfile != "" {
		defer func() {
			f, err := os.Create(memProfile)
			if err != nil {
				log.Fatalf("Creating memory profile: %v", err)
			}
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Fatalf("Writing memory profile: %v", err)
			}
		}()
	}

	args := flag.Args()
	if len(args) != 1 || rows <= 0 || cols <= 0 {
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("Reading features: %v", err)
	}
	features, err := decodeFeatures(data)
	if err != nil {
		log.Fatalf("Parsing features: %v", err)
	}

	red, err := parseReducer(reducer)
	if err != nil {
		log.Fatalf("Reducer: %v", err)
	}
	dt, err := parseDType(dtype)
	if err != nil {
		log.Fatalf("Dtype: %v", err)
	}

	var sparsePtr *bool
	switch sparseFlag {
	case "dense":
		v := false
		sparsePtr = &v
	case "sparse":
		v := true
		sparsePtr = &v
	case "auto":
		// leave nil, let Rasterize decide
	default:
		log.Fatalf("Accum: unknown mode %q (want auto, dense, sparse)", sparseFlag)
	}

	opts := rasterize.Options{
		Transform:  rasterize.NewAffine(xmin, ymax, xres, yres),
		Rows:       rows,
		Cols:       cols,
		Reducer:    red,
		DType:      dt,
		Background: background,
		AllTouched: allTouched,
		Strict:     strict,
		Workers:    workers,
		Verbose:    verbose,
		Sparse:     sparsePtr,
	}

	res, err := rasterize.Rasterize(features, opts)
	if err != nil {
		log.Fatalf("Rasterize: %v", err)
	}

	dense := res.Dense
	if res.UsedSparse {
		if verbose {
			log.Printf("used sparse accumulation path")
		}
		dense = res.Sparse.ToDense(red, dt, dt.ResolveBackground(background))
	}
	if verbose {
		log.Printf("rasterize: %d band(s) derived from feature group keys", res.Bands)
	}

	if res.Report.SkippedFeatures > 0 {
		log.Printf("skipped %d feature(s): %d unsupported geometry, %d malformed ring",
			res.Report.SkippedFeatures, res.Report.UnsupportedGeometryCount, res.Report.MalformedRingCount)
	}

	if outPath != "" {
		if err := writeRawBuffer(outPath, dense); err != nil {
			log.Fatalf("Writing output: %v", err)
		}
		fmt.Printf("Wrote %d values to %s\n", len(dense), outPath)
	}

	if previewPath != "" {
		// Preview compositing only has one basemap to draw onto; with a
		// grouped (multi-band) raster, only the first band is rendered.
		band0 := dense[:rows*cols]
		if err := writePreview(previewPath, previewFormat, basemapPath, band0, rows, cols, background); err != nil {
			log.Fatalf("Writing preview: %v", err)
		}
		fmt.Printf("Wrote preview to %s\n", previewPath)
	}
}

// rawFeature is the CLI's on-disk JSON shape: a value plus a nested
// coordinate tree mirroring rasterize.Geometry's tagged-variant kinds.
// The core itself never parses this format — a file format layer is out
// of scope for the library, see DESIGN.md.
type rawFeature struct {
	Kind    string         `json:"kind"`
	Value   float64        `json:"value"`
	Group   *string        `json:"group,omitempty"`
	Point   [2]float64     `json:"point,omitempty"`
	Line    [][2]float64   `json:"line,omitempty"`
	Rings   [][][2]float64 `json:"rings,omitempty"`
	Members []rawFeature   `json:"members,omitempty"`
}

func decodeFeatures(data []byte) ([]rasterize.Feature, error) {
	var raws []rawFeature
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	out := make([]rasterize.Feature, len(raws))
	for i, r := range raws {
		g, err := rawToGeometry(r)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		out[i] = rasterize.Feature{Geometry: g, Value: r.Value, GroupKey: r.Group}
	}
	return out, nil
}

func rawToGeometry(r rawFeature) (rasterize.Geometry, error) {
	switch r.Kind {
	case "point":
		return rasterize.NewPoint(r.Point[0], r.Point[1]), nil
	case "linestring":
		return rasterize.NewLineString(toCoords(r.Line)), nil
	case "polygon":
		if len(r.Rings) == 0 {
			return rasterize.Geometry{}, fmt.Errorf("polygon with no rings")
		}
		exterior := rasterize.Ring{Coords: toCoords(r.Rings[0])}
		holes := make([]rasterize.Ring, 0, len(r.Rings)-1)
		for _, h := range r.Rings[1:] {
			holes = append(holes, rasterize.Ring{Coords: toCoords(h)})
		}
		return rasterize.NewPolygon(exterior, holes...), nil
	case "multipoint", "multilinestring", "multipolygon", "geometrycollection":
		members := make([]rasterize.Geometry, len(r.Members))
		for i, m := range r.Members {
			g, err := rawToGeometry(m)
			if err != nil {
				return rasterize.Geometry{}, err
			}
			members[i] = g
		}
		switch r.Kind {
		case "multipoint":
			return rasterize.NewMultiPoint(members...), nil
		case "multilinestring":
			return rasterize.NewMultiLineString(members...), nil
		case "multipolygon":
			return rasterize.NewMultiPolygon(members...), nil
		default:
			return rasterize.NewCollection(members...), nil
		}
	default:
		return rasterize.Geometry{}, fmt.Errorf("unknown geometry kind %q", r.Kind)
	}
}

func toCoords(pts [][2]float64) []rasterize.Coord {
	out := make([]rasterize.Coord, len(pts))
	for i, p := range pts {
		out[i] = rasterize.Coord{X: p[0], Y: p[1]}
	}
	return out
}

func parseReducer(s string) (rasterize.Reducer, error) {
	switch s {
	case "sum":
		return rasterize.Sum, nil
	case "first":
		return rasterize.First, nil
	case "last":
		return rasterize.Last, nil
	case "min":
		return rasterize.Min, nil
	case "max":
		return rasterize.Max, nil
	case "count":
		return rasterize.Count, nil
	case "any":
		return rasterize.Any, nil
	default:
		return 0, fmt.Errorf("unknown reducer %q", s)
	}
}

func parseDType(s string) (rasterize.DType, error) {
	switch s {
	case "u8":
		return rasterize.U8, nil
	case "u16":
		return rasterize.U16, nil
	case "u32":
		return rasterize.U32, nil
	case "u64":
		return rasterize.U64, nil
	case "i8":
		return rasterize.I8, nil
	case "i16":
		return rasterize.I16, nil
	case "i32":
		return rasterize.I32, nil
	case "i64":
		return rasterize.I64, nil
	case "f32":
		return rasterize.F32, nil
	case "f64":
		return rasterize.F64, nil
	default:
		return 0, fmt.Errorf("unknown dtype %q", s)
	}
}

func writeRawBuffer(path string, values []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	buf := make([]byte, 8)
	for _, v := range values {
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		if _, err := f.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func writePreview(path, format, basemapPath string, dense []float64, rows, cols int, bg float64) error {
	var basemap image.Image
	if basemapPath != "" {
		data, err := os.ReadFile(basemapPath)
		if err != nil {
			return err
		}
		basemap, err = encode.DecodeBasemap(basemapPath, data)
		if err != nil {
			return err
		}
	}

	lo, hi := rangeOf(dense, bg)
	ramp := encode.GrayscaleRamp(lo, hi, bg)
	out := encode.Composite(basemap, dense, rows, cols, ramp)

	enc, err := encode.NewEncoder(format)
	if err != nil {
		return err
	}
	encoded, err := enc.Encode(out)
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0o644)
}

func rangeOf(values []float64, bg float64) (lo, hi float64) {
	first := true
	for _, v := range values {
		if v == bg {
			continue
		}
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
