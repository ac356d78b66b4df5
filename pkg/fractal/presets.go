package fractal

import (
	"sort"

	errs "github.com/matzehuels/mandel/pkg/errors"
)

// Preset is a named landmark region of the Mandelbrot set together with the
// iteration cap that resolves it reasonably.
type Preset struct {
	Name        string
	Description string
	Region      Region
	MaxIter     uint64
}

// DefaultPreset is the region rendered when nothing else is requested.
const DefaultPreset = "classic"

// presets holds the built-in landmarks. Densities are chosen so each renders
// to roughly 1–7 megapixels.
var presets = map[string]Preset{
	"classic": {
		Name:        "classic",
		Description: "Lower-left quadrant of the main cardioid and the period-2 bulb",
		Region:      NewRegion(-1.5, -0.5, 0.0, 0.0, 3000),
		MaxIter:     15,
	},
	"seahorse-valley": {
		Name:        "seahorse-valley",
		Description: "Dense filaments and repeating seahorse curls",
		Region:      NewRegion(-0.8, 0.05, -0.7, 0.15, 10000),
		MaxIter:     500,
	},
	"elephant-valley": {
		Name:        "elephant-valley",
		Description: "Large bulb with trunk-like tendrils",
		Region:      NewRegion(-1.85, -0.10, -1.75, -0.02, 12000),
		MaxIter:     500,
	},
	"spiral-minibrot": {
		Name:        "spiral-minibrot",
		Description: "Small Mandelbrot copy with tight spiral arms",
		Region:      NewRegion(-0.7435, 0.1310, -0.7420, 0.1325, 800000),
		MaxIter:     2000,
	},
	"triple-spiral": {
		Name:        "triple-spiral",
		Description: "Threefold symmetric spiral structure",
		Region:      NewRegion(-0.7480, 0.0950, -0.7450, 0.0980, 400000),
		MaxIter:     1500,
	},
	"dragon-valley": {
		Name:        "dragon-valley",
		Description: "Deep, highly detailed spiral filaments",
		Region:      NewRegion(-0.7400, 0.1800, -0.7350, 0.1850, 240000),
		MaxIter:     1500,
	},
	"minibrot-spiral": {
		Name:        "minibrot-spiral",
		Description: "Self-similar Mandelbrot copy inside a spiral arm",
		Region:      NewRegion(-1.7390, -0.0235, -1.7375, -0.0220, 800000),
		MaxIter:     2000,
	},
}

// LookupPreset returns the preset with the given name.
func LookupPreset(name string) (Preset, error) {
	if err := errs.ValidatePresetName(name); err != nil {
		return Preset{}, err
	}
	p, ok := presets[name]
	if !ok {
		return Preset{}, errs.New(errs.ErrCodePresetNotFound, "unknown preset %q", name)
	}
	return p, nil
}

// Presets returns all built-in presets sorted by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
