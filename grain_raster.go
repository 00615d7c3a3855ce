// grain_raster.go - CPU rasterizer for the grain visualization frames

package main

const (
	GRAIN_W     = 640
	GRAIN_H     = 400
	GRAIN_SCALE = 1

	// Grain stays faintly visible at volume zero so the window never
	// looks dead while stopped.
	GRAIN_BASE_LEVEL = 0.25
)

// grainTint maps a noise color to RGB multipliers for the visualization:
// neutral for white, rose for pink, sepia for brown.
func grainTint(c NoiseColor) (r, g, b float32) {
	switch c {
	case NOISE_PINK:
		return 1.00, 0.62, 0.78
	case NOISE_BROWN:
		return 0.58, 0.42, 0.25
	default:
		return 1.00, 1.00, 1.00
	}
}

// fillGrain renders one frame of tinted grain into pix (RGBA, 4 bytes per
// pixel). Brightness scales with volume above GRAIN_BASE_LEVEL. The rng
// is the caller's own; frames are never expected to repeat.
func fillGrain(pix []byte, c NoiseColor, volume float32, rng *noiseRand) {
	tr, tg, tb := grainTint(c)
	level := GRAIN_BASE_LEVEL + (1.0-GRAIN_BASE_LEVEL)*clampF32(volume, MIN_VOLUME, MAX_VOLUME)
	for i := 0; i+3 < len(pix); i += 4 {
		v := rng.uniform()*0.5 + 0.5
		lum := v * level * 255
		pix[i] = byte(lum * tr)
		pix[i+1] = byte(lum * tg)
		pix[i+2] = byte(lum * tb)
		pix[i+3] = 0xFF
	}
}
