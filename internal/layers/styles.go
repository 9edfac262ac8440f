package layers

import (
	"fmt"
	"math"
)

// Fixed palette. NoDataFill is used for choropleth regions without a
// matching record so they render dimmed rather than disappearing.
const (
	NoDataFill    = "#9e9e9e"
	highlightFill = "#ffffff"
)

// gradientStop pairs a position in [0,1] with an RGB color.
type gradientStop struct {
	at      float64
	r, g, b uint8
}

// riskGradient is the three-stop green -> amber -> red ramp for risk scores.
var riskGradient = []gradientStop{
	{0.0, 0x2e, 0xcc, 0x71},
	{0.5, 0xf1, 0xc4, 0x0f},
	{1.0, 0xe7, 0x4c, 0x3c},
}

// RiskColor maps a score in [0,100] onto the risk gradient.
func RiskColor(score float64) string {
	t := clamp(score/100, 0, 1)
	for i := 1; i < len(riskGradient); i++ {
		lo, hi := riskGradient[i-1], riskGradient[i]
		if t <= hi.at {
			f := (t - lo.at) / (hi.at - lo.at)
			return fmt.Sprintf("#%02x%02x%02x",
				lerp(lo.r, hi.r, f), lerp(lo.g, hi.g, f), lerp(lo.b, hi.b, f))
		}
	}
	last := riskGradient[len(riskGradient)-1]
	return fmt.Sprintf("#%02x%02x%02x", last.r, last.g, last.b)
}

// RiskRadius maps a score linearly into a fixed pixel band.
func RiskRadius(score float64) float64 {
	const minRadius, maxRadius = 4.0, 18.0
	return minRadius + (maxRadius-minRadius)*clamp(score/100, 0, 1)
}

// HotspotRadius log-scales a mention count; a handful of mentions and a
// thousand should not differ by two orders of magnitude on screen.
func HotspotRadius(mentions int) float64 {
	if mentions < 0 {
		mentions = 0
	}
	return 6 + 4*math.Log1p(float64(mentions))
}

// advisoryFills indexes advisory level 1..4.
var advisoryFills = [...]string{"#2ecc71", "#f1c40f", "#e67e22", "#c0392b"}

// AdvisoryFill maps an advisory level onto the choropleth palette. A nil
// level means the upstream had no answer for that region.
func AdvisoryFill(level *int) string {
	if level == nil {
		return NoDataFill
	}
	l := *level
	if l < 1 {
		l = 1
	}
	if l > len(advisoryFills) {
		l = len(advisoryFills)
	}
	return advisoryFills[l-1]
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}
