// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
)

// Panel size of the SSD1306.
const (
	Width  = 128
	Height = 64
)

// Layout of the dial and slider, in pixels.
const (
	dialCX     = 100
	dialCY     = 38
	dialRadius = 23
	needleLen  = dialRadius - 4

	// Dial face: ticks end just inside the ring. Bounded dials put the
	// travel arc there and hang their detent ticks off its inner edge.
	tickOuterR   = dialRadius - 2.5
	arcInnerR    = tickOuterR - 2
	majorTickLen = 4.0
	minorTickLen = 2.0

	sliderX0 = 4
	sliderX1 = Width - 4
	sliderY0 = 42
	sliderY1 = 58

	maxNameChars = Width / 7
)

// Render draws one frame: the knob name, the current step and either a
// dial with a needle or a volume slider. have is false until the first step
// report arrives.
func Render(s knob.Settings, step int, have bool) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height))

	name := s.Name
	if name == "" {
		name = "Knob"
	}
	if len(name) > maxNameChars {
		name = name[:maxNameChars]
	}
	drawText(img, 0, 12, name)

	if !have {
		drawText(img, 0, 39, "Waiting...")
		return img
	}

	if IsSlider(s) {
		total := s.StepsPerRevolution
		if total <= 0 {
			total = defaultSliderSteps
		}
		drawText(img, 0, 32, fmt.Sprintf("Vol %d/%d", step, total))
		drawSlider(img, SliderFraction(s, step))
		return img
	}

	drawText(img, 0, 32, "Step")
	drawText(img, 0, 46, fmt.Sprintf("%d", step))
	if s.Bounded {
		drawText(img, 0, 60, "bounded")
	} else {
		drawText(img, 0, 60, "free")
	}
	drawDial(img, s, NeedleAngle(s, step))
	return img
}

func drawText(img *image1bit.VerticalLSB, x, y int, text string) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

func drawSlider(img *image1bit.VerticalLSB, frac float64) {
	// Outline as an outer rectangle minus an inner one.
	z := vector.NewRasterizer(Width, Height)
	rect(z, sliderX0, sliderY0, sliderX1, sliderY1, false)
	rect(z, sliderX0+1, sliderY0+1, sliderX1-1, sliderY1-1, true)

	fill := float32(sliderX0+2) + float32(frac)*float32(sliderX1-sliderX0-4)
	if fill > sliderX0+2 {
		rect(z, sliderX0+2, sliderY0+2, fill, sliderY1-2, false)
	}
	z.Draw(img, img.Bounds(), image.NewUniform(image1bit.On), image.Point{})
}

func drawDial(img *image1bit.VerticalLSB, s knob.Settings, angle float64) {
	z := vector.NewRasterizer(Width, Height)

	// Ring: outer circle one way, inner circle the other way round.
	circle(z, dialCX, dialCY, dialRadius, false)
	circle(z, dialCX, dialCY, dialRadius-1.5, true)

	// Hub.
	circle(z, dialCX, dialCY, 2.5, false)

	tickOuter := float64(tickOuterR)
	if s.Bounded {
		from, to := TravelArc(s)
		arc(z, dialCX, dialCY, arcInnerR, tickOuterR, from, to)
		tickOuter = arcInnerR
	}
	for _, t := range DialTicks(s) {
		length, half := minorTickLen, 0.5
		if t.Major {
			length, half = majorTickLen, 1.0
		}
		spoke(z, t.Angle, tickOuter-length, tickOuter, half)
	}

	spoke(z, angle, 0, needleLen, 1.0)

	z.Draw(img, img.Bounds(), image.NewUniform(image1bit.On), image.Point{})
}

// spoke adds a radial bar of half width half from r0 to r1 along angle.
// It winds the same way as a forward circle so overlaps add up.
func spoke(z *vector.Rasterizer, angle, r0, r1, half float64) {
	dx, dy := math.Cos(angle), math.Sin(angle)
	nx, ny := -dy*half, dx*half
	x0, y0 := dialCX+dx*r0, dialCY+dy*r0
	x1, y1 := dialCX+dx*r1, dialCY+dy*r1
	z.MoveTo(float32(x0-nx), float32(y0-ny))
	z.LineTo(float32(x1-nx), float32(y1-ny))
	z.LineTo(float32(x1+nx), float32(y1+ny))
	z.LineTo(float32(x0+nx), float32(y0+ny))
	z.ClosePath()
}

// arc adds the band between radii r0 and r1 from angle a0 to a1.
func arc(z *vector.Rasterizer, cx, cy, r0, r1, a0, a1 float64) {
	n := max(2, int(math.Ceil((a1-a0)/(2*math.Pi)*circleSegments)))
	at := func(r, a float64) (float32, float32) {
		return float32(cx + r*math.Cos(a)), float32(cy + r*math.Sin(a))
	}
	z.MoveTo(at(r1, a0))
	for i := 1; i <= n; i++ {
		z.LineTo(at(r1, a0+(a1-a0)*float64(i)/float64(n)))
	}
	for i := n; i >= 0; i-- {
		z.LineTo(at(r0, a0+(a1-a0)*float64(i)/float64(n)))
	}
	z.ClosePath()
}

func rect(z *vector.Rasterizer, x0, y0, x1, y1 float32, reverse bool) {
	if reverse {
		z.MoveTo(x0, y0)
		z.LineTo(x0, y1)
		z.LineTo(x1, y1)
		z.LineTo(x1, y0)
	} else {
		z.MoveTo(x0, y0)
		z.LineTo(x1, y0)
		z.LineTo(x1, y1)
		z.LineTo(x0, y1)
	}
	z.ClosePath()
}

const circleSegments = 48

func circle(z *vector.Rasterizer, cx, cy, r float64, reverse bool) {
	for i := 0; i <= circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		if reverse {
			a = -a
		}
		x, y := float32(cx+r*math.Cos(a)), float32(cy+r*math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}
