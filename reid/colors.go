package reid

import (
	"fmt"
	"image/color"
)

// palette is the fixed cyclic set of display colors assigned to identities.
var palette = []color.RGBA{
	{R: 230, G: 25, B: 75, A: 255},
	{R: 60, G: 180, B: 75, A: 255},
	{R: 255, G: 225, B: 25, A: 255},
	{R: 0, G: 130, B: 200, A: 255},
	{R: 245, G: 130, B: 48, A: 255},
	{R: 145, G: 30, B: 180, A: 255},
	{R: 70, G: 240, B: 240, A: 255},
	{R: 240, G: 50, B: 230, A: 255},
	{R: 210, G: 245, B: 60, A: 255},
	{R: 250, G: 190, B: 212, A: 255},
	{R: 0, G: 128, B: 128, A: 255},
	{R: 220, G: 190, B: 255, A: 255},
}

// ColorFor returns the display color for the given identity id. Assignment
// is a pure function of the id: the palette is cycled with the first id
// mapping to the first color. Ids below 1 map to the first color as well.
func ColorFor(id int64) color.RGBA {
	if id < 1 {
		return palette[0]
	}
	return palette[(id-1)%int64(len(palette))]
}

// ColorHex returns the display color for the given identity id as an
// "#RRGGBB" string, suitable for labels and persistence records.
func ColorHex(id int64) string {
	c := ColorFor(id)
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
