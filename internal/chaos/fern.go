package chaos

import (
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// BarnsleyFern returns Barnsley's fern.
//
//	stem           1%   x' = 0                 y' = 0.16y
//	leaflets      85%   x' = 0.85x + 0.04y     y' = -0.04x + 0.85y + 1.6
//	left leaf      7%   x' = 0.20x - 0.26y     y' = 0.23x + 0.22y + 1.6
//	right leaf     7%   x' = -0.15x + 0.28y    y' = 0.26x + 0.24y + 0.44
func BarnsleyFern() System {
	return System{
		Name: "barnsley-fern",
		Maps: []Map{
			{Transform: matrix.Matrix{0, 0, 0, 0.16, 0, 0}, Weight: 0.01},
			{Transform: matrix.Matrix{0.85, -0.04, 0.04, 0.85, 0, 1.6}, Weight: 0.85},
			{Transform: matrix.Matrix{0.20, 0.23, -0.26, 0.22, 0, 1.6}, Weight: 0.07},
			{Transform: matrix.Matrix{-0.15, 0.26, 0.28, 0.24, 0, 0.44}, Weight: 0.07},
		},
		Bounds: rect.Rect{LLx: -2.1820, LLy: 0, URx: 2.6558, URy: 9.9983},
	}
}
