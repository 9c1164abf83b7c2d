/*
 * eos.go, part of fpgen
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/

package chemplot

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	ErrNoData        = errors.New("no data to plot")
	ErrLengthsDiffer = errors.New("volumes and energies have different lengths")
	ErrNotFinite     = errors.New("data contains NaN or infinite values")
)

//EOSPoints returns the (volume, energy) points sorted by volume.
func EOSPoints(volumes, energies []float64) (plotter.XYs, error) {
	if len(volumes) == 0 {
		return nil, ErrNoData
	}
	if len(volumes) != len(energies) {
		return nil, fmt.Errorf("%w: %d and %d", ErrLengthsDiffer, len(volumes), len(energies))
	}
	pts := make(plotter.XYs, len(volumes))
	for i := range pts {
		v, e := volumes[i], energies[i]
		if math.IsNaN(v) || math.IsNaN(e) || math.IsInf(v, 0) || math.IsInf(e, 0) {
			return nil, fmt.Errorf("%w: point %d", ErrNotFinite, i)
		}
		pts[i].X, pts[i].Y = v, e
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	return pts, nil
}

//EOSPlot plots the equation of state given by volumes and energies (per
//atom, in Angstrom^3 and eV) as points joined by a line, and saves it to
//filename. The format is given by the extension of filename (png, svg,
//pdf, eps...).
func EOSPlot(volumes, energies []float64, title, filename string) error {
	pts, err := EOSPoints(volumes, energies)
	if err != nil {
		return err
	}
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Volume per atom (Å³)"
	p.Y.Label.Text = "Energy per atom (eV)"
	p.Add(plotter.NewGrid())
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = color.RGBA{R: 70, G: 110, B: 180, A: 255}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(3)
	s.GlyphStyle.Color = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	p.Add(line, s)
	if err := p.Save(5*vg.Inch, 4*vg.Inch, filename); err != nil {
		return err
	}
	return nil
}
