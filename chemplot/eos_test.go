/*
 * eos_test.go, part of fpgen
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
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/plot/plotter"
)

func TestEOSPoints(Te *testing.T) {
	pts, err := EOSPoints([]float64{18, 16, 17}, []float64{-3.6, -3.5, -3.7})
	if err != nil {
		Te.Fatal(err)
	}
	want := plotter.XYs{{X: 16, Y: -3.5}, {X: 17, Y: -3.7}, {X: 18, Y: -3.6}}
	if diff := cmp.Diff(want, pts); diff != "" {
		Te.Errorf("(-want +got):\n%s", diff)
	}
	if _, err := EOSPoints(nil, nil); !errors.Is(err, ErrNoData) {
		Te.Errorf("expected ErrNoData, got %v", err)
	}
	if _, err := EOSPoints([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrLengthsDiffer) {
		Te.Errorf("expected ErrLengthsDiffer, got %v", err)
	}
	if _, err := EOSPoints([]float64{1, 2}, []float64{1, math.NaN()}); !errors.Is(err, ErrNotFinite) {
		Te.Errorf("expected ErrNotFinite, got %v", err)
	}
}

func TestEOSPlot(Te *testing.T) {
	dir := Te.TempDir()
	vols := []float64{14, 15, 16, 17, 18, 19}
	ens := make([]float64, len(vols))
	for i, v := range vols {
		ens[i] = 0.05*(v-16.5)*(v-16.5) - 3.74
	}
	for _, name := range []string{"eos.png", "eos.svg"} {
		out := filepath.Join(dir, name)
		if err := EOSPlot(vols, ens, "Al fcc", out); err != nil {
			Te.Fatalf("%s: %v", name, err)
		}
		st, err := os.Stat(out)
		if err != nil || st.Size() == 0 {
			Te.Errorf("%s was not written: %v", name, err)
		}
	}
	if err := EOSPlot(vols, ens, "Al fcc", filepath.Join(dir, "eos.nope")); err == nil {
		Te.Error("an unknown format should give an error")
	}
}
