/*
 * kpoints.go, part of fpgen.
 *
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package qm

import (
	"fmt"
	"math"

	chem "github.com/rmera/fpgen"
	"gonum.org/v1/gonum/mat"
)

//KspacingMesh returns the number of k-points along each reciprocal
//vector of cell (rows are lattice vectors, Angstrom) for a spacing of
//kspacing (1/Angstrom): ceil(2*pi*|b_i|/kspacing), and at least 1.
func KspacingMesh(cell mat.Matrix, kspacing float64) ([3]int, error) {
	var mesh [3]int
	if kspacing <= 0 || math.IsNaN(kspacing) {
		return mesh, newError(fmt.Errorf("%w: KSPACING must be positive, got %g", ErrBadParam, kspacing), "VASP", "", "KspacingMesh")
	}
	if r, c := cell.Dims(); r != 3 || c != 3 {
		return mesh, newError(fmt.Errorf("%w: cell must be 3x3, got %dx%d", ErrBadParam, r, c), "VASP", "", "KspacingMesh")
	}
	//The reciprocal vectors (without the 2*pi) are the rows of inv(cell)^T,
	//i.e. the columns of inv(cell).
	var inv mat.Dense
	if err := inv.Inverse(cell); err != nil {
		return mesh, newError(fmt.Errorf("%w: singular cell: %v", ErrBadParam, err), "VASP", "", "KspacingMesh")
	}
	for i := range mesh {
		b := mat.Norm(inv.ColView(i), 2)
		mesh[i] = int(math.Max(1, math.Ceil(2*math.Pi*b/kspacing)))
	}
	return mesh, nil
}

//KspacingKpoints returns the text of an automatic KPOINTS file for
//cell and kspacing. The mesh is Gamma-centered if kgamma is true,
//Monkhorst-Pack otherwise.
func KspacingKpoints(cell mat.Matrix, kspacing float64, kgamma bool) (string, error) {
	mesh, err := KspacingMesh(cell, kspacing)
	if err != nil {
		return "", errDecorate(err, "KspacingKpoints")
	}
	if kgamma {
		return fmt.Sprintf("Automatic mesh\n0\nGamma\n%d %d %d\n0  0  0\n", mesh[0], mesh[1], mesh[2]), nil
	}
	return fmt.Sprintf("K-Points\n0\nMonkhorst Pack\n%d %d %d\n0  0  0\n", mesh[0], mesh[1], mesh[2]), nil
}

//KspacingKpointsFromPOSCAR is like KspacingKpoints, taking the cell
//from the POSCAR file poscar.
func KspacingKpointsFromPOSCAR(poscar string, kspacing float64, kgamma bool) (string, error) {
	sys, err := chem.POSCARFileRead(poscar)
	if err != nil {
		return "", newError(fileCause(poscar, err), "VASP", poscar, "KspacingKpointsFromPOSCAR")
	}
	cell, _, err := sys.Frame(0)
	if err != nil {
		return "", newError(err, "VASP", poscar, "KspacingKpointsFromPOSCAR")
	}
	ret, err := KspacingKpoints(cell, kspacing, kgamma)
	if err != nil {
		return "", errDecorate(err, "KspacingKpointsFromPOSCAR")
	}
	return ret, nil
}
