/*
 * chem.go, part of fpgen.
 *
 * Copyright 2024 Raul Mera <rmeraatusachdotcl>
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
 */

package chem

import (
	"fmt"
	"math"

	v3 "github.com/rmera/fpgen/v3"
	"gonum.org/v1/gonum/mat"
)

//System is a periodic atomic system: a list of element names, the type
//(index into the names) of each atom, and one or more frames. Each frame is a
//3x3 cell, where each row is a lattice vector, and the Nx3 cartesian coordinates
//of the atoms. All lengths are in Angstroms.
type System struct {
	AtomNames []string
	AtomTypes []int
	Cells     []*mat.Dense
	Coords    []*v3.Matrix
}

//NewSystem returns a System with the given names and types and no frames.
//It returns error if a type doesn't index a name.
func NewSystem(names []string, types []int) (*System, error) {
	S := &System{AtomNames: names, AtomTypes: types}
	for i, t := range types {
		if t < 0 || t >= len(names) {
			return nil, Error{fmt.Sprintf("Atom %d has type %d, but only %d atom names were given", i, t, len(names)), "", []string{"NewSystem"}, true}
		}
	}
	return S, nil
}

//Len returns the number of atoms in the system.
func (S *System) Len() int {
	return len(S.AtomTypes)
}

//NFrames returns the number of frames in the system.
func (S *System) NFrames() int {
	return len(S.Coords)
}

//Symbol returns the element name of the ith atom.
func (S *System) Symbol(i int) string {
	return S.AtomNames[S.AtomTypes[i]]
}

//Symbols returns the element name of each atom, in order.
func (S *System) Symbols() []string {
	ret := make([]string, S.Len())
	for i := range ret {
		ret[i] = S.Symbol(i)
	}
	return ret
}

//AddFrame appends a frame to the system. The cell is copied, the coordinates are not.
func (S *System) AddFrame(cell *mat.Dense, coords *v3.Matrix) error {
	if cell == nil || coords == nil {
		return Error{ErrNilData, "", []string{"AddFrame"}, true}
	}
	if r, c := cell.Dims(); r != 3 || c != 3 {
		return Error{fmt.Sprintf("Cell must be 3x3, got %dx%d", r, c), "", []string{"AddFrame"}, true}
	}
	if coords.NVecs() != S.Len() {
		return Error{fmt.Sprintf("%d coordinates given for %d atoms", coords.NVecs(), S.Len()), "", []string{"AddFrame"}, true}
	}
	S.Cells = append(S.Cells, mat.DenseCopyOf(cell))
	S.Coords = append(S.Coords, coords)
	return nil
}

//Frame returns the cell and coordinates of the given frame.
func (S *System) Frame(frame int) (*mat.Dense, *v3.Matrix, error) {
	if frame < 0 || frame >= S.NFrames() {
		return nil, nil, Error{fmt.Sprintf("Frame %d requested, system has %d", frame, S.NFrames()), "", []string{"Frame"}, true}
	}
	return S.Cells[frame], S.Coords[frame], nil
}

//Volume returns the volume of the cell of the given frame,
//or 0 if the frame doesn't exist.
func (S *System) Volume(frame int) float64 {
	if frame < 0 || frame >= len(S.Cells) {
		return 0
	}
	return math.Abs(mat.Det(S.Cells[frame]))
}

//Corrupted checks whether the system is corrupted, i.e. the
//coordinates don't match the number of atoms, the cells are not 3x3
//or the types don't index the names.
func (S *System) Corrupted() error {
	if len(S.Cells) != len(S.Coords) {
		return Error{fmt.Sprintf("%d cells and %d coordinate frames", len(S.Cells), len(S.Coords)), "", []string{"Corrupted"}, true}
	}
	for i, t := range S.AtomTypes {
		if t < 0 || t >= len(S.AtomNames) {
			return Error{fmt.Sprintf("Atom %d has type %d, but there are %d atom names", i, t, len(S.AtomNames)), "", []string{"Corrupted"}, true}
		}
	}
	for i := range S.Coords {
		if S.Coords[i] == nil || S.Cells[i] == nil {
			return Error{fmt.Sprintf("Frame %d: %s", i, ErrNilData), "", []string{"Corrupted"}, true}
		}
		if S.Coords[i].NVecs() != S.Len() {
			return Error{fmt.Sprintf("Inconsistent coordinates/atoms in frame %d: Atoms %d, coords: %d", i, S.Len(), S.Coords[i].NVecs()), "", []string{"Corrupted"}, true}
		}
		if r, c := S.Cells[i].Dims(); r != 3 || c != 3 {
			return Error{fmt.Sprintf("Cell in frame %d is %dx%d", i, r, c), "", []string{"Corrupted"}, true}
		}
	}
	return nil
}

//typeIndex returns the index of name in names, appending it if it's not there.
func typeIndex(names []string, name string) ([]string, int) {
	for i, v := range names {
		if v == name {
			return names, i
		}
	}
	return append(names, name), len(names)
}
