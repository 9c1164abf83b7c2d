/*
 * gonum.go, part of fpgen.
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

package v3

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Matrix is a set of vectors in 3D space, one vector per row.
//Within the package a "vector" is a row, i.e. the cartesian
//coordinates of one atom.
type Matrix struct {
	*mat.Dense
}

func Dense2Matrix(A *mat.Dense) *Matrix {
	return &Matrix{A}
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
//The slice is used as backing storage, not copied.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	if l == 0 {
		return nil, Error{"Empty data slice", []string{"NewMatrix"}, true}
	}
	if l%cols != 0 {
		return nil, Error{fmt.Sprintf("Input slice lenght %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(l/cols, cols, data)}, nil
}

//Zeros returns a zero-filled Matrix with vecs vectors.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//NVecs returns the number of vectors (rows) in the matrix.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

//Vec returns a copy of the ith vector of the matrix.
func (F *Matrix) Vec(i int) []float64 {
	return mat.Row(nil, i, F.Dense)
}

//SetVec sets the ith vector of the matrix to the values in v.
func (F *Matrix) SetVec(i int, v []float64) {
	if len(v) != 3 {
		panic(ErrShape)
	}
	F.SetRow(i, v)
}

//Copy returns a deep copy of the matrix.
func (F *Matrix) Copy() *Matrix {
	return &Matrix{mat.DenseCopyOf(F.Dense)}
}

//String returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r := F.NVecs()
	v := make([]string, 0, r)
	for i := 0; i < r; i++ {
		row := F.Vec(i)
		v = append(v, fmt.Sprintf("%9.4f %9.4f %9.4f", row[0], row[1], row[2]))
	}
	return "[" + strings.Join(v, "\n ") + "]"
}

//Errors

type Error struct {
	message  string
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix = PanicMsg("fpgen/v3: A v3.Matrix should have 3 columns")
	ErrShape        = PanicMsg("fpgen/v3: Dimension mismatch")
)
