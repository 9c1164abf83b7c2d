/*
 * files.go, part of fpgen.
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
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/fpgen/v3"
	"gonum.org/v1/gonum/mat"
)

//XYZFileRead reads an xyz file and returns a System with one frame
//per structure in the file. See XYZRead.
func XYZFileRead(xyzname string) (*System, error) {
	xyzfile, err := os.Open(xyzname)
	if err != nil {
		return nil, Error{err.Error(), xyzname, []string{"os.Open", "XYZFileRead"}, true}
	}
	defer xyzfile.Close()
	S, err := XYZRead(xyzfile)
	if err != nil {
		if e, ok := err.(Error); ok {
			e.filename = xyzname
			err = e
		}
		return nil, errDecorate(err, "XYZFileRead")
	}
	return S, nil
}

//XYZRead reads one or more concatenated xyz structures from r. All structures
//must have the same atoms in the same order. If the comment line of a structure
//has an extended-xyz Lattice="ax ay az bx by bz cx cy cz" entry, it is used as
//that frame's cell, otherwise the cell is all zeros.
func XYZRead(r io.Reader) (*System, error) {
	xyz := bufio.NewScanner(r)
	S := new(System)
	for frame := 0; ; frame++ {
		var line string
		//skip blank lines between structures
		for xyz.Scan() {
			line = strings.TrimSpace(xyz.Text())
			if line != "" {
				break
			}
		}
		if line == "" {
			break
		}
		natoms, err := strconv.Atoi(line)
		if err != nil || natoms < 1 {
			return nil, Error{fmt.Sprintf("%s: bad atom count %q in frame %d", ErrIllFormedXYZ, line, frame), "", []string{"XYZRead"}, true}
		}
		if !xyz.Scan() {
			return nil, Error{fmt.Sprintf("%s: truncated frame %d", ErrIllFormedXYZ, frame), "", []string{"XYZRead"}, true}
		}
		cell, err := latticeFromComment(xyz.Text())
		if err != nil {
			return nil, Error{fmt.Sprintf("%s: %s", ErrIllFormedXYZ, err.Error()), "", []string{"XYZRead"}, true}
		}
		coords := v3.Zeros(natoms)
		types := make([]int, natoms)
		for i := 0; i < natoms; i++ {
			if !xyz.Scan() {
				return nil, Error{fmt.Sprintf("%s: frame %d has fewer than %d atoms", ErrIllFormedXYZ, frame, natoms), "", []string{"XYZRead"}, true}
			}
			fields := strings.Fields(xyz.Text())
			if len(fields) < 4 {
				return nil, Error{fmt.Sprintf("%s: line %d of frame %d ill formed", ErrIllFormedXYZ, i, frame), "", []string{"XYZRead"}, true}
			}
			S.AtomNames, types[i] = typeIndex(S.AtomNames, fields[0])
			for j := 0; j < 3; j++ {
				f, err := strconv.ParseFloat(fields[j+1], 64)
				if err != nil {
					return nil, Error{fmt.Sprintf("%s: %s", ErrIllFormedXYZ, err.Error()), "", []string{"XYZRead"}, true}
				}
				coords.Set(i, j, f)
			}
		}
		if frame == 0 {
			S.AtomTypes = types
		} else if !sameInts(S.AtomTypes, types) {
			return nil, Error{fmt.Sprintf("%s: frame %d has different atoms than frame 0", ErrIllFormedXYZ, frame), "", []string{"XYZRead"}, true}
		}
		if err := S.AddFrame(cell, coords); err != nil {
			return nil, errDecorate(err, "XYZRead")
		}
	}
	if err := xyz.Err(); err != nil {
		return nil, Error{err.Error(), "", []string{"XYZRead"}, true}
	}
	if S.NFrames() == 0 {
		return nil, Error{fmt.Sprintf("%s: no structures found", ErrIllFormedXYZ), "", []string{"XYZRead"}, true}
	}
	return S, nil
}

//latticeFromComment extracts the Lattice="..." entry of an extended-xyz comment line.
func latticeFromComment(comment string) (*mat.Dense, error) {
	cell := mat.NewDense(3, 3, nil)
	idx := strings.Index(comment, `Lattice="`)
	if idx < 0 {
		return cell, nil
	}
	rest := comment[idx+len(`Lattice="`):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return nil, fmt.Errorf("unterminated Lattice entry")
	}
	fields := strings.Fields(rest[:end])
	if len(fields) != 9 {
		return nil, fmt.Errorf("Lattice entry has %d numbers, 9 expected", len(fields))
	}
	for i, v := range fields {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		cell.Set(i/3, i%3, f)
	}
	return cell, nil
}

//XYZFileWrite writes the given frame of S in an XYZ file with name xyzname which will
//be created for that. If the file exist it will be overwritten.
func XYZFileWrite(xyzname string, S *System, frame int) error {
	out, err := os.Create(xyzname)
	if err != nil {
		return Error{err.Error(), xyzname, []string{"os.Create", "XYZFileWrite"}, true}
	}
	defer out.Close()
	if err := XYZWrite(out, S, frame); err != nil {
		return errDecorate(err, "XYZFileWrite")
	}
	return nil
}

//XYZWrite writes the given frame of S to out in extended XYZ format.
func XYZWrite(out io.Writer, S *System, frame int) error {
	cell, coords, err := S.Frame(frame)
	if err != nil {
		return errDecorate(err, "XYZWrite")
	}
	c := cell.RawMatrix().Data
	if _, err := fmt.Fprintf(out, "%-4d\nLattice=\"%.8f %.8f %.8f %.8f %.8f %.8f %.8f %.8f %.8f\"\n", S.Len(),
		c[0], c[1], c[2], c[3], c[4], c[5], c[6], c[7], c[8]); err != nil {
		return Error{err.Error(), "", []string{"XYZWrite"}, true}
	}
	for i := 0; i < S.Len(); i++ {
		v := coords.Vec(i)
		if _, err := fmt.Fprintf(out, "%-2s  %12.6f%12.6f%12.6f\n", S.Symbol(i), v[0], v[1], v[2]); err != nil {
			return Error{err.Error(), "", []string{"XYZWrite"}, true}
		}
	}
	return nil
}

//POSCARFileRead reads a VASP POSCAR/CONTCAR file. See POSCARRead.
func POSCARFileRead(name string) (*System, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"os.Open", "POSCARFileRead"}, true}
	}
	defer f.Close()
	S, err := POSCARRead(f)
	if err != nil {
		if e, ok := err.(Error); ok {
			e.filename = name
			err = e
		}
		return nil, errDecorate(err, "POSCARFileRead")
	}
	return S, nil
}

//POSCARRead reads a structure in the VASP 5 POSCAR format and returns it as
//a one-frame System with cartesian coordinates. A negative scaling factor is
//taken as the target cell volume.
func POSCARRead(r io.Reader) (*System, error) {
	lines := make([]string, 0, 64)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, Error{err.Error(), "", []string{"POSCARRead"}, true}
	}
	bad := func(msg string) error {
		return Error{fmt.Sprintf("%s: %s", ErrIllFormedPOS, msg), "", []string{"POSCARRead"}, true}
	}
	if len(lines) < 8 {
		return nil, bad("too few lines")
	}
	scale, err := strconv.ParseFloat(firstField(lines[1]), 64)
	if err != nil {
		return nil, bad("bad scaling factor")
	}
	cell := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		v, err := parseFloats(lines[2+i], 3)
		if err != nil {
			return nil, bad(fmt.Sprintf("lattice vector %d: %s", i+1, err.Error()))
		}
		cell.SetRow(i, v)
	}
	if scale < 0 {
		scale = math.Cbrt(-scale / math.Abs(mat.Det(cell)))
	}
	cell.Scale(scale, cell)
	names := strings.Fields(lines[5])
	if len(names) == 0 {
		return nil, bad("empty element names line")
	}
	if _, err := strconv.Atoi(names[0]); err == nil {
		return nil, Error{ErrNoElementNames, "", []string{"POSCARRead"}, true}
	}
	countfields := strings.Fields(lines[6])
	if len(countfields) != len(names) {
		return nil, bad(fmt.Sprintf("%d element names but %d counts", len(names), len(countfields)))
	}
	types := make([]int, 0, 64)
	for i, v := range countfields {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, bad(fmt.Sprintf("bad atom count %q", v))
		}
		for j := 0; j < n; j++ {
			types = append(types, i)
		}
	}
	if len(types) == 0 {
		return nil, bad("no atoms")
	}
	next := 7
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(lines[next])), "s") { //selective dynamics
		next++
	}
	if next >= len(lines) {
		return nil, bad("missing coordinate mode line")
	}
	mode := strings.ToLower(strings.TrimSpace(lines[next]))
	if mode == "" {
		return nil, bad("empty coordinate mode line")
	}
	direct := mode[0] != 'c' && mode[0] != 'k'

	next++
	if len(lines)-next < len(types) {
		return nil, bad(fmt.Sprintf("%d atoms declared but %d coordinate lines", len(types), len(lines)-next))
	}
	coords := v3.Zeros(len(types))
	for i := range types {
		v, err := parseFloats(lines[next+i], 3)
		if err != nil {
			return nil, bad(fmt.Sprintf("coordinates of atom %d: %s", i, err.Error()))
		}
		coords.SetVec(i, v)
	}
	if direct {
		cart := mat.NewDense(len(types), 3, nil)
		cart.Mul(coords.Dense, cell)
		coords = v3.Dense2Matrix(cart)
	} else {
		coords.Scale(scale, coords.Dense)
	}
	S, err := NewSystem(names, types)
	if err != nil {
		return nil, errDecorate(err, "POSCARRead")
	}
	if err := S.AddFrame(cell, coords); err != nil {
		return nil, errDecorate(err, "POSCARRead")
	}
	return S, nil
}

func firstField(line string) string {
	f := strings.Fields(line)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

//parseFloats parses the first n fields of line as float64s.
func parseFloats(line string, n int) ([]float64, error) {
	fields := strings.Fields(line)
	if len(fields) < n {
		return nil, fmt.Errorf("%d numbers expected, %d found", n, len(fields))
	}
	ret := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		ret[i] = f
	}
	return ret, nil
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
