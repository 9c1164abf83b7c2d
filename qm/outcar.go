/*
 * outcar.go, part of fpgen.
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
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/fpgen"
	v3 "github.com/rmera/fpgen/v3"
	"gonum.org/v1/gonum/mat"
)

//kB*Angstrom^3 to eV
const kBA3toEV = 1e3 / 1.602176621e6

//OUTCARFrame is one ionic step of a VASP calculation.
type OUTCARFrame struct {
	Cell      *mat.Dense //rows are the lattice vectors, Angstrom.
	Coords    *v3.Matrix //Angstrom
	Forces    *v3.Matrix //eV/Angstrom
	Energy    float64    //free energy TOTEN, eV
	Virial    *mat.Dense //eV, nil if the stress was not computed.
	Converged bool       //false if the electronic loop hit NELM.
}

//OUTCAR holds the atoms and ionic steps read from a VASP OUTCAR file.
type OUTCAR struct {
	AtomNames []string
	AtomTypes []int
	NELM      int
	Frames    []*OUTCARFrame
}

//LastConverged returns the last frame with a converged electronic loop,
//or nil if there is none.
func (O *OUTCAR) LastConverged() *OUTCARFrame {
	for i := len(O.Frames) - 1; i >= 0; i-- {
		if O.Frames[i].Converged {
			return O.Frames[i]
		}
	}
	return nil
}

//System returns the converged frames as a chem.System.
func (O *OUTCAR) System() (*chem.System, error) {
	S, err := chem.NewSystem(O.AtomNames, O.AtomTypes)
	if err != nil {
		return nil, newError(err, "VASP", "", "System")
	}
	for _, f := range O.Frames {
		if !f.Converged {
			continue
		}
		if err := S.AddFrame(f.Cell, f.Coords); err != nil {
			return nil, newError(err, "VASP", "", "System")
		}
	}
	return S, nil
}

//zstd.Decoder's Close returns nothing.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

//OUTCARFileRead reads the OUTCAR file name. Files ending in .gz
//or .zst are decompressed.
func OUTCARFileRead(name string) (*OUTCAR, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, newError(fmt.Errorf("%w: %v", ErrMissingFile, err), "VASP", name, "OUTCARFileRead")
	}
	defer f.Close()
	var r io.Reader = bufio.NewReader(f)
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, newError(fmt.Errorf("%w: %v", ErrIllFormedFile, err), "VASP", name, "OUTCARFileRead")
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(name, ".zst"):
		zd, err := zstd.NewReader(r)
		if err != nil {
			return nil, newError(fmt.Errorf("%w: %v", ErrIllFormedFile, err), "VASP", name, "OUTCARFileRead")
		}
		zr := zstdReadCloser{zd}
		defer zr.Close()
		r = zr
	}
	O, err := OUTCARRead(r)
	if err != nil {
		if e, ok := err.(Error); ok {
			e.inputname = name
			err = e
		}
		return nil, errDecorate(err, "OUTCARFileRead")
	}
	return O, nil
}

var iterationRe = regexp.MustCompile(`Iteration\s+(\d+)\(\s*(\d+)\)`)

//OUTCARRead reads a VASP OUTCAR from r. Each ionic step ends at the
//"free  energy   TOTEN" line. An incomplete last step is dropped.
//Steps whose electronic loop reached NELM iterations are kept, but
//marked as not converged.
func OUTCARRead(r io.Reader) (*OUTCAR, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, newError(err, "VASP", "", "OUTCARRead")
	}
	O := new(OUTCAR)
	ntot := 0
	cur := &OUTCARFrame{Converged: true}
	var stress []float64
	ill := func(format string, a ...any) error {
		return newError(fmt.Errorf("%w: %s", ErrIllFormedFile, fmt.Sprintf(format, a...)), "VASP", "", "OUTCARRead")
	}
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		switch {
		case strings.Contains(l, "TITEL"):
			f := strings.Fields(l)
			if len(f) < 4 {
				return nil, ill("line %d: bad TITEL line", i+1)
			}
			O.AtomNames = append(O.AtomNames, strings.SplitN(f[3], "_", 2)[0])
		case strings.Contains(l, "ions per type ="):
			f := strings.Fields(l)
			O.AtomTypes = O.AtomTypes[:0]
			ntot = 0
			for t, s := range f[4:] {
				n, err := strconv.Atoi(s)
				if err != nil {
					return nil, ill("line %d: bad ions per type", i+1)
				}
				for j := 0; j < n; j++ {
					O.AtomTypes = append(O.AtomTypes, t)
				}
				ntot += n
			}
		case O.NELM == 0 && strings.HasPrefix(strings.TrimSpace(l), "NELM"):
			f := strings.Fields(l)
			if len(f) < 3 || f[0] != "NELM" {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSuffix(f[2], ";"))
			if err != nil {
				return nil, ill("line %d: bad NELM", i+1)
			}
			O.NELM = n
		case strings.Contains(l, "Iteration"):
			m := iterationRe.FindStringSubmatch(l)
			if m == nil {
				continue
			}
			sc, _ := strconv.Atoi(m[2])
			if O.NELM > 0 && sc >= O.NELM {
				cur.Converged = false
			}
		case strings.Contains(l, "VOLUME and BASIS"):
			if i+7 >= len(lines) {
				return nil, ill("line %d: truncated cell", i+1)
			}
			cell := make([]float64, 0, 9)
			for j := i + 5; j < i+8; j++ {
				v, err := parseFields(strings.ReplaceAll(lines[j], "-", " -"), 3)
				if err != nil {
					return nil, ill("line %d: %v", j+1, err)
				}
				cell = append(cell, v...)
			}
			cur.Cell = mat.NewDense(3, 3, cell)
		case strings.HasPrefix(strings.TrimSpace(l), "in kB"):
			v, err := parseFields(strings.TrimSpace(l)[len("in kB"):], 6)
			if err != nil {
				return nil, ill("line %d: %v", i+1, err)
			}
			stress = v
		case strings.Contains(l, "TOTAL-FORCE") && !strings.Contains(l, "ML"):
			if ntot == 0 {
				return nil, ill("line %d: forces before the number of ions", i+1)
			}
			if i+1+ntot >= len(lines) {
				return nil, ill("line %d: truncated forces", i+1)
			}
			cur.Coords = v3.Zeros(ntot)
			cur.Forces = v3.Zeros(ntot)
			for j := 0; j < ntot; j++ {
				v, err := parseFields(lines[i+2+j], 6)
				if err != nil {
					return nil, ill("line %d: %v", i+3+j, err)
				}
				cur.Coords.SetVec(j, v[:3])
				cur.Forces.SetVec(j, v[3:])
			}
			i += 1 + ntot
		case strings.Contains(l, "free  energy   TOTEN"):
			f := strings.Fields(l)
			if len(f) < 5 {
				return nil, ill("line %d: bad energy line", i+1)
			}
			e, err := strconv.ParseFloat(f[4], 64)
			if err != nil {
				return nil, ill("line %d: bad energy %q", i+1, f[4])
			}
			if cur.Cell == nil || cur.Coords == nil {
				return nil, ill("line %d: energy without cell or forces", i+1)
			}
			cur.Energy = e
			if stress != nil {
				cur.Virial = stressToVirial(stress, cur.Cell)
			}
			O.Frames = append(O.Frames, cur)
			cur = &OUTCARFrame{Converged: true}
			stress = nil
		}
	}
	if len(O.AtomNames) != 0 && len(O.AtomTypes) != 0 {
		if last := O.AtomTypes[len(O.AtomTypes)-1]; last >= len(O.AtomNames) {
			return nil, ill("%d atom types but %d TITEL lines", last+1, len(O.AtomNames))
		}
	}
	return O, nil
}

//stressToVirial turns the XX YY ZZ XY YZ ZX stress in kB into the
//symmetric virial in eV.
func stressToVirial(s []float64, cell *mat.Dense) *mat.Dense {
	vol := math.Abs(mat.Det(cell))
	v := mat.NewDense(3, 3, []float64{
		s[0], s[3], s[5],
		s[3], s[1], s[4],
		s[5], s[4], s[2],
	})
	v.Scale(vol*kBA3toEV, v)
	return v
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scan.Scan() {
		lines = append(lines, scan.Text())
	}
	return lines, scan.Err()
}

//parseFields parses the first n fields of line as floats.
func parseFields(line string, n int) ([]float64, error) {
	f := strings.Fields(line)
	if len(f) < n {
		return nil, fmt.Errorf("expected %d numbers, got %d fields", n, len(f))
	}
	ret := make([]float64, n)
	for i := range ret {
		var err error
		ret[i], err = strconv.ParseFloat(f[i], 64)
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}
