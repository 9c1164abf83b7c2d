/*
 * cp2k.go, part of fpgen.
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
	"os"
	"path/filepath"
	"strings"

	chem "github.com/rmera/fpgen"
	"github.com/rmera/fpgen/cp2k"
	v3 "github.com/rmera/fpgen/v3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

//CP2KCoordFile is the coordinate file included by the default CP2K input.
const CP2KCoordFile = "coord.xyz"

//CP2KHandle builds CP2K inputs for the frames of a chem.System, either
//from the default input merged with user parameters, or from an external
//input file where only the cell is replaced.
type CP2KHandle struct {
	inputname string
	params    *cp2k.Tree
	external  string
	log       *zap.Logger
}

//NewCP2KHandle returns a handle with the default settings.
func NewCP2KHandle() *CP2KHandle {
	run := new(CP2KHandle)
	run.SetDefaults()
	return run
}

//SetDefaults sets the name to "input", no user parameters,
//no external input and a logger that discards everything.
func (O *CP2KHandle) SetDefaults() {
	O.inputname = "input"
	O.params = nil
	O.external = ""
	O.log = zap.NewNop()
}

//SetName sets the name of the input file, without the .inp extension.
func (O *CP2KHandle) SetName(name string) {
	O.inputname = name
}

//SetParams sets the user parameters, merged over the default input.
func (O *CP2KHandle) SetParams(params *cp2k.Tree) {
	O.params = params
}

//SetExternalInput makes the handle use the input file in path instead of
//the default one. An empty path goes back to the default input.
func (O *CP2KHandle) SetExternalInput(path string) {
	O.external = path
}

//SetLogger sets the logger. A nil logger discards everything.
func (O *CP2KHandle) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	O.log = l
}

//BuildInput writes dir/<name>.inp and dir/coord.xyz for the given frame of sys.
func (O *CP2KHandle) BuildInput(sys *chem.System, frame int, dir string) error {
	if O.inputname == "" {
		O.inputname = "input"
	}
	var input string
	var err error
	if O.external != "" {
		input, err = CP2KInputFromExternal(sys, frame, O.external)
	} else {
		input, err = CP2KInput(sys, frame, O.params)
	}
	if err != nil {
		return errDecorate(err, "BuildInput")
	}
	xyz, err := CP2KXYZ(sys, frame)
	if err != nil {
		return errDecorate(err, "BuildInput")
	}
	inpname := filepath.Join(dir, O.inputname+".inp")
	if err := os.WriteFile(inpname, []byte(input), 0644); err != nil {
		return newError(fmt.Errorf("%w: %v", ErrCantInput, err), "CP2K", inpname, "BuildInput")
	}
	xyzname := filepath.Join(dir, CP2KCoordFile)
	if err := os.WriteFile(xyzname, []byte(xyz), 0644); err != nil {
		return newError(fmt.Errorf("%w: %v", ErrCantInput, err), "CP2K", xyzname, "BuildInput")
	}
	O.log.Debug("CP2K input written", zap.String("input", inpname), zap.String("coords", xyzname),
		zap.Int("frame", frame), zap.Bool("external", O.external != ""))
	return nil
}

//CellRows returns the three lattice vectors of cell as CP2K row strings.
func CellRows(cell mat.Matrix) [3]string {
	var ret [3]string
	for i := range ret {
		ret[i] = cp2k.FormatRow(mat.Row(nil, i, cell))
	}
	return ret
}

//CP2KInput returns the text of a CP2K input for the given frame of sys:
//the default input, with params merged over it, and the cell of the frame.
//params can be nil.
func CP2KInput(sys *chem.System, frame int, params *cp2k.Tree) (string, error) {
	cell, _, err := frameOf(sys, frame, "CP2KInput")
	if err != nil {
		return "", err
	}
	rows := CellRows(cell)
	cellTree := cp2k.Of("FORCE_EVAL", cp2k.Of("SUBSYS", cp2k.Of("CELL",
		cp2k.Of("A", rows[0], "B", rows[1], "C", rows[2]))))
	input, err := cp2k.Merge(cp2k.Merge(cp2k.DefaultConfig(), params), cellTree).Render()
	if err != nil {
		return "", newError(fmt.Errorf("%w: %w", ErrCantInput, err), "CP2K", "", "CP2KInput")
	}
	return input, nil
}

//CP2KXYZ returns the coordinates of the given frame of sys in the format
//included by the default input: a blank line, then one "SYMBOL x y z"
//line per atom.
func CP2KXYZ(sys *chem.System, frame int) (string, error) {
	_, coords, err := frameOf(sys, frame, "CP2KXYZ")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("\n")
	for i := 0; i < sys.Len(); i++ {
		b.WriteString(sys.Symbol(i) + " " + cp2k.FormatRow(coords.Vec(i)) + "\n")
	}
	return b.String(), nil
}

//CP2KInputFromExternal reads the CP2K input in path and replaces the line
//with the ABC cell keyword (the last one, if there are several) by the
//A, B and C vectors of the given frame of sys.
func CP2KInputFromExternal(sys *chem.System, frame int, path string) (string, error) {
	cell, _, err := frameOf(sys, frame, "CP2KInputFromExternal")
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", newError(fmt.Errorf("%w: %v", ErrMissingFile, err), "CP2K", path, "CP2KInputFromExternal")
	}
	lines := strings.SplitAfter(string(data), "\n")
	idx := -1
	for i, l := range lines {
		if strings.Contains(l, "ABC") {
			idx = i
		}
	}
	if idx < 0 {
		return "", newError(ErrNoCellLine, "CP2K", path, "CP2KInputFromExternal")
	}
	rows := CellRows(cell)
	repl := []string{"A  " + rows[0] + "\n", "B  " + rows[1] + "\n", "C  " + rows[2] + "\n"}
	out := make([]string, 0, len(lines)+2)
	out = append(out, lines[:idx]...)
	out = append(out, repl...)
	out = append(out, lines[idx+1:]...)
	return strings.Join(out, ""), nil
}

func frameOf(sys *chem.System, frame int, caller string) (*mat.Dense, *v3.Matrix, error) {
	if sys == nil {
		return nil, nil, newError(ErrCantInput, "CP2K", "", caller)
	}
	if err := sys.Corrupted(); err != nil {
		return nil, nil, newError(fmt.Errorf("%w: %v", ErrCantInput, err), "CP2K", "", caller)
	}
	cell, coords, err := sys.Frame(frame)
	if err != nil {
		return nil, nil, newError(fmt.Errorf("%w: %v", ErrCantInput, err), "CP2K", "", caller)
	}
	return cell, coords, nil
}
