/*
 * vasp.go, part of fpgen.
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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//Potcar is the POTCAR file used for one element.
type Potcar struct {
	Element string `validate:"required"`
	File    string `validate:"required"`
}

//Potcars is an ordered element -> POTCAR file map. The order is the one
//of the atom types in the POSCAR, and of the POTCAR sections.
type Potcars []Potcar

//UnmarshalYAML reads a mapping, keeping its order.
func (P *Potcars) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: potcars must be a mapping of element to file", n.Line)
	}
	ret := make(Potcars, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var p Potcar
		if err := n.Content[i].Decode(&p.Element); err != nil {
			return err
		}
		if err := n.Content[i+1].Decode(&p.File); err != nil {
			return err
		}
		ret = append(ret, p)
	}
	*P = ret
	return nil
}

//MarshalJSON writes an object, keeping the order.
func (P Potcars) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, p := range P {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(p.Element)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.File)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

//InterParams are the parameters of a VASP interaction: the INCAR to
//start from and the POTCAR of each element.
type InterParams struct {
	Type         string  `yaml:"type" json:"type" validate:"omitempty,oneof=vasp VASP"`
	Incar        string  `yaml:"incar" json:"incar" validate:"required"`
	Potcars      Potcars `yaml:"potcars" json:"potcars" validate:"required,min=1,dive"`
	PotcarPrefix string  `yaml:"potcar_prefix" json:"potcar_prefix,omitempty"`
}

var validate = validator.New()

//Validate checks that the required parameters are present.
func (P *InterParams) Validate() error {
	if err := validate.Struct(P); err != nil {
		return newError(fmt.Errorf("%w: %v", ErrBadParam, err), "VASP", "", "Validate")
	}
	return nil
}

//ReadInterParams reads interaction parameters from a YAML or JSON file,
//and validates them.
func ReadInterParams(name string) (*InterParams, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, newError(fmt.Errorf("%w: %v", ErrMissingFile, err), "VASP", name, "ReadInterParams")
	}
	P := new(InterParams)
	if err := yaml.Unmarshal(data, P); err != nil {
		return nil, newError(fmt.Errorf("%w: %v", ErrBadParam, err), "VASP", name, "ReadInterParams")
	}
	if err := P.Validate(); err != nil {
		return nil, errDecorate(err, "ReadInterParams")
	}
	return P, nil
}

//ReadTaskParam reads task parameters from a YAML or JSON file.
func ReadTaskParam(name string) (*TaskParam, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, newError(fmt.Errorf("%w: %v", ErrMissingFile, err), "", name, "ReadTaskParam")
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, newError(fmt.Errorf("%w: %v", ErrBadParam, err), "", name, "ReadTaskParam")
	}
	P, err := NewTaskParam(raw)
	if err != nil {
		return nil, errDecorate(err, "ReadTaskParam")
	}
	return P, nil
}

//VASPHandle prepares VASP calculations for property tests, and reads their results.
type VASPHandle struct {
	inter  *InterParams
	poscar string
	log    *zap.Logger
}

var _ Task = (*VASPHandle)(nil)

//NewVASPHandle returns a handle for the interaction inter and the structure
//in the POSCAR file poscar. inter is validated.
func NewVASPHandle(inter *InterParams, poscar string) (*VASPHandle, error) {
	if inter == nil {
		return nil, newError(fmt.Errorf("%w: no interaction parameters", ErrBadParam), "VASP", "", "NewVASPHandle")
	}
	if err := inter.Validate(); err != nil {
		return nil, errDecorate(err, "NewVASPHandle")
	}
	return &VASPHandle{inter: inter, poscar: poscar, log: zap.NewNop()}, nil
}

//SetLogger sets the logger. A nil logger discards everything.
func (O *VASPHandle) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	O.log = l
}

//MakePotentialFiles writes dir/POTCAR, with the POTCAR of each element in
//order, and the interaction parameters to dir/inter.json.
func (O *VASPHandle) MakePotentialFiles(dir string) error {
	name := filepath.Join(dir, "POTCAR")
	out, err := os.Create(name)
	if err != nil {
		return newError(fmt.Errorf("%w: %v", ErrCantInput, err), "VASP", name, "MakePotentialFiles")
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	for _, p := range O.inter.Potcars {
		pname := p.File
		if !filepath.IsAbs(pname) {
			pname = filepath.Join(O.inter.PotcarPrefix, pname)
		}
		if err := copyLines(w, pname); err != nil {
			return newError(err, "VASP", pname, "MakePotentialFiles")
		}
	}
	if err := w.Flush(); err != nil {
		return newError(fmt.Errorf("%w: %v", ErrCantInput, err), "VASP", name, "MakePotentialFiles")
	}
	j, err := json.MarshalIndent(O.inter, "", "    ")
	if err != nil {
		return newError(err, "VASP", "", "MakePotentialFiles")
	}
	jname := filepath.Join(dir, "inter.json")
	if err := os.WriteFile(jname, j, 0644); err != nil {
		return newError(fmt.Errorf("%w: %v", ErrCantInput, err), "VASP", jname, "MakePotentialFiles")
	}
	O.log.Debug("potential files written", zap.String("dir", dir), zap.Int("potcars", len(O.inter.Potcars)))
	return nil
}

//copyLines writes each line of the file name to w, ending it with "\n".
func copyLines(w *bufio.Writer, name string) error {
	in, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingFile, err)
	}
	defer in.Close()
	scan := bufio.NewScanner(in)
	scan.Buffer(make([]byte, 64*1024), 1024*1024)
	for scan.Scan() {
		w.WriteString(scan.Text())
		w.WriteByte('\n')
	}
	return scan.Err()
}

//MakeInputFile writes dir/task.json, with the task parameters, and the
//INCAR and KPOINTS for a calculation of type tasktype. The INCAR is the
//one in the interaction parameters, with ISIF and NSW set for the task
//type, and EDIFF, EDIFFG, ENCUT, KSPACING and KGAMMA taken from param
//when given there. The KPOINTS mesh follows KSPACING and KGAMMA.
func (O *VASPHandle) MakeInputFile(dir string, tasktype TaskType, param *TaskParam) error {
	if _, err := ParseTaskType(string(tasktype)); err != nil {
		return errDecorate(err, "MakeInputFile")
	}
	if param == nil {
		param = &TaskParam{Raw: map[string]any{}}
	}
	log := O.log.With(zap.String("dir", dir), zap.String("task", string(tasktype)))
	log.Info("making input files")
	tj, err := param.JSON()
	if err != nil {
		return newError(fmt.Errorf("%w: %v", ErrBadParam, err), "VASP", "", "MakeInputFile")
	}
	tname := filepath.Join(dir, "task.json")
	if err := os.WriteFile(tname, tj, 0644); err != nil {
		return newError(fmt.Errorf("%w: %v", ErrCantInput, err), "VASP", tname, "MakeInputFile")
	}

	incar, err := IncarFileRead(O.inter.Incar)
	if err != nil {
		return errDecorate(err, "MakeInputFile")
	}
	isif, ok := incar.Int("ISIF")
	if !ok {
		isif = 3
	}
	nsw, ok := incar.Int("NSW")
	if !ok {
		nsw = 200
	}

	switch tasktype {
	case Relaxation, Vacancy, Interstitial:
		isif = 3
	case EOS:
		if param.ChangeBox != nil && !*param.ChangeBox {
			isif = 2
		} else {
			isif = 4
		}
	case Elastic:
		isif = 2
	case Surface:
		if param.StaticOpt != nil && *param.StaticOpt {
			nsw = 0
		} else if param.ChangeBox != nil && *param.ChangeBox {
			isif = 4
		} else {
			isif = 2
		}
	}
	if tasktype == Static || (param.ReprodOpt != nil && *param.ReprodOpt) {
		nsw = 0
	}

	if v, ok := incar.Int("ISIF"); !ok || v != isif {
		log.Info("setting ISIF", zap.Int("ISIF", isif))
		incar.Set("ISIF", isif)
	}
	if v, ok := incar.Int("NSW"); !ok || v != nsw {
		log.Info("setting NSW", zap.Int("NSW", nsw))
		incar.Set("NSW", nsw)
	}
	for _, o := range []struct {
		key string
		val *float64
	}{{"EDIFF", param.Ediff}, {"EDIFFG", param.Ediffg}, {"ENCUT", param.Encut}, {"KSPACING", param.Kspacing}} {
		if o.val != nil {
			log.Info("setting "+o.key, zap.Float64(o.key, *o.val))
			incar.Set(o.key, *o.val)
		}
	}
	if param.Kgamma != nil {
		log.Info("setting KGAMMA", zap.Bool("KGAMMA", *param.Kgamma))
		incar.Set("KGAMMA", *param.Kgamma)
	}

	kspacing, ok := incar.Float("KSPACING")
	if !ok {
		return newError(ErrNoKspacing, "VASP", O.inter.Incar, "MakeInputFile")
	}
	kgamma, _ := incar.Bool("KGAMMA")
	if err := incar.WriteFile(filepath.Join(dir, "INCAR")); err != nil {
		return errDecorate(err, "MakeInputFile")
	}
	kp, err := KspacingKpointsFromPOSCAR(O.poscar, kspacing, kgamma)
	if err != nil {
		return errDecorate(err, "MakeInputFile")
	}
	kname := filepath.Join(dir, "KPOINTS")
	if err := os.WriteFile(kname, []byte(kp), 0644); err != nil {
		return newError(fmt.Errorf("%w: %v", ErrCantInput, err), "VASP", kname, "MakeInputFile")
	}
	return nil
}

//Compute reads the OUTCAR in dir. See VASPResult.
func (O *VASPHandle) Compute(dir string) (*Result, error) {
	R, err := VASPResult(dir, O.log)
	if err != nil {
		return nil, errDecorate(err, "Compute")
	}
	return R, nil
}

//VASPResult reads the OUTCAR in dir (OUTCAR.gz and OUTCAR.zst are also
//tried) and returns the energy, forces and virial of its last converged
//frame. If there is no OUTCAR, or no converged frame, it logs a warning
//to log (which can be nil) and returns nil, nil.
func VASPResult(dir string, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	name := FindOUTCAR(dir)
	if name == "" {
		log.Warn("cannot find OUTCAR, skipping", zap.String("dir", dir))
		return nil, nil
	}
	out, err := OUTCARFileRead(name)
	if err != nil {
		return nil, errDecorate(err, "VASPResult")
	}
	for i, f := range out.Frames {
		if !f.Converged {
			log.Warn("electronic loop not converged, frame skipped", zap.String("file", name), zap.Int("frame", i))
		}
	}
	last := out.LastConverged()
	if last == nil {
		log.Warn("no converged frame", zap.String("file", name))
		return nil, nil
	}
	return &Result{Energy: last.Energy, Force: last.Forces, Virials: last.Virial}, nil
}

//FindOUTCAR returns the path of the OUTCAR, OUTCAR.gz or OUTCAR.zst file
//in dir, in that order of preference, or "" if there is none.
func FindOUTCAR(dir string) string {
	for _, n := range []string{"OUTCAR", "OUTCAR.gz", "OUTCAR.zst"} {
		if fi, err := os.Stat(filepath.Join(dir, n)); err == nil && !fi.IsDir() {
			return filepath.Join(dir, n)
		}
	}
	return ""
}

//ForwardFiles returns the files each calculation needs.
func (O *VASPHandle) ForwardFiles() []string {
	return []string{"INCAR", "POSCAR", "POTCAR"}
}

//ForwardCommonFiles returns the files shared by all the calculations of a task.
func (O *VASPHandle) ForwardCommonFiles() []string {
	return []string{"INCAR", "POTCAR"}
}

//BackwardFiles returns the files a calculation produces.
func (O *VASPHandle) BackwardFiles() []string {
	return []string{"OUTCAR", "outlog", "CONTCAR", "OSZICAR"}
}
