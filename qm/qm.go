/*
 * qm.go, part of fpgen.
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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	v3 "github.com/rmera/fpgen/v3"
	"gonum.org/v1/gonum/mat"
)

//Task prepares and collects the calculations of a property test
//(relaxation, equation of state, elastic constants...) with one program.
type Task interface {

	//MakePotentialFiles writes to dir the files describing the interaction
	//(pseudopotentials, force field files), plus a record of the parameters.
	MakePotentialFiles(dir string) error

	//MakeInputFile writes to dir the input files for a task of type
	//tasktype, tuned with param.
	MakeInputFile(dir string, tasktype TaskType, param *TaskParam) error

	//Compute reads the results of a finished calculation in dir.
	//It returns nil, nil if there is nothing to read.
	Compute(dir string) (*Result, error)

	//ForwardFiles are the files each calculation needs.
	ForwardFiles() []string

	//ForwardCommonFiles are the files shared by all the calculations of a task.
	ForwardCommonFiles() []string

	//BackwardFiles are the files a calculation produces.
	BackwardFiles() []string
}

//TaskType is the kind of property test a calculation belongs to.
type TaskType string

const (
	Relaxation   TaskType = "relaxation"
	Vacancy      TaskType = "vacancy"
	Interstitial TaskType = "interstitial"
	EOS          TaskType = "eos"
	Elastic      TaskType = "elastic"
	Surface      TaskType = "surface"
	Static       TaskType = "static"
)

var taskTypes = []TaskType{Relaxation, Vacancy, Interstitial, EOS, Elastic, Surface, Static}

//ParseTaskType returns the TaskType named by s, or an error
//if there is no such task type.
func ParseTaskType(s string) (TaskType, error) {
	for _, v := range taskTypes {
		if string(v) == s {
			return v, nil
		}
	}
	return "", newError(fmt.Errorf("%w: %q", ErrUnknownTask, s), "", "", "ParseTaskType")
}

//TaskParam holds the task parameters that affect the input files.
//A nil field was not given. Raw keeps every parameter, as read.
type TaskParam struct {
	ChangeBox *bool          `mapstructure:"change_box"`
	StaticOpt *bool          `mapstructure:"static-opt"`
	ReprodOpt *bool          `mapstructure:"reprod_opt"`
	Ediff     *float64       `mapstructure:"ediff"`
	Ediffg    *float64       `mapstructure:"ediffg"`
	Encut     *float64       `mapstructure:"encut"`
	Kspacing  *float64       `mapstructure:"kspacing"`
	Kgamma    *bool          `mapstructure:"kgamma"`
	Raw       map[string]any `mapstructure:"-"`
}

//NewTaskParam binds the known parameters in raw. Numbers given as integers
//are accepted for the float parameters. Unknown keys are kept in Raw only.
func NewTaskParam(raw map[string]any) (*TaskParam, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	P := &TaskParam{Raw: raw}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: P,
	})
	if err != nil {
		return nil, newError(err, "", "", "NewTaskParam")
	}
	if err := dec.Decode(raw); err != nil {
		return nil, newError(fmt.Errorf("%w: %v", ErrBadParam, err), "", "", "NewTaskParam")
	}
	return P, nil
}

//JSON returns the raw parameters as indented JSON.
func (P *TaskParam) JSON() ([]byte, error) {
	raw := map[string]any{}
	if P != nil && P.Raw != nil {
		raw = P.Raw
	}
	return json.MarshalIndent(raw, "", "    ")
}

//Result is the outcome of a calculation: the energy (eV), the forces
//(eV/Angstrom) and the virial (eV) of the last frame.
type Result struct {
	Energy  float64
	Force   *v3.Matrix
	Virials *mat.Dense
}

//MarshalJSON writes the result with plain nested lists for the matrices.
func (R *Result) MarshalJSON() ([]byte, error) {
	type out struct {
		Energy  float64     `json:"energy"`
		Force   [][]float64 `json:"force"`
		Virials [][]float64 `json:"virials"`
	}
	o := out{Energy: R.Energy}
	if R.Force != nil {
		o.Force = rows(R.Force.Dense)
	}
	if R.Virials != nil {
		o.Virials = rows(R.Virials)
	}
	return json.Marshal(o)
}

func rows(D *mat.Dense) [][]float64 {
	r, _ := D.Dims()
	ret := make([][]float64, r)
	for i := range ret {
		ret[i] = mat.Row(nil, i, D)
	}
	return ret
}

//Errors

var (
	ErrNoCellLine    = errors.New("no line with the ABC cell keyword in the external input")
	ErrNoKspacing    = errors.New("KSPACING must be given in the INCAR or the task parameters")
	ErrMissingFile   = errors.New("missing file")
	ErrUnknownTask   = errors.New("unknown task type")
	ErrBadParam      = errors.New("invalid parameters")
	ErrCantInput     = errors.New("can't build input")
	ErrIllFormedFile = errors.New("ill formatted file")
)

//Error is the error type returned by this package.
type Error struct {
	cause     error
	code      string //the name of the program, if any.
	inputname string //the input file that has problems, or empty string if none.
	deco      []string
	critical  bool
}

func newError(cause error, code, inputname, caller string) Error {
	return Error{cause: cause, code: code, inputname: inputname, deco: []string{caller}, critical: true}
}

func (err Error) Error() string {
	var s []string
	if err.code != "" {
		s = append(s, err.code)
	}
	if err.inputname != "" {
		s = append(s, err.inputname)
	}
	if len(s) == 0 {
		return err.cause.Error()
	}
	return fmt.Sprintf("%s: %s", strings.Join(s, " "), err.cause)
}

func (err Error) Unwrap() error { return err.cause }

//Code returns the name of the program that caused the error, if any.
func (err Error) Code() string { return err.code }

//InputName returns the file that caused the error, if any.
func (err Error) InputName() string { return err.inputname }

//Decorate adds dec to the decoration slice of the error and returns the slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns whether the error is critical or it can be ignored.
func (err Error) Critical() bool { return err.critical }

func errDecorate(err error, caller string) error {
	if err2, ok := err.(interface{ Decorate(string) []string }); ok {
		err2.Decorate(caller)
	}
	return err
}

//fileCause tells a missing file from one that could not be parsed,
//for readers that don't keep the underlying error.
func fileCause(name string, err error) error {
	if _, serr := os.Stat(name); serr != nil {
		return fmt.Errorf("%w: %v", ErrMissingFile, err)
	}
	return fmt.Errorf("%w: %v", ErrIllFormedFile, err)
}
