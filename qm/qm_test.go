/*
 * qm_test.go, part of fpgen.
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
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"
)

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestParseTaskType(Te *testing.T) {
	for _, s := range []string{"relaxation", "vacancy", "interstitial", "eos", "elastic", "surface", "static"} {
		t, err := ParseTaskType(s)
		if err != nil || string(t) != s {
			Te.Errorf("ParseTaskType(%q): %v %v", s, t, err)
		}
	}
	if _, err := ParseTaskType("phonon"); !errors.Is(err, ErrUnknownTask) {
		Te.Errorf("expected ErrUnknownTask, got %v", err)
	}
}

func TestTaskParam(Te *testing.T) {
	P, err := ReadTaskParam("testdata/task.json")
	if err != nil {
		Te.Fatal(err)
	}
	if P.ChangeBox == nil || *P.ChangeBox {
		Te.Error("change_box should be false")
	}
	if P.Encut == nil || *P.Encut != 700 {
		Te.Error("encut should be 700")
	}
	if P.Kgamma == nil || !*P.Kgamma || P.Kspacing == nil || *P.Kspacing != 0.5 {
		Te.Error("bad kspacing or kgamma")
	}
	if P.StaticOpt != nil || P.ReprodOpt != nil || P.Ediffg != nil {
		Te.Error("absent parameters should be nil")
	}
	if _, ok := P.Raw["cal_setting"]; !ok {
		Te.Error("unknown keys should be kept in Raw")
	}
	if _, err := NewTaskParam(map[string]any{"change_box": "maybe"}); !errors.Is(err, ErrBadParam) {
		Te.Errorf("expected ErrBadParam, got %v", err)
	}
	P, err = NewTaskParam(nil)
	if err != nil {
		Te.Fatal(err)
	}
	j, _ := P.JSON()
	if string(j) != "{}" {
		Te.Errorf("empty parameters should give {}, got %s", j)
	}
}

func TestIncar(Te *testing.T) {
	I, err := IncarFileRead("testdata/INCAR")
	if err != nil {
		Te.Fatal(err)
	}
	want := []string{"PREC", "ENCUT", "ISMEAR", "SIGMA", "ISIF", "EDIFF", "KSPACING", "LWAVE", "LCHARG", "MAGMOM", "ALGO", "SYSTEM"}
	if diff := cmp.Diff(want, I.Keys()); diff != "" {
		Te.Errorf("keys (-want +got):\n%s", diff)
	}
	if v, ok := I.Int("encut"); !ok || v != 650 {
		Te.Errorf("ENCUT: %v %v", v, ok)
	}
	if v, ok := I.Float("SIGMA"); !ok || v != 0.22 {
		Te.Errorf("SIGMA: %v %v", v, ok)
	}
	if v, ok := I.Float("EDIFF"); !ok || v != 1e-6 {
		Te.Errorf("EDIFF: %v %v", v, ok)
	}
	if v, ok := I.Bool("LWAVE"); !ok || v {
		Te.Errorf("LWAVE: %v %v", v, ok)
	}
	if v, ok := I.Bool("LCHARG"); !ok || v {
		Te.Errorf("LCHARG: %v %v", v, ok)
	}
	if v, _ := I.Get("MAGMOM"); !cmp.Equal(v, []float64{1, 1, 0.5}) {
		Te.Errorf("MAGMOM: %v", v)
	}
	if v, _ := I.Get("ALGO"); v != "Fast" {
		Te.Errorf("ALGO: %v", v)
	}
	if v, _ := I.Get("SYSTEM"); v != "Al2O bulk" {
		Te.Errorf("SYSTEM: %v", v)
	}
	if _, ok := I.Int("PREC"); ok || I.Has("NSW") {
		Te.Error("PREC is not an integer and NSW is absent")
	}
	I.Set("nsw", 0)
	I.Set("KGAMMA", true)
	out := I.String()
	wantOut := `ALGO = Fast
EDIFF = 1e-06
ENCUT = 650
ISIF = 3
ISMEAR = 1
KGAMMA = .TRUE.
KSPACING = 0.3
LCHARG = .FALSE.
LWAVE = .FALSE.
MAGMOM = 1 1 0.5
NSW = 0
PREC = Accurate
SIGMA = 0.22
SYSTEM = Al2O bulk
`
	if diff := cmp.Diff(wantOut, out); diff != "" {
		Te.Errorf("INCAR text (-want +got):\n%s", diff)
	}
	//what we write, we read back
	name := filepath.Join(Te.TempDir(), "INCAR")
	if err := I.WriteFile(name); err != nil {
		Te.Fatal(err)
	}
	I2, err := IncarFileRead(name)
	if err != nil {
		Te.Fatal(err)
	}
	if I2.String() != out {
		Te.Errorf("INCAR changed after a write/read cycle:\n%s", I2.String())
	}
	if _, err := IncarFileRead("testdata/nothere"); !errors.Is(err, ErrMissingFile) {
		Te.Errorf("expected ErrMissingFile, got %v", err)
	}
}

func TestKspacingKpoints(Te *testing.T) {
	cell := mat.NewDense(3, 3, []float64{4, 0, 0, 0, 5, 0, 0, 0, 8})
	mesh, err := KspacingMesh(cell, 0.2)
	if err != nil {
		Te.Fatal(err)
	}
	if mesh != [3]int{8, 7, 4} {
		Te.Errorf("wrong mesh %v", mesh)
	}
	//A huge spacing still gives one point.
	mesh, _ = KspacingMesh(cell, 100)
	if mesh != [3]int{1, 1, 1} {
		Te.Errorf("wrong mesh %v", mesh)
	}
	//Skewed cell: |b_i| are the norms of the columns of inv(cell).
	skew := mat.NewDense(3, 3, []float64{4, 0, 0, 2, 4, 0, 0, 0, 4})
	mesh, _ = KspacingMesh(skew, 0.5)
	if mesh != [3]int{4, 4, 4} {
		Te.Errorf("wrong mesh for a skewed cell %v", mesh)
	}
	kp, err := KspacingKpoints(cell, 0.2, true)
	if err != nil {
		Te.Fatal(err)
	}
	if kp != "Automatic mesh\n0\nGamma\n8 7 4\n0  0  0\n" {
		Te.Errorf("wrong Gamma KPOINTS:\n%s", kp)
	}
	kp, _ = KspacingKpoints(cell, 0.2, false)
	if kp != "K-Points\n0\nMonkhorst Pack\n8 7 4\n0  0  0\n" {
		Te.Errorf("wrong Monkhorst-Pack KPOINTS:\n%s", kp)
	}
	if _, err := KspacingKpoints(mat.NewDense(3, 3, nil), 0.2, false); !errors.Is(err, ErrBadParam) {
		Te.Errorf("a singular cell should give ErrBadParam, got %v", err)
	}
	if _, err := KspacingKpoints(cell, 0, false); !errors.Is(err, ErrBadParam) {
		Te.Errorf("a zero spacing should give ErrBadParam, got %v", err)
	}
	kp, err = KspacingKpointsFromPOSCAR("testdata/POSCAR", 0.3, false)
	if err != nil {
		Te.Fatal(err)
	}
	if kp != "K-Points\n0\nMonkhorst Pack\n3 3 3\n0  0  0\n" {
		Te.Errorf("wrong KPOINTS from POSCAR:\n%s", kp)
	}
	if _, err := KspacingKpointsFromPOSCAR("testdata/nothere", 0.3, false); !errors.Is(err, ErrMissingFile) {
		Te.Errorf("expected ErrMissingFile, got %v", err)
	}
	if _, err := KspacingKpointsFromPOSCAR("testdata/INCAR", 0.3, false); !errors.Is(err, ErrIllFormedFile) {
		Te.Errorf("expected ErrIllFormedFile, got %v", err)
	}
}

func newTestVASP(Te *testing.T, incar string) *VASPHandle {
	Te.Helper()
	inter, err := ReadInterParams("testdata/inter.yaml")
	if err != nil {
		Te.Fatal(err)
	}
	if incar != "" {
		inter.Incar = incar
	}
	V, err := NewVASPHandle(inter, "testdata/POSCAR")
	if err != nil {
		Te.Fatal(err)
	}
	return V
}

func TestInterParams(Te *testing.T) {
	P, err := ReadInterParams("testdata/inter.json")
	if err != nil {
		Te.Fatal(err)
	}
	want := Potcars{{"Al", "POTCAR.Al"}, {"O", "POTCAR.O"}}
	if diff := cmp.Diff(want, P.Potcars); diff != "" {
		Te.Errorf("(-want +got):\n%s", diff)
	}
	bad := []*InterParams{
		{Incar: "INCAR"},
		{Potcars: Potcars{{"O", "POTCAR.O"}}},
		{Incar: "INCAR", Potcars: Potcars{{"O", ""}}},
		{Type: "lammps", Incar: "INCAR", Potcars: Potcars{{"O", "POTCAR.O"}}},
	}
	for i, b := range bad {
		if err := b.Validate(); !errors.Is(err, ErrBadParam) {
			Te.Errorf("case %d: expected ErrBadParam, got %v", i, err)
		}
	}
	if _, err := NewVASPHandle(bad[0], "POSCAR"); !errors.Is(err, ErrBadParam) {
		Te.Errorf("expected ErrBadParam, got %v", err)
	}
}

func TestMakePotentialFiles(Te *testing.T) {
	V := newTestVASP(Te, "")
	dir := Te.TempDir()
	if err := V.MakePotentialFiles(dir); err != nil {
		Te.Fatal(err)
	}
	potcar, err := os.ReadFile(filepath.Join(dir, "POTCAR"))
	if err != nil {
		Te.Fatal(err)
	}
	want := "  PAW_PBE O 08Apr2002\n 6.000\n  PAW_PBE Al 04Jan2001\n 3.00000000000000000\n"
	if diff := cmp.Diff(want, string(potcar)); diff != "" {
		Te.Errorf("POTCAR (-want +got):\n%s", diff)
	}
	inter, err := os.ReadFile(filepath.Join(dir, "inter.json"))
	if err != nil {
		Te.Fatal(err)
	}
	wantJSON := `{
    "type": "vasp",
    "incar": "testdata/INCAR",
    "potcars": {
        "O": "POTCAR.O",
        "Al": "POTCAR.Al"
    },
    "potcar_prefix": "testdata/potcars"
}`
	if diff := cmp.Diff(wantJSON, string(inter)); diff != "" {
		Te.Errorf("inter.json (-want +got):\n%s", diff)
	}
	V.inter.Potcars = append(V.inter.Potcars, Potcar{"H", "POTCAR.H"})
	if err := V.MakePotentialFiles(dir); !errors.Is(err, ErrMissingFile) {
		Te.Errorf("expected ErrMissingFile, got %v", err)
	}
}

func TestMakeInputFile(Te *testing.T) {
	t := true
	f := false
	cases := []struct {
		name  string
		task  TaskType
		param *TaskParam
		isif  int
		nsw   int
	}{
		{"relaxation", Relaxation, nil, 3, 200},
		{"interstitial", Interstitial, &TaskParam{}, 3, 200},
		{"eos", EOS, nil, 4, 200},
		{"eos fixed box", EOS, &TaskParam{ChangeBox: &f}, 2, 200},
		{"eos changing box", EOS, &TaskParam{ChangeBox: &t}, 4, 200},
		{"elastic", Elastic, nil, 2, 200},
		{"surface", Surface, nil, 2, 200},
		{"surface changing box", Surface, &TaskParam{ChangeBox: &t}, 4, 200},
		{"surface static", Surface, &TaskParam{StaticOpt: &t, ChangeBox: &t}, 3, 0},
		{"static", Static, nil, 3, 0},
		{"vacancy reproduced", Vacancy, &TaskParam{ReprodOpt: &t}, 3, 0},
	}
	V := newTestVASP(Te, "")
	for _, c := range cases {
		dir := Te.TempDir()
		if err := V.MakeInputFile(dir, c.task, c.param); err != nil {
			Te.Errorf("%s: %v", c.name, err)
			continue
		}
		I, err := IncarFileRead(filepath.Join(dir, "INCAR"))
		if err != nil {
			Te.Fatal(err)
		}
		isif, _ := I.Int("ISIF")
		nsw, _ := I.Int("NSW")
		if isif != c.isif || nsw != c.nsw {
			Te.Errorf("%s: want ISIF %d NSW %d, got %d %d", c.name, c.isif, c.nsw, isif, nsw)
		}
		kp, err := os.ReadFile(filepath.Join(dir, "KPOINTS"))
		if err != nil {
			Te.Fatal(err)
		}
		if string(kp) != "K-Points\n0\nMonkhorst Pack\n3 3 3\n0  0  0\n" {
			Te.Errorf("%s: wrong KPOINTS:\n%s", c.name, kp)
		}
	}
	if err := V.MakeInputFile(Te.TempDir(), TaskType("phonon"), nil); !errors.Is(err, ErrUnknownTask) {
		Te.Errorf("expected ErrUnknownTask, got %v", err)
	}
}

func TestMakeInputFileOverrides(Te *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	V := newTestVASP(Te, "")
	V.SetLogger(zap.New(core))
	P, err := ReadTaskParam("testdata/task.json")
	if err != nil {
		Te.Fatal(err)
	}
	dir := Te.TempDir()
	if err := V.MakeInputFile(dir, EOS, P); err != nil {
		Te.Fatal(err)
	}
	I, err := IncarFileRead(filepath.Join(dir, "INCAR"))
	if err != nil {
		Te.Fatal(err)
	}
	if v, _ := I.Int("ISIF"); v != 2 {
		Te.Errorf("ISIF should be 2 with a fixed box, got %d", v)
	}
	if v, _ := I.Float("EDIFF"); v != 1e-7 {
		Te.Errorf("EDIFF should be overridden, got %v", v)
	}
	if v, _ := I.Float("ENCUT"); v != 700 {
		Te.Errorf("ENCUT should be overridden, got %v", v)
	}
	if v, _ := I.Float("KSPACING"); v != 0.5 {
		Te.Errorf("KSPACING should be overridden, got %v", v)
	}
	if v, ok := I.Bool("KGAMMA"); !ok || !v {
		Te.Error("KGAMMA should be set")
	}
	//The mesh follows the overridden spacing.
	kp, _ := os.ReadFile(filepath.Join(dir, "KPOINTS"))
	if string(kp) != "Automatic mesh\n0\nGamma\n2 2 2\n0  0  0\n" {
		Te.Errorf("wrong KPOINTS:\n%s", kp)
	}
	task, err := os.ReadFile(filepath.Join(dir, "task.json"))
	if err != nil {
		Te.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(task, &raw); err != nil {
		Te.Fatal(err)
	}
	wantRaw := map[string]any{
		"change_box":  false,
		"kspacing":    0.5,
		"kgamma":      true,
		"ediff":       1e-7,
		"encut":       700.0,
		"cal_setting": map[string]any{"relax_pos": true},
	}
	if diff := cmp.Diff(wantRaw, raw); diff != "" {
		Te.Errorf("task.json (-want +got):\n%s", diff)
	}
	//ISIF changed, NSW was added, 5 overrides. ISIF 3 -> 2.
	for _, msg := range []string{"setting ISIF", "setting NSW", "setting EDIFF", "setting ENCUT", "setting KSPACING", "setting KGAMMA"} {
		if logs.FilterMessage(msg).Len() != 1 {
			Te.Errorf("expected one %q log entry", msg)
		}
	}
	if logs.FilterMessage("setting EDIFFG").Len() != 0 {
		Te.Error("EDIFFG was not given, but it was set")
	}
}

func TestMakeInputFileNoKspacing(Te *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	V := newTestVASP(Te, "testdata/INCAR.noks")
	V.SetLogger(zap.New(core))
	if err := V.MakeInputFile(Te.TempDir(), Elastic, nil); !errors.Is(err, ErrNoKspacing) {
		Te.Errorf("expected ErrNoKspacing, got %v", err)
	}
	//ISIF is already 2 in the INCAR, so it is not logged.
	if logs.FilterMessage("setting ISIF").Len() != 0 {
		Te.Error("ISIF was logged although it didn't change")
	}
	ks := 1.0
	dir := Te.TempDir()
	if err := V.MakeInputFile(dir, Elastic, &TaskParam{Kspacing: &ks}); err != nil {
		Te.Fatal(err)
	}
	I, _ := IncarFileRead(filepath.Join(dir, "INCAR"))
	if v, _ := I.Int("NSW"); v != 100 {
		Te.Errorf("NSW should be kept from the INCAR, got %d", v)
	}
}

func TestFileLists(Te *testing.T) {
	var T Task = newTestVASP(Te, "")
	if diff := cmp.Diff([]string{"INCAR", "POSCAR", "POTCAR"}, T.ForwardFiles()); diff != "" {
		Te.Error(diff)
	}
	if diff := cmp.Diff([]string{"INCAR", "POTCAR"}, T.ForwardCommonFiles()); diff != "" {
		Te.Error(diff)
	}
	if diff := cmp.Diff([]string{"OUTCAR", "outlog", "CONTCAR", "OSZICAR"}, T.BackwardFiles()); diff != "" {
		Te.Error(diff)
	}
}

func TestErrorText(Te *testing.T) {
	err := newError(ErrNoKspacing, "VASP", "INCAR", "MakeInputFile")
	if !strings.HasPrefix(err.Error(), "VASP INCAR: ") {
		Te.Errorf("unexpected error text %q", err.Error())
	}
	trail := errDecorate(err, "Caller").(Error).Decorate("")
	if len(trail) == 0 || trail[0] != "MakeInputFile" {
		Te.Errorf("unexpected trail %v", trail)
	}
	if !err.Critical() || err.Code() != "VASP" || err.InputName() != "INCAR" {
		Te.Error("wrong error fields")
	}
}
