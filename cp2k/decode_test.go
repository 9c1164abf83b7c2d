/*
 * decode_test.go, part of fpgen.
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

package cp2k

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseYAML(Te *testing.T) {
	doc := `
FORCE_EVAL:
  DFT:
    UKS: F
    CHARGE: -1
    SCF:
      EPS_SCF: 1.0E-7
  SUBSYS:
    KIND:
      - _: Fe
        ELEMENT: Fe
        MAGNETIZATION: 4
      - _: O
    COLVAR_LIST: [1, 2]
ZETA: last
`
	T, err := ParseYAML([]byte(doc))
	if err != nil {
		Te.Fatal(err)
	}
	want := []string{
		"&FORCE_EVAL",
		"&DFT", "UKS F", "CHARGE -1", "&SCF", "EPS_SCF 1e-07", "&END SCF", "&END DFT",
		"&SUBSYS",
		"&KIND Fe", "ELEMENT Fe", "MAGNETIZATION 4", "&END KIND",
		"&KIND O", "&END KIND",
		"COLVAR_LIST 1", "COLVAR_LIST 2",
		"&END SUBSYS",
		"&END FORCE_EVAL",
		"ZETA last",
	}
	if diff := cmp.Diff(want, render(Te, T)); diff != "" {
		Te.Errorf("(-want +got):\n%s", diff)
	}
}

func TestParseJSON(Te *testing.T) {
	doc := `{"GLOBAL": {"RUN_TYPE": "ENERGY_FORCE", "PROJECT": "X"}, "FORCE_EVAL": {"DFT": {"CHARGE": 1}}}`
	T, err := ParseYAML([]byte(doc))
	if err != nil {
		Te.Fatal(err)
	}
	if diff := cmp.Diff([]string{"GLOBAL", "FORCE_EVAL"}, T.Keys()); diff != "" {
		Te.Errorf("key order lost (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"RUN_TYPE", "PROJECT"}, T.Section("GLOBAL").Keys()); diff != "" {
		Te.Errorf("key order lost (-want +got):\n%s", diff)
	}
	merged := Merge(DefaultConfig(), T)
	if v, _ := merged.Section("GLOBAL").Get("PROJECT"); v != "X" {
		Te.Errorf("PROJECT should be overridden, got %v", v)
	}
}

func TestParseYAMLErrors(Te *testing.T) {
	cases := map[string]error{
		"A:\n  - B: 1\n  - 2\n": ErrMixedList,
		"- 1\n- 2\n":            ErrNotMapping,
		"A: ~\n":                ErrUnsupportedValue,
		"A: [[1, 2]]\n":         ErrUnsupportedValue,
	}
	for doc, want := range cases {
		if _, err := ParseYAML([]byte(doc)); !errors.Is(err, want) {
			Te.Errorf("%q: want %v, got %v", doc, want, err)
		}
	}
	if _, err := ParseYAML([]byte("A: [unclosed\n")); err == nil {
		Te.Error("expected a syntax error")
	}
	T, err := ParseYAML(nil)
	if err != nil || T.Len() != 0 {
		Te.Errorf("an empty document should give an empty tree, got %v, %v", T, err)
	}
}

func TestReadFile(Te *testing.T) {
	T, err := ReadFile("testdata/params.yaml")
	if err != nil {
		Te.Fatal(err)
	}
	if v, _ := T.Section("FORCE_EVAL", "DFT", "MGRID").Get("CUTOFF"); v != 600 {
		Te.Errorf("CUTOFF should be 600, got %v", v)
	}
	if _, err := ReadFile("testdata/missing.yaml"); err == nil {
		Te.Error("expected an error for a missing file")
	}
}

func TestFromMap(Te *testing.T) {
	m := map[string]any{
		"B": map[string]any{"Y": 1, "X": "a"},
		"A": []any{map[string]any{"_": "O"}, map[string]any{"_": "H"}},
		"C": []map[string]any{{"K": 1}},
	}
	T := FromMap(m)
	want := []string{
		"&A O", "&END A", "&A H", "&END A",
		"&B", "X a", "Y 1", "&END B",
		"&C", "K 1", "&END C",
	}
	if diff := cmp.Diff(want, render(Te, T)); diff != "" {
		Te.Errorf("(-want +got):\n%s", diff)
	}
}
