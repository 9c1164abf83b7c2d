/*
 * default.go, part of fpgen.
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

//basis and pseudopotential for each element in the default KIND list.
var defaultKinds = [][3]string{
	{"O", "GTH-PBE-q6", "DZVP-MOLOPT-SR-GTH"},
	{"H", "GTH-PBE-q1", "DZVP-MOLOPT-SR-GTH"},
	{"Pt", "GTH-PBE-q10", "DZVP-A5-Q10-323-MOL-T1-DERIVED_SET-1"},
	{"Ag", "GTH-PBE-q11", "DZVP-MOLOPT-SR-GTH"},
	{"Na", "GTH-PBE-q9", "DZVP-MOLOPT-SR-GTH"},
	{"K", "GTH-PBE-q9", "DZVP-MOLOPT-SR-GTH"},
	{"Li", "GTH-PBE-q3", "DZVP-MOLOPT-SR-GTH"},
	{"C", "GTH-PBE-q4", "DZVP-MOLOPT-SR-GTH"},
	{"N", "GTH-PBE-q5", "DZVP-MOLOPT-SR-GTH"},
	{"Cl", "GTH-PBE-q7", "DZVP-MOLOPT-SR-GTH"},
	{"F", "GTH-PBE-q7", "DZVP-MOLOPT-SR-GTH"},
	{"Mg", "GTH-PBE-q10", "DZVP-MOLOPT-SR-GTH"},
	{"Al", "GTH-PBE-q3", "DZVP-MOLOPT-SR-GTH"},
}

//DefaultConfig returns a new copy of the default input for a single-point
//PBE energy, force and stress calculation. The coordinates are included
//from coord.xyz and the cell is a 10 Angstrom cube, to be replaced.
//Each call builds a new tree, so callers may modify it freely.
func DefaultConfig() *Tree {
	kinds := make([]*Tree, len(defaultKinds))
	for i, k := range defaultKinds {
		kinds[i] = Of(TagKey, k[0], "POTENTIAL", k[1], "BASIS_SET", k[2])
	}
	return Of(
		"GLOBAL", Of("PROJECT", "DPGEN"),
		"FORCE_EVAL", Of(
			"METHOD", "QS",
			"STRESS_TENSOR", "ANALYTICAL",
			"DFT", Of(
				"BASIS_SET_FILE_NAME", "./cp2k_basis_pp_file/BASIS_MOLOPT",
				"POTENTIAL_FILE_NAME", "./cp2k_basis_pp_file/GTH_POTENTIALS",
				"CHARGE", 0,
				"UKS", "F",
				"MULTIPLICITY", 1,
				"MGRID", Of("CUTOFF", 400, "REL_CUTOFF", 50, "NGRIDS", 4),
				"QS", Of("EPS_DEFAULT", "1.0E-12"),
				"SCF", Of("SCF_GUESS", "ATOMIC", "EPS_SCF", "1.0E-6", "MAX_SCF", 50),
				"XC", Of("XC_FUNCTIONAL", Of(TagKey, "PBE")),
			),
			"SUBSYS", Of(
				"CELL", Of("A", "10 .0 .0", "B", ".0 10 .0", "C", ".0 .0 10"),
				"COORD", Of("@include", "coord.xyz"),
				"KIND", kinds,
			),
			"PRINT", Of(
				"FORCES", Of(TagKey, "ON"),
				"STRESS_TENSOR", Of(TagKey, "ON"),
			),
		),
	)
}
