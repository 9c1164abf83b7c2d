/*
 * doc.go, part of fpgen.
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
 */

/*Package chem is the main package of fpgen. It provides the System type,
a set of atoms with one periodic cell and one set of cartesian coordinates
per frame, and readers and writers for the structure files fpgen works with.


	**fpgen Capabilities**


    Reads and writes (extended) XYZ files, with the cell taken from the
	Lattice entry of the comment line.

    Reads VASP 5 POSCAR/CONTCAR files, in direct or cartesian coordinates.

    Builds CP2K inputs from a default configuration tree merged with user
	parameters, or from an input template (packages cp2k and qm).

    Prepares VASP property calculations (POTCAR, INCAR, KPOINTS) and reads
	the energies, forces and virials of their OUTCARs, also when compressed
	with gzip or zstd (package qm).

    Plots equations of state (package chemplot).


Coordinates are stored in v3.Matrix values, with one atom per row. Cells are
3x3 gonum mat.Dense matrices with one lattice vector per row.*/
package chem
