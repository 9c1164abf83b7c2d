/*
 * doc.go, part of fpgen.
 *
 * Copyright 2021 Raul Mera <rmeraatusachdotcl>
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
 * */

//Package qm prepares the inputs of first-principles programs and reads
//their outputs. CP2KHandle builds CP2K inputs for the frames of a
//chem.System. VASPHandle implements Task, preparing the INCAR, KPOINTS and
//POTCAR of each property test (relaxation, equation of state, elastic
//constants...) and reading the energy, forces and virial from the OUTCAR.
//
//Errors returned by this package are Error values that wrap one of the
//Err sentinels, so they can be checked with errors.Is.
package qm
