/*
 * doc.go, part of fpgen.
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

/*Package cp2k builds CP2K input files from ordered trees of keywords and sections.

A Tree is merged over the default input (or any other tree) with Merge, and
rendered into the &SECTION ... &END SECTION syntax of CP2K with Render.
The special key "_" puts its value on the opening line of its section, so

	Of("XC_FUNCTIONAL", Of("_", "PBE", "A", 1))

renders as

	&XC_FUNCTIONAL PBE
	A 1
	&END XC_FUNCTIONAL

Parameter trees can be read from YAML or JSON files with ReadFile.
*/
package cp2k
