/*
 * merge.go, part of fpgen.
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

//Merge returns a new tree with the keys of override merged into base.
//Where both trees have a section under the same key, the sections are
//merged recursively. Any other value in override replaces the one in base,
//including sections replaced by scalars and vice versa; slices are replaced
//as a whole. Keys only in base keep their value and position, keys only in
//override are added at the end, in override's order.
//Neither argument is modified and the result shares no sections or slices with them.
func Merge(base, override *Tree) *Tree {
	ret := base.Copy()
	if ret == nil {
		ret = NewTree()
	}
	for _, e := range override.entrySlice() {
		if ov, ok := e.value.(*Tree); ok {
			if bv, ok := ret.Get(e.key); ok {
				if bt, ok := bv.(*Tree); ok {
					ret.Set(e.key, Merge(bt, ov))
					continue
				}
			}
		}
		ret.Set(e.key, copyValue(e.value))
	}
	return ret
}

func (T *Tree) entrySlice() []entry {
	if T == nil {
		return nil
	}
	return T.entries
}
