/*
 * tree.go, part of fpgen.
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
	"fmt"
	"reflect"
)

//TagKey is the key whose value is written on the opening line
//of the enclosing section instead of on a line of its own.
const TagKey = "_"

//Tree is an ordered set of CP2K keywords and sections.
//A value can be a scalar (string, bool, integer or float), a *Tree (a section),
//a []*Tree (repeated sections), or a slice of scalars (a repeated keyword).
//A []any may hold either *Trees or scalars, but not both.
//The zero value is not usable, use NewTree or Of.
type Tree struct {
	entries []entry
	index   map[string]int // key -> position in entries
}

type entry struct {
	key   string
	value any
}

func NewTree() *Tree {
	return &Tree{index: map[string]int{}}
}

//Of builds a Tree from alternating keys and values, in order.
//It panics if given an odd number of arguments or a non-string key,
//so it is meant for literals in code.
func Of(kv ...any) *Tree {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("cp2k.Of: odd number of arguments (%d)", len(kv)))
	}
	T := NewTree()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("cp2k.Of: key %v is not a string", kv[i]))
		}
		T.Set(key, kv[i+1])
	}
	return T
}

//Set sets key to value. An existing key keeps its position,
//a new one is added at the end. Returns the receiver.
func (T *Tree) Set(key string, value any) *Tree {
	if i, ok := T.index[key]; ok {
		T.entries[i].value = value
		return T
	}
	T.index[key] = len(T.entries)
	T.entries = append(T.entries, entry{key: key, value: value})
	return T
}

//Get returns the value for key, and whether it was present.
func (T *Tree) Get(key string) (any, bool) {
	if T == nil {
		return nil, false
	}
	i, ok := T.index[key]
	if !ok {
		return nil, false
	}
	return T.entries[i].value, true
}

//Section returns the sub-tree at the given path of keys, or nil
//if some element of the path is missing or is not a section.
func (T *Tree) Section(path ...string) *Tree {
	cur := T
	for _, k := range path {
		v, ok := cur.Get(k)
		if !ok {
			return nil
		}
		cur, ok = v.(*Tree)
		if !ok {
			return nil
		}
	}
	return cur
}

//Delete removes key from the tree, if present.
func (T *Tree) Delete(key string) {
	i, ok := T.index[key]
	if !ok {
		return
	}
	T.entries = append(T.entries[:i], T.entries[i+1:]...)
	delete(T.index, key)
	for j := i; j < len(T.entries); j++ {
		T.index[T.entries[j].key] = j
	}
}

//Keys returns the keys of the tree, in order.
func (T *Tree) Keys() []string {
	if T == nil {
		return nil
	}
	ret := make([]string, len(T.entries))
	for i, e := range T.entries {
		ret[i] = e.key
	}
	return ret
}

//Len returns the number of keys in the tree.
func (T *Tree) Len() int {
	if T == nil {
		return 0
	}
	return len(T.entries)
}

//Copy returns a deep copy of the tree. Sections and slices are copied,
//scalars are shared.
func (T *Tree) Copy() *Tree {
	if T == nil {
		return nil
	}
	ret := &Tree{entries: make([]entry, len(T.entries)), index: make(map[string]int, len(T.entries))}
	for i, e := range T.entries {
		ret.entries[i] = entry{key: e.key, value: copyValue(e.value)}
		ret.index[e.key] = i
	}
	return ret
}

func copyValue(v any) any {
	switch v := v.(type) {
	case *Tree:
		return v.Copy()
	case []*Tree:
		ret := make([]*Tree, len(v))
		for i, t := range v {
			ret[i] = t.Copy()
		}
		return ret
	case []any:
		ret := make([]any, len(v))
		for i, e := range v {
			ret[i] = copyValue(e)
		}
		return ret
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && !rv.IsNil() {
		ret := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(ret, rv)
		return ret.Interface()
	}
	return v
}
