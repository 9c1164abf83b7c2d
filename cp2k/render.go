/*
 * render.go, part of fpgen.
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
	"math"
	"reflect"
	"strconv"
	"strings"
)

//frame is an open section during rendering.
type frame struct {
	name string
	open int //index in the line buffer of the opening marker, -1 for the root
	tree *Tree
	next int //next entry of tree to render

	//repeated sections waiting to be opened, all named pendingKey
	pending    []*Tree
	pendingKey string
}

//Lines renders the tree as CP2K input lines. A section becomes "&KEY", its
//contents and "&END KEY". Repeated sections give one such block per element,
//a slice of scalars gives one "KEY VALUE" line per element and a scalar gives a
//"KEY VALUE" line, except for the TagKey, whose value is appended to the
//opening line of the enclosing section. Keys are rendered in tree order.
func (T *Tree) Lines() ([]string, error) {
	lines := make([]string, 0, 4*T.Len())
	stack := []*frame{{open: -1, tree: T}}
	push := func(name string, t *Tree) {
		lines = append(lines, "&"+name)
		stack = append(stack, &frame{name: name, open: len(lines) - 1, tree: t})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if len(f.pending) > 0 {
			sub := f.pending[0]
			f.pending = f.pending[1:]
			push(f.pendingKey, sub)
			continue
		}
		if f.next >= f.tree.Len() {
			if f.open >= 0 {
				lines = append(lines, "&END "+f.name)
			}
			stack = stack[:len(stack)-1]
			continue
		}
		e := f.tree.entries[f.next]
		f.next++
		switch v := e.value.(type) {
		case *Tree:
			push(e.key, v)
		case []*Tree:
			f.pending, f.pendingKey = v, e.key
		case []any:
			sections, err := sectionList(v)
			if err != nil {
				return nil, newError(err, stackPath(stack, e.key), "Lines")
			}
			if sections != nil {
				f.pending, f.pendingKey = sections, e.key
				continue
			}
			for _, s := range v {
				str, err := FormatScalar(s)
				if err != nil {
					return nil, newError(err, stackPath(stack, e.key), "Lines")
				}
				lines = append(lines, e.key+" "+str)
			}
		default:
			if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
				for i := 0; i < rv.Len(); i++ {
					str, err := FormatScalar(rv.Index(i).Interface())
					if err != nil {
						return nil, newError(err, stackPath(stack, e.key), "Lines")
					}
					lines = append(lines, e.key+" "+str)
				}
				continue
			}
			str, err := FormatScalar(v)
			if err != nil {
				return nil, newError(err, stackPath(stack, e.key), "Lines")
			}
			if e.key != TagKey {
				lines = append(lines, e.key+" "+str)
				continue
			}
			if f.open < 0 {
				return nil, newError(ErrTopLevelTag, stackPath(stack, e.key), "Lines")
			}
			lines[f.open] += " " + str
		}
	}
	return lines, nil
}

//Render returns the CP2K input text for the tree: the lines from
//Lines joined by newlines, with no trailing newline.
func (T *Tree) Render() (string, error) {
	lines, err := T.Lines()
	if err != nil {
		return "", errDecorate(err, "Render")
	}
	return strings.Join(lines, "\n"), nil
}

//sectionList returns the elements of v as *Trees if they all are sections,
//nil if none is, and ErrMixedList if only some are.
func sectionList(v []any) ([]*Tree, error) {
	if len(v) == 0 {
		return nil, nil
	}
	_, first := v[0].(*Tree)
	ret := make([]*Tree, 0, len(v))
	for _, e := range v {
		t, ok := e.(*Tree)
		if ok != first {
			return nil, ErrMixedList
		}
		if ok {
			ret = append(ret, t)
		}
	}
	if !first {
		return nil, nil
	}
	return ret, nil
}

//stackPath returns the slash-separated key path of key in the open sections.
func stackPath(stack []*frame, key string) string {
	names := make([]string, 0, len(stack))
	for _, f := range stack[1:] {
		names = append(names, f.name)
	}
	return strings.Join(append(names, key), "/")
}

//FormatScalar returns the CP2K text for a keyword value. Strings are
//written as they are, integers in base 10 and booleans as TRUE or FALSE.
//Floats use the shortest representation that reads back to the same
//number, in exponent notation below 1e-4 or from 1e16 on, and always
//carry a decimal point or an exponent.
func FormatScalar(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(v).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10), nil
	case float32:
		return formatFloat(float64(v), 32)
	case float64:
		return formatFloat(v, 64)
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", ErrUnsupportedValue
}

func formatFloat(f float64, bitSize int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", ErrUnsupportedValue
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, bitSize), nil
	}
	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

//FormatRow returns the numbers in v separated by single spaces, in the
//form used for cell vectors and coordinates: integral values with a
//trailing point ("10."), others in their shortest decimal form ("0.757"),
//and exponent notation below 1e-4 or from 1e16 on.
func FormatRow(v []float64) string {
	s := make([]string, len(v))
	for i, f := range v {
		abs := math.Abs(f)
		switch {
		case abs != 0 && (abs < 1e-4 || abs >= 1e16):
			s[i] = strconv.FormatFloat(f, 'e', -1, 64)
		case f == math.Trunc(f):
			s[i] = strconv.FormatFloat(f, 'f', 0, 64) + "."
		default:
			s[i] = strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return strings.Join(s, " ")
}
