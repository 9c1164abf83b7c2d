/*
 * incar.go, part of fpgen.
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
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

//Incar is the set of keywords of a VASP INCAR file. Keys are always upper case.
//Values are bool, int, float64, []float64 or string.
type Incar struct {
	keys   []string
	values map[string]any
}

//NewIncar returns an empty Incar.
func NewIncar() *Incar {
	return &Incar{values: make(map[string]any)}
}

//IncarFileRead reads an INCAR file. See IncarRead.
func IncarFileRead(name string) (*Incar, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, newError(fmt.Errorf("%w: %v", ErrMissingFile, err), "VASP", name, "IncarFileRead")
	}
	defer f.Close()
	I, err := IncarRead(f)
	if err != nil {
		if e, ok := err.(Error); ok {
			e.inputname = name
			err = e
		}
		return nil, errDecorate(err, "IncarFileRead")
	}
	return I, nil
}

//IncarRead reads INCAR keywords from r. Each line holds one or more
//KEY = VALUE statements separated by ';'. Anything after a '#' or '!'
//is a comment. Lines without '=' are ignored, as VASP does.
//Keys are upper-cased, the case of values is kept.
func IncarRead(r io.Reader) (*Incar, error) {
	I := NewIncar()
	scan := bufio.NewScanner(r)
	for scan.Scan() {
		line := scan.Text()
		if i := strings.IndexAny(line, "#!"); i >= 0 {
			line = line[:i]
		}
		for _, st := range strings.Split(line, ";") {
			kv := strings.SplitN(st, "=", 2)
			if len(kv) != 2 {
				continue
			}
			key := strings.TrimSpace(kv[0])
			if key == "" {
				continue
			}
			I.Set(key, parseIncarValue(strings.TrimSpace(kv[1])))
		}
	}
	if err := scan.Err(); err != nil {
		return nil, newError(err, "VASP", "", "IncarRead")
	}
	return I, nil
}

//parseIncarValue types an INCAR value. Lists of numbers can use
//the n*x repetition syntax, as in MAGMOM = 2*1.0 0.5.
func parseIncarValue(s string) any {
	if b, ok := parseIncarBool(s); ok {
		return b
	}
	fields := strings.Fields(s)
	if len(fields) == 1 {
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, ok := parseFortranFloat(s); ok {
			return f
		}
		return s
	}
	list := make([]float64, 0, len(fields))
	for _, v := range fields {
		n := 1
		if rep := strings.SplitN(v, "*", 2); len(rep) == 2 {
			var err error
			n, err = strconv.Atoi(rep[0])
			if err != nil || n < 1 {
				return s
			}
			v = rep[1]
		}
		f, ok := parseFortranFloat(v)
		if !ok {
			return s
		}
		for j := 0; j < n; j++ {
			list = append(list, f)
		}
	}
	if len(list) == 0 {
		return s
	}
	return list
}

func parseIncarBool(s string) (bool, bool) {
	u := strings.Trim(strings.ToUpper(s), ".")
	switch u {
	case "T", "TRUE":
		return true, true
	case "F", "FALSE":
		return false, true
	}
	return false, false
}

//parseFortranFloat also accepts the 'd' exponent, as in 1d-5.
func parseFortranFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.NewReplacer("d", "e", "D", "e").Replace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

//Set sets the value of key, upper-casing it. A new key goes at the end.
func (I *Incar) Set(key string, value any) {
	key = strings.ToUpper(key)
	if _, ok := I.values[key]; !ok {
		I.keys = append(I.keys, key)
	}
	I.values[key] = value
}

//Get returns the value of key and whether it was present.
func (I *Incar) Get(key string) (any, bool) {
	v, ok := I.values[strings.ToUpper(key)]
	return v, ok
}

//Has returns whether key is present.
func (I *Incar) Has(key string) bool {
	_, ok := I.Get(key)
	return ok
}

//Keys returns the keys in the order they were read or set.
func (I *Incar) Keys() []string {
	return append([]string(nil), I.keys...)
}

//Int returns the value of key as an int. The second value is false
//if the key is absent or its value is not an integral number.
func (I *Incar) Int(key string) (int, bool) {
	v, ok := I.Get(key)
	if !ok {
		return 0, false
	}
	switch v := v.(type) {
	case int:
		return v, true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	}
	return 0, false
}

//Float returns the value of key as a float64. The second value is false
//if the key is absent or its value is not a number.
func (I *Incar) Float(key string) (float64, bool) {
	v, ok := I.Get(key)
	if !ok {
		return 0, false
	}
	switch v := v.(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

//Bool returns the value of key as a bool. The second value is false
//if the key is absent or its value is not a boolean.
func (I *Incar) Bool(key string) (bool, bool) {
	v, ok := I.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

//String returns the INCAR text, one KEY = VALUE line per key, sorted by key.
func (I *Incar) String() string {
	keys := I.Keys()
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s = %s\n", k, formatIncarValue(I.values[k]))
	}
	return b.String()
}

//WriteFile writes the INCAR text to the file name.
func (I *Incar) WriteFile(name string) error {
	if err := os.WriteFile(name, []byte(I.String()), 0644); err != nil {
		return newError(err, "VASP", name, "WriteFile")
	}
	return nil
}

func formatIncarValue(v any) string {
	switch v := v.(type) {
	case bool:
		if v {
			return ".TRUE."
		}
		return ".FALSE."
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []float64:
		s := make([]string, len(v))
		for i, f := range v {
			s[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(s, " ")
	}
	return fmt.Sprint(v)
}
