/*
 * errors.go, part of fpgen.
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
	"fmt"
)

var (
	//ErrMixedList is returned for a list that holds both sections and scalars.
	ErrMixedList = errors.New("inconsistent section/list type: list mixes sections and scalar values")
	//ErrTopLevelTag is returned for a tag at the root of a tree, where no section line exists to carry it.
	ErrTopLevelTag = errors.New("section tag outside of any section")
	//ErrUnsupportedValue is returned for values that have no CP2K representation.
	ErrUnsupportedValue = errors.New("unsupported value type")
	//ErrNotMapping is returned when a decoded document is not a mapping of keys to values.
	ErrNotMapping = errors.New("document is not a mapping")
)

//Error is the error type returned by this package. It wraps one of the
//package's sentinel errors, or an error from a library, so errors.Is works.
type Error struct {
	cause error
	key   string //slash-separated path of the offending key, if any
	deco  []string
}

func newError(cause error, key string, caller string) Error {
	return Error{cause: cause, key: key, deco: []string{caller}}
}

func (err Error) Error() string {
	if err.key == "" {
		return fmt.Sprintf("cp2k: %s", err.cause)
	}
	return fmt.Sprintf("cp2k: %s (key %s)", err.cause, err.key)
}

func (err Error) Unwrap() error { return err.cause }

//Key returns the path of the key that caused the error.
func (err Error) Key() string { return err.key }

//Decorate adds dec to the decoration slice of the error and returns the slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func errDecorate(err error, caller string) error {
	if err2, ok := err.(interface{ Decorate(string) []string }); ok {
		err2.Decorate(caller)
	}
	return err
}
