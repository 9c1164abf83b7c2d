/*
 * interfaces.go, part of fpgen.
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

package chem

import "fmt"

//Errors

// Decorator is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Decorator interface {
	Error() string
	Decorate(string) []string //Each call adds the caller's name (or "Caller: extra info") and returns the current trail. An empty string only returns the trail.
}

//Error is the error type returned by this package.
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.filename == "" {
		return err.message
	}
	return fmt.Sprintf("file %s: %s", err.filename, err.message)
}

//Decorate adds dec to the decoration slice of the error and returns the slice.
func (err Error) Decorate(dec string) []string {
	//Even thought this method does not use a pointer as a receiver, and tries to alter the received,
	//it should work, since err.deco is a slice, and hence a pointer itself.
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//FileName returns the file that caused the error, if any.
func (err Error) FileName() string { return err.filename }

//Critical returns whether the error is critical or it can be ignored.
func (err Error) Critical() bool { return err.critical }

//errDecorate decorates err with the caller's name if err implements
//Decorator, and returns it unchanged otherwise.
func errDecorate(err error, caller string) error {
	if err2, ok := err.(Decorator); ok {
		err2.Decorate(caller)
	}
	return err
}

const (
	ErrNilData        = "Nil data given"
	ErrIllFormedXYZ   = "Ill formatted XYZ file"
	ErrIllFormedPOS   = "Ill formatted POSCAR file"
	ErrNoElementNames = "POSCAR lacks the element names line (VASP 4 format is not supported)"
)
