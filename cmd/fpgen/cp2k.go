/*
 * cp2k.go, part of fpgen.
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

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	chem "github.com/rmera/fpgen"
	"github.com/rmera/fpgen/cp2k"
	"github.com/rmera/fpgen/qm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type cp2kOptions struct {
	system   string
	frame    int
	params   string
	template string
	name     string
	out      string
}

func newCP2KCmd() *cobra.Command {
	o := new(cp2kOptions)
	cmd := &cobra.Command{
		Use:   "cp2k",
		Short: "Write a CP2K input and coordinate file for a structure",
		Long: `Writes OUT/NAME.inp and OUT/coord.xyz for one frame of a structure.
The input is the default one with the parameters in --params merged over it,
or the template in --template with its last ABC line replaced by the cell.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCP2K(o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.system, "system", "s", "", "Structure file, xyz (by extension) or POSCAR")
	f.IntVarP(&o.frame, "frame", "f", 0, "Frame of the structure file to use")
	f.StringVarP(&o.params, "params", "p", "", "YAML or JSON file with CP2K parameters")
	f.StringVarP(&o.template, "template", "t", "", "CP2K input template")
	f.StringVarP(&o.name, "name", "n", "input", "Name of the input file, without extension")
	addOutFlag(f, &o.out, "", "Output directory, created if needed")
	cmd.MarkFlagRequired("system")
	cmd.MarkFlagRequired("out")
	cmd.MarkFlagsMutuallyExclusive("params", "template")
	return cmd
}

//readSystem reads name as an xyz file if it has that extension, and as a
//POSCAR otherwise.
func readSystem(name string) (*chem.System, error) {
	if strings.EqualFold(filepath.Ext(name), ".xyz") {
		return chem.XYZFileRead(name)
	}
	return chem.POSCARFileRead(name)
}

func runCP2K(o *cp2kOptions) error {
	S, err := readSystem(o.system)
	if err != nil {
		return err
	}
	logger.Debug("structure read", zap.String("file", o.system), zap.Int("atoms", S.Len()), zap.Int("frames", S.NFrames()))
	H := qm.NewCP2KHandle()
	H.SetName(o.name)
	H.SetLogger(logger)
	if o.params != "" {
		params, err := cp2k.ReadFile(o.params)
		if err != nil {
			return err
		}
		H.SetParams(params)
	}
	H.SetExternalInput(o.template)
	if err := os.MkdirAll(o.out, 0755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	if err := H.BuildInput(S, o.frame, o.out); err != nil {
		return err
	}
	logger.Info("CP2K input ready", zap.String("dir", o.out), zap.String("input", o.name+".inp"))
	return nil
}
