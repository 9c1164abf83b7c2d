/*
 * vasp.go, part of fpgen.
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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rmera/fpgen/qm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type vaspOptions struct {
	inter  string
	poscar string
	task   string
	param  string
	out    string
}

func newVASPCmd() *cobra.Command {
	o := new(vaspOptions)
	cmd := &cobra.Command{
		Use:   "vasp",
		Short: "Prepare VASP property calculations and collect their results",
	}
	makeCmd := &cobra.Command{
		Use:   "make",
		Short: "Write POSCAR, POTCAR, INCAR, KPOINTS, inter.json and task.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVASPMake(o)
		},
	}
	f := makeCmd.Flags()
	f.StringVarP(&o.inter, "inter", "i", "", "Interaction parameters (YAML or JSON)")
	f.StringVarP(&o.poscar, "poscar", "s", "", "POSCAR of the structure")
	f.StringVarP(&o.task, "task", "t", "", "Task type: relaxation, vacancy, interstitial, eos, elastic, surface or static")
	f.StringVarP(&o.param, "param", "p", "", "Task parameters (YAML or JSON)")
	addOutFlag(f, &o.out, "", "Output directory, created if needed")
	makeCmd.MarkFlagRequired("inter")
	makeCmd.MarkFlagRequired("poscar")
	makeCmd.MarkFlagRequired("task")
	makeCmd.MarkFlagRequired("out")

	computeCmd := &cobra.Command{
		Use:   "compute DIR...",
		Short: "Print the energy, forces and virial of finished calculations as JSON",
		Long: `Reads the OUTCAR (or OUTCAR.gz, OUTCAR.zst) of each directory and prints
one JSON object per line with the results of its last converged frame.
Directories without results are skipped with a warning.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVASPCompute(args, cmd.OutOrStdout())
		},
	}
	cmd.AddCommand(makeCmd, computeCmd)
	return cmd
}

func runVASPMake(o *vaspOptions) error {
	tt, err := qm.ParseTaskType(o.task)
	if err != nil {
		return err
	}
	inter, err := qm.ReadInterParams(o.inter)
	if err != nil {
		return err
	}
	var param *qm.TaskParam
	if o.param != "" {
		param, err = qm.ReadTaskParam(o.param)
	} else {
		param, err = qm.NewTaskParam(nil)
	}
	if err != nil {
		return err
	}
	V, err := qm.NewVASPHandle(inter, o.poscar)
	if err != nil {
		return err
	}
	V.SetLogger(logger)
	if err := os.MkdirAll(o.out, 0755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	if err := copyPOSCAR(o.poscar, o.out); err != nil {
		return err
	}
	if err := V.MakePotentialFiles(o.out); err != nil {
		return err
	}
	if err := V.MakeInputFile(o.out, tt, param); err != nil {
		return err
	}
	logger.Info("VASP input ready", zap.String("dir", o.out), zap.Strings("files", V.ForwardFiles()))
	return nil
}

//copyPOSCAR copies poscar to dir/POSCAR, unless it is that same file.
func copyPOSCAR(poscar, dir string) error {
	dest := filepath.Join(dir, "POSCAR")
	src, err1 := filepath.Abs(poscar)
	dst, err2 := filepath.Abs(dest)
	if err1 == nil && err2 == nil && src == dst {
		return nil
	}
	data, err := os.ReadFile(poscar)
	if err != nil {
		return fmt.Errorf("cannot read POSCAR: %w", err)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("cannot write POSCAR: %w", err)
	}
	return nil
}

type dirResult struct {
	Dir    string     `json:"dir"`
	Result *qm.Result `json:"result"`
}

func runVASPCompute(dirs []string, out io.Writer) error {
	enc := json.NewEncoder(out)
	for _, dir := range dirs {
		R, err := qm.VASPResult(dir, logger)
		if err != nil {
			return err
		}
		if R == nil {
			continue
		}
		if err := enc.Encode(dirResult{Dir: dir, Result: R}); err != nil {
			return err
		}
	}
	return nil
}
