/*
 * eos.go, part of fpgen.
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
	"io"
	"math"

	"github.com/rmera/fpgen/chemplot"
	"github.com/rmera/fpgen/qm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

type eosOptions struct {
	out   string
	title string
}

func newEOSCmd() *cobra.Command {
	o := new(eosOptions)
	cmd := &cobra.Command{
		Use:   "eos DIR...",
		Short: "Plot the energy per atom against the volume per atom",
		Long: `Takes the last converged frame of the OUTCAR in each directory, prints
its volume and energy per atom, and plots them. The format of the figure
is given by the extension of --out.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEOS(o, args, cmd.OutOrStdout())
		},
	}
	addOutFlag(cmd.Flags(), &o.out, "eos.png", "Figure file, its format given by the extension")
	cmd.Flags().StringVar(&o.title, "title", "Equation of state", "Figure title")
	return cmd
}

func runEOS(o *eosOptions, dirs []string, out io.Writer) error {
	vols := make([]float64, 0, len(dirs))
	ens := make([]float64, 0, len(dirs))
	for _, dir := range dirs {
		name := qm.FindOUTCAR(dir)
		if name == "" {
			logger.Warn("cannot find OUTCAR, skipping", zap.String("dir", dir))
			continue
		}
		O, err := qm.OUTCARFileRead(name)
		if err != nil {
			return err
		}
		f := O.LastConverged()
		if f == nil || len(O.AtomTypes) == 0 {
			logger.Warn("no converged frame", zap.String("file", name))
			continue
		}
		n := float64(len(O.AtomTypes))
		v, e := math.Abs(mat.Det(f.Cell))/n, f.Energy/n
		logger.Debug("EOS point", zap.String("dir", dir), zap.Float64("volume", v), zap.Float64("energy", e))
		if _, err := fmt.Fprintf(out, "%-20s %12.6f %14.8f\n", dir, v, e); err != nil {
			return err
		}
		vols = append(vols, v)
		ens = append(ens, e)
	}
	if err := chemplot.EOSPlot(vols, ens, o.title, o.out); err != nil {
		return err
	}
	logger.Info("EOS plot written", zap.String("file", o.out), zap.Int("points", len(vols)))
	return nil
}
