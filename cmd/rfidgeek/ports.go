// go-rfidgeek
// Copyright (c) 2025 The go-rfidgeek Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-rfidgeek.
//
// go-rfidgeek is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-rfidgeek is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-rfidgeek; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rfidgeek/go-rfidgeek/detection"
)

func newPortsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports a reader may be attached to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := detection.DefaultOptions()
			opts.IgnorePaths = a.v.GetStringSlice(keyIgnorePaths)
			if a.v.GetBool(keyShowAllPorts) {
				opts = detection.Options{IgnorePaths: opts.IgnorePaths}
			}

			ports, err := detection.ListPorts(opts)
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no serial ports found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "PORT\tVID:PID\tSERIAL\tPRODUCT\tREADER")
			for _, p := range ports {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					p.Name, detection.FormatVIDPID(p.VID, p.PID), p.SerialNumber, p.Product, p.Reader)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringSlice(keyIgnorePaths, nil, "ports to leave out")
	cmd.Flags().Bool(keyShowAllPorts, false, "include blocklisted and non-USB ports")
	_ = a.v.BindPFlag(keyIgnorePaths, cmd.Flags().Lookup(keyIgnorePaths))
	_ = a.v.BindPFlag(keyShowAllPorts, cmd.Flags().Lookup(keyShowAllPorts))
	return cmd
}
