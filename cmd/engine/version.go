package main

import (
	"fmt"
	"strings"

	"mlengine/pkginfo"

	"github.com/spf13/cobra"
)

var (
	deps  bool
	short bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	// no config or logger needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if short {
			fmt.Fprintln(out, pkginfo.Version)
		} else {
			fmt.Fprintln(out, pkginfo.BuildVersionString())
		}

		if deps {
			fmt.Fprintf(out, "\n\n")
			fmt.Fprintln(out, strings.Join(pkginfo.GetDependencyList(), "\n"))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&deps, "deps", "d", false, "print dependencies")
	versionCmd.Flags().BoolVarP(&short, "short", "s", false, "only print version number")
}
