package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.BuildVersion=..." at release time.
var (
	BuildBranch  string
	BuildVersion string
	BuildTime    string
	Builder      string
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "show version",
	Long:  ``,
	Run: func(*cobra.Command, []string) {
		printVersion()
	},
}

func printVersion() {
	version := BuildVersion
	if version == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			version = info.Main.Version
		}
	}
	for _, row := range [][2]string{
		{"BuildBranch", BuildBranch},
		{"BuildVersion", version},
		{"BuildTime", BuildTime},
		{"Builder", Builder},
	} {
		fmt.Printf("\033[36m%-16s\033[0m %s\n", row[0], row[1])
	}
}
