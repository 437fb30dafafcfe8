package main

import (
	"os"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
