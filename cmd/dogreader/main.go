// Command dogreader downloads the breed list into a temporary store and prints
// statistics, renders a chart or exports the data without opening a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/iafilius/DoggiesWorld/src/applog"
	"github.com/iafilius/DoggiesWorld/src/config"
)

func main() {
	fs := pflag.NewFlagSet("dogreader", pflag.ExitOnError)
	fs.SetInterspersed(false)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	applog.SetLogLevel(cfg.LogLevel)
	defer applog.Sync()

	top := flag.NewFlagSet("dogreader", flag.ExitOnError)
	_ = top.Parse(fs.Args())
	cdr := newCommander(top, cfg, os.Stdout)
	os.Exit(int(cdr.Execute(context.Background())))
}
