package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/iafilius/DoggiesWorld/src/applog"
	"github.com/iafilius/DoggiesWorld/src/config"
	"github.com/iafilius/DoggiesWorld/src/dogworld"
	"github.com/iafilius/DoggiesWorld/src/types"
)

// env is shared by every subcommand.
type env struct {
	cfg *config.Config
	out io.Writer
}

func newCommander(top *flag.FlagSet, cfg *config.Config, out io.Writer) *subcommands.Commander {
	e := &env{cfg: cfg, out: out}
	cdr := subcommands.NewCommander(top, top.Name())
	cdr.Output = out
	cdr.Register(cdr.HelpCommand(), "")
	cdr.Register(cdr.FlagsCommand(), "")
	cdr.Register(&averageCmd{env: e}, "")
	cdr.Register(&chartCmd{env: e}, "")
	cdr.Register(&pictureCmd{env: e}, "")
	cdr.Register(&exportCmd{env: e}, "")
	return cdr
}

// filled opens a fresh store and loads the breed list into it.
func (e *env) filled(ctx context.Context) (*dogworld.Service, error) {
	svc, err := dogworld.Open(ctx, e.cfg, nil)
	if err != nil {
		return nil, err
	}
	_, res, err := svc.Fill(ctx, nil)
	if err != nil {
		svc.Close()
		return nil, err
	}
	applog.Debugf("loaded %d breeds (run %s)", res.Breeds, res.RunID)
	return svc, nil
}

func fail(err error) subcommands.ExitStatus {
	applog.Errorf("%v", err)
	return subcommands.ExitFailure
}

func parseMetricArg(f *flag.FlagSet) (types.Metric, bool) {
	if f.NArg() != 1 {
		return 0, false
	}
	m, err := types.ParseMetric(f.Arg(0))
	if err != nil {
		applog.Errorf("%v", err)
		return 0, false
	}
	return m, true
}

type averageCmd struct {
	*env
}

func (*averageCmd) Name() string     { return "average" }
func (*averageCmd) Synopsis() string { return "print the average height, weight or life span" }
func (*averageCmd) Usage() string {
	return "average <height|weight|life_span>\n"
}
func (*averageCmd) SetFlags(*flag.FlagSet) {}

func (c *averageCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m, ok := parseMetricArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	svc, err := c.filled(ctx)
	if err != nil {
		return fail(err)
	}
	defer svc.Close()
	a, err := svc.Average(ctx, m)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(c.out, a.String())
	return subcommands.ExitSuccess
}

type chartCmd struct {
	*env
	path string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render a bar chart of four random breeds" }
func (*chartCmd) Usage() string {
	return "chart [-o file.png] <height|weight|life_span>\n"
}
func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.path, "o", "", "output PNG (defaults to the configured chart path)")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m, ok := parseMetricArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	if c.path != "" {
		cfg := *c.cfg
		cfg.ChartPath = c.path
		c.env = &env{cfg: &cfg, out: c.out}
	}
	svc, err := c.filled(ctx)
	if err != nil {
		return fail(err)
	}
	defer svc.Close()
	ch, err := svc.Chart(ctx, m)
	if err != nil {
		return fail(err)
	}
	for _, p := range ch.Points {
		fmt.Fprintf(c.out, "%-40s %8.2f %s\n", p.Breed, p.Value, m.Unit())
	}
	fmt.Fprintf(c.out, "chart written to %s\n", ch.Path)
	return subcommands.ExitSuccess
}

type pictureCmd struct {
	*env
	save string
}

func (*pictureCmd) Name() string     { return "picture" }
func (*pictureCmd) Synopsis() string { return "pick a random breed and fetch its photo" }
func (*pictureCmd) Usage() string    { return "picture [-save file]\n" }
func (c *pictureCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.save, "save", "", "write the decoded photo as PNG")
}

func (c *pictureCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, err := c.filled(ctx)
	if err != nil {
		return fail(err)
	}
	defer svc.Close()
	p, err := svc.Picture(ctx)
	if err != nil {
		return fail(err)
	}
	b := p.Image.Bounds()
	fmt.Fprintf(c.out, "%s\n%s (%s %dx%d)\n", p.Breed, p.ImageURL, p.Format, b.Dx(), b.Dy())
	if c.save != "" {
		if err := dogworld.WritePNG(c.save, p.Image); err != nil {
			return fail(err)
		}
	}
	return subcommands.ExitSuccess
}

type exportCmd struct {
	*env
	path string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "dump all breeds as YAML" }
func (*exportCmd) Usage() string    { return "export [-o breeds.yaml]\n" }
func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.path, "o", "", "output file (stdout when empty)")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, err := c.filled(ctx)
	if err != nil {
		return fail(err)
	}
	defer svc.Close()
	w := c.out
	if c.path != "" {
		fh, err := os.Create(c.path)
		if err != nil {
			return fail(err)
		}
		defer fh.Close()
		w = fh
	}
	if err := svc.ExportYAML(ctx, w); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
