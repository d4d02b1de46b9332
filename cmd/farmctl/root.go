package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/smartfarm/farmstore"
	"github.com/smartfarm/farmstore/farm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	v          *viper.Viper
	configFile string

	root   *cobra.Command
	cfg    *config
	logger *slog.Logger
	svc    *farm.Service
}

func newApp() *app {
	a := &app{v: newViper()}

	root := &cobra.Command{
		Use:           "farmctl",
		Short:         "farmctl manages crops, tasks and expenses of a farm",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	pf.String("db", defaultDBPath, "database file")
	pf.StringP("output", "o", defaultOutput, "output format: text, json or yaml")
	pf.BoolP("verbose", "v", false, "log every database operation")
	pf.Bool("legacy-month-window", false, "use year*10000+month*100+day month boundaries in monthly reports")
	must(a.v.BindPFlag(cfgKeyDBPath, pf.Lookup("db")))
	must(a.v.BindPFlag(cfgKeyOutput, pf.Lookup("output")))
	must(a.v.BindPFlag(cfgKeyVerbose, pf.Lookup("verbose")))
	must(a.v.BindPFlag(cfgKeyLegacyMonthWindow, pf.Lookup("legacy-month-window")))

	root.AddCommand(
		newCropCmd(a),
		newTaskCmd(a),
		newExpenseCmd(a),
		newBudgetCmd(a),
		newRotationCmd(a),
		newCheckCmd(a),
		newDumpCmd(a),
	)
	a.root = root
	return a
}

// execute runs the command line and closes the database afterwards, whether
// or not the command succeeded.
func (a *app) execute(args []string) error {
	a.root.SetArgs(args)
	err := a.root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	dbOpt := farmstore.Options{
		Verbose: cfg.Verbose,
		Logf: func(format string, args ...any) {
			a.logger.Debug(fmt.Sprintf(format, args...))
		},
	}
	svc, err := farm.Open(cfg.DBPath, dbOpt, farm.Options{
		Logger:            a.logger,
		LegacyMonthWindow: cfg.LegacyMonthWindow,
	})
	if err != nil {
		return err
	}
	a.svc = svc
	a.logger.Debug("database opened", "path", cfg.DBPath, "instance", svc.DB().InstanceID())
	return nil
}

func (a *app) close() error {
	if a.svc == nil {
		return nil
	}
	err := a.svc.Close()
	a.svc = nil
	return err
}

// usageError marks mistakes in the command line rather than failures of the
// database.
type usageError struct {
	msg string
}

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func (e *usageError) Error() string {
	return e.msg
}

func exitCode(err error) int {
	var ue *usageError
	var iae *farm.InvalidArgumentError
	switch {
	case errors.As(err, &ue), errors.As(err, &iae), errors.Is(err, farm.ErrNotFound):
		return exitUserError
	default:
		return exitSysError
	}
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, usageErrorf("invalid id %q", s)
	}
	return id, nil
}

// parseCropRef parses a crop id as stored on tasks and expenses, where 0 is a
// valid value.
func parseCropRef(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, usageErrorf("invalid crop id %q", s)
	}
	return id, nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
