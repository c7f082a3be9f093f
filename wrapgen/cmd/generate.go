package cmd

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sarchlab/wrapgen/design"
	"github.com/sarchlab/wrapgen/errs"
	"github.com/sarchlab/wrapgen/ir"
	"github.com/sarchlab/wrapgen/recording"
	"github.com/sarchlab/wrapgen/wrapper"
)

// generateOptions are the inputs of one generation run. kernelDefaulted is
// set when --kernel was not given.
type generateOptions struct {
	funcFile        string
	refFile         string
	kernelFile      string
	kernelDefaulted bool
	name            string
	kind            wrapper.Kind
	outputDir       string
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().String("func", "", "design file defining the function signature")
	cmd.Flags().String("ref", "", "design file defining the reference function (default --func)")
	cmd.Flags().String("kernel", "", "design file defining the hardware module (default --ref)")
	cmd.Flags().String("name", "", "name of the function to wrap")
	cmd.Flags().String("type", "", "wrapper type: handshakeFIRRTL, calyx or std")

	_ = cmd.MarkFlagRequired("func")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
}

func readOptions(cmd *cobra.Command, needOutput bool) (generateOptions, error) {
	var opts generateOptions

	opts.funcFile, _ = cmd.Flags().GetString("func")
	opts.refFile, _ = cmd.Flags().GetString("ref")
	opts.kernelFile, _ = cmd.Flags().GetString("kernel")
	opts.name, _ = cmd.Flags().GetString("name")

	if opts.refFile == "" {
		opts.refFile = opts.funcFile
	}
	if !cmd.Flags().Changed("kernel") || opts.kernelFile == "" {
		opts.kernelFile = opts.refFile
		opts.kernelDefaulted = true
	}

	typeName, _ := cmd.Flags().GetString("type")
	kind, err := wrapper.ParseKind(typeName)
	if err != nil {
		return opts, err
	}
	opts.kind = kind

	if needOutput {
		opts.outputDir = stringFlagOrEnv(cmd, "output", envOutputDir)
		if opts.outputDir == "" {
			return opts, errors.New(
				"required flag \"output\" not set and $" + envOutputDir + " is empty")
		}
	}

	return opts, nil
}

// designCache loads every design file once, so that the function, reference
// and kernel can share a file, including stdin.
type designCache map[string]*design.File

func (c designCache) load(path string) (*design.File, error) {
	if f, ok := c[path]; ok {
		return f, nil
	}

	f, err := design.Load(path)
	if err != nil {
		return nil, err
	}
	c[path] = f

	return f, nil
}

// loadInputs looks up the function, reference and module named opts.name.
// A defaulted kernel file without that module leaves Module nil.
func loadInputs(opts generateOptions) (wrapper.Inputs, error) {
	var in wrapper.Inputs
	cache := designCache{}

	funcFile, err := cache.load(opts.funcFile)
	if err != nil {
		return in, err
	}
	if in.Signature, err = funcFile.Function(opts.name); err != nil {
		return in, err
	}

	refFile, err := cache.load(opts.refFile)
	if err != nil {
		return in, err
	}
	if in.Reference, err = refFile.Reference(opts.name); err != nil {
		return in, err
	}

	kernelFile, err := cache.load(opts.kernelFile)
	if err != nil {
		return in, err
	}

	m, err := kernelFile.Module(opts.name)
	switch {
	case err == nil:
		in.Module = m
	case errs.IsKind(err, errs.KindNotFound) && opts.kernelDefaulted:
		logger.Debug("no module in reference file",
			zap.String("symbol", opts.name),
			zap.String("path", opts.refFile))
	default:
		return in, err
	}

	return in, nil
}

func checkOutputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return errs.New(errs.PhasePersist, errs.KindIO).
			Detail("output directory '%s' does not exist", dir).
			Cause(err).
			Build()
	}
	return nil
}

// runGenerate generates the wrapper described by opts. With write set, the
// source is written to outputDir/name.cpp and that path is returned. Every
// run is recorded into rec unless it is nil.
func runGenerate(
	opts generateOptions,
	rec recording.Recorder,
	write bool,
) (path string, err error) {
	var in wrapper.Inputs

	if rec != nil {
		defer func() {
			rec.Record(newEntry(rec.NewRunID(), opts, in, path, err))
		}()
	}

	if write {
		if err = checkOutputDir(opts.outputDir); err != nil {
			return "", err
		}
	}

	in, err = loadInputs(opts)
	if err != nil {
		return "", err
	}

	src, err := wrapper.Render(opts.kind, in)
	if err != nil {
		return "", err
	}

	if !write {
		return "", nil
	}

	path = filepath.Join(opts.outputDir, opts.name+".cpp")
	if werr := os.WriteFile(path, src, 0o644); werr != nil {
		path = ""
		err = errs.New(errs.PhasePersist, errs.KindIO).
			Symbol(opts.name).
			Cause(errors.Wrap(werr, "writing wrapper")).
			Build()
		return "", err
	}

	logger.Info("wrote wrapper",
		zap.String("symbol", opts.name),
		zap.String("path", path))

	return path, nil
}

func newEntry(
	runID string,
	opts generateOptions,
	in wrapper.Inputs,
	path string,
	err error,
) recording.Entry {
	e := recording.Entry{
		RunID:     runID,
		Symbol:    opts.name,
		Backend:   opts.kind.String(),
		Output:    path,
		Succeeded: err == nil,
	}

	if err != nil {
		e.Error = err.Error()
	}

	if sig := in.Signature; sig != nil {
		e.NumArgs = sig.NumArgs()
		e.NumResults = sig.NumResults()

		for _, t := range sig.Args {
			if ir.IsMemRef(t) {
				e.NumMemories++
			}
		}
	}

	return e
}

func openRecorder(path string) (recording.Recorder, error) {
	if path == "" {
		return nil, nil
	}

	return recording.New(path)
}
