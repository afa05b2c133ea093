package converter

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// DefaultImage pins the converter to a known-good release so upgrades are
// an explicit decision
const DefaultImage = "pdf2htmlex/pdf2htmlex:0.18.8.rc1-master-20200630-Ubuntu-bionic-x86_64"

// containerWorkDir is where the working directory is bind-mounted inside
// the converter container
const containerWorkDir = "/pdf"

// Converter turns an input document inside a working directory into an
// HTML document plus side-asset files written next to it
type Converter interface {
	// Convert runs the tool over workDir/inputFilename, writing
	// workDir/outputFilename and any side-assets into workDir
	Convert(ctx context.Context, workDir, inputFilename, outputFilename string, opts Options) error
	// IsAvailable reports whether the external tool can be invoked
	IsAvailable() bool
}

// PDF2HTMLConverter invokes pdf2htmlEX through a container runtime with
// the working directory bind-mounted, so output files land where the host
// process can read them. It never cleans up on failure; that is the
// pipeline's job.
type PDF2HTMLConverter struct {
	runtimeBin string
	image      string
	logger     *slog.Logger
}

// PDF2HTMLConfig holds configuration for the converter adapter
type PDF2HTMLConfig struct {
	RuntimeBin string // container runtime binary, e.g. "docker" or "podman"
	Image      string
	Logger     *slog.Logger
}

// NewPDF2HTMLConverter creates the adapter with defaults filled in
func NewPDF2HTMLConverter(config PDF2HTMLConfig) *PDF2HTMLConverter {
	if config.RuntimeBin == "" {
		config.RuntimeBin = "docker"
	}
	if config.Image == "" {
		config.Image = DefaultImage
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PDF2HTMLConverter{
		runtimeBin: config.RuntimeBin,
		image:      config.Image,
		logger:     config.Logger,
	}
}

// IsAvailable checks that the container runtime is on PATH
func (c *PDF2HTMLConverter) IsAvailable() bool {
	_, err := exec.LookPath(c.runtimeBin)
	return err == nil
}

// buildArgs assembles the full container invocation for one conversion
func (c *PDF2HTMLConverter) buildArgs(workDir, inputFilename, outputFilename string, opts Options) []string {
	args := []string{
		"run", "--rm",
		"-v", workDir + ":" + containerWorkDir,
		"-w", containerWorkDir,
		c.image,
	}
	args = append(args, embedArgs(opts)...)
	args = append(args, extraArgs(opts)...)
	args = append(args, inputFilename, outputFilename)
	return args
}

// Convert executes the tool and classifies its diagnostic stream. Benign
// warnings are logged; any other non-empty stderr is a hard failure even
// when the process exits zero.
func (c *PDF2HTMLConverter) Convert(ctx context.Context, workDir, inputFilename, outputFilename string, opts Options) error {
	if _, err := exec.LookPath(c.runtimeBin); err != nil {
		return &BinaryNotFoundError{Binary: c.runtimeBin}
	}

	args := c.buildArgs(workDir, inputFilename, outputFilename, opts)

	c.logger.InfoContext(ctx, "invoking converter",
		"runtime", c.runtimeBin,
		"image", c.image,
		"input", inputFilename,
		"output", outputFilename,
	)

	cmd := exec.CommandContext(ctx, c.runtimeBin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	warnings, fatal := classifyDiagnostics(stderr.String())
	for _, w := range warnings {
		c.logger.WarnContext(ctx, "converter diagnostic",
			"input", inputFilename,
			"line", w,
		)
	}

	if runErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return &ConversionError{
				OriginalError: ctx.Err(),
				Stderr:        stderr.String(),
				Path:          inputFilename,
				Hint:          "conversion timed out",
			}
		}
		return &ConversionError{
			OriginalError: runErr,
			Stderr:        stderr.String(),
			Path:          inputFilename,
		}
	}

	if len(fatal) > 0 {
		return &ConversionError{
			Stderr: strings.Join(fatal, "\n"),
			Path:   inputFilename,
			Hint:   "converter reported errors on its diagnostic stream",
		}
	}

	return nil
}
