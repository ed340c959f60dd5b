package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"samplefetch/internal/models"
	"samplefetch/internal/registry"
	"samplefetch/pkg/utils"
)

const (
	ExitOK      = 0
	ExitDetails = 1

	descriptionWidth = 49
)

var errNameRequired = errors.New("a sample name is required")

type Registry interface {
	BaseURL() string
	ListSamples(ctx context.Context) (models.Catalog, error)
	GetSample(ctx context.Context, name string) (*models.Sample, error)
	OpenArchive(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

type ExtractFunc func(r io.Reader, destination string) (*models.ExtractResult, error)

type Options struct {
	Name    string
	Folder  string
	Details bool
}

// Runner executes one list, details or download request. Failures are
// reported to Err and the logger and never escape Run.
type Runner struct {
	Registry   Registry
	Extract    ExtractFunc
	Out        io.Writer
	Err        io.Writer
	ErrorColor *color.Color
	Logger     zerolog.Logger
}

func New(reg Registry, logger zerolog.Logger) *Runner {
	return &Runner{
		Registry:   reg,
		Extract:    utils.ExtractArchive,
		Out:        os.Stdout,
		Err:        os.Stderr,
		ErrorColor: utils.NewErrorColor(os.Stderr),
		Logger:     logger,
	}
}

// Run returns the process exit code. Details mode always yields ExitDetails,
// whether or not the lookup succeeded.
func (r *Runner) Run(ctx context.Context, opts Options) int {
	switch {
	case opts.Details:
		r.Logger.Info().Str("sample", opts.Name).Str("registry", r.Registry.BaseURL()).Msg("Retrieving sample")
		r.Details(ctx, opts.Name)
		return ExitDetails
	case opts.Name == "":
		r.Logger.Info().Str("registry", r.Registry.BaseURL()).Msg("Retrieving samples")
		r.List(ctx)
	default:
		r.Logger.Info().Str("sample", opts.Name).Str("registry", r.Registry.BaseURL()).Msg("Downloading sample")
		r.Download(ctx, opts.Name, opts.Folder)
	}
	return ExitOK
}

func (r *Runner) List(ctx context.Context) error {
	registryURL := r.Registry.BaseURL()

	catalog, err := r.Registry.ListSamples(ctx)
	if err != nil {
		var decodeErr *registry.DecodeError
		if errors.As(err, &decodeErr) {
			return r.fail(err, fmt.Sprintf("Could not read the response for %s. %v", registryURL, err))
		}
		return r.fail(err, fmt.Sprintf("Could not retrieve samples from %s. %v", registryURL, err))
	}

	fmt.Fprintf(r.Out, "The available samples from %s\n", registryURL)
	fmt.Fprintf(r.Out, "%s\n\n", strings.Repeat("-", 45))

	const lineFormat = "%-20s  %-10s  %-50s\n"
	fmt.Fprintf(r.Out, lineFormat, "Sample Name", "Command", "Description")
	fmt.Fprintf(r.Out, "%s\n\n", strings.Repeat("-", 84))

	for _, s := range catalog {
		fmt.Fprintf(r.Out, lineFormat, s.Name, s.Command, utils.Truncate(s.Description, descriptionWidth))
	}

	fmt.Fprintf(r.Out, "\nTotal samples found: %d\n", len(catalog))

	r.Logger.Debug().Int("count", len(catalog)).Msg("Listed samples")
	return nil
}

func (r *Runner) Details(ctx context.Context, name string) error {
	sample, err := r.getSample(ctx, name)
	if err != nil {
		return err
	}

	const lineFormat = "%-10s %s\n"
	fmt.Fprintf(r.Out, lineFormat, "Name:", sample.Name)
	fmt.Fprintf(r.Out, lineFormat, "Command:", sample.Command)
	fmt.Fprintf(r.Out, lineFormat, "Url:", sample.URL)
	fmt.Fprintf(r.Out, lineFormat, "Details:", sample.Description)
	return nil
}

// Download extracts the named sample into folder, or into a directory named
// after the sample when folder is empty.
func (r *Runner) Download(ctx context.Context, name, folder string) error {
	sample, err := r.getSample(ctx, name)
	if err != nil {
		return err
	}

	destination := Destination(sample, name, folder)
	if folder == "" && sample.Name != "" && destination != sample.Name {
		r.Logger.Warn().Str("name", sample.Name).Str("destination", destination).Msg("Ignoring unsafe sample name for destination folder")
	}

	body, err := r.Registry.OpenArchive(ctx, sample.URL)
	if err != nil {
		return r.fail(err, fmt.Sprintf("Could not download sample '%s'. %v.", name, err))
	}
	defer body.Close()

	r.Logger.Debug().Str("url", sample.URL).Str("destination", destination).Msg("Extracting sample")

	result, err := r.Extract(body, destination)
	if err != nil {
		return r.fail(err, fmt.Sprintf("An error occurred while attempting to extract the %s sample. %v", sample.Name, err))
	}

	fmt.Fprintf(r.Out, "Extracted %d files (%s) to %s\n", result.FileCount, result.TotalSizeHuman, destination)

	r.Logger.Debug().
		Int("files", result.FileCount).
		Int("dirs", result.DirCount).
		Int64("bytes", result.TotalSizeBytes).
		Msg("Sample extracted")
	return nil
}

// Destination picks the extraction folder. A registry-supplied name is only
// used when it stays below the working directory.
func Destination(sample *models.Sample, name, folder string) string {
	if folder != "" {
		return folder
	}
	if isLocalName(sample.Name) {
		return sample.Name
	}
	return name
}

func isLocalName(name string) bool {
	if name == "" || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return false
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return false
		}
	}
	return true
}

func (r *Runner) getSample(ctx context.Context, name string) (*models.Sample, error) {
	if name == "" {
		return nil, r.fail(errNameRequired, "Could not retrieve sample. A sample name is required.")
	}

	sample, err := r.Registry.GetSample(ctx, name)
	if err != nil {
		var decodeErr *registry.DecodeError
		if errors.As(err, &decodeErr) {
			return nil, r.fail(err, fmt.Sprintf("Could not read the response for sample %s. %v", name, err))
		}
		return nil, r.fail(err, fmt.Sprintf("Could not retrieve sample %s. %v", name, err))
	}
	return sample, nil
}

func (r *Runner) fail(err error, message string) error {
	utils.PrintError(r.Err, r.ErrorColor, message)
	r.Logger.Error().Err(err).Msg(message)
	return err
}
