// labelconv converts label templates between JSON/YAML documents and
// printer payloads.
//
//	labelconv -i label.zpl -o label.yaml
//	labelconv -i label.json --to tpcl > label.tpcl
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/label-designer/backend/internal/driver"
	"github.com/label-designer/backend/internal/loader"
	"github.com/label-designer/backend/internal/logging"
	"github.com/label-designer/backend/internal/models"
	"github.com/spf13/pflag"
)

// exitError carries a process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "labelconv: %v\n", err)
		var coder *exitError
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var (
		input, output, to, name, legacyCharset, logLevel string
		dpi                                              int
		strict                                           bool
	)
	flags := pflag.NewFlagSet("labelconv", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&input, "input", "i", "", "input file (.json, .jsonc, .yaml, .yml, .tpcl, .zpl)")
	flags.StringVarP(&output, "output", "o", "", "output file; format follows the extension (default stdout)")
	flags.StringVar(&to, "to", "", "output format: json, yaml or a driver name (overrides the output extension)")
	flags.IntVar(&dpi, "dpi", models.DefaultDPI, "default resolution for dot-based protocols")
	flags.StringVar(&name, "name", "", "template name (defaults to the input file name)")
	flags.StringVar(&legacyCharset, "charset", "windows-1252", "charset for payloads that are not UTF-8")
	flags.BoolVar(&strict, "strict", false, "exit with status 2 when the input has problems")
	flags.StringVar(&logLevel, "log-level", "info", "log level")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if input == "" {
		return errors.New("--input is required")
	}
	if output == "" && to == "" {
		return errors.New("either --output or --to is required")
	}

	logger := logging.InitTo(stderr, "labelconv", logLevel)
	registry := driver.DefaultRegistry(dpi)
	l := loader.New(registry, legacyCharset)

	res, err := l.LoadFile(input)
	if err != nil {
		return err
	}
	for _, d := range res.Diagnostics {
		logger.Warn().Int("line", d.Line).Str("content", strings.TrimSpace(d.Content)).Msg(d.Reason)
	}
	if name != "" {
		res.Template.Name = name
	}

	data, err := encode(l, registry, res.Template, to, output)
	if err != nil {
		return err
	}

	if output == "" {
		if _, err := stdout.Write(data); err != nil {
			return err
		}
	} else if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	logger.Info().
		Str("input", input).
		Str("from", res.Format).
		Int("elements", len(res.Template.Elements)).
		Int("diagnostics", len(res.Diagnostics)).
		Msg("converted")

	if strict && len(res.Diagnostics) > 0 {
		return &exitError{code: 2, err: fmt.Errorf("%d problems in %s", len(res.Diagnostics), input)}
	}
	return nil
}

// encode renders t by --to when given, else by the output extension.
// Coordinates are protocol units, so payloads are only rendered by the
// template's own protocol.
func encode(l *loader.Loader, registry *driver.Registry, t *models.LabelTemplate, to, output string) ([]byte, error) {
	switch strings.ToLower(to) {
	case "":
	case loader.FormatJSON:
		return loader.EncodeJSON(t)
	case loader.FormatYAML:
		return loader.EncodeYAML(t)
	default:
		d, err := registry.GetDriverByName(to)
		if err != nil {
			return nil, err
		}
		if err := sameProtocol(t, d); err != nil {
			return nil, err
		}
		return loader.Render(d, t)
	}

	if d, err := registry.FindDriver(output); err == nil {
		if err := sameProtocol(t, d); err != nil {
			return nil, err
		}
	}
	return l.Export(t, output)
}

func sameProtocol(t *models.LabelTemplate, d driver.Driver) error {
	if t.Protocol != "" && t.Protocol != d.Protocol() {
		return fmt.Errorf("a %s template cannot be rendered as %s", t.Protocol, d.Name())
	}
	return nil
}
