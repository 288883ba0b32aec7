package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	errs "github.com/matzehuels/stackforge/pkg/errors"
)

// converter is the librsvg command line tool used for raster and PDF output.
var converter = "rsvg-convert"

// ToPDF converts an SVG document to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "pdf")
}

// ToPNG converts an SVG document to PNG. A scale of 2 doubles the
// resolution, which keeps small node labels legible.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "png scale must be positive, got %v", scale)
	}
	return convert(svg, "png", "--zoom", fmt.Sprintf("%.2f", scale))
}

// Available reports whether PDF and PNG output can be produced on this host.
func Available() bool {
	_, err := exec.LookPath(converter)
	return err == nil
}

func convert(svg []byte, format string, extra ...string) ([]byte, error) {
	path, err := exec.LookPath(converter)
	if err != nil {
		return nil, errs.New(errs.ErrCodeUnsupported,
			"%s output needs %s from librsvg (brew install librsvg, apt install librsvg2-bin)", format, converter)
	}

	cmd := exec.Command(path, append([]string{"--format", format}, extra...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "%s: %s", converter, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
