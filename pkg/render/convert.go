package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/themis/pkg/errors"
)

// Format is an output format of [Converter.Convert].
type Format string

// Formats rsvg-convert produces from SVG.
const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// DefaultBinary is the converter looked up on PATH when [Converter.Binary]
// is empty.
const DefaultBinary = "rsvg-convert"

const installHint = "install librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux)"

// Converter turns SVG diagrams into PDF or PNG with rsvg-convert. The zero
// value uses rsvg-convert from PATH with no timeout of its own.
type Converter struct {
	// Binary is the executable name or path.
	Binary string

	// Timeout bounds one conversion in addition to the caller's context.
	Timeout time.Duration
}

func (c Converter) binary() string {
	if c.Binary == "" {
		return DefaultBinary
	}
	return c.Binary
}

// Available reports whether the converter executable can be found.
func (c Converter) Available() bool {
	_, err := exec.LookPath(c.binary())
	return err == nil
}

// Convert renders svg as format. scale only applies to PNG; values of zero
// or below mean 1.
//
// A missing executable yields an UNSUPPORTED error, an unknown format
// INVALID_FORMAT.
func (c Converter) Convert(ctx context.Context, svg []byte, format Format, scale float64) ([]byte, error) {
	args := []string{"-f", string(format)}
	switch format {
	case FormatPDF:
	case FormatPNG:
		if scale <= 0 {
			scale = 1
		}
		args = append(args, "-z", strconv.FormatFloat(scale, 'f', 2, 64))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "cannot convert SVG to %q (want pdf or png)", format)
	}

	bin, err := exec.LookPath(c.binary())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "%s output needs %s; %s", format, c.binary(), installHint)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", c.binary(), msg)
	}
	return out.Bytes(), nil
}
