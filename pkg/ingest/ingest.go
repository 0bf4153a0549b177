// Package ingest loads report files into tables. Delimited text goes through
// the decoder and the text extractor; .xlsx workbooks go through the
// workbook extractor.
package ingest

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/rmarecon/pkg/constants"
	"github.com/agentstation/rmarecon/pkg/decode"
	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/logging"
	"github.com/agentstation/rmarecon/pkg/table"
)

// Format of a loaded source.
type Format string

// Input formats.
const (
	FormatText     Format = "text"
	FormatWorkbook Format = "xlsx"
)

// Source is one loaded report.
type Source struct {
	Name     string
	Format   Format
	Encoding decode.Name // empty for workbooks
	Table    *table.RawTable
}

// ReadFile loads the report at path.
func ReadFile(ctx context.Context, path string, opts ...table.Option) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	return Read(ctx, path, f, opts...)
}

// Read loads a report from r. name is used for format dispatch and error
// messages.
func Read(ctx context.Context, name string, r io.Reader, opts ...table.Option) (*Source, error) {
	data, err := io.ReadAll(io.LimitReader(r, constants.MaxInputBytes+1))
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}
	if len(data) > constants.MaxInputBytes {
		return nil, errors.NewValidationError("file", name,
			fmt.Sprintf("exceeds %d bytes", constants.MaxInputBytes))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}

	format := FormatText
	if isWorkbook(name) {
		format = FormatWorkbook
	}
	logger := logging.FromContext(logging.WithFields(logging.WithFile(ctx, filepath.Base(name)), map[string]any{
		"format": string(format),
		"bytes":  len(data),
	}))

	var src *Source
	if format == FormatWorkbook {
		src, err = readWorkbook(name, data, opts)
	} else {
		src, err = readText(name, data, opts)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load report")
		return nil, err
	}

	logger.Debug().
		Str("encoding", string(src.Encoding)).
		Int("header_line", src.Table.HeaderLine).
		Str("delimiter", delimiterName(src.Table.Delimiter)).
		Strs("headers", src.Table.Headers).
		Int("rows", src.Table.Len()).
		Msg("Loaded report")
	return src, nil
}

func readText(name string, data []byte, opts []table.Option) (*Source, error) {
	res, err := decode.Decode(data)
	if err != nil {
		var de *errors.DecodeError
		if stderrors.As(err, &de) {
			de.Path = name
		}
		return nil, err
	}
	return &Source{
		Name:     name,
		Format:   FormatText,
		Encoding: res.Encoding,
		Table:    table.Extract(res.Text, opts...),
	}, nil
}

func readWorkbook(name string, data []byte, opts []table.Option) (*Source, error) {
	t, err := table.ExtractWorkbook(bytes.NewReader(data), opts...)
	if err != nil {
		var pe *errors.ParseError
		if stderrors.As(err, &pe) {
			pe.File = name
		}
		return nil, err
	}
	return &Source{Name: name, Format: FormatWorkbook, Table: t}, nil
}

func isWorkbook(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

func delimiterName(d rune) string {
	switch d {
	case '\t':
		return "tab"
	case ',':
		return "comma"
	case 0:
		return "cells"
	}
	return string(d)
}

// ReadPair loads the GSX and SA reports concurrently. The first failure
// cancels the other load and is returned.
func ReadPair(ctx context.Context, gsxPath, saPath string, opts ...table.Option) (gsx, sa *Source, err error) {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		src, err := ReadFile(logging.WithSide(gCtx, "gsx"), gsxPath, opts...)
		if err != nil {
			return fmt.Errorf("loading GSX report: %w", err)
		}
		gsx = src
		return nil
	})
	g.Go(func() error {
		src, err := ReadFile(logging.WithSide(gCtx, "sa"), saPath, opts...)
		if err != nil {
			return fmt.Errorf("loading SA report: %w", err)
		}
		sa = src
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return gsx, sa, nil
}
