package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/healthaudit/internal/audit"
	cfgpkg "github.com/KaramelBytes/healthaudit/internal/config"
	"github.com/KaramelBytes/healthaudit/internal/dataset"
	"github.com/KaramelBytes/healthaudit/internal/utils"
)

// commandEnv carries what every data command needs.
type commandEnv struct {
	cfg *cfgpkg.Global
	log *logrus.Logger
}

func newEnv(cmd *cobra.Command) (*commandEnv, error) {
	c, err := settings()
	if err != nil {
		return nil, err
	}
	l, err := newLogger(cmd, c)
	if err != nil {
		return nil, err
	}
	return &commandEnv{cfg: c, log: l}, nil
}

// pipeline builds the configured pipeline with the command logger attached.
func (e *commandEnv) pipeline() (audit.Pipeline, error) {
	p, err := e.cfg.Pipeline()
	if err != nil {
		return audit.Pipeline{}, err
	}
	p.Cleaner.Log = e.log
	return p, nil
}

// loadTable reads path as CSV/TSV or XLSX, choosing by extension.
func (e *commandEnv) loadTable(path string) (*dataset.Table, error) {
	opt := e.cfg.CSVOptions()
	var (
		t   *dataset.Table
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		t, err = dataset.ReadXLSXFile(path, opt, flagSheetName, flagSheetIdx)
	} else {
		t, err = dataset.ReadCSVFile(path, opt)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	e.log.WithFields(logrus.Fields{"file": path, "rows": t.Len(), "columns": t.Width()}).Debug("loaded table")
	return t, nil
}

// writeTable writes t as CSV to out, or to the command's stdout when out is empty.
// Numbers are written with the configured decimal separator so the file reads
// back unchanged under the same configuration.
func (e *commandEnv) writeTable(cmd *cobra.Command, t *dataset.Table, out string) error {
	opt := e.cfg.CSVOptions()
	if out == "" {
		return dataset.WriteCSV(cmd.OutOrStdout(), t, opt)
	}
	if dir := filepath.Dir(out); dir != "" {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := dataset.WriteCSVFile(out, t, opt); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d rows to %s\n", t.Len(), out)
	return nil
}

// outputFor resolves an explicit --output or derives one from the input name
// inside the configured output_dir.
func (e *commandEnv) outputFor(input, explicit, suffix string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	dir := e.cfg.OutputDir
	if dir != "" {
		var err error
		if dir, err = utils.ExpandHome(dir); err != nil {
			return "", err
		}
	}
	return utils.OutputPath(input, dir, suffix), nil
}

// cleanFirst runs the configured cleaner when the flag is set.
func (e *commandEnv) cleanFirst(t *dataset.Table, clean bool) (*dataset.Table, error) {
	if !clean {
		return t, nil
	}
	p, err := e.pipeline()
	if err != nil {
		return nil, err
	}
	return p.Cleaner.Clean(t)
}
