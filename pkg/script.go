package pkg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dialect selects the shell the rename scripts are written for.
type Dialect string

const (
	// DialectBatch produces Windows cmd.exe batch files using ren.
	DialectBatch Dialect = "batch"
	// DialectShell produces POSIX sh scripts using mv.
	DialectShell Dialect = "sh"
)

// Valid reports whether d is a known dialect.
func (d Dialect) Valid() bool {
	return d == DialectBatch || d == DialectShell
}

// DefaultScriptNames returns the forward and inverse script filenames for d.
func DefaultScriptNames(d Dialect) (forward, inverse string) {
	if d == DialectShell {
		return "rename_to_standard.sh", "restore_original_names.sh"
	}
	return "rename_to_standard.bat", "restore_original_names.bat"
}

// Scripts holds the rendered forward and inverse scripts.
type Scripts struct {
	Forward string
	Inverse string
}

// RenderScripts turns m into a forward script and its exact inverse.
// workDir is the directory the scripts change into before renaming; when
// empty they change into their own directory, which must then be the
// analyzed root.
func RenderScripts(m *Mapping, d Dialect, workDir string) (Scripts, error) {
	switch d {
	case DialectBatch:
		return renderBatch(m, workDir), nil
	case DialectShell:
		return renderShell(m, workDir), nil
	default:
		return Scripts{}, fmt.Errorf("unknown script dialect %q", d)
	}
}

func forwardSummary(m *Mapping) string {
	s := fmt.Sprintf("Done. Renamed %d files, skipped %d files already in standard format.", m.Renamed(), m.Skipped)
	if len(m.Failed) > 0 {
		s += fmt.Sprintf(" %d files could not be analyzed.", len(m.Failed))
	}
	return s
}

func inverseSummary(m *Mapping) string {
	return fmt.Sprintf("Done. Restored %d file names.", m.Renamed())
}

// batchQuote quotes a path for cmd.exe. Percent signs are doubled so they
// are not expanded as variables inside a batch file.
func batchQuote(p string) string {
	return `"` + strings.ReplaceAll(p, "%", "%%") + `"`
}

func batchPath(rel string) string {
	return strings.ReplaceAll(rel, "/", `\`)
}

func batchEcho(msg string) string {
	r := strings.NewReplacer("%", "%%", "^", "^^", "&", "^&", "|", "^|", "<", "^<", ">", "^>")
	return "echo " + r.Replace(msg)
}

func renderBatch(m *Mapping, workDir string) Scripts {
	header := func(title string) []string {
		lines := []string{"@echo off", "chcp 65001 >nul"}
		if workDir == "" {
			lines = append(lines, `cd /d "%~dp0"`)
		} else {
			lines = append(lines, "cd /d "+batchQuote(filepath.FromSlash(workDir)))
		}
		return append(lines, batchEcho(title))
	}

	forward := header("Renaming files...")
	inverse := header("Restoring original file names...")
	for _, e := range m.Entries {
		forward = append(forward, "ren "+batchQuote(batchPath(e.OriginalPath()))+" "+batchQuote(e.NewName))
	}
	for _, p := range m.Inverse() {
		inverse = append(inverse, "ren "+batchQuote(batchPath(p.Path))+" "+batchQuote(p.Name))
	}
	forward = append(forward, batchEcho(forwardSummary(m)), "pause")
	inverse = append(inverse, batchEcho(inverseSummary(m)), "pause")

	return Scripts{
		Forward: strings.Join(forward, "\r\n") + "\r\n",
		Inverse: strings.Join(inverse, "\r\n") + "\r\n",
	}
}

// shellQuote single-quotes s for POSIX sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func renderShell(m *Mapping, workDir string) Scripts {
	header := func(title string) []string {
		lines := []string{"#!/bin/sh", "set -e"}
		if workDir == "" {
			lines = append(lines, `cd "$(dirname "$0")"`)
		} else {
			lines = append(lines, "cd "+shellQuote(workDir))
		}
		return append(lines, "echo "+shellQuote(title))
	}

	forward := header("Renaming files...")
	inverse := header("Restoring original file names...")
	for _, e := range m.Entries {
		forward = append(forward, "mv -- "+shellQuote(e.OriginalPath())+" "+shellQuote(e.NewPath()))
	}
	for _, p := range m.Inverse() {
		inverse = append(inverse, "mv -- "+shellQuote(p.Path)+" "+shellQuote(dirJoin(p.Path, p.Name)))
	}
	forward = append(forward, "echo "+shellQuote(forwardSummary(m)))
	inverse = append(inverse, "echo "+shellQuote(inverseSummary(m)))

	return Scripts{
		Forward: strings.Join(forward, "\n") + "\n",
		Inverse: strings.Join(inverse, "\n") + "\n",
	}
}

// dirJoin replaces the last element of the slash-separated path p with name.
func dirJoin(p, name string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i+1] + name
	}
	return name
}

// WriteScripts writes the scripts into dir under the given names. Shell
// scripts are made executable.
func WriteScripts(dir, forwardName, inverseName string, s Scripts, d Dialect) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create script directory %s: %w", dir, err)
	}
	mode := os.FileMode(0644)
	if d == DialectShell {
		mode = 0755
	}
	if err := writeFileSynced(filepath.Join(dir, forwardName), s.Forward, mode); err != nil {
		return err
	}
	return writeFileSynced(filepath.Join(dir, inverseName), s.Inverse, mode)
}

func writeFileSynced(path, content string, mode os.FileMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create script file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("failed to write script file %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync script file %s: %w", path, err)
	}
	return nil
}
