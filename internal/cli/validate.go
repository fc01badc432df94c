package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/standin/internal/harness"
	"github.com/roach88/standin/internal/surface"
)

// ValidationError describes one invalid file.
type ValidationError struct {
	File    string `json:"file"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Surfaces int               `json:"surfaces"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <surfaces-or-scenarios-dir>",
		Short: "Validate surface and scenario files without running them",
		Long: `Validate CUE surface files and YAML scenario files.

Compiles every .cue file into surfaces and parses every .yaml/.yml file
as a scenario, reporting syntax and schema errors without executing
anything. Faster than run for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		_ = formatter.Error("E_NOT_FOUND", fmt.Sprintf("directory not found: %s", dir), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("directory not found: %s", dir))
	}

	result := ValidationResult{Valid: true}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		switch filepath.Ext(path) {
		case ".cue":
			formatter.VerboseLog("Validating surface file: %s", path)
			surfaces, err := surface.LoadFile(path)
			if err != nil {
				result.Errors = append(result.Errors, toValidationError(path, err))
				return nil
			}
			result.Surfaces += len(surfaces)
		case ".yaml", ".yml":
			formatter.VerboseLog("Validating scenario file: %s", path)
			if _, err := harness.LoadScenarioWithBasePath(path, dir); err != nil {
				result.Errors = append(result.Errors, ValidationError{
					File:    path,
					Message: err.Error(),
				})
			}
		}
		return nil
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to walk directory", err)
	}

	if len(result.Errors) > 0 {
		result.Valid = false
		return outputValidationErrors(formatter, result)
	}

	return outputValidateSuccess(formatter, result)
}

// toValidationError extracts position information from surface compile
// errors when available.
func toValidationError(path string, err error) ValidationError {
	var compileErr *surface.CompileError
	if errors.As(err, &compileErr) {
		line := 0
		if compileErr.Pos.IsValid() {
			line = compileErr.Pos.Line()
		}
		return ValidationError{
			File:    path,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Line:    line,
		}
	}
	return ValidationError{File: path, Message: err.Error()}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ All files valid (%d surface(s))\n", result.Surfaces)
	return nil
}

// outputValidationErrors outputs validation failures.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		_ = formatter.Error("E_VALIDATE", fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)), result.Errors)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", e.File, e.Line)
		} else {
			fmt.Fprintln(formatter.Writer, e.File)
		}
		fmt.Fprintf(formatter.Writer, "  %s\n\n", e.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
