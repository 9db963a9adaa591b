package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeValidationFailed = "SITES_COMMAND_VALIDATION_FAILED"
	codeContextCanceled  = "SITES_COMMAND_CANCELED"
	codeContextTimeout   = "SITES_COMMAND_TIMEOUT"
	codeExecutionFailed  = "SITES_COMMAND_EXECUTION_FAILED"
)

// wrapError normalizes handler failures into categorized errors. Errors that
// already carry a category pass through untouched so domain wrapping wins.
func wrapError(err error, category goerrors.Category, code, msg string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, msg).WithTextCode(code)
}

func wrapValidationError(err error) error {
	return wrapError(err, goerrors.CategoryValidation, codeValidationFailed, "command validation failed")
}

func wrapContextError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return wrapError(err, goerrors.CategoryCommand, codeContextCanceled, "command canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return wrapError(err, goerrors.CategoryCommand, codeContextTimeout, "command deadline exceeded")
	default:
		return wrapError(err, goerrors.CategoryCommand, codeExecutionFailed, "command context error")
	}
}

func wrapExecuteError(err error) error {
	return wrapError(err, goerrors.CategoryCommand, codeExecutionFailed, "command execution failed")
}
