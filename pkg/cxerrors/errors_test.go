package cxerrors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"complexity-engine/pkg/cxerrors"
)

func TestErrorRendersContext(t *testing.T) {
	err := cxerrors.NewResolutionFailure("quick_sort", "worst", "recursion_tree", "no closed form")
	assert.Equal(t,
		"[error] RESOLUTION_FAILED: no closed form (algorithm: quick_sort, case: worst, technique: recursion_tree)",
		err.Error())
}

func TestNotApplicableIsRecoverable(t *testing.T) {
	err := cxerrors.NewNotApplicable("master_theorem", "regularity fails")
	assert.True(t, err.Recoverable)
	assert.True(t, cxerrors.IsNotApplicable(err))
	assert.False(t, cxerrors.IsValidation(err))
}

func TestValidationErrorIsFatal(t *testing.T) {
	err := cxerrors.NewValidationError("x", "missing terms")
	assert.False(t, err.Recoverable)
	assert.Equal(t, cxerrors.SeverityFatal, err.Severity)
	assert.True(t, cxerrors.IsValidation(err))
}

func TestInconsistentCasesIsWarning(t *testing.T) {
	err := cxerrors.NewInconsistentCases("linear_search", "case ordering violated")
	assert.Equal(t, cxerrors.CodeInconsistentCases, err.Code)
	assert.Equal(t, cxerrors.SeverityWarning, err.Severity)
	assert.True(t, err.Recoverable)
	assert.Contains(t, err.Error(), "linear_search")
}

func TestCacheUnavailableIsWarning(t *testing.T) {
	err := cxerrors.NewCacheUnavailable("lookup failed: connection refused")
	assert.Equal(t, cxerrors.CodeCacheUnavailable, err.Code)
	assert.Equal(t, cxerrors.SeverityWarning, err.Severity)
	assert.True(t, err.Recoverable)
}

func TestIsNotApplicableThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("solving failed: %w", cxerrors.NewNotApplicable("substitution", "branching"))
	assert.True(t, cxerrors.IsNotApplicable(wrapped))
}
