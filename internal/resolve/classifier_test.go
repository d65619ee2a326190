package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"complexity-engine/internal/resolve"
	"complexity-engine/pkg/complexity"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		profile resolve.StructuralProfile
		want    complexity.AlgorithmType
	}{
		{"no calls, no loops", resolve.StructuralProfile{}, complexity.TypeIterative},
		{"loops only", resolve.StructuralProfile{MaxLoopNesting: 2}, complexity.TypeIterative},
		{"calls only", resolve.StructuralProfile{RecursiveCalls: 2}, complexity.TypeRecursive},
		{"calls and loops", resolve.StructuralProfile{RecursiveCalls: 1, MaxLoopNesting: 1}, complexity.TypeHybrid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolve.Classify(tt.profile))
		})
	}
}

func TestHasDifferentCasesDefaultsToUnified(t *testing.T) {
	assert.False(t, resolve.HasDifferentCases(resolve.StructuralProfile{
		RecursiveCalls: 2,
		MaxLoopNesting: 3,
	}))
}

func TestHasDifferentCasesOnStructuralSignals(t *testing.T) {
	assert.True(t, resolve.HasDifferentCases(resolve.StructuralProfile{DataDependentExit: true}))
	assert.True(t, resolve.HasDifferentCases(resolve.StructuralProfile{ConditionalRecursion: true}))
	assert.True(t, resolve.HasDifferentCases(resolve.StructuralProfile{EarlySearchExit: true}))
}
