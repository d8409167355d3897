package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planacad/backend/core"
)

func TestStatePath(t *testing.T) {
	in := SubmitInput{
		PeriodName:  "2025-2026",
		AreaCode:    "MAT",
		Course:      "Octavo A",
		SubjectName: "Matematicas",
	}

	dir, name, err := statePath(42, 7, in, StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, "uploads/2025-2026/MAT/Octavo A/Matematicas", dir)
	assert.Equal(t, "42_7_Matematicas_entregado.pdf", name)
}

func TestStatePathRejectsUnsafeComponents(t *testing.T) {
	base := SubmitInput{
		PeriodName:  "2025-2026",
		AreaCode:    "MAT",
		Course:      "Octavo A",
		SubjectName: "Matematicas",
	}

	tests := []struct {
		name   string
		mutate func(in *SubmitInput)
	}{
		{"slash in period", func(in *SubmitInput) { in.PeriodName = "2025/2026" }},
		{"backslash in area", func(in *SubmitInput) { in.AreaCode = `MAT\..` }},
		{"dotdot course", func(in *SubmitInput) { in.Course = ".." }},
		{"embedded dotdot", func(in *SubmitInput) { in.SubjectName = "Mate..maticas" }},
		{"null byte", func(in *SubmitInput) { in.SubjectName = "Mate\x00maticas" }},
		{"empty subject", func(in *SubmitInput) { in.SubjectName = "   " }},
		{"dot only", func(in *SubmitInput) { in.Course = "." }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)

			_, _, err := statePath(1, 1, in, StatusDelivered)
			require.Error(t, err)
			var vErr *core.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestDirChain(t *testing.T) {
	chain := dirChain("uploads/2025-2026/MAT/Octavo A/Matematicas")
	assert.Equal(t, []string{
		"uploads",
		"uploads/2025-2026",
		"uploads/2025-2026/MAT",
		"uploads/2025-2026/MAT/Octavo A",
		"uploads/2025-2026/MAT/Octavo A/Matematicas",
	}, chain)
}
