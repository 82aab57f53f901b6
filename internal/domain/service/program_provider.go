package service

import (
	"context"

	"loyalty/internal/domain/points"
)

// ProgramProvider supplies the currently active loyalty program
// configuration. The provider is an external collaborator; when nothing is
// configured it returns the documented defaults.
type ProgramProvider interface {
	ActiveProgram(ctx context.Context) (points.Program, error)
}
