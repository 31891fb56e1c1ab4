package auth

import (
	"context"
	"crypto/subtle"

	"github.com/tinkertanker/bitvibe-extension/models"
)

// StudentStore is the slice of the repository the engine needs. The
// full database.Store satisfies it.
type StudentStore interface {
	FindStudentByHash(ctx context.Context, hash string) (*models.Student, error)
	FindClassroomByID(ctx context.Context, id uint) (*models.Classroom, error)
	ConsumeQuota(ctx context.Context, studentID uint, limit int) (bool, error)
}

// Principal is the admitted identity for one generation request.
type Principal struct {
	// Unmetered marks the static-token and open-mode principals: no
	// student row, no usage accounting.
	Unmetered bool

	StudentID    uint
	ClassroomID  uint
	RequestLimit int
}

// Engine decides, per request, whether a generation call may proceed.
// It is stateless; the only durable side effect of a successful
// admission is the usage increment inside ConsumeQuota.
type Engine struct {
	Store StudentStore

	// StaticToken, when non-empty, is an app-wide secret that admits
	// without metering. When set, anonymous requests are rejected.
	StaticToken string
}

func NewEngine(store StudentStore, staticToken string) *Engine {
	return &Engine{Store: store, StaticToken: staticToken}
}

// Authorize evaluates the three admission modes in fixed priority:
// static token, student token, open. A non-empty credential never falls
// through to open mode. On a student admission the quota is consumed
// here, before the provider call is dispatched, so a client that
// disconnects mid-generation still pays for the attempt.
func (e *Engine) Authorize(ctx context.Context, credential string) (*Principal, error) {
	if e.StaticToken != "" && credential != "" &&
		subtle.ConstantTimeCompare([]byte(credential), []byte(e.StaticToken)) == 1 {
		return &Principal{Unmetered: true}, nil
	}

	if credential != "" {
		return e.authorizeStudent(ctx, credential)
	}

	// Open mode: only when no static secret is configured at all.
	if e.StaticToken != "" {
		return nil, ErrUnauthorized
	}
	return &Principal{Unmetered: true}, nil
}

func (e *Engine) authorizeStudent(ctx context.Context, credential string) (*Principal, error) {
	student, err := e.Store.FindStudentByHash(ctx, HashToken(credential))
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrUnauthorized
	}
	if !student.Active {
		return nil, ErrForbidden
	}

	classroom, err := e.Store.FindClassroomByID(ctx, student.ClassroomID)
	if err != nil {
		return nil, err
	}
	if classroom == nil || !classroom.Active {
		return nil, ErrForbidden
	}

	// Atomic check-then-increment: at most RequestLimit admissions per
	// student, ever. A concurrent loser at the boundary is rate limited
	// rather than let one over.
	ok, err := e.Store.ConsumeQuota(ctx, student.ID, classroom.RequestLimit)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &RateLimitError{Limit: classroom.RequestLimit}
	}

	return &Principal{
		StudentID:    student.ID,
		ClassroomID:  classroom.ID,
		RequestLimit: classroom.RequestLimit,
	}, nil
}
