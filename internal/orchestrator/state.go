package orchestrator

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Orderline/internal/domain"
)

// Phase — фаза обработки заказа внутри workflow.
type Phase string

// Фазы workflow. Порядок фиксирован:
// Processing → Branches → Merging → Persisting → Completed/Failed.
const (
	PhaseProcessing Phase = "PROCESSING"
	PhaseBranches   Phase = "BRANCHES"
	PhaseMerging    Phase = "MERGING"
	PhasePersisting Phase = "PERSISTING"
	PhaseCompleted  Phase = "COMPLETED"
	PhaseFailed     Phase = "FAILED"
)

// RunState — состояние обработки одного сабмита в памяти.
//
// RunState создаётся когда Orchestrator начинает обработку сабмита
// и удаляется когда сабмит финализирован (COMPLETED/FAILED).
type RunState struct {
	// Submission — данные сабмита из БД.
	Submission *domain.Submission

	// phase — текущая фаза workflow.
	phase Phase

	// startedAt — момент начала обработки.
	startedAt time.Time

	// mu — мьютекс для потокобезопасного доступа.
	mu sync.RWMutex
}

// NewRunState создаёт новый RunState.
func NewRunState(sub *domain.Submission) *RunState {
	return &RunState{
		Submission: sub,
		phase:      PhaseProcessing,
		startedAt:  time.Now(),
	}
}

// SubmissionID возвращает ID сабмита.
func (s *RunState) SubmissionID() uuid.UUID {
	return s.Submission.ID
}

// SetPhase переводит state в указанную фазу.
// Безопасен для nil receiver: Executor может работать без трекинга фаз.
func (s *RunState) SetPhase(p Phase) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
}

// Phase возвращает текущую фазу.
func (s *RunState) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// RunStats — срез состояния активной обработки.
type RunStats struct {
	SubmissionID uuid.UUID
	OrderID      string
	Phase        Phase
	Elapsed      time.Duration
}

// Stats возвращает статистику обработки.
func (s *RunState) Stats() RunStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RunStats{
		SubmissionID: s.Submission.ID,
		OrderID:      s.Submission.OrderID,
		Phase:        s.phase,
		Elapsed:      time.Since(s.startedAt),
	}
}
