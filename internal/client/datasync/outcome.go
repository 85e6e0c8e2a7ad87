package datasync

import "github.com/atinyakov/JobScout/internal/models"

// Outcome tags how far a mutation is backed by the server.
type Outcome int

const (
	// Confirmed mutations were applied only after the server accepted them.
	Confirmed Outcome = iota + 1
	// OptimisticUnconfirmed mutations were applied locally without waiting
	// for, or regardless of, the server's answer.
	OptimisticUnconfirmed
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case OptimisticUnconfirmed:
		return "optimistic"
	}
	return "unknown"
}

// Result describes an applied source mutation.
type Result struct {
	Outcome Outcome
	// Source is the record after the mutation (zero for deletions).
	Source models.JobSource
}
