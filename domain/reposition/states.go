package reposition

import (
	"garmentflow/domain"
	"garmentflow/domain/state"
)

var (
	StatePendiente  = state.State{Name: string(domain.StatusPendiente), Category: state.InBacklog}
	StateAprobado   = state.State{Name: string(domain.StatusAprobado), Category: state.InProcess}
	StateRechazado  = state.State{Name: string(domain.StatusRechazado), Category: state.InBacklog}
	StateEnProceso  = state.State{Name: string(domain.StatusEnProceso), Category: state.InProcess}
	StateCompletado = state.State{Name: string(domain.StatusCompletado), Category: state.Done}
	StateEliminado  = state.State{Name: string(domain.StatusEliminado), Category: state.Done}
)

// LifecycleStateMachine holds the status transitions of a reposition. A decided request may be
// decided again. A completed request can still be deleted, eliminado has no way out.
var LifecycleStateMachine = buildLifecycleStateMachine()

func buildLifecycleStateMachine() *state.StateMachine {
	open := []state.State{StatePendiente, StateAprobado, StateRechazado, StateEnProceso}
	var transitions []state.Transition
	for _, from := range open {
		transitions = append(transitions,
			state.Transition{Name: "approve", From: from, To: StateAprobado},
			state.Transition{Name: "reject", From: from, To: StateRechazado},
			state.Transition{Name: "complete", From: from, To: StateCompletado},
			state.Transition{Name: "delete", From: from, To: StateEliminado},
		)
	}
	transitions = append(transitions, state.Transition{Name: "delete", From: StateCompletado, To: StateEliminado})
	return state.NewStateMachine(append(open, StateCompletado, StateEliminado), transitions)
}

func canTransit(from, to domain.RepositionStatus) bool {
	return LifecycleStateMachine.CanTransit(string(from), string(to))
}
