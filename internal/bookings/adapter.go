package bookings

import (
	"context"

	"github.com/MyatBhoneThet/ai-receptionist/internal/conversation"
)

// TurnReconciler adapts the Reconciler to the narrow interface the dialogue
// core depends on, keeping the conversation package free of storage types.
type TurnReconciler struct {
	reconciler *Reconciler
}

// NewTurnReconciler wraps a reconciler for the turn service.
func NewTurnReconciler(r *Reconciler) *TurnReconciler {
	if r == nil {
		panic("bookings: reconciler required")
	}
	return &TurnReconciler{reconciler: r}
}

// Reconcile satisfies conversation.Reconciler.
func (a *TurnReconciler) Reconcile(ctx context.Context, sessionID string, intent conversation.Intent, draft conversation.Draft) error {
	_, err := a.reconciler.Reconcile(ctx, sessionID, intent, draft)
	return err
}
