package service

import "cryptocheck/internal/models"

// Reconciler сводит вердикты младшего и старшего таймфреймов.
type Reconciler struct {
	// AcceptLongOnlyAtMax — принять вердикт старшего ТФ без младшего,
	// если сработали все условия. Такой вердикт помечается Unconfirmed.
	AcceptLongOnlyAtMax bool
}

// Reconcile не возвращает направление, которого нет ни в одном из входов.
func (r Reconciler) Reconcile(short, long Verdict) Verdict {
	none := Verdict{Direction: models.DirectionNone, Pattern: long.Pattern}

	if long.Direction == models.DirectionNone {
		return none
	}
	if short.Direction == long.Direction {
		return long
	}
	if short.Direction == models.DirectionNone && r.AcceptLongOnlyAtMax && long.Confidence >= MaxConfidence {
		out := long
		out.Unconfirmed = true
		return out
	}
	return none
}
