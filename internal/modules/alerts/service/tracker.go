package service

import (
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"cryptocheck/internal/models"
)

type OpenPolicy string

const (
	// OpenSuppress — новый сигнал по символу с открытым алертом отклоняется.
	OpenSuppress OpenPolicy = "suppress"
	// OpenReplace — открытый алерт закрывается как superseded, открывается новый.
	OpenReplace OpenPolicy = "replace"
)

// Alert — отслеживаемый сигнал.
type Alert struct {
	models.Signal
	Status    models.AlertStatus
	OpenedAt  time.Time
	UpdatedAt time.Time
	LastPrice float64
}

// Transition — смена статуса алерта после очередной цены.
type Transition struct {
	Alert Alert
	From  models.AlertStatus
	To    models.AlertStatus
	Price float64
}

// Tracker — не больше одного алерта на символ. Закрытые алерты удаляются.
type Tracker struct {
	policy OpenPolicy
	daily  *Daily

	mu   sync.Mutex
	open map[string]*Alert
}

func NewTracker(policy OpenPolicy, daily *Daily) *Tracker {
	if policy == "" {
		policy = OpenSuppress
	}
	return &Tracker{
		policy: policy,
		daily:  daily,
		open:   make(map[string]*Alert),
	}
}

func (t *Tracker) Policy() OpenPolicy { return t.policy }
func (t *Tracker) Daily() *Daily      { return t.daily }

// Open ставит сигнал на сопровождение. При OpenReplace вторым значением
// возвращается закрытый предыдущий алерт.
func (t *Tracker) Open(sig models.Signal, now time.Time) (Alert, *Alert, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var superseded *Alert
	if prev, ok := t.open[sig.Symbol]; ok {
		if t.policy != OpenReplace {
			return Alert{}, nil, errors.Wrapf(models.ErrAlertOpen, "%s %s", sig.Symbol, prev.Direction)
		}
		old := *prev
		old.Status = models.StatusClosedSuperseded
		old.UpdatedAt = now
		superseded = &old
		delete(t.open, sig.Symbol)
	}

	a := &Alert{
		Signal:    sig,
		Status:    models.StatusOpen,
		OpenedAt:  now,
		UpdatedAt: now,
		LastPrice: sig.Entry,
	}
	t.open[sig.Symbol] = a
	if t.daily != nil {
		t.daily.IncEmitted(now)
	}
	return *a, superseded, nil
}

// Update применяет цену к алерту символа. ok=false: алерта нет или статус не изменился.
func (t *Tracker) Update(symbol string, price float64, now time.Time) (Transition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.open[symbol]
	if !ok {
		return Transition{}, false
	}
	a.LastPrice = price
	a.UpdatedAt = now

	long := a.Direction == models.DirectionLong
	reached := func(level float64) bool {
		if long {
			return price >= level
		}
		return price <= level
	}
	stopped := (long && price <= a.StopLoss) || (!long && price >= a.StopLoss)

	from := a.Status
	switch {
	case stopped:
		a.Status = models.StatusClosedLoss
		if t.daily != nil {
			t.daily.IncLoss(now)
		}
	case reached(a.TakeProfit2):
		a.Status = models.StatusClosedWin
		if t.daily != nil {
			t.daily.IncWin(now)
		}
	case reached(a.TakeProfit1) && a.Status == models.StatusOpen:
		a.Status = models.StatusTP1Hit
	default:
		return Transition{}, false
	}

	tr := Transition{Alert: *a, From: from, To: a.Status, Price: price}
	if a.Status.Closed() {
		delete(t.open, symbol)
	}
	return tr, true
}

func (t *Tracker) Has(symbol string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.open[symbol]
	return ok
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.open)
}

// Snapshot — копии открытых алертов, по символу.
func (t *Tracker) Snapshot() []Alert {
	t.mu.Lock()
	out := make([]Alert, 0, len(t.open))
	for _, a := range t.open {
		out = append(out, *a)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
