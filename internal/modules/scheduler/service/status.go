package service

import (
	"fmt"
	"strings"
	"time"

	alerts "cryptocheck/internal/modules/alerts/service"
	health "cryptocheck/internal/modules/health/service"
)

// Status собирает ответ на /status.
type Status struct {
	tracker *alerts.Tracker
	state   *health.State
	quiet   QuietHours
}

func NewStatus(tracker *alerts.Tracker, state *health.State, quiet QuietHours) *Status {
	return &Status{tracker: tracker, state: state, quiet: quiet}
}

func (s *Status) StatusText(now time.Time) string {
	var b strings.Builder
	b.WriteString("📊 *Статус*\n")
	fmt.Fprintf(&b, "Аптайм: `%s`\n", formatAge(s.state.Uptime()))
	if last := s.state.LastCycle(); !last.IsZero() {
		fmt.Fprintf(&b, "Последний цикл: `%s` назад\n", formatAge(now.Sub(last)))
	} else {
		b.WriteString("Последний цикл: ещё не было\n")
	}
	fmt.Fprintf(&b, "Символов: `%d`\n", s.state.Symbols())
	if s.quiet.Contains(now) {
		b.WriteString("😴 Тихие часы\n")
	}

	if daily := s.tracker.Daily(); daily != nil {
		day, c := daily.Current(now)
		fmt.Fprintf(&b, "Сегодня (%s): сигналов `%d`, TP2 `%d`, стопов `%d`\n", day, c.Emitted, c.Wins, c.Losses)
	}

	open := s.tracker.Snapshot()
	if len(open) == 0 {
		b.WriteString("📭 Открытых алертов нет")
		return b.String()
	}
	fmt.Fprintf(&b, "Открытые алерты (%d):\n", len(open))
	for _, a := range open {
		fmt.Fprintf(&b, "- `%s` %s %s вход `%s` цена `%s`\n",
			a.Symbol, strings.ToUpper(string(a.Direction)), a.Status, price(a.Entry), price(a.LastPrice))
	}
	return strings.TrimRight(b.String(), "\n")
}
