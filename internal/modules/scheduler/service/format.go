package service

import (
	"fmt"
	"strings"
	"time"

	"cryptocheck/internal/models"
	alerts "cryptocheck/internal/modules/alerts/service"
)

func price(v float64) string { return fmt.Sprintf("%.6f", v) }

func directionLabel(d models.Direction) string {
	if d == models.DirectionShort {
		return "🔴 *SELL / SHORT*"
	}
	return "🟢 *BUY / LONG*"
}

// FormatSignal — карточка нового сигнала.
func FormatSignal(sig models.Signal) string {
	var b strings.Builder
	b.WriteString("⚡️ *Сигнал*\n")
	fmt.Fprintf(&b, "*Symbol:* `%s`\n", sig.Symbol)
	fmt.Fprintf(&b, "*Signal:* %s\n", directionLabel(sig.Direction))
	fmt.Fprintf(&b, "*Timeframe:* `%s`\n", sig.Timeframe)
	fmt.Fprintf(&b, "*Entry:* `%s`\n", price(sig.Entry))
	fmt.Fprintf(&b, "*Stop Loss:* `%s`\n", price(sig.StopLoss))
	fmt.Fprintf(&b, "*Target 1:* `%s`\n", price(sig.TakeProfit1))
	fmt.Fprintf(&b, "*Target 2:* `%s`\n", price(sig.TakeProfit2))
	fmt.Fprintf(&b, "*Leverage Est.:* `%.2fX`\n", sig.RiskReward())
	fmt.Fprintf(&b, "*Confidence:* `%d/4`", sig.Confidence)
	if len(sig.Matched) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(sig.Matched, ", "))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "*Pattern:* `%s`\n", sig.Pattern)
	if sig.Unconfirmed {
		b.WriteString("⚠️ Не подтверждён младшим таймфреймом\n")
	}
	return b.String()
}

// FormatTransition — смена статуса алерта.
func FormatTransition(tr alerts.Transition) string {
	a := tr.Alert
	head := fmt.Sprintf("`%s` %s", a.Symbol, strings.ToUpper(string(a.Direction)))
	switch tr.To {
	case models.StatusTP1Hit:
		return fmt.Sprintf("🎯 %s: *TP1* достигнут по `%s`\nСледующая цель `%s`, стоп `%s`",
			head, price(tr.Price), price(a.TakeProfit2), price(a.StopLoss))
	case models.StatusClosedWin:
		return fmt.Sprintf("✅ %s: *TP2* достигнут по `%s`, алерт закрыт", head, price(tr.Price))
	case models.StatusClosedLoss:
		if tr.From == models.StatusTP1Hit {
			return fmt.Sprintf("🛑 %s: стоп после TP1 по `%s`, алерт закрыт", head, price(tr.Price))
		}
		return fmt.Sprintf("🛑 %s: *стоп* по `%s`, алерт закрыт", head, price(tr.Price))
	case models.StatusClosedSuperseded:
		return fmt.Sprintf("♻️ %s: заменён новым сигналом", head)
	default:
		return fmt.Sprintf("%s: %s → %s", head, tr.From, tr.To)
	}
}

// FormatSuperseded — предыдущий алерт закрыт новым сигналом.
func FormatSuperseded(a alerts.Alert) string {
	return FormatTransition(alerts.Transition{
		Alert: a,
		From:  models.StatusOpen,
		To:    models.StatusClosedSuperseded,
		Price: a.LastPrice,
	})
}

func FormatHeartbeat(symbols, open int) string {
	return fmt.Sprintf("🤖 Бот активен. Символов: %d, открытых алертов: %d", symbols, open)
}

func FormatDailyReport(r alerts.DayReport) string {
	return fmt.Sprintf("📅 *Итог за %s*\nСигналов: `%d`\nTP2: `%d`\nСтопов: `%d`",
		r.Day, r.Emitted, r.Wins, r.Losses)
}

func formatAge(d time.Duration) string {
	return d.Truncate(time.Second).String()
}
