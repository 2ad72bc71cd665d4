package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alien67x6/mt5-monitoring-API/internal/correlation"
	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
)

// NoCrossoversMessage is the reply for a cycle that raised nothing.
const NoCrossoversMessage = "No crossovers detected."

// AlertMessage is the canonical alert text for an instrument.
func AlertMessage(instrument string) string {
	return fmt.Sprintf("🚀 ALERT on %s: full crossover detected (price + averages).", instrument)
}

func formatPrice(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(5)
}

// FormatAlert renders an alert as plain text for log and WhatsApp delivery.
func FormatAlert(a model.Alert) string {
	var b strings.Builder
	b.WriteString(a.Message)
	b.WriteString(fmt.Sprintf("\nClose: %s | %s | confirmed %s after price crossover",
		formatPrice(a.Close), a.Direction, a.Elapsed.Round(time.Second)))
	return b.String()
}

// FormatTelegram renders an alert as Telegram HTML.
func FormatTelegram(a model.Alert) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b>\n\n", html.EscapeString(a.Message)))
	b.WriteString(fmt.Sprintf("Close: <code>%s</code>\n", formatPrice(a.Close)))
	b.WriteString(fmt.Sprintf("Direction: %s\n", a.Direction))
	b.WriteString(fmt.Sprintf("Window: %s\n", a.Elapsed.Round(time.Second)))
	b.WriteString(fmt.Sprintf("Time: %s UTC", a.FiredAt.UTC().Format("2006-01-02 15:04:05")))
	return b.String()
}

// FormatCycle summarises the alerts of one on-demand cycle.
func FormatCycle(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return NoCrossoversMessage
	}
	lines := make([]string, len(alerts))
	for i, a := range alerts {
		lines[i] = html.EscapeString(a.Message)
	}
	return strings.Join(lines, "\n")
}

// FormatStatus lists how many unconfirmed price crossovers each instrument holds.
func FormatStatus(sizes []correlation.Size, capacity int) string {
	var b strings.Builder
	b.WriteString("📦 <b>Crossover monitor status</b>\n\n")
	for _, s := range sizes {
		b.WriteString(fmt.Sprintf("%s: %d/%d pending price crossovers\n", s.Instrument, s.Len, capacity))
	}
	return b.String()
}
