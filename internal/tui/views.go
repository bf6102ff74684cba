package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"procman/internal/alert"
	"procman/internal/app"
	"procman/internal/engine"
	"procman/internal/history"
)

var (
	activeTab   = lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1)
	inactiveTab = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderTabs(current view) string {
	tabs := make([]string, 0, viewCount)
	for v := view(0); v < viewCount; v++ {
		style := inactiveTab
		if v == current {
			style = activeTab
		}
		tabs = append(tabs, style.Render(v.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func renderAlerts(alerts []alert.Alert) string {
	if len(alerts) == 0 {
		return "No process is over the alert thresholds.\n"
	}
	var b strings.Builder
	for _, a := range alerts {
		line := fmt.Sprintf("pid=%-7d %-24s cpu=%6.1f%% mem=%10d KB  [%s]",
			a.PID, a.Name, a.CPUPercent, a.MemoryKB, a.TriggeredBy)
		b.WriteString(warnStyle.Render(line))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderHistory(entries []history.Entry) string {
	if len(entries) == 0 {
		return "No history yet.\n"
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Timestamp.Local().Format(time.TimeOnly))
		b.WriteString("  ")
		b.WriteString(fmt.Sprintf("%-18s pid=%-7d %s", e.Action, e.TargetPID, e.Outcome))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderStats(st app.Stats) string {
	sys := st.System
	summary := fmt.Sprintf(
		"memory  %s  %d / %d KB\nswap    %s  %d / %d KB\ncpu     %s  %d cores\nuptime  %s",
		bar(sys.MemoryPercent(), 20), sys.UsedMemoryKB, sys.TotalMemoryKB,
		bar(sys.SwapPercent(), 20), sys.UsedSwapKB, sys.TotalSwapKB,
		bar(sys.CPUPercent, 20), sys.CPUCores,
		(time.Duration(sys.UptimeSeconds) * time.Second).String(),
	)

	var b strings.Builder
	b.WriteString(boxStyle.Render(summary))
	b.WriteByte('\n')
	b.WriteString("cpu %    ")
	b.WriteString(sparkline(st.Samples, func(s engine.Sample) float64 { return s.CPUPercent }))
	b.WriteByte('\n')
	b.WriteString("memory % ")
	b.WriteString(sparkline(st.Samples, func(s engine.Sample) float64 { return s.MemoryPercent }))
	b.WriteByte('\n')
	return b.String()
}

func bar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	return fmt.Sprintf("[%s%s] %5.1f%%", strings.Repeat("█", filled), strings.Repeat("·", width-filled), pct)
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func sparkline(samples []engine.Sample, value func(engine.Sample) float64) string {
	if len(samples) == 0 {
		return "-"
	}
	out := make([]rune, 0, len(samples))
	for _, s := range samples {
		v := value(s)
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		idx := int(v / 100 * float64(len(sparkRunes)-1))
		out = append(out, sparkRunes[idx])
	}
	return string(out)
}
