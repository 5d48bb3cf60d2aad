package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/timeline"
)

// Styles holds the lipgloss styles used by every view
type Styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Today   lipgloss.Style
	Tiers   map[domain.ColorTier]lipgloss.Style
	Tones   map[domain.Tone]lipgloss.Style
	Current lipgloss.Style
}

// DefaultStyles returns the terminal palette matching the dashboard color tiers
func DefaultStyles() *Styles {
	tier := func(bg, fg string) lipgloss.Style {
		return lipgloss.NewStyle().Background(lipgloss.Color(bg)).Foreground(lipgloss.Color(fg))
	}
	tone := func(fg string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
	}

	return &Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Today: lipgloss.NewStyle().Bold(true).Underline(true),
		Tiers: map[domain.ColorTier]lipgloss.Style{
			domain.TierNone:     lipgloss.NewStyle(),
			domain.TierOverdue:  tier("#DC2626", "#FFFFFF"),
			domain.TierPending:  tier("#FACC15", "#1E1E2E"),
			domain.TierLow:      tier("#BBF7D0", "#1E1E2E"),
			domain.TierMedium:   tier("#4ADE80", "#1E1E2E"),
			domain.TierHigh:     tier("#16A34A", "#FFFFFF"),
			domain.TierVeryHigh: tier("#14532D", "#FFFFFF"),
		},
		Tones: map[domain.Tone]lipgloss.Style{
			domain.ToneSuccess: tone("#A6E3A1"),
			domain.ToneWarning: tone("#F9E2AF"),
			domain.ToneDanger:  tone("#F38BA8"),
			domain.ToneInfo:    tone("#89B4FA"),
			domain.TonePrimary: tone("#7C3AED"),
			domain.ToneGray:    tone("#6C7086"),
			domain.ToneNeutral: tone("#CDD6F4"),
		},
		Current: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
	}
}

func (s *Styles) tone(t domain.Tone) lipgloss.Style {
	if style, ok := s.Tones[t]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// legendOrder is the order tiers appear in the calendar legend
var legendOrder = []domain.ColorTier{
	domain.TierOverdue, domain.TierPending, domain.TierLow,
	domain.TierMedium, domain.TierHigh, domain.TierVeryHigh,
}

// RenderCalendar draws the 6x7 heatmap grid with a legend and the month summary
func RenderCalendar(cal domain.FollowUpCalendar, s *Styles) string {
	var b strings.Builder

	title := fmt.Sprintf("%s %d", cal.Month.Month, cal.Month.Year)
	b.WriteString(s.Title.Render(title))
	b.WriteString("\n")

	headers := make([]string, len(domain.WeekdayHeaders))
	for i, h := range domain.WeekdayHeaders {
		headers[i] = fmt.Sprintf("%4s", h)
	}
	b.WriteString(s.Muted.Render(strings.Join(headers, "")))
	b.WriteString("\n")

	for row := 0; row < domain.CalendarCells/7; row++ {
		for col := 0; col < 7; col++ {
			cell := cal.Cells[row*7+col]
			label := fmt.Sprintf("%3d", cell.Date.Day())

			style := s.Tiers[cell.Tier]
			if !cell.InTargetMonth {
				style = s.Muted
			}
			if cell.IsToday {
				style = style.Inherit(s.Today)
			}
			b.WriteString(" ")
			b.WriteString(style.Render(label))
		}
		b.WriteString("\n")
	}

	legend := make([]string, 0, len(legendOrder))
	for _, tier := range legendOrder {
		legend = append(legend, s.Tiers[tier].Render(" "+string(tier)+" "))
	}
	b.WriteString("\n")
	b.WriteString(strings.Join(legend, " "))
	b.WriteString("\n")

	sum := cal.Summary
	fmt.Fprintf(&b, "total %d  completed %d  pending %d  overdue %d  busy days %d\n",
		sum.Total, sum.Completed, sum.Pending, sum.Overdue, sum.BusyDays)

	return b.String()
}

// RenderTimeline lists events newest first with relative dates against ref
func RenderTimeline(events []domain.TimelineEvent, ref time.Time, s *Styles) string {
	if len(events) == 0 {
		return s.Muted.Render("No activity recorded") + "\n"
	}

	var b strings.Builder
	loc := ref.Location()
	for _, ev := range events {
		when := fmt.Sprintf("%-12s %s", timeline.RelativeDate(ev.Timestamp, ref), timeline.ClockTime(ev.Timestamp.In(loc)))
		b.WriteString(s.Muted.Render(when))
		b.WriteString("  ")
		b.WriteString(s.tone(ev.Color).Bold(true).Render(ev.Title))
		if ev.StatusLabel != "" {
			b.WriteString("  ")
			b.WriteString(s.tone(ev.StatusColor).Render("[" + ev.StatusLabel + "]"))
		}
		b.WriteString("\n")

		if ev.Description != "" {
			b.WriteString("    ")
			b.WriteString(ev.Description)
			b.WriteString("\n")
		}
		for _, d := range ev.Details {
			b.WriteString("    ")
			b.WriteString(s.Muted.Render(d.Label + ":"))
			b.WriteString(" ")
			b.WriteString(d.Value)
			b.WriteString("\n")
		}
	}
	return b.String()
}

var trimesterTones = map[domain.Trimester]domain.Tone{
	domain.TrimesterFirst:  domain.ToneInfo,
	domain.TrimesterSecond: domain.TonePrimary,
	domain.TrimesterThird:  domain.ToneSuccess,
}

// RenderProgress draws the 40-week bar, the trimester bands and the check markers
func RenderProgress(snap domain.GestationalSnapshot, s *Styles) string {
	var b strings.Builder

	b.WriteString(s.Title.Render(fmt.Sprintf("Week %d of %d", snap.CurrentWeek, domain.PregnancyWeeks)))
	fmt.Fprintf(&b, "  %.1f%%  %d days remaining\n", snap.ProgressPercent, snap.DaysRemaining)
	fmt.Fprintf(&b, "LMP %s  EDD %s\n", snap.LMP.Format("2 Jan 2006"), snap.EDD.Format("2 Jan 2006"))

	marked := make(map[int]bool, len(snap.Markers))
	for _, m := range snap.Markers {
		marked[m.Week] = true
	}

	for week := 1; week <= domain.PregnancyWeeks; week++ {
		glyph := "░"
		if week <= snap.CurrentWeek {
			glyph = "█"
		}
		if marked[week] {
			glyph = "◆"
		}
		style := s.tone(trimesterTones[domain.TrimesterForWeek(week)])
		if week == snap.CurrentWeek {
			style = s.Current
		}
		b.WriteString(style.Render(glyph))
	}
	b.WriteString("\n")

	for _, span := range domain.Trimesters {
		label := fmt.Sprintf("%s (weeks %d-%d)", span.Name, span.FromWeek, span.ToWeek)
		if span.Trimester == snap.Trimester {
			b.WriteString(s.Current.Render("> " + label))
		} else {
			b.WriteString(s.Muted.Render("  " + label))
		}
		b.WriteString("\n")
	}

	if len(snap.Markers) > 0 {
		b.WriteString("\nHealth checks\n")
		for _, m := range snap.Markers {
			fmt.Fprintf(&b, "  week %2d  %s  %s\n", m.Week, m.Date.Format("2 Jan 2006"), s.tone(m.RiskLevel.Tone()).Render(string(m.RiskLevel)))
		}
	}

	return b.String()
}
