// Package svg renders a computed timeline layout into a standalone SVG
// document: hour ruler, lane headers, stream paths, convergence glows,
// free-time bands, and item cards with duration connectors.
package svg

import (
	"fmt"
	"strings"

	"dayflow/internal/model"
	"dayflow/internal/timeline"
)

const (
	headerHeight = 32
	fontFamily   = "Helvetica, Arial, sans-serif"
)

// palette maps participant color keys to stroke/fill colors. Unknown keys
// fall back to slate.
var palette = map[string]string{
	"blue":   "#3b82f6",
	"green":  "#22c55e",
	"purple": "#a855f7",
	"orange": "#f97316",
	"rose":   "#f43f5e",
	"teal":   "#14b8a6",
	"slate":  "#64748b",
}

func colorFor(key string) string {
	if c, ok := palette[key]; ok {
		return c
	}
	return palette["slate"]
}

// Render produces the SVG document for one day's layout.
func Render(layout timeline.Layout, participants []model.Participant) string {
	totalHeight := int(layout.Height) + headerHeight

	labels := make(map[string]model.Participant, len(participants))
	for _, p := range participants {
		labels[p.ID] = p
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="#fafaf9"/>
<defs>
<style>
.hour-label { font-family: %s; font-size: 11px; fill: #94a3b8; }
.lane-label { font-family: %s; font-size: 13px; font-weight: bold; fill: #334155; }
.card-title { font-family: %s; font-size: 12px; fill: #1e293b; }
.card-time { font-family: %s; font-size: 10px; fill: #64748b; }
.card-done { text-decoration: line-through; }
.connector-label { font-family: %s; font-size: 9px; fill: #94a3b8; }
.free-label { font-family: %s; font-size: 10px; fill: #84cc16; }
</style>
<marker id="arrow" viewBox="0 0 6 6" refX="3" refY="5" markerWidth="6" markerHeight="6" orient="auto">
<path d="M 0 0 L 3 6 L 6 0" fill="none" stroke="#94a3b8" stroke-width="1"/>
</marker>
</defs>
`, int(layout.Width), totalHeight, fontFamily, fontFamily, fontFamily, fontFamily, fontFamily, fontFamily)

	// Lane headers above the timed area.
	for _, lane := range layout.Lanes {
		label := lane.ParticipantID
		if p, ok := labels[lane.ParticipantID]; ok && p.DisplayLabel != "" {
			label = p.DisplayLabel
		}
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" text-anchor="middle" class="lane-label">%s</text>`+"\n",
			lane.CenterX, headerHeight-10, escapeXML(label))
	}

	// Everything below is in timed-area coordinates.
	fmt.Fprintf(&b, `<g transform="translate(0,%d)">`+"\n", headerHeight)

	writeRuler(&b, layout)
	writeFreeZones(&b, layout)
	writeStreams(&b, layout, labels)
	writeConvergence(&b, layout)
	writeItems(&b, layout, labels)

	b.WriteString("</g>\n</svg>\n")
	return b.String()
}

func writeRuler(b *strings.Builder, layout timeline.Layout) {
	pph := pixelsPerHour(layout)
	firstHour := (layout.DayStartMinute + 59) / 60
	for h := firstHour; h*60 <= layout.DayEndMinute; h++ {
		y := timeline.MinutesToY(h*60, layout.DayStartMinute, pph)
		fmt.Fprintf(b, `<line x1="0" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#e7e5e4" stroke-width="1"/>`+"\n",
			y, layout.Width, y)
		fmt.Fprintf(b, `<text x="4" y="%.1f" class="hour-label">%02d:00</text>`+"\n", y-3, h)
	}
}

func writeFreeZones(b *strings.Builder, layout timeline.Layout) {
	pph := pixelsPerHour(layout)
	for _, z := range layout.Free {
		top := timeline.MinutesToY(z.StartMinute, layout.DayStartMinute, pph)
		bot := timeline.MinutesToY(z.EndMinute, layout.DayStartMinute, pph)
		fmt.Fprintf(b, `<rect x="0" y="%.1f" width="%.1f" height="%.1f" fill="#ecfccb" opacity="0.5"/>`+"\n",
			top, layout.Width, bot-top)
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="middle" class="free-label">everyone free</text>`+"\n",
			layout.Width/2, top+12)
	}
}

func writeStreams(b *strings.Builder, layout timeline.Layout, labels map[string]model.Participant) {
	for _, s := range layout.Streams {
		color := colorFor(labels[s.ParticipantID].ColorKey)
		fmt.Fprintf(b, `<path d="%s" fill="none" stroke="%s" stroke-width="2.5" opacity="0.7"/>`+"\n",
			s.Path, color)
	}
}

func writeConvergence(b *strings.Builder, layout timeline.Layout) {
	pph := pixelsPerHour(layout)
	// Adjacent buckets blend into one glow per shared span.
	for _, z := range timeline.MergeAdjacentZones(layout.Convergence) {
		top := timeline.MinutesToY(z.StartMinute, layout.DayStartMinute, pph)
		bot := timeline.MinutesToY(z.EndMinute, layout.DayStartMinute, pph)
		cy := (top + bot) / 2
		fmt.Fprintf(b, `<ellipse cx="%.1f" cy="%.1f" rx="60" ry="%.1f" fill="#fcd34d" opacity="0.25"/>`+"\n",
			layout.Width/2, cy, (bot-top)/2+10)
	}
}

func writeItems(b *strings.Builder, layout timeline.Layout, labels map[string]model.Participant) {
	for _, pi := range layout.Items {
		item := pi.Item
		box := pi.Box

		stroke := colorFor(labels[item.OwnerID].ColorKey)
		if item.OwnerID == "" {
			stroke = palette["slate"]
		}

		opacity := 1.0
		titleClass := "card-title"
		if item.Completed {
			opacity = 0.55
			titleClass = "card-title card-done"
		}

		fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="#ffffff" stroke="%s" stroke-width="1.5" opacity="%.2f"/>`+"\n",
			box.X, box.Y, box.Width, box.Height, stroke, opacity)
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" class="%s">%s</text>`+"\n",
			box.X+8, box.Y+18, titleClass, escapeXML(item.Title))
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" class="card-time">%02d:%02d</text>`+"\n",
			box.X+8, box.Y+34, item.StartMinute/60, item.StartMinute%60)

		if c := pi.Connector; c != nil {
			fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#94a3b8" stroke-width="1" stroke-dasharray="3,3" marker-end="url(#arrow)"/>`+"\n",
				c.X, c.FromY, c.X, c.ToY)
			fmt.Fprintf(b, `<text x="%.1f" y="%.1f" class="connector-label">%s</text>`+"\n",
				c.X+5, c.ToY-2, escapeXML(c.Label))
		}
	}
}

func pixelsPerHour(layout timeline.Layout) float64 {
	return layout.Height / (float64(layout.DayEndMinute-layout.DayStartMinute) / 60.0)
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
