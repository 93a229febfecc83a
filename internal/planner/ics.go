package planner

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dukerupert/larder/internal/model"
)

const prodID = "-//Larder//Meal Planner//EN"

type slot struct {
	startHour int
	endHour   int
}

var slots = map[model.MealType]slot{
	model.MealBreakfast: {8, 9},
	model.MealLunch:     {12, 13},
	model.MealSnack:     {15, 16},
	model.MealDinner:    {18, 19},
}

// ExportICS writes meals as a VCALENDAR with one floating-time VEVENT per
// meal. Lines end in CRLF and are folded at 75 octets.
func ExportICS(w io.Writer, meals []model.PlannedMeal, now time.Time) error {
	bw := bufio.NewWriter(w)
	line := func(s string) {
		writeFolded(bw, s)
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:" + prodID)
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")

	stamp := now.UTC().Format("20060102T150405Z")
	for _, m := range meals {
		day, err := time.Parse(dateLayout, m.Date)
		if err != nil {
			return fmt.Errorf("planned meal %d: bad date %q: %w", m.ID, m.Date, err)
		}
		s, ok := slots[m.MealType]
		if !ok {
			return fmt.Errorf("planned meal %d: unknown meal type %q", m.ID, m.MealType)
		}
		date := day.Format("20060102")

		line("BEGIN:VEVENT")
		line("DTSTAMP:" + stamp)
		line("UID:" + m.UID + "@larder")
		line(fmt.Sprintf("DTSTART:%sT%02d0000", date, s.startHour))
		line(fmt.Sprintf("DTEND:%sT%02d0000", date, s.endHour))
		line("SUMMARY:" + escapeText(m.MealName))
		line("DESCRIPTION:" + escapeText("Meal Type: "+string(m.MealType)))
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return bw.Flush()
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// writeFolded writes one content line, continuing long lines with CRLF plus
// a space. It never splits a UTF-8 sequence.
func writeFolded(w *bufio.Writer, s string) {
	const limit = 75
	n := 0
	for _, r := range s {
		size := len(string(r))
		if n+size > limit {
			w.WriteString("\r\n ")
			n = 1
		}
		w.WriteRune(r)
		n += size
	}
	w.WriteString("\r\n")
}
