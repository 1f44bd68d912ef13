package availability

// Window is a half-open interval of minutes from local midnight.
type Window struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// Units partitions each window into consecutive bookable units of length
// duration. A trailing remainder shorter than duration is dropped, never
// shortened: a 09:00-10:15 window with 30-minute consultations yields
// 09:00 and 09:30 only.
func Units(windows []Window, durationMinutes int) []Window {
	if durationMinutes <= 0 {
		return nil
	}
	var units []Window
	for _, w := range windows {
		for start := w.StartMinute; start+durationMinutes <= w.EndMinute; start += durationMinutes {
			units = append(units, Window{StartMinute: start, EndMinute: start + durationMinutes})
		}
	}
	return units
}

// AvailableUnits returns the bookable units for one day: the windows cut
// into duration-sized units, minus any unit that overlaps a busy interval,
// minus units already started by nowMinute. Callers pass nowMinute 0 for
// dates other than today.
func AvailableUnits(windows []Window, durationMinutes int, busy []Window, nowMinute int) []Window {
	var out []Window
	for _, u := range Units(windows, durationMinutes) {
		if u.StartMinute < nowMinute {
			continue
		}
		if overlapsAny(u, busy) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func overlapsAny(u Window, busy []Window) bool {
	for _, b := range busy {
		// Half-open intervals: [u.Start,u.End) overlaps [b.Start,b.End) iff u.Start < b.End && b.Start < u.End.
		if u.StartMinute < b.EndMinute && b.StartMinute < u.EndMinute {
			return true
		}
	}
	return false
}
