package models

// Entry is a teacher/subject pair submitted through the form.
type Entry struct {
	Teacher string `json:"teacher"`
	Subject string `json:"subject"`
}

// Slot is a single (day, period) cell. A nil Entry marks the slot as free.
type Slot struct {
	Day    string `json:"day"`
	Period int    `json:"period"`
	Entry  *Entry `json:"entry,omitempty"`
}

// Free reports whether nothing was assigned to the slot.
func (s Slot) Free() bool {
	return s.Entry == nil
}

// Timetable maps each configured day to exactly PeriodsPerDay slots.
type Timetable struct {
	Days          []string          `json:"days"`
	PeriodsPerDay int               `json:"periodsPerDay"`
	Grid          map[string][]Slot `json:"grid"`
}

// NewTimetable returns a timetable with every slot free.
func NewTimetable(days []string, periodsPerDay int) *Timetable {
	grid := make(map[string][]Slot, len(days))
	for _, day := range days {
		slots := make([]Slot, periodsPerDay)
		for p := range slots {
			slots[p] = Slot{Day: day, Period: p}
		}
		grid[day] = slots
	}
	ordered := make([]string, len(days))
	copy(ordered, days)
	return &Timetable{Days: ordered, PeriodsPerDay: periodsPerDay, Grid: grid}
}

// Assign places a copy of entry into the (day, period) slot.
func (t *Timetable) Assign(day string, period int, entry Entry) {
	slots, ok := t.Grid[day]
	if !ok || period < 0 || period >= len(slots) {
		return
	}
	e := entry
	slots[period].Entry = &e
}

// At returns the slot at (day, period).
func (t *Timetable) At(day string, period int) (Slot, bool) {
	slots, ok := t.Grid[day]
	if !ok || period < 0 || period >= len(slots) {
		return Slot{}, false
	}
	return slots[period], true
}

// FreeSlots counts unassigned slots.
func (t *Timetable) FreeSlots() int {
	free := 0
	for _, day := range t.Days {
		for _, slot := range t.Grid[day] {
			if slot.Free() {
				free++
			}
		}
	}
	return free
}

// TimetableSummary is returned by the JSON preview endpoint.
type TimetableSummary struct {
	Timetable  *Timetable `json:"timetable"`
	TotalSlots int        `json:"totalSlots"`
	FreeSlots  int        `json:"freeSlots"`
	Strict     bool       `json:"strict"`
}
