package model

// Snapshot is one decoded response from the accounting tool.
type Snapshot struct {
	Interfaces []Interface
}

// Interface holds the traffic history of a single network interface.
type Interface struct {
	Name    string
	Alias   string
	Traffic Traffic
}

// Traffic holds the day and month windows kept by the accounting tool,
// oldest first.
type Traffic struct {
	Day   []DayEntry
	Month []MonthEntry
}

// DayEntry is the traffic of a single day.
type DayEntry struct {
	Date Date
	Rx   uint64
	Tx   uint64
}

// MonthEntry is the traffic of a single month.
type MonthEntry struct {
	Month Month
	Rx    uint64
	Tx    uint64
}

// Interface returns the interface named name.
func (s *Snapshot) Interface(name string) (Interface, bool) {
	if s == nil {
		return Interface{}, false
	}
	for _, iface := range s.Interfaces {
		if iface.Name == name {
			return iface, true
		}
	}
	return Interface{}, false
}
