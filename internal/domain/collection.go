package domain

// Stats aggregates a user's ticket counts as reported by the grouped
// endpoint. InProgress is derived, not transmitted: the backend sends
// open, resolved and total, and the remainder is in progress.
type Stats struct {
	Open            int
	InProgress      int
	Resolved        int
	Total           int
	AvgResponseTime string
}

// DeriveStats builds Stats from the backend's three transmitted counts.
func DeriveStats(open, resolved, total int, avgResponseTime string) Stats {
	inProgress := total - open - resolved
	if inProgress < 0 {
		inProgress = 0
	}
	return Stats{
		Open:            open,
		InProgress:      inProgress,
		Resolved:        resolved,
		Total:           total,
		AvgResponseTime: avgResponseTime,
	}
}

// Consistent reports whether the counts add up.
func (s Stats) Consistent() bool {
	return s.Open+s.InProgress+s.Resolved == s.Total
}

// Collection is the per-user aggregate the grouped endpoint returns:
// identity, stats and the ordered ticket list.
type Collection struct {
	UserID     string
	UserName   string
	UserAvatar string
	Stats      Stats
	Tickets    []Ticket
}

// FindTicket returns the ticket with the given ID, or nil.
func (c *Collection) FindTicket(ticketID string) *Ticket {
	if c == nil {
		return nil
	}
	for i := range c.Tickets {
		if c.Tickets[i].ID == ticketID {
			return &c.Tickets[i]
		}
	}
	return nil
}
