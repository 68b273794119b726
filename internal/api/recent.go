package api

import (
	"sync"

	"github.com/auricare/calendar-gateway/internal/appointment"
)

// recentAppointments holds the records of the last successful grid refresh.
// When the upstream dies between a grid read and a panel click, the panel
// opens read-only on the copy remembered here.
type recentAppointments struct {
	mu   sync.RWMutex
	byID map[string]appointment.Appointment
}

func newRecentAppointments() *recentAppointments {
	return &recentAppointments{byID: make(map[string]appointment.Appointment)}
}

func (ra *recentAppointments) remember(appts []appointment.Appointment) {
	next := make(map[string]appointment.Appointment, len(appts))
	for _, a := range appts {
		next[a.ID] = a
	}
	ra.mu.Lock()
	ra.byID = next
	ra.mu.Unlock()
}

// copyOf returns the remembered record for id, or nil when the last refresh
// did not contain it.
func (ra *recentAppointments) copyOf(id string) *appointment.Appointment {
	ra.mu.RLock()
	defer ra.mu.RUnlock()
	a, ok := ra.byID[id]
	if !ok {
		return nil
	}
	return &a
}
