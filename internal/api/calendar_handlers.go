package api

import (
	"log"
	"net/http"
	"time"

	"github.com/auricare/calendar-gateway/internal/calendar"
	"github.com/auricare/calendar-gateway/internal/staff"
)

const dateParamLayout = "2006-01-02"

func (s *Server) parseGridParams(r *http.Request) (time.Time, calendar.View, error) {
	q := r.URL.Query()

	view := calendar.ViewWeek
	if raw := q.Get("view"); raw != "" {
		v, err := calendar.ParseView(raw)
		if err != nil {
			return time.Time{}, "", err
		}
		view = v
	}

	date := calendar.Today(s.now)
	if raw := q.Get("date"); raw != "" {
		d, err := time.ParseInLocation(dateParamLayout, raw, s.loc)
		if err != nil {
			return time.Time{}, "", err
		}
		date = d
	}

	return date, view, nil
}

// staffLookup fetches the directory snapshot. A failed read keeps the grid
// serving, just without resolved names.
func (s *Server) staffLookup(r *http.Request) staff.Lookup {
	if s.staffSrc == nil {
		return staff.MapLookup{}
	}
	lookup, err := s.staffSrc.Snapshot(r.Context())
	if err != nil {
		log.Printf("staff lookup unavailable, rendering IDs only: %v", err)
		return staff.MapLookup{}
	}
	return lookup
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	date, view, err := s.parseGridParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_grid_params", err.Error())
		return
	}

	appts, _, err := s.lister.ListAppointments(r.Context(), 1, s.cfg.RefreshPageSize)
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}
	s.recent.remember(appts)

	now := s.now()
	today := calendar.Normalize(now.In(s.loc))
	lookup := s.staffLookup(r)
	proj := calendar.NewProjector(s.loc)
	days := calendar.Days(date, view, today)

	resp := GridResponse{
		Date:  date.Format(dateParamLayout),
		View:  string(view),
		Label: calendar.RangeLabel(date, view),
		Days:  make([]DayView, 0, len(days)),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, toDayView(d))
	}

	if view == calendar.ViewMonth {
		for _, cell := range proj.MonthCells(appts, days, s.cfg.MonthDisplayCap) {
			mc := MonthCellView{Day: toDayView(cell.Day), Overflow: cell.Overflow}
			for _, a := range cell.Visible {
				mc.Appointments = append(mc.Appointments, toAppointmentView(a, lookup, now))
			}
			resp.MonthCells = append(resp.MonthCells, mc)
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	slots := calendar.Slots(s.cfg.DayStartHour, s.cfg.DayEndHour, s.cfg.SlotWidth)
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, SlotView{Label: slot.Label, WidthMinutes: int(slot.Width.Minutes())})
	}

	// Only occupied cells are emitted; an empty cell is implied by absence.
	for _, d := range days {
		dayAppts := proj.ForDate(appts, d.Date)
		if len(dayAppts) == 0 {
			continue
		}
		for _, slot := range slots {
			hits := proj.ForSlot(dayAppts, d.Date, slot)
			if len(hits) == 0 {
				continue
			}
			cell := SlotCell{Date: d.Date.Format(dateParamLayout), Slot: slot.Label}
			for _, a := range hits {
				cell.Appointments = append(cell.Appointments, toAppointmentView(a, lookup, now))
			}
			resp.Cells = append(resp.Cells, cell)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	date, view, err := s.parseGridParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_grid_params", err.Error())
		return
	}

	switch dir := r.URL.Query().Get("dir"); dir {
	case "next":
		date = calendar.NextPeriod(date, view)
	case "prev":
		date = calendar.PreviousPeriod(date, view)
	case "today":
		// Today always lands on the week view.
		date = calendar.Today(s.now)
		view = calendar.ViewWeek
	default:
		writeError(w, http.StatusBadRequest, "invalid_direction", "dir must be prev, next or today")
		return
	}

	writeJSON(w, http.StatusOK, NavigateResponse{
		Date:  date.Format(dateParamLayout),
		View:  string(view),
		Label: calendar.RangeLabel(date, view),
	})
}
