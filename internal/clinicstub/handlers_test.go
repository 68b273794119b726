package clinicstub

import (
	"context"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/auricare/calendar-gateway/internal/upstream"
)

// memRepository keeps everything in maps so the REST contract can be tested
// without Postgres.
type memRepository struct {
	appts map[uuid.UUID]Appointment
	staff map[uuid.UUID]Staff
}

func newMemRepository() *memRepository {
	return &memRepository{
		appts: map[uuid.UUID]Appointment{},
		staff: map[uuid.UUID]Staff{},
	}
}

func (m *memRepository) ListAppointments(ctx context.Context, limit, offset int) ([]Appointment, int, error) {
	all := make([]Appointment, 0, len(m.appts))
	for _, a := range m.appts {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].AppointmentDate != all[j].AppointmentDate {
			return all[i].AppointmentDate < all[j].AppointmentDate
		}
		return all[i].AppointmentTime < all[j].AppointmentTime
	})
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (m *memRepository) UpdateAppointment(ctx context.Context, id uuid.UUID, upd Update) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if upd.Notes != nil {
		a.Notes = *upd.Notes
	}
	if upd.VisitStatus != nil {
		a.VisitStatus = *upd.VisitStatus
	}
	if upd.Reason != nil {
		a.Reason = upd.Reason
	}
	if upd.AppointmentDate != nil {
		a.AppointmentDate = *upd.AppointmentDate
	}
	if upd.AppointmentTime != nil {
		a.AppointmentTime = *upd.AppointmentTime
	}
	if upd.DurationMinutes != nil {
		a.DurationMinutes = *upd.DurationMinutes
	}
	if upd.Procedures != nil {
		a.Procedures = upd.Procedures
	}
	if upd.StaffID != nil {
		a.StaffID = upd.StaffID
	}
	a.UpdatedAt = time.Now()
	m.appts[id] = a
	return &a, nil
}

func (m *memRepository) InsertAppointment(ctx context.Context, a Appointment) error {
	m.appts[a.ID] = a
	return nil
}

func (m *memRepository) ListStaff(ctx context.Context) ([]Staff, error) {
	all := make([]Staff, 0, len(m.staff))
	for _, s := range m.staff {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (m *memRepository) GetStaffByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	s, ok := m.staff[id]
	if !ok {
		return nil, ErrStaffNotFound
	}
	return &s, nil
}

func (m *memRepository) InsertStaff(ctx context.Context, s Staff) error {
	m.staff[s.ID] = s
	return nil
}

func strptr(s string) *string { return &s }

// The stub must satisfy the same contract the gateway's upstream client
// consumes, so the test drives it through that client.
func TestStubServesUpstreamContract(t *testing.T) {
	repo := newMemRepository()

	staffID := uuid.New()
	if err := repo.InsertStaff(context.Background(), Staff{
		ID:    staffID,
		Name:  "Dr. Brandt",
		Role:  "audiologist",
		Phone: strptr("+49 30 555 999"),
	}); err != nil {
		t.Fatal(err)
	}

	apptID := uuid.New()
	if err := repo.InsertAppointment(context.Background(), Appointment{
		ID:              apptID,
		PatientID:       uuid.New(),
		PatientName:     "Maria Keller",
		PatientPhone:    "+49 151 000001",
		PatientEmail:    strptr("maria@example.com"),
		StaffID:         &staffID,
		AppointmentDate: "2025-07-16",
		AppointmentTime: "09:15",
		DurationMinutes: 30,
		TotalMinutes:    75,
		Notes:           "initial notes",
	}); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(NewHandler(repo).Router())
	defer srv.Close()

	client := upstream.NewClient(srv.URL, 2*time.Second, 50)
	ctx := context.Background()

	// List
	appts, total, err := client.ListAppointments(ctx, 1, 20)
	if err != nil {
		t.Fatalf("list through client: %v", err)
	}
	if total != 1 || len(appts) != 1 {
		t.Fatalf("list: %d appts, total %d", len(appts), total)
	}
	if appts[0].ID != apptID.String() || appts[0].TotalDuration != 75*time.Minute {
		t.Fatalf("listed appointment wrong: %+v", appts[0])
	}

	// By-ID carries the richer detail fields, including the audiologist join.
	summary, err := client.GetAppointment(ctx, apptID.String())
	if err != nil {
		t.Fatalf("get through client: %v", err)
	}
	if summary.PatientEmail != "maria@example.com" {
		t.Fatalf("patient email = %q", summary.PatientEmail)
	}
	if summary.AudiologistName != "Dr. Brandt" || summary.AudiologistPhone != "+49 30 555 999" {
		t.Fatalf("audiologist join missing: %+v", summary)
	}

	// Partial patch leaves untouched fields alone.
	status := "check_in"
	updated, err := client.UpdateAppointment(ctx, apptID.String(), upstream.Patch{VisitStatus: &status})
	if err != nil {
		t.Fatalf("patch through client: %v", err)
	}
	if string(updated.VisitStatus) != "check_in" {
		t.Fatalf("status after patch = %q", updated.VisitStatus)
	}
	if updated.Notes != "initial notes" {
		t.Fatalf("notes clobbered by status patch: %q", updated.Notes)
	}

	// Staff directory.
	staff, err := client.ListStaff(ctx)
	if err != nil {
		t.Fatalf("staff through client: %v", err)
	}
	if len(staff) != 1 || staff[0].Role != "audiologist" {
		t.Fatalf("staff list: %+v", staff)
	}

	// Health for readiness probes.
	if err := client.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestStubPagination(t *testing.T) {
	repo := newMemRepository()
	for i := 0; i < 25; i++ {
		hour := 8 + i%10
		_ = repo.InsertAppointment(context.Background(), Appointment{
			ID:              uuid.New(),
			PatientID:       uuid.New(),
			PatientName:     "Patient",
			AppointmentDate: "2025-07-16",
			AppointmentTime: time.Date(2025, 7, 16, hour, 0, 0, 0, time.UTC).Format("15:04"),
			DurationMinutes: 30,
		})
	}

	srv := httptest.NewServer(NewHandler(repo).Router())
	defer srv.Close()

	client := upstream.NewClient(srv.URL, 2*time.Second, 50)

	page1, total, err := client.ListAppointments(context.Background(), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	page3, _, err := client.ListAppointments(context.Background(), 3, 10)
	if err != nil {
		t.Fatal(err)
	}

	if total != 25 || len(page1) != 10 || len(page3) != 5 {
		t.Fatalf("pagination: total=%d page1=%d page3=%d", total, len(page1), len(page3))
	}
}
