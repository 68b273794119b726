package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/auricare/calendar-gateway/internal/clinicstub"
	"github.com/auricare/calendar-gateway/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := clinicstub.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	repo := clinicstub.NewPgRepository(pool)

	gofakeit.Seed(time.Now().UnixNano())

	staffIDs, err := seedStaff(context.Background(), repo, 24)
	if err != nil {
		log.Fatalf("seed staff: %v", err)
	}
	if err := seedAppointments(context.Background(), repo, staffIDs, 600); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

// seedStaff inserts a clinic roster. Only the audiologist roles end up on the
// calendar lookup; the rest exist so role filtering has something to filter.
func seedStaff(ctx context.Context, repo clinicstub.Repository, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d staff members", count)

	roles := []string{
		"audiologist",
		"audiologist",
		"senior audiologist",
		"reception",
		"inventory clerk",
		"practice manager",
	}

	var audiologists []uuid.UUID
	for i := 0; i < count; i++ {
		role := roles[gofakeit.Number(0, len(roles)-1)]
		phone := gofakeit.Phone()
		email := gofakeit.Email()

		s := clinicstub.Staff{
			ID:    uuid.New(),
			Name:  gofakeit.Name(),
			Role:  role,
			Phone: &phone,
			Email: &email,
		}
		if err := repo.InsertStaff(ctx, s); err != nil {
			return nil, err
		}
		if role == "audiologist" || role == "senior audiologist" {
			audiologists = append(audiologists, s.ID)
		}
	}

	log.Printf("staff seeded, %d audiologists", len(audiologists))
	return audiologists, nil
}

func seedAppointments(ctx context.Context, repo clinicstub.Repository, audiologists []uuid.UUID, count int) error {
	log.Printf("seeding %d appointments", count)

	procedures := []string{
		"Pure tone audiometry",
		"Tympanometry",
		"Hearing aid fitting",
		"REM verification",
		"Earmold impression",
		"Speech audiometry",
		"Hearing aid service",
	}
	statuses := []string{"", "", "", "check_in", "absent", "no_show", "cancelled"}

	today := time.Now()

	for i := 0; i < count; i++ {
		// Cluster around the current month so every view has something to show.
		day := today.AddDate(0, 0, gofakeit.Number(-20, 30))
		hour := gofakeit.Number(8, 19)
		minute := 15 * gofakeit.Number(0, 3)

		duration := 30 * gofakeit.Number(1, 2)
		total := 0
		proc := procedures[gofakeit.Number(0, len(procedures)-1)]
		if gofakeit.Number(0, 3) == 0 {
			// Add-on procedure extends the booked time.
			extra := procedures[gofakeit.Number(0, len(procedures)-1)]
			proc = proc + ", " + extra
			total = duration + 30*gofakeit.Number(1, 3)
		}

		email := gofakeit.Email()
		address := gofakeit.Address().Address

		a := clinicstub.Appointment{
			ID:              uuid.New(),
			PatientID:       uuid.New(),
			PatientName:     gofakeit.Name(),
			PatientPhone:    gofakeit.Phone(),
			PatientEmail:    &email,
			PatientAddress:  &address,
			AppointmentDate: day.Format("2006-01-02"),
			AppointmentTime: fmt.Sprintf("%02d:%02d", hour, minute),
			DurationMinutes: duration,
			TotalMinutes:    total,
			Procedures:      &proc,
			Notes:           gofakeit.Sentence(6),
			VisitStatus:     statuses[gofakeit.Number(0, len(statuses)-1)],
		}
		if len(audiologists) > 0 {
			id := audiologists[gofakeit.Number(0, len(audiologists)-1)]
			a.StaffID = &id
		}
		// A few legacy rows with broken times, which the calendar must
		// tolerate by leaving them off the grid.
		if gofakeit.Number(0, 60) == 0 {
			a.AppointmentTime = "tbd"
		}

		if err := repo.InsertAppointment(ctx, a); err != nil {
			return err
		}

		if (i+1)%200 == 0 {
			log.Printf("appointments seeded: %d/%d", i+1, count)
		}
	}

	log.Println("appointments seeded")
	return nil
}
