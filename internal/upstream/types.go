package upstream

import (
	"log"
	"time"

	"github.com/auricare/calendar-gateway/internal/appointment"
)

// Wire shapes of the practice-management backend.

type appointmentPayload struct {
	ID                  string `json:"id"`
	PatientID           string `json:"patientId"`
	PatientName         string `json:"patientName"`
	PatientPhone        string `json:"patientPhone"`
	StaffID             string `json:"staffId"`
	AppointmentDate     string `json:"appointmentDate"`     // 2006-01-02
	AppointmentTime     string `json:"appointmentTime"`     // 15:04
	AppointmentDuration int    `json:"appointmentDuration"` // minutes
	TotalDuration       int    `json:"totalDuration,omitempty"`
	Procedures          string `json:"procedures,omitempty"`
	Notes               string `json:"notes,omitempty"`
	VisitStatus         string `json:"visitStatus,omitempty"`

	// Richer fields, present on the by-ID route only.
	PatientEmail     string `json:"patientEmail,omitempty"`
	PatientAddress   string `json:"patientAddress,omitempty"`
	AudiologistName  string `json:"audiologistName,omitempty"`
	AudiologistPhone string `json:"audiologistPhone,omitempty"`
}

type listResponse struct {
	Appointments []appointmentPayload `json:"appointments"`
	Total        int                  `json:"total"`
	Page         int                  `json:"page"`
	Limit        int                  `json:"limit"`
}

type staffPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type staffListResponse struct {
	Staff []staffPayload `json:"staff"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StaffMember is one row of the upstream staff directory.
type StaffMember struct {
	ID    string
	Name  string
	Role  string
	Phone string
	Email string
}

// Patch is a partial appointment update. Only non-nil fields are sent.
type Patch struct {
	Notes               *string `json:"notes,omitempty"`
	VisitStatus         *string `json:"visitStatus,omitempty"`
	Reason              *string `json:"reason,omitempty"`
	AppointmentDate     *string `json:"appointmentDate,omitempty"`
	AppointmentTime     *string `json:"appointmentTime,omitempty"`
	AppointmentDuration *int    `json:"appointmentDuration,omitempty"`
	Procedures          *string `json:"procedures,omitempty"`
	StaffID             *string `json:"staffId,omitempty"`
}

func (p appointmentPayload) toDomain() appointment.Appointment {
	status, known := appointment.CoerceVisitStatus(p.VisitStatus)
	if !known {
		log.Printf("appointment %s: unknown visitStatus %q from upstream, treating as unset", p.ID, p.VisitStatus)
	}

	return appointment.Appointment{
		ID:            p.ID,
		PatientID:     p.PatientID,
		PatientName:   p.PatientName,
		PatientPhone:  p.PatientPhone,
		StaffID:       p.StaffID,
		Date:          p.AppointmentDate,
		ClockTime:     p.AppointmentTime,
		Duration:      time.Duration(p.AppointmentDuration) * time.Minute,
		TotalDuration: time.Duration(p.TotalDuration) * time.Minute,
		Procedures:    p.Procedures,
		Notes:         p.Notes,
		VisitStatus:   status,
	}
}

func (p appointmentPayload) toSummary() appointment.Summary {
	return appointment.Summary{
		Appointment:      p.toDomain(),
		PatientEmail:     p.PatientEmail,
		PatientAddress:   p.PatientAddress,
		AudiologistName:  p.AudiologistName,
		AudiologistPhone: p.AudiologistPhone,
	}
}

func (m staffPayload) toDomain() StaffMember {
	return StaffMember{ID: m.ID, Name: m.Name, Role: m.Role, Phone: m.Phone, Email: m.Email}
}
