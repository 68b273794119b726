// Package upstream is the HTTP client of the practice-management backend.
// The gateway trusts it for every appointment and staff read and for the
// partial appointment updates issued by the detail panel.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/auricare/calendar-gateway/internal/appointment"
	"github.com/auricare/calendar-gateway/internal/requestid"
)

var (
	ErrNotFound = errors.New("appointment not found")
	// ErrNotInScannedPage means the by-ID route was unavailable and the
	// page-scan fallback did not contain the ID. Callers must treat this as
	// its own condition, not as a plain not-found.
	ErrNotInScannedPage = errors.New("appointment not in scanned page")
)

type Client struct {
	baseURL  string
	http     *http.Client
	scanSize int
}

func NewClient(baseURL string, timeout time.Duration, scanSize int) *Client {
	if scanSize <= 0 {
		scanSize = 200
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		scanSize: scanSize,
	}
}

// ListAppointments fetches one page of the appointment collection.
func (c *Client) ListAppointments(ctx context.Context, page, limit int) ([]appointment.Appointment, int, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var resp listResponse
	if err := c.get(ctx, "/appointments?"+q.Encode(), &resp); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	appts := make([]appointment.Appointment, 0, len(resp.Appointments))
	for _, p := range resp.Appointments {
		appts = append(appts, p.toDomain())
	}
	return appts, resp.Total, nil
}

// GetAppointment fetches the canonical record by ID. When the backend does
// not expose the by-ID route it falls back to scanning one large collection
// page; an ID missing from that page surfaces as ErrNotInScannedPage.
func (c *Client) GetAppointment(ctx context.Context, id string) (*appointment.Summary, error) {
	var p appointmentPayload
	err := c.get(ctx, "/appointments/"+url.PathEscape(id), &p)
	if err == nil {
		s := p.toSummary()
		return &s, nil
	}

	// A backend that implements the by-ID route answers an unknown ID with
	// its JSON error shape. Any other 404, including the bare router 404 of
	// a backend without the route, means the route itself is missing and
	// the record may still exist in the collection.
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		if se.APICode == "appointment_not_found" {
			return nil, ErrNotFound
		}
		return c.scanForAppointment(ctx, id)
	}
	return nil, fmt.Errorf("get appointment %s: %w", id, err)
}

func (c *Client) scanForAppointment(ctx context.Context, id string) (*appointment.Summary, error) {
	appts, _, err := c.ListAppointments(ctx, 1, c.scanSize)
	if err != nil {
		return nil, fmt.Errorf("scan for appointment %s: %w", id, err)
	}
	for _, a := range appts {
		if a.ID == id {
			return &appointment.Summary{Appointment: a}, nil
		}
	}
	return nil, ErrNotInScannedPage
}

// UpdateAppointment sends a partial update and returns the backend's view of
// the record after the write.
func (c *Client) UpdateAppointment(ctx context.Context, id string, patch Patch) (*appointment.Appointment, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("marshal patch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.baseURL+"/appointments/"+url.PathEscape(id), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var p appointmentPayload
	if err := c.do(req, &p); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update appointment %s: %w", id, err)
	}

	a := p.toDomain()
	return &a, nil
}

// ListStaff fetches the full staff directory.
func (c *Client) ListStaff(ctx context.Context) ([]StaffMember, error) {
	var resp staffListResponse
	if err := c.get(ctx, "/staff", &resp); err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}

	members := make([]StaffMember, 0, len(resp.Staff))
	for _, m := range resp.Staff {
		members = append(members, m.toDomain())
	}
	return members, nil
}

// Ping reports whether the backend is reachable at all. Any HTTP response
// counts, including an error status; only a transport failure is "down".
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

// StatusError carries a non-2xx upstream response.
type StatusError struct {
	Code    int
	APICode string // machine code from the backend error body, if any
	Details string
}

func (e *StatusError) Error() string {
	if e.APICode != "" {
		return fmt.Sprintf("upstream status %d (%s): %s", e.Code, e.APICode, e.Details)
	}
	return fmt.Sprintf("upstream status %d", e.Code)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if id := requestid.FromContext(req.Context()); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Code: resp.StatusCode}
		var apiErr errorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) == nil {
			se.APICode = apiErr.Error
			se.Details = apiErr.Details
		}
		return se
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
