package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klabast/wb-services/awb-kalender/internal/logger"
)

const (
	// DefaultEndpoint is the AWB Bad Kreuznach appointment endpoint.
	DefaultEndpoint = "https://app.awb-bad-kreuznach.de/index.php?option=com_iab_start&controller=iab_start&task=loadTermine"
	DefaultTimeout  = 30 * time.Second

	// Form fields expected by the endpoint
	formCity   = "ort"
	formStreet = "strasse"

	dateLayout  = "2006-01-02"
	maxBodySize = 4 << 20
)

// Fetch error taxonomy
var (
	ErrTransport      = errors.New("schedule request failed")
	ErrShape          = errors.New("unexpected schedule response")
	ErrNoValidRecords = errors.New("no valid schedule records")
)

// Fetcher retrieves the complete schedule for one address.
type Fetcher interface {
	Fetch(ctx context.Context, city, street string) ([]WasteEvent, error)
}

// Client fetches the schedule over HTTP.
type Client struct {
	endpoint string
	client   *http.Client
	location *time.Location
	log      logger.Logger
}

// NewClient creates a schedule client. Zero values fall back to
// DefaultEndpoint, DefaultTimeout and the local time zone.
func NewClient(endpoint string, timeout time.Duration, loc *time.Location, log logger.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		location: loc,
		log:      log,
	}
}

// Fetch posts city and street to the endpoint and returns the parsed,
// date-sorted events.
func (c *Client) Fetch(ctx context.Context, city, street string) ([]WasteEvent, error) {
	form := url.Values{}
	form.Set(formCity, city)
	form.Set(formStreet, street)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: endpoint returned status %d: %s", ErrTransport, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}

	return ParseResponse(body, c.location, c.log)
}

// record is one appointment as delivered by the endpoint.
type record struct {
	ID        flexString `json:"id"`
	Termin    string     `json:"termin"`
	Restmuell flexString `json:"restmuell"`
	Bio       flexString `json:"bio"`
	Wert      flexString `json:"wert"`
	Papier    flexString `json:"papier"`
}

// flexString accepts JSON strings, numbers and null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(b))
	}
	*f = flexString(n.String())
	return nil
}

// collected reports whether an indicator field marks a collection.
func (f flexString) collected() bool {
	s := strings.TrimSpace(string(f))
	return s != "" && s != "0"
}

// ParseResponse decodes a schedule body. The records may be a bare array or
// wrapped in {"termine": [...]}. Records that fail to decode or carry an
// invalid date are skipped; if every record fails ErrNoValidRecords is
// returned. Dates are localized to loc.
func ParseResponse(body []byte, loc *time.Location, log logger.Logger) ([]WasteEvent, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	raw, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}

	events := make([]WasteEvent, 0, len(raw))
	for i, msg := range raw {
		var r record
		if err := json.Unmarshal(msg, &r); err != nil {
			log.Warning("Skipping schedule record %d: %v", i, err)
			continue
		}

		date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(r.Termin), loc)
		if err != nil {
			log.Warning("Skipping schedule record %q: invalid date %q", string(r.ID), r.Termin)
			continue
		}

		events = append(events, WasteEvent{
			ID:     string(r.ID),
			Date:   date,
			Black:  r.Restmuell.collected(),
			Brown:  r.Bio.collected(),
			Yellow: r.Wert.collected(),
			Blue:   r.Papier.collected(),
		})
	}

	if len(raw) > 0 && len(events) == 0 {
		return nil, fmt.Errorf("%w: all %d records were invalid", ErrNoValidRecords, len(raw))
	}

	SortEventsByDate(events)
	return events, nil
}

func decodeRecords(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrShape)
	}

	switch trimmed[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrShape, err)
		}
		return raw, nil
	case '{':
		var envelope struct {
			Termine *[]json.RawMessage `json:"termine"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrShape, err)
		}
		if envelope.Termine == nil {
			return nil, fmt.Errorf("%w: missing \"termine\" field", ErrShape)
		}
		return *envelope.Termine, nil
	default:
		return nil, fmt.Errorf("%w: body is neither an object nor an array", ErrShape)
	}
}
