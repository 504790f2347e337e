package agentflow

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/PabloGalante/brainbuddy/internal/domain"
	"github.com/PabloGalante/brainbuddy/internal/observability"
)

var fenceReplacer = strings.NewReplacer("```json", "", "```JSON", "", "```", "")

// stripCodeFence removes markdown code fences around backend output.
func stripCodeFence(raw string) string {
	return strings.TrimSpace(fenceReplacer.Replace(raw))
}

// operationRecord is the wire shape the extractor asks the backend for.
type operationRecord struct {
	Operation       string  `json:"operation"`
	Name            string  `json:"name"`
	Date            *string `json:"date"`
	DateType        string  `json:"date_type"`
	Priority        flexInt `json:"priority"`
	RequiredStamina flexInt `json:"required_stamina"`
	EstimatedTime   flexInt `json:"estimated_time"`
	Status          string  `json:"status"`
}

// flexInt accepts 3, 3.0 and "3".
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*f = flexInt(math.Round(v))
	return nil
}

// decodeOperations parses backend output into validated operations. A single
// object is read as a one-element list. An empty list or any invalid element
// rejects the whole output. An unreadable date only drops the date.
func decodeOperations(ctx context.Context, raw string, loc *time.Location) ([]domain.TaskOperation, error) {
	cleaned := stripCodeFence(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty output", domain.ErrMalformedOutput)
	}

	var records []operationRecord
	if strings.HasPrefix(cleaned, "[") {
		if err := json.Unmarshal([]byte(cleaned), &records); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedOutput, err)
		}
	} else {
		var one operationRecord
		if err := json.Unmarshal([]byte(cleaned), &one); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedOutput, err)
		}
		records = []operationRecord{one}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no operations", domain.ErrMalformedOutput)
	}

	ops := make([]domain.TaskOperation, 0, len(records))
	for i, rec := range records {
		op, dateErr, err := rec.toOperation(loc)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", domain.ErrMalformedOutput, i, err)
		}
		if dateErr != nil {
			observability.LoggerFromContext(ctx).Warn("dropping unreadable date",
				"element", i,
				"name", op.Name,
				"error", dateErr)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// toOperation validates the required fields. dateErr reports a date that
// could not be read; the operation is still usable without it.
func (r operationRecord) toOperation(loc *time.Location) (op domain.TaskOperation, dateErr, err error) {
	kind := domain.OperationKind(strings.ToLower(strings.TrimSpace(r.Operation)))
	if kind != domain.OperationAdd && kind != domain.OperationModify {
		return domain.TaskOperation{}, nil, fmt.Errorf("invalid operation %q", r.Operation)
	}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		return domain.TaskOperation{}, nil, fmt.Errorf("missing name")
	}

	dateType, ok := domain.ParseDateType(r.DateType)
	if !ok {
		return domain.TaskOperation{}, nil, fmt.Errorf("invalid date_type %q", r.DateType)
	}

	status := domain.StatusPlanned
	if strings.TrimSpace(r.Status) != "" {
		if s, ok := domain.ParseTaskStatus(r.Status); ok {
			status = s
		}
	}

	var date *time.Time
	if r.Date != nil && strings.TrimSpace(*r.Date) != "" {
		if d, perr := parseDate(*r.Date, loc); perr == nil {
			date = &d
		} else {
			dateErr = perr
		}
	}

	op = domain.TaskOperation{
		Operation: kind,
		TaskFields: domain.TaskFields{
			Name:            name,
			Date:            date,
			DateType:        dateType,
			Priority:        int(r.Priority),
			RequiredStamina: int(r.RequiredStamina),
			EstimatedTime:   int(r.EstimatedTime),
			Status:          status,
		},
	}
	return op, dateErr, nil
}

var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseDate reads ISO 8601 timestamps. Values without an offset are taken
// in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// promptTask is how tasks are shown to the backend.
type promptTask struct {
	Name            string `json:"name"`
	Date            string `json:"date,omitempty"`
	DateType        string `json:"date_type"`
	Priority        int    `json:"priority"`
	RequiredStamina int    `json:"required_stamina"`
	EstimatedTime   int    `json:"estimated_time"`
	Status          string `json:"status"`
}

func renderTasks(tasks []domain.Task, loc *time.Location) string {
	out := make([]promptTask, 0, len(tasks))
	for _, t := range tasks {
		pt := promptTask{
			Name:            t.Name,
			DateType:        string(t.DateType),
			Priority:        t.Priority,
			RequiredStamina: t.RequiredStamina,
			EstimatedTime:   t.EstimatedTime,
			Status:          string(t.Status),
		}
		if t.Date != nil {
			pt.Date = t.Date.In(loc).Format("2006-01-02T15:04:05")
		}
		out = append(out, pt)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// todayLine states the date, weekday and time the backend resolves relative
// expressions against.
func todayLine(now time.Time) string {
	return fmt.Sprintf("Today is %s (%s). Current time: %s. UTC offset: %s.",
		now.Format("2006-01-02"), now.Weekday(), now.Format("15:04"), now.Format("-07:00"))
}
