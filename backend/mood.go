package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const MoodPath = "/api/mood"

// MoodEntry is one self reported mood, 1 (lowest) to 5 (highest)
type MoodEntry struct {
	Value     int        `json:"value" validate:"gte=1,lte=5"`
	Notes     string     `json:"notes,omitempty" validate:"max=1000"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type MoodStats struct {
	Average float64 `json:"average"`
	Highest int     `json:"highest"`
	Lowest  int     `json:"lowest"`
	Count   int     `json:"count"`
	Trend   string  `json:"trend"`
}

type MoodChart struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

func daysQuery(days int) url.Values {
	if days <= 0 {
		return nil
	}
	return url.Values{"days": []string{strconv.Itoa(days)}}
}

// LogMood records an entry and returns its id
func (c *Client) LogMood(ctx context.Context, entry MoodEntry) (string, error) {
	if err := validateInput("Client.LogMood", &entry); err != nil {
		return "", err
	}
	var out struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, request{
		op:     "Client.LogMood",
		method: http.MethodPost,
		path:   MoodPath + "/log",
		body:   entry,
		auth:   authRequired,
	}, &out)
	return out.ID, err
}

// MoodEntries lists the entries of the last days days, newest first. A
// zero days uses the backend default of seven.
func (c *Client) MoodEntries(ctx context.Context, days int) ([]MoodEntry, error) {
	var out []MoodEntry
	err := c.do(ctx, request{
		op:     "Client.MoodEntries",
		method: http.MethodGet,
		path:   MoodPath + "/entries",
		query:  daysQuery(days),
		auth:   authRequired,
	}, &out)
	return out, err
}

func (c *Client) MoodStats(ctx context.Context, days int) (*MoodStats, error) {
	var out MoodStats
	if err := c.do(ctx, request{
		op:     "Client.MoodStats",
		method: http.MethodGet,
		path:   MoodPath + "/stats",
		query:  daysQuery(days),
		auth:   authRequired,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MoodChart(ctx context.Context, days int) (*MoodChart, error) {
	var out MoodChart
	if err := c.do(ctx, request{
		op:     "Client.MoodChart",
		method: http.MethodGet,
		path:   MoodPath + "/chart",
		query:  daysQuery(days),
		auth:   authRequired,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
