package fakebackend

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/jrsteele09/go-mindcare-client/backend"
)

const defaultMoodDays = 7

func moodDays(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 {
		return defaultMoodDays
	}
	return days
}

// recentMoods returns the caller's entries since now-days, newest first
func (b *Backend) recentMoods(email string, days int) []backend.MoodEntry {
	cutoff := b.nowFunc().AddDate(0, 0, -days)

	b.lock.Lock()
	defer b.lock.Unlock()
	out := make([]backend.MoodEntry, 0)
	for _, e := range b.moods[email] {
		if !e.Timestamp.Before(cutoff) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(*out[j].Timestamp)
	})
	return out
}

func (b *Backend) logMood(w http.ResponseWriter, r *http.Request) {
	u, ok := b.requireUser(w, r)
	if !ok {
		return
	}
	var in backend.MoodEntry
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Value < 1 || in.Value > 5 {
		writeError(w, http.StatusBadRequest, "Mood value must be between 1 and 5")
		return
	}
	if in.Timestamp == nil {
		now := b.nowFunc()
		in.Timestamp = &now
	}

	b.lock.Lock()
	id := b.newID()
	b.moods[u.Email] = append(b.moods[u.Email], in)
	b.lock.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"id": id, "status": "success"})
}

func (b *Backend) moodEntries(w http.ResponseWriter, r *http.Request) {
	u, ok := b.requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.recentMoods(u.Email, moodDays(r)))
}

func (b *Backend) moodStats(w http.ResponseWriter, r *http.Request) {
	u, ok := b.requireUser(w, r)
	if !ok {
		return
	}
	entries := b.recentMoods(u.Email, moodDays(r))
	stats := backend.MoodStats{Trend: "stable"}
	if len(entries) == 0 {
		writeJSON(w, http.StatusOK, stats)
		return
	}

	sum := 0
	stats.Lowest = math.MaxInt
	for _, e := range entries {
		sum += e.Value
		stats.Highest = max(stats.Highest, e.Value)
		stats.Lowest = min(stats.Lowest, e.Value)
	}
	stats.Count = len(entries)
	stats.Average = math.Round(float64(sum)/float64(stats.Count)*10) / 10

	// entries are newest first: compare the newer half against the older
	if stats.Count > 7 {
		half := stats.Count / 2
		newer, older := average(entries[:half]), average(entries[half:])
		switch {
		case newer > older+0.5:
			stats.Trend = "improving"
		case newer < older-0.5:
			stats.Trend = "declining"
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (b *Backend) moodChart(w http.ResponseWriter, r *http.Request) {
	u, ok := b.requireUser(w, r)
	if !ok {
		return
	}
	days := moodDays(r)
	entries := b.recentMoods(u.Email, days)

	byDay := map[string][]backend.MoodEntry{}
	for _, e := range entries {
		day := e.Timestamp.UTC().Format(time.DateOnly)
		byDay[day] = append(byDay[day], e)
	}

	start := b.nowFunc().UTC().AddDate(0, 0, -days)
	chart := backend.MoodChart{Labels: make([]string, 0, days), Values: make([]int, 0, days)}
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		chart.Labels = append(chart.Labels, day)
		chart.Values = append(chart.Values, int(math.Round(average(byDay[day]))))
	}
	writeJSON(w, http.StatusOK, chart)
}

func average(entries []backend.MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.Value
	}
	return float64(sum) / float64(len(entries))
}
