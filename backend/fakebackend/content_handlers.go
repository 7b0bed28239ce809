package fakebackend

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-mindcare-client/backend"
)

func (b *Backend) newID() string {
	b.nextID++
	return strconv.Itoa(b.nextID)
}

// SeedResource stores r and returns it with its assigned id
func (b *Backend) SeedResource(r backend.Resource) backend.Resource {
	b.lock.Lock()
	defer b.lock.Unlock()
	r.ID = b.newID()
	now := b.nowFunc()
	r.CreatedAt, r.UpdatedAt = now, now
	b.resources[r.ID] = r
	return r
}

// SeedTherapist stores t and returns it with its assigned id
func (b *Backend) SeedTherapist(t backend.Therapist) backend.Therapist {
	b.lock.Lock()
	defer b.lock.Unlock()
	t.ID = b.newID()
	b.therapists[t.ID] = t
	return t
}

func (b *Backend) listResources(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))
	category := strings.ToLower(r.URL.Query().Get("category"))

	b.lock.Lock()
	out := make([]backend.Resource, 0, len(b.resources))
	for _, res := range b.resources {
		if category != "" && category != "all" && strings.ToLower(res.Category) != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(res.Title), search) &&
			!strings.Contains(strings.ToLower(res.Description), search) {
			continue
		}
		out = append(out, res)
	}
	b.lock.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) resourceCategories(w http.ResponseWriter, _ *http.Request) {
	b.lock.Lock()
	seen := map[string]bool{"all": true}
	for _, res := range b.resources {
		seen[res.Category] = true
	}
	b.lock.Unlock()

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	writeJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}

func (b *Backend) getResource(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	res, ok := b.resources[r.PathValue("id")]
	b.lock.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (b *Backend) createResource(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.requireAdmin(w, r); !ok {
		return
	}
	var in backend.ResourceInput
	if !decodeBody(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, b.SeedResource(resourceFromInput(in)))
}

func (b *Backend) updateResource(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.requireAdmin(w, r); !ok {
		return
	}
	var in backend.ResourceInput
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	existing, ok := b.resources[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}
	updated := resourceFromInput(in)
	updated.ID, updated.CreatedAt, updated.UpdatedAt = existing.ID, existing.CreatedAt, b.nowFunc()
	b.resources[updated.ID] = updated
	writeJSON(w, http.StatusOK, updated)
}

func (b *Backend) deleteResource(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.requireAdmin(w, r); !ok {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	id := r.PathValue("id")
	if _, ok := b.resources[id]; !ok {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}
	delete(b.resources, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Resource deleted successfully"})
}

func resourceFromInput(in backend.ResourceInput) backend.Resource {
	return backend.Resource{
		Title:       in.Title,
		Type:        in.Type,
		Category:    strings.ToLower(in.Category),
		Source:      in.Source,
		URL:         in.URL,
		Description: in.Description,
	}
}

func (b *Backend) listTherapists(w http.ResponseWriter, _ *http.Request) {
	b.lock.Lock()
	out := make([]backend.Therapist, 0, len(b.therapists))
	for _, t := range b.therapists {
		out = append(out, t)
	}
	b.lock.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getTherapist(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	t, ok := b.therapists[r.PathValue("id")]
	b.lock.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Therapist not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (b *Backend) createTherapist(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.requireAdmin(w, r); !ok {
		return
	}
	var in backend.Therapist
	if !decodeBody(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, b.SeedTherapist(in))
}

func (b *Backend) updateTherapist(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.requireAdmin(w, r); !ok {
		return
	}
	var in backend.Therapist
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	id := r.PathValue("id")
	if _, ok := b.therapists[id]; !ok {
		writeError(w, http.StatusNotFound, "Therapist not found")
		return
	}
	in.ID = id
	b.therapists[id] = in
	writeJSON(w, http.StatusOK, in)
}

func (b *Backend) deleteTherapist(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.requireAdmin(w, r); !ok {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	id := r.PathValue("id")
	if _, ok := b.therapists[id]; !ok {
		writeError(w, http.StatusNotFound, "Therapist not found")
		return
	}
	delete(b.therapists, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Therapist deleted successfully"})
}
