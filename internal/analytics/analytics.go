// Package analytics derives growth and connectivity reports from the
// note store and the link graph.
package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"zynapse/internal/logging"
	"zynapse/internal/storage"
	"zynapse/internal/synapse"
)

// topLimit caps the ranked sections of a report.
const topLimit = 10

// Report is a point-in-time snapshot of the knowledge base.
type Report struct {
	ID           string
	GeneratedAt  time.Time
	NoteCount    int
	TotalWords   int
	TotalLinks   int
	MeanStrength float64
	NotesPerDay  map[string]int
	TopConnected []ConnectedNote
	TopTags      []TagCount
}

// ConnectedNote ranks a note by how many links touch it.
type ConnectedNote struct {
	ID       string
	Degree   int
	Strength float64
}

// TagCount ranks a tag by how many notes carry it.
type TagCount struct {
	Tag   string
	Count int
}

// Generate walks the store and link graph and builds a report.
func Generate(st *storage.Store, links *synapse.Store) (*Report, error) {
	notes, err := st.List()
	if err != nil {
		return nil, err
	}
	edges, err := links.All()
	if err != nil {
		return nil, err
	}

	r := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		NoteCount:   len(notes),
		TotalLinks:  len(edges),
		NotesPerDay: make(map[string]int),
	}

	tags := make(map[string]int)
	for _, n := range notes {
		r.TotalWords += n.WordCount()
		r.NotesPerDay[n.Created.UTC().Format("2006-01-02")]++
		for _, tag := range n.Tags {
			tags[tag]++
		}
	}

	degree := make(map[string]*ConnectedNote)
	var strengthSum float64
	for _, e := range edges {
		strengthSum += e.Strength
		for _, id := range []string{e.NoteA, e.NoteB} {
			c, ok := degree[id]
			if !ok {
				c = &ConnectedNote{ID: id}
				degree[id] = c
			}
			c.Degree++
			c.Strength += e.Strength
		}
	}
	if len(edges) > 0 {
		r.MeanStrength = strengthSum / float64(len(edges))
	}

	for _, c := range degree {
		r.TopConnected = append(r.TopConnected, *c)
	}
	sort.Slice(r.TopConnected, func(i, j int) bool {
		if r.TopConnected[i].Degree != r.TopConnected[j].Degree {
			return r.TopConnected[i].Degree > r.TopConnected[j].Degree
		}
		if r.TopConnected[i].Strength != r.TopConnected[j].Strength {
			return r.TopConnected[i].Strength > r.TopConnected[j].Strength
		}
		return r.TopConnected[i].ID < r.TopConnected[j].ID
	})
	if len(r.TopConnected) > topLimit {
		r.TopConnected = r.TopConnected[:topLimit]
	}

	for tag, count := range tags {
		r.TopTags = append(r.TopTags, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(r.TopTags, func(i, j int) bool {
		if r.TopTags[i].Count != r.TopTags[j].Count {
			return r.TopTags[i].Count > r.TopTags[j].Count
		}
		return r.TopTags[i].Tag < r.TopTags[j].Tag
	})
	if len(r.TopTags) > topLimit {
		r.TopTags = r.TopTags[:topLimit]
	}

	logging.Get(logging.CategoryAnalytics).Info(
		"report %s: %d notes, %d links, mean strength %.2f",
		r.ID, r.NoteCount, r.TotalLinks, r.MeanStrength)
	return r, nil
}

// AverageWordsPerNote is a convenience over the report totals.
func (r *Report) AverageWordsPerNote() float64 {
	if r.NoteCount == 0 {
		return 0
	}
	return float64(r.TotalWords) / float64(r.NoteCount)
}
