package exam

import (
	"sort"
	"strings"

	"github.com/prepwise/prepwise-backend/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// LabeledSubject pairs a subject with its display label.
type LabeledSubject struct {
	model.Subject
	Label  string `json:"label"`
	Pinned bool   `json:"pinned"`
}

// PinnedByName returns a predicate matching subjects whose name contains the
// marker term, compared case-insensitively.
func PinnedByName(marker string) func(model.Subject) bool {
	marker = strings.ToLower(marker)
	return func(s model.Subject) bool {
		return marker != "" && strings.Contains(strings.ToLower(s.Name), marker)
	}
}

// PinnedLabel derives the short display alias for pinned subjects, e.g.
// "english" → "English".
func PinnedLabel(marker string) string {
	return cases.Title(language.English).String(marker)
}

// OrderAndLabel produces the display ordering: pinned subjects first, the
// remainder alphabetical by locale-aware comparison. The sort is stable, so
// subjects with identical keys keep their original relative order. Pinned
// subjects carry the short label; others keep their own name.
func OrderAndLabel(subjects []model.Subject, pinned func(model.Subject) bool, pinnedLabel string) []LabeledSubject {
	out := make([]LabeledSubject, len(subjects))
	for i, s := range subjects {
		out[i] = LabeledSubject{Subject: s, Label: s.Name, Pinned: pinned(s)}
		if out[i].Pinned {
			out[i].Label = pinnedLabel
		}
	}

	coll := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return coll.CompareString(out[i].Name, out[j].Name) < 0
	})

	return out
}
