// Package experience orders and groups a user's work history for display.
package experience

import (
	"cmp"
	"slices"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
)

// Sort returns the records ordered for a flat list: ongoing positions first,
// then by end year descending, ties broken by start year descending.
// The input slice is left untouched.
func Sort(records []dto.ExperienceRecord) []dto.ExperienceRecord {
	out := slices.Clone(records)
	if out == nil {
		out = []dto.ExperienceRecord{}
	}

	slices.SortStableFunc(out, func(a, b dto.ExperienceRecord) int {
		if c := compareEnd(b.EndYear, a.EndYear); c != 0 {
			return c
		}
		return cmp.Compare(b.StartYear, a.StartYear)
	})

	return out
}

// Group merges records of the same company into continuous employment spans.
// A record joins the current span when its start year is not after the span's
// end year, or when the span is still ongoing. A later record never closes an
// ongoing span.
//
// Spans are returned ongoing first, each part ordered by start year descending.
func Group(records []dto.ExperienceRecord) []dto.ExperienceRecordGroup {
	groups := []dto.ExperienceRecordGroup{}
	if len(records) == 0 {
		return groups
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b dto.ExperienceRecord) int {
		if c := cmp.Compare(a.CompanyName, b.CompanyName); c != 0 {
			return c
		}
		return cmp.Compare(a.StartYear, b.StartYear)
	})

	var last *dto.ExperienceRecordGroup
	for _, rec := range sorted {
		if last != nil && last.CompanyName == rec.CompanyName && continues(*last, rec) {
			last.Items = append(last.Items, rec)
			last.EndYear = extend(last.EndYear, rec.EndYear)
			continue
		}

		groups = append(groups, dto.ExperienceRecordGroup{
			CompanyName: rec.CompanyName,
			CompanyLogo: rec.CompanyLogo,
			StartYear:   rec.StartYear,
			EndYear:     rec.EndYear,
			Items:       []dto.ExperienceRecord{rec},
		})
		last = &groups[len(groups)-1]
	}

	slices.SortStableFunc(groups, func(a, b dto.ExperienceRecordGroup) int {
		ap, bp := a.EndYear.IsPresent(), b.EndYear.IsPresent()
		switch {
		case ap && !bp:
			return -1
		case !ap && bp:
			return 1
		}
		return cmp.Compare(b.StartYear, a.StartYear)
	})

	return groups
}

func continues(g dto.ExperienceRecordGroup, rec dto.ExperienceRecord) bool {
	end, ended := g.EndYear.Year()
	return !ended || rec.StartYear <= end
}

// extend latches to Present: once a span is ongoing it stays ongoing.
func extend(span, next dto.EndYear) dto.EndYear {
	if next.IsPresent() || span.IsPresent() {
		return dto.Present()
	}

	a, _ := span.Year()
	b, _ := next.Year()
	return dto.EndedIn(max(a, b))
}

// compareEnd orders end years with Present above every concrete year.
func compareEnd(a, b dto.EndYear) int {
	ay, aEnded := a.Year()
	by, bEnded := b.Year()

	switch {
	case !aEnded && !bEnded:
		return 0
	case !aEnded:
		return 1
	case !bEnded:
		return -1
	}
	return cmp.Compare(ay, by)
}
