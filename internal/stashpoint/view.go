package stashpoint

import "stasher/internal/domain"

// Row is one line of the stashpoint list as presented to the user.
type Row struct {
	Stashpoint domain.Stashpoint
	Selected   bool
}

func NewView(stashpoints []domain.Stashpoint, f Filter, selectedID string) []Row {
	sorted := Sort(stashpoints, f)
	rows := make([]Row, len(sorted))
	for i, sp := range sorted {
		rows[i] = Row{
			Stashpoint: sp,
			Selected:   selectedID != "" && sp.ID == selectedID,
		}
	}
	return rows
}

// Find looks a stashpoint up by id.
func Find(stashpoints []domain.Stashpoint, id string) (domain.Stashpoint, bool) {
	for _, sp := range stashpoints {
		if sp.ID == id {
			return sp, true
		}
	}
	return domain.Stashpoint{}, false
}
