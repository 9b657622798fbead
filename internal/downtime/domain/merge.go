package downtime

import "sort"

// Remainder trims calculated intervals against db-sourced ground truth and
// returns only the surviving calculated pieces.
//
// Authority rule: db wins. A calculated interval fully contained in a db
// interval is dropped. A partial overlap trims the calculated interval to
// its non-overlapping remainder; a db interval in the middle splits one
// calculated interval into two shorter ones. Db intervals themselves are
// never altered. ClosedBy carries over to every surviving piece so the
// checkpoint stays derivable.
func Remainder(calculated, persisted []Interval) []Interval {
	db := make([]Interval, 0, len(persisted))
	for _, p := range persisted {
		if p.Source == SourceDB {
			db = append(db, p)
		}
	}
	sort.Slice(db, func(i, j int) bool { return db[i].Start.Before(db[j].Start) })

	var out []Interval
	for _, calc := range calculated {
		if calc.Source != SourceCalculated {
			continue
		}
		out = append(out, subtract(calc, db)...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// Merge reconciles calculated intervals with persisted ones and returns the
// combined set feeding downtime accounting: every persisted db interval plus
// the calculated remainder, sorted by start.
func Merge(calculated, persisted []Interval) []Interval {
	merged := Remainder(calculated, persisted)
	for _, p := range persisted {
		if p.Source == SourceDB {
			merged = append(merged, p)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Start.Before(merged[j].Start) })
	return merged
}

// subtract removes every db interval from calc, possibly splitting it.
// db must be sorted by start.
func subtract(calc Interval, db []Interval) []Interval {
	pieces := []Interval{calc}
	for _, d := range db {
		var next []Interval
		for _, piece := range pieces {
			if !piece.Overlaps(d) {
				next = append(next, piece)
				continue
			}
			if d.Contains(piece) {
				continue
			}
			if d.Start.After(piece.Start) {
				left := piece
				left.End = d.Start
				next = append(next, left)
			}
			if d.End.Before(piece.End) {
				right := piece
				right.Start = d.End
				next = append(next, right)
			}
		}
		pieces = next
		if len(pieces) == 0 {
			break
		}
	}
	return pieces
}
