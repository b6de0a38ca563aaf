package catalog

// Pipeline is the state of one viewer: the loaded dataset, the active
// criteria and sort, and the view derived from them. It is a value; every
// operation returns a new Pipeline and leaves the receiver intact, so a
// caller publishes a new state only once it is complete.
type Pipeline struct {
	data     *Dataset
	criteria Criteria
	sort     SortState
	view     []Row
}

// NewPipeline returns a pipeline over d with no criteria and no sort.
func NewPipeline(d *Dataset) Pipeline {
	return Pipeline{}.WithDataset(d)
}

// Loaded reports whether a dataset is present.
func (p Pipeline) Loaded() bool { return p.data != nil }

// Dataset returns the loaded dataset, or nil.
func (p Pipeline) Dataset() *Dataset { return p.data }

// Criteria returns the active filter criteria.
func (p Pipeline) Criteria() Criteria { return p.criteria }

// Sort returns the active sort state.
func (p Pipeline) Sort() SortState { return p.sort }

// View returns the filtered and ordered rows. Callers must not modify it.
func (p Pipeline) View() []Row { return p.view }

// Regions returns the region choices of the full row set.
func (p Pipeline) Regions() []string { return p.data.Regions() }

// Reload parses text and swaps in the new dataset. Criteria and sort are kept
// and re-applied. When text has fewer than two lines it returns p unchanged
// and false.
func (p Pipeline) Reload(text string) (Pipeline, bool) {
	d, ok := Parse(text)
	if !ok {
		return p, false
	}
	return p.WithDataset(d), true
}

// WithDataset replaces the dataset, keeping criteria and sort.
func (p Pipeline) WithDataset(d *Dataset) Pipeline {
	next := Pipeline{data: d, criteria: p.criteria, sort: p.sort}
	next.view = next.derive()
	return next
}

// WithCriteria recomputes the view from the full row set. An active sort is
// re-applied to the new view without toggling.
func (p Pipeline) WithCriteria(c Criteria) Pipeline {
	next := Pipeline{data: p.data, criteria: c, sort: p.sort}
	next.view = next.derive()
	return next
}

// WithSort orders the current view by s as given. A state naming a
// non-sortable field is ignored.
func (p Pipeline) WithSort(s SortState) Pipeline {
	if s.Active && !s.Field.Sortable() {
		return p
	}
	next := Pipeline{data: p.data, criteria: p.criteria, sort: s}
	if !s.Active {
		next.view = next.derive()
		return next
	}
	next.view = append([]Row(nil), p.view...)
	SortRows(p.data, next.view, s)
	return next
}

// SortBy applies the toggle rule for f (see SortState.Next) and orders the
// view. It returns p and false when f cannot be sorted.
func (p Pipeline) SortBy(f Field) (Pipeline, bool) {
	s, ok := p.sort.Next(f)
	if !ok {
		return p, false
	}
	return p.WithSort(s), true
}

func (p Pipeline) derive() []Row {
	if p.data == nil {
		return nil
	}
	view := Filter(p.data, p.criteria)
	SortRows(p.data, view, p.sort)
	return view
}
