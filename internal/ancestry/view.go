package ancestry

// LinkView is the wire shape of one resolved hop.
type LinkView struct {
	Level   string `json:"level"`
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// ResultView is the wire shape of a walk outcome. An unresolved walk is
// a normal response, not an error payload.
type ResultView struct {
	Resolved     bool       `json:"resolved"`
	UnresolvedAt string     `json:"unresolved_at,omitempty"`
	Target       *LinkView  `json:"target,omitempty"`
	Path         []LinkView `json:"path"`
}

func ViewOf(res Result) ResultView {
	view := ResultView{
		Resolved:     res.Resolved(),
		UnresolvedAt: string(res.UnresolvedAt),
		Path:         make([]LinkView, len(res.Links)),
	}
	for i, link := range res.Links {
		view.Path[i] = LinkView{
			Level:   string(link.Level),
			ID:      link.ID,
			Deleted: link.Node.AncestryDeleted(),
		}
	}
	if res.Resolved() && len(view.Path) > 0 {
		last := view.Path[len(view.Path)-1]
		view.Target = &last
	}
	return view
}
