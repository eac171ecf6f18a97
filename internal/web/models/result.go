package models

// ResultState is the parsed outcome of a result lookup. It is one of
// Processing, EmptyResult or Ready.
type ResultState interface {
	Term() string
	resultState()
}

// Processing means tweets are still being collected or classified
type Processing struct {
	SearchTerm string
}

// EmptyResult means collection finished without finding tweets
type EmptyResult struct {
	SearchTerm string
}

// Ready holds classified post ids grouped by label
type Ready struct {
	SearchTerm string
	Groups     map[string][]string
}

func (p Processing) Term() string { return p.SearchTerm }
func (e EmptyResult) Term() string { return e.SearchTerm }
func (r Ready) Term() string { return r.SearchTerm }

func (Processing) resultState()  {}
func (EmptyResult) resultState() {}
func (Ready) resultState()       {}

// Restrict returns a copy of r keeping only groups whose label is in labels.
// The dropped label names are returned in no particular order.
func (r Ready) Restrict(labels LabelSet) (Ready, []string) {
	out := Ready{SearchTerm: r.SearchTerm, Groups: make(map[string][]string, len(r.Groups))}
	var dropped []string
	for label, ids := range r.Groups {
		if !labels.Contains(label) {
			dropped = append(dropped, label)
			continue
		}
		out.Groups[label] = ids
	}
	return out, dropped
}
