package reuse

import (
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
)

// Groups is the result of ClassifyByGroup: members per scope, with scopes in
// first-seen topological order so that id assignment is deterministic.
type Groups struct {
	order   []Scope
	members map[Scope][]Member
}

// Scopes returns the scopes in first-seen order.
func (g *Groups) Scopes() []Scope {
	return g.order
}

// Members returns the members of one scope in topological order.
func (g *Groups) Members(s Scope) []Member {
	return g.members[s]
}

// Len returns the number of distinct scopes.
func (g *Groups) Len() int {
	return len(g.order)
}

// ClassifyByGroup runs extract over every node in topological order and
// groups the resulting requests by scope.
func ClassifyByGroup(g *graph.Graph, extract Extractor) (*Groups, error) {
	groups := &Groups{members: make(map[Scope][]Member)}
	for _, n := range g.TopoOrder() {
		reqs, err := extract(n)
		if err != nil {
			return nil, err
		}
		for _, r := range reqs {
			if _, ok := groups.members[r.Scope]; !ok {
				groups.order = append(groups.order, r.Scope)
			}
			groups.members[r.Scope] = append(groups.members[r.Scope], Member{Node: n, Request: r})
		}
	}
	return groups, nil
}

// Counter is the running id counter of one resource kind. A negative Limit
// means unbounded.
type Counter struct {
	Kind  Kind
	Next  int64
	Limit int64
}

// Setter records the ids granted to one member. ids holds a single Invalid
// entry when an optional request could not be granted.
type Setter func(m Member, ids []int64)

// AssignShared grants one id range to a whole group and applies it to every
// member. The range is as wide as the largest count requested in the group.
// When the counter's limit would be crossed, the group is skipped with
// Invalid ids if no member requires the resource; otherwise the call fails.
func AssignShared(members []Member, c *Counter, set Setter) error {
	if len(members) == 0 {
		return nil
	}
	count := 1
	required := false
	for _, m := range members {
		count = max(count, m.Request.Count)
		required = required || m.Request.Required
	}

	if c.Limit >= 0 && c.Next+int64(count) > c.Limit {
		if required {
			return capacityError(c, count)
		}
		for _, m := range members {
			set(m, []int64{Invalid})
		}
		return nil
	}

	ids := make([]int64, count)
	for i := range ids {
		ids[i] = c.Next + int64(i)
	}
	c.Next += int64(count)
	for _, m := range members {
		set(m, ids)
	}
	return nil
}

func capacityError(c *Counter, count int) error {
	want := c.Next + int64(count)
	if c.Kind == Notify {
		return cerror.ErrNotifyCapacity.GenWithStackByArgs(want, c.Limit)
	}
	return cerror.ErrStreamCapacity.GenWithStackByArgs(want, c.Limit)
}

// AssignAll classifies every node with extract and runs AssignShared for each
// scope in order.
func AssignAll(g *graph.Graph, extract Extractor, c *Counter, set Setter) (*Groups, error) {
	groups, err := ClassifyByGroup(g, extract)
	if err != nil {
		return nil, err
	}
	for _, s := range groups.Scopes() {
		if err := AssignShared(groups.Members(s), c, set); err != nil {
			return nil, err
		}
	}
	return groups, nil
}
