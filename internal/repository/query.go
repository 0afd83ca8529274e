package repository

import (
	"fmt"
	"strings"
)

// predicates collects AND-ed WHERE conditions with numbered placeholders.
type predicates struct {
	conds []string
	args  []interface{}
}

// add appends cond, replacing each "?" with the placeholder of arg.
func (p *predicates) add(cond string, arg interface{}) {
	p.args = append(p.args, arg)
	p.conds = append(p.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(p.args))))
}

// fixed appends a condition that takes no argument.
func (p *predicates) fixed(cond string) {
	p.conds = append(p.conds, cond)
}

// where renders " WHERE ..." or "" when nothing was added.
func (p *predicates) where() string {
	if len(p.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.conds, " AND ")
}
