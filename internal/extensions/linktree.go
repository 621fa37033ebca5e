package extensions

import (
	"fmt"
	"sort"
	"strings"
)

// link is one RPL_LINKS entry.
type link struct {
	Server      string
	Hub         string
	Hops        int
	Description string
}

// LinkTree collects a LINKS reply and renders it as a tree.
type LinkTree struct {
	links map[string]*link
}

func NewLinkTree() *LinkTree {
	return &LinkTree{links: make(map[string]*link)}
}

// Add records that server is linked to hub, hops away from us.
func (t *LinkTree) Add(server, hub string, hops int, description string) {
	t.links[server] = &link{
		Server:      server,
		Hub:         hub,
		Hops:        hops,
		Description: description,
	}
}

func (t *LinkTree) Len() int {
	return len(t.links)
}

// Lines renders the tree depth-first from the zero-hop server, children
// sorted by name. Servers not reachable from the root are not shown.
func (t *LinkTree) Lines() []string {
	var root *link
	children := make(map[string][]*link)
	for _, l := range t.links {
		if l.Hops == 0 {
			root = l
			continue
		}
		children[l.Hub] = append(children[l.Hub], l)
	}
	if root == nil {
		return nil
	}
	for _, kids := range children {
		sort.Slice(kids, func(i, j int) bool { return kids[i].Server < kids[j].Server })
	}

	lines := []string{formatLink("", root)}
	seen := map[string]bool{root.Server: true}
	var walk func(parent, indent string)
	walk = func(parent, indent string) {
		kids := children[parent]
		for i, l := range kids {
			if seen[l.Server] {
				continue
			}
			seen[l.Server] = true
			lines = append(lines, formatLink(indent+"|_ ", l))
			if i == len(kids)-1 {
				walk(l.Server, indent+"   ")
			} else {
				walk(l.Server, indent+"|  ")
			}
		}
	}
	walk(root.Server, "")
	return lines
}

func formatLink(prefix string, l *link) string {
	return strings.TrimRight(fmt.Sprintf("%s%s (%d) %s", prefix, l.Server, l.Hops, l.Description), " ")
}
