package dag

import "sort"

type NodeID uint32

// Index assigns dense ids to declaration names in sorted order.
type Index struct {
	NameToID map[string]NodeID
	IDToName []string
}

// собрать уникальные имена, sort.Strings, раздать ID по порядку
func BuildIndex(decls []Decl) Index {
	uniq := make(map[string]struct{}, len(decls))
	for _, d := range decls {
		if d.Name != "" {
			uniq[d.Name] = struct{}{}
		}
		for _, dep := range d.Deps {
			if dep.Name == "" {
				continue
			}
			uniq[dep.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]NodeID, len(names))
	for i, name := range names {
		nameToID[name] = NodeID(i)
	}

	return Index{
		NameToID: nameToID,
		IDToName: names,
	}
}
