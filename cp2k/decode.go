/*
 * decode.go, part of fpgen.
 *
 * Copyright 2024 Raul Mera <rmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package cp2k

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//ReadFile reads a YAML or JSON file with CP2K parameters. See ParseYAML.
func ReadFile(name string) (*Tree, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, newError(err, "", "ReadFile")
	}
	T, err := ParseYAML(data)
	if err != nil {
		return nil, errDecorate(err, "ReadFile")
	}
	return T, nil
}

//ParseYAML decodes a YAML document (JSON is valid YAML) into a Tree, keeping
//the order of the keys in the document. Mappings become sections, sequences of
//mappings repeated sections, sequences of scalars repeated keywords. Scalars
//are typed as YAML resolves them (int, float64, bool or string).
//An empty document gives an empty tree.
func ParseYAML(data []byte) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, newError(err, "", "ParseYAML")
	}
	if doc.Kind == 0 {
		return NewTree(), nil
	}
	node := &doc
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return NewTree(), nil
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, newError(ErrNotMapping, "", "ParseYAML")
	}
	T, err := treeFromNode(node, "")
	if err != nil {
		return nil, errDecorate(err, "ParseYAML")
	}
	return T, nil
}

func treeFromNode(n *yaml.Node, path string) (*Tree, error) {
	T := NewTree()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		val, err := valueFromNode(n.Content[i+1], joinPath(path, key))
		if err != nil {
			return nil, err
		}
		T.Set(key, val)
	}
	return T, nil
}

func valueFromNode(n *yaml.Node, path string) (any, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		return treeFromNode(n, path)
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return []any{}, nil
		}
		mappings := 0
		for _, c := range n.Content {
			switch resolveAlias(c).Kind {
			case yaml.MappingNode:
				mappings++
			case yaml.SequenceNode:
				return nil, newError(ErrUnsupportedValue, path, "valueFromNode")
			}
		}
		if mappings != 0 && mappings != len(n.Content) {
			return nil, newError(ErrMixedList, path, "valueFromNode")
		}
		if mappings != 0 {
			ret := make([]*Tree, len(n.Content))
			for i, c := range n.Content {
				t, err := treeFromNode(resolveAlias(c), path)
				if err != nil {
					return nil, err
				}
				ret[i] = t
			}
			return ret, nil
		}
		ret := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := scalarFromNode(resolveAlias(c), path)
			if err != nil {
				return nil, err
			}
			ret[i] = v
		}
		return ret, nil
	case yaml.ScalarNode:
		return scalarFromNode(n, path)
	}
	return nil, newError(ErrUnsupportedValue, path, "valueFromNode")
}

func scalarFromNode(n *yaml.Node, path string) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, newError(err, path, "scalarFromNode")
	}
	switch v.(type) {
	case string, bool, int, int64, uint64, float64:
		return v, nil
	}
	//null and timestamps
	return nil, newError(ErrUnsupportedValue, path, "scalarFromNode")
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "/" + key
}

//FromMap converts a map, as obtained from encoding/json or yaml, into a Tree.
//Go maps have no order, so the keys of each section are sorted.
//Nested maps become sections and slices of maps repeated sections.
func FromMap(m map[string]any) *Tree {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	T := NewTree()
	for _, k := range keys {
		T.Set(k, fromMapValue(m[k]))
	}
	return T
}

func fromMapValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return FromMap(v)
	case []map[string]any:
		ret := make([]*Tree, len(v))
		for i, m := range v {
			ret[i] = FromMap(m)
		}
		return ret
	case []any:
		ret := make([]any, len(v))
		for i, e := range v {
			ret[i] = fromMapValue(e)
		}
		return ret
	}
	return v
}
