/*
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package oir

import (
    `fmt`
    `strings`

    `gonum.org/v1/gonum/graph`
    `gonum.org/v1/gonum/graph/encoding`
    `gonum.org/v1/gonum/graph/encoding/dot`
    `gonum.org/v1/gonum/graph/iterator`
)

type _DotNode struct {
    bb *BasicBlock
}

func (self _DotNode) ID() int64 {
    return int64(self.bb.Id)
}

func (self _DotNode) DOTID() string {
    return fmt.Sprintf("bb_%d", self.bb.Id)
}

func (self _DotNode) Attributes() []encoding.Attribute {
    lines := strings.Split(self.bb.String(), "\n")
    for i, s := range lines {
        lines[i] = strings.ReplaceAll(strings.TrimSpace(s), `"`, `'`)
    }
    return []encoding.Attribute {
        { Key: "shape", Value: "box" },
        { Key: "label", Value: strings.Join(lines, `\l`) + `\l` },
    }
}

type _DotEdge struct {
    f _DotNode
    t _DotNode
}

func (self _DotEdge) From() graph.Node         { return self.f }
func (self _DotEdge) To() graph.Node           { return self.t }
func (self _DotEdge) ReversedEdge() graph.Edge { return _DotEdge{f: self.t, t: self.f} }

type _DotGraph struct {
    order []*BasicBlock
    index map[int64]*BasicBlock
}

func newDotGraph(cfg *CFG) *_DotGraph {
    g := &_DotGraph {
        index: make(map[int64]*BasicBlock),
    }
    g.order = cfg.PostOrder().Reversed()
    for _, bb := range g.order {
        g.index[int64(bb.Id)] = bb
    }
    return g
}

func (self *_DotGraph) nodes(bbs []*BasicBlock) graph.Nodes {
    r := make([]graph.Node, 0, len(bbs))
    for _, bb := range bbs {
        r = append(r, _DotNode{bb: bb})
    }
    return iterator.NewOrderedNodes(r)
}

func (self *_DotGraph) Node(id int64) graph.Node {
    if bb, ok := self.index[id]; ok {
        return _DotNode{bb: bb}
    } else {
        return nil
    }
}

func (self *_DotGraph) Nodes() graph.Nodes {
    return self.nodes(self.order)
}

func (self *_DotGraph) From(id int64) graph.Nodes {
    return self.nodes(self.index[id].Successors())
}

func (self *_DotGraph) To(id int64) graph.Nodes {
    return self.nodes(self.index[id].Pred)
}

func (self *_DotGraph) HasEdgeFromTo(uid int64, vid int64) bool {
    for _, p := range self.index[uid].Successors() {
        if int64(p.Id) == vid {
            return true
        }
    }
    return false
}

func (self *_DotGraph) HasEdgeBetween(xid int64, yid int64) bool {
    return self.HasEdgeFromTo(xid, yid) || self.HasEdgeFromTo(yid, xid)
}

func (self *_DotGraph) Edge(uid int64, vid int64) graph.Edge {
    if !self.HasEdgeFromTo(uid, vid) {
        return nil
    }
    return _DotEdge {
        f: _DotNode{bb: self.index[uid]},
        t: _DotNode{bb: self.index[vid]},
    }
}

// ExportDot renders the CFG in Graphviz DOT format.
func ExportDot(cfg *CFG) ([]byte, error) {
    return dot.Marshal(newDotGraph(cfg), cfg.Name, "", "    ")
}
