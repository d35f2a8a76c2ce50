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

type Pass interface {
    Apply(*CFG)
}

type PassDescriptor struct {
    Pass Pass
    Name string
}

type _CrEdge struct {
    to   *BasicBlock
    from *BasicBlock
}

// SplitCritical splits critical edges (those that go from a block with
// more than one outedge to a block with more than one inedge) by inserting
// an empty block.
//
// Destroy placement wants a critical-edge-free CFG so that a destroy meant
// for one edge never executes on another.
type SplitCritical struct{}

func (SplitCritical) Apply(cfg *CFG) {
    var edges []_CrEdge

    /* find all critical edges */
    cfg.PostOrder().ForEach(func(bb *BasicBlock) {
        if len(bb.Pred) > 1 {
            for _, p := range bb.Pred {
                if len(p.Successors()) > 1 {
                    edges = append(edges, _CrEdge {
                        to   : bb,
                        from : p,
                    })
                }
            }
        }
    })

    /* insert empty block between the edges */
    for _, e := range edges {
        bb := cfg.CreateBlock()
        bb.Jump(e.to)
        bb.Pred = []*BasicBlock { e.from }
        replaceSuccessor(e.from, e.to, bb)
    }

    /* rebuild the CFG if needed */
    if len(edges) != 0 {
        cfg.Rebuild()
    }
}

func replaceSuccessor(from *BasicBlock, to *BasicBlock, with *BasicBlock) {
    switch p := from.Term.(type) {
        default: {
            panic("oir: terminator has no such successor")
        }

        /* only conditional branches can form critical edges: unconditional
         * branches have a single successor */
        case *IrCondBr: {
            if p.Then == to {
                p.Then = with
            } else if p.Else == to {
                p.Else = with
            } else {
                panic("oir: terminator has no such successor")
            }
        }
    }
}
