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

package canon

import (
    `github.com/cloudwego/ossa/internal/oir`
    `github.com/cloudwego/ossa/internal/opts`
)

// CopyPropagation canonicalizes the extended lifetime of every owned value
// in a function.
type CopyPropagation struct {
    Options opts.Options
    Calls   Callbacks
}

func (self CopyPropagation) Apply(cfg *oir.CFG) {
    dom := oir.BuildDominatorTree(cfg)
    acc := oir.BuildAccessBlocks(cfg)
    c := NewCanonicalizer(cfg, &dom, acc, self.Options, self.Calls)

    /* Phase 1: collect the canonical defs up front, canonicalization
     * rewrites the use chains it walks */
    seen := make(map[int]struct{})
    defs := make([]*oir.Value, 0, 16)

    cfg.PostOrder().ForEach(func(bb *oir.BasicBlock) {
        for _, p := range bb.Params {
            defs = appendCanonicalDef(defs, seen, p)
        }
        for _, ins := range bb.Ins {
            for _, r := range ins.Results() {
                defs = appendCanonicalDef(defs, seen, r)
            }
        }
    })

    /* Phase 2: canonicalize every def */
    for _, d := range defs {
        c.CanonicalizeValueLifetime(d)
    }
}

func appendCanonicalDef(defs []*oir.Value, seen map[int]struct{}, v *oir.Value) []*oir.Value {
    if v.Kind() != oir.OwnOwned {
        return defs
    }

    /* copies belong to the extended lifetime of their canonical def */
    d := oir.CanonicalCopiedDef(v)
    if _, ok := seen[d.Id()]; ok {
        return defs
    }
    seen[d.Id()] = struct{}{}
    return append(defs, d)
}

// Passes is the default pipeline: destroy placement requires a CFG without
// critical edges.
var Passes = [...]oir.PassDescriptor {
    { Name: "Critical Edge Splitting" , Pass: new(oir.SplitCritical) },
    { Name: "Copy Propagation"        , Pass: new(CopyPropagation) },
}

// ExecutePasses runs the default pipeline on a function.
func ExecutePasses(cfg *oir.CFG) {
    for _, p := range Passes {
        p.Pass.Apply(cfg)
    }
}
