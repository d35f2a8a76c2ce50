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

// AccessBlocks is a per-function summary of exclusive-access scopes that
// span block boundaries.
type AccessBlocks struct {
    nonLocalEnd map[int]struct{}
}

// BuildAccessBlocks scans every reachable block once, recording the blocks
// holding an end-access whose begin-access lives in a different block. An
// end-unpaired-access counts as non-local: its begin is never statically
// known.
func BuildAccessBlocks(cfg *CFG) *AccessBlocks {
    ab := &AccessBlocks {
        nonLocalEnd: make(map[int]struct{}),
    }

    /* scan the reachable blocks */
    cfg.PostOrder().ForEach(func(bb *BasicBlock) {
        for _, p := range bb.Ins {
            switch v := p.(type) {
                case *IrEndUnpairedAccess : ab.nonLocalEnd[bb.Id] = struct{}{}
                case *IrEndAccess         : if v.Begin().ParentBlock() != bb { ab.nonLocalEnd[bb.Id] = struct{}{} }
            }
        }
    })
    return ab
}

// ContainsNonLocalEndAccess reports whether bb closes an access scope that
// was opened in another block.
func (self *AccessBlocks) ContainsNonLocalEndAccess(bb *BasicBlock) bool {
    _, ok := self.nonLocalEnd[bb.Id]
    return ok
}
