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
)

// instOrTerm addresses the block body with the terminator at index
// len(bb.Ins).
func instOrTerm(bb *oir.BasicBlock, i int) oir.Inst {
    if i < len(bb.Ins) {
        return bb.Ins[i]
    } else {
        return bb.Term
    }
}

// endsAccessOverlapping reports whether p is an end-access whose scope
// partially overlaps the end of the pruned live range. Hoisting a destroy
// over such an end would run a destructor inside an access scope that
// previously executed outside of it.
//
// Not overlapping (ignored):
//
//     %def
//     use %def     // pruned liveness ends here
//     begin_access
//     end_access
//
// Overlapping (must extend pruned liveness):
//
//     %def
//     begin_access
//     use %def     // pruned liveness ends here
//     end_access
//
func (self *Canonicalizer) endsAccessOverlapping(p oir.Inst) bool {
    if _, ok := p.(*oir.IrEndUnpairedAccess); ok {
        return true
    }
    ea, ok := p.(*oir.IrEndAccess)
    if !ok {
        return false
    }

    ba := ea.Begin()
    beginBB := ba.ParentBlock()

    switch self.liveness.blockLiveness(beginBB) {
        default: {
            panic("unreachable")
        }

        /* the begin is inside the lifetime, the end outside */
        case _LiveOut: {
            return true
        }

        /* same-block overlap: an interesting user strictly after the
         * begin-access means the boundary is inside the scope */
        case _LiveWithin: {
            for i := beginBB.IndexOf(ba) + 1; i <= len(beginBB.Ins); i++ {
                if q := instOrTerm(beginBB, i); q != nil && self.liveness.interestingUser(q) != _NonUser {
                    return true
                }
            }
            return false
        }

        /* the end is dominated by both the begin and the def, so a path
         * from the begin to the def avoiding the end exists only if the
         * begin's block properly dominates the def's block */
        case _Dead: {
            return self.dom.ProperlyDominates(beginBB, self.def.ParentBlock())
        }
    }
}

// extendLivenessThroughOverlappingAccess finds the access scopes that
// partially overlap the pruned boundary and extends liveness past their
// end-access, repeating until a fixed point: extending over one scope can
// expose an overlap with another, since unrelated accesses need not follow
// a stack discipline:
//
//     %def
//     begin_access A
//     use %def        // initial boundary
//     begin_access B
//     end_access A    // boundary after the first extension
//     end_access B    // boundary after the second extension
//     destroy %def
//
// Only dead blocks backward-reachable from an original consume are
// searched, to keep unnecessary lifetime extension to a minimum.
func (self *Canonicalizer) extendLivenessThroughOverlappingAccess() {
    changed := true
    for changed {
        changed = false

        /* candidate blocks: the consuming blocks, plus every predecessor
         * chain behind a dead candidate. Populated up front so membership
         * can be tested while scanning. */
        cand := newBlockSet()
        for i := 0; i < self.consuming.size(); i++ {
            cand.insert(self.consuming.at(i))
        }
        for i := 0; i < cand.size(); i++ {
            if bb := cand.at(i); self.liveness.blockLiveness(bb) == _Dead {
                for _, p := range bb.Pred {
                    cand.insert(p)
                }
            }
        }

        /* scan the candidates until one of them extends liveness */
        for i := 0; i < cand.size(); i++ {
            bb := cand.at(i)
            bl := self.liveness.blockLiveness(bb)

            /* blocks inside pruned liveness are irrelevant */
            if bl == _LiveOut {
                continue
            }

            /* dead blocks without a non-local end-access cannot overlap */
            if bl == _Dead && !self.access.ContainsNonLocalEndAccess(bb) {
                continue
            }

            if self.extendInBlock(bb, &cand, bl == _LiveWithin) {
                changed = true
                break
            }
        }
    }
}

func (self *Canonicalizer) extendInBlock(bb *oir.BasicBlock, cand *_BlockSet, blockHasUse bool) bool {

    /* skip past the last original destroy of a consuming block, unless a
     * dead candidate successor indicates original liveness extended below
     * it; this avoids extending over end-accesses that only executed after
     * the original end of life. A consuming block without an original
     * destroy is then not scanned at all */
    findLastConsume := self.consuming.contains(bb)
    if findLastConsume {
        for _, succ := range bb.Successors() {
            if cand.contains(succ) && self.liveness.blockLiveness(succ) == _Dead {
                findLastConsume = false
                break
            }
        }
    }

    /* latest partially overlapping scope first */
    for i := len(bb.Ins); i >= 0; i-- {
        p := instOrTerm(bb, i)
        if p == nil {
            continue
        }
        if findLastConsume {
            findLastConsume = !self.isOriginalDestroy(p)
            continue
        }

        /* stop at the latest use: an earlier end-access does not overlap */
        if blockHasUse && self.liveness.interestingUser(p) != _NonUser {
            return false
        }
        if self.endsAccessOverlapping(p) {
            self.tracef("  extend liveness over %s in bb_%d", p, bb.Id)
            self.liveness.updateForUse(p, false)
            return true
        }
    }
    return false
}
