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

// findOrInsertDestroys populates the consume info with the final destroy
// points of the current def: one final consume per live-within block, and a
// destroy at the entry of the target of every CFG edge leaving the live
// region. It walks backwards from every original consuming block through
// the dead region up to the pruned liveness boundary.
func (self *Canonicalizer) findOrInsertDestroys() {
    wl := newBlockWorklist()
    for i := 0; i < self.consuming.size(); i++ {
        wl.push(self.consuming.at(i))
    }

    for bb := wl.pop(); bb != nil; bb = wl.pop() {
        switch self.liveness.blockLiveness(bb) {
            default: {
                panic("unreachable")
            }

            /* a consuming block may turn out to be live-out once the whole
             * lifetime is known, it is irrelevant for the boundary then */
            case _LiveOut: {
                break
            }

            /* the boundary is inside this block */
            case _LiveWithin: {
                self.findOrInsertDestroyInBlock(bb)
            }

            /* keep climbing, placing destroys on the edges that leave the
             * live region */
            case _Dead: {
                for _, pred := range bb.Pred {
                    if self.liveness.blockLiveness(pred) == _LiveOut {
                        self.findOrInsertDestroyOnCFGEdge(pred, bb)
                    } else {
                        wl.push(pred)
                    }
                }
            }
        }
    }
}

// findDestroyOnCFGEdge looks past incidental uses and unrelated destroys at
// the head of edgeBB for an existing destroy of def.
func findDestroyOnCFGEdge(edgeBB *oir.BasicBlock, def *oir.Value) *oir.IrDestroy {
    for _, p := range edgeBB.Ins {
        if oir.IncidentalUse(p) {
            continue
        }
        if d, ok := p.(*oir.IrDestroy); ok {
            if d.V.Value() == def {
                return d
            }
            continue
        }
        break
    }
    return nil
}

// findOrInsertDestroyOnCFGEdge handles a liveness boundary on the edge
// predBB -> succBB: the def is live out of another successor of predBB.
// Reusing a destroy already on the edge avoids churning instruction
// identity when canonicalization runs inside an iterative worklist.
func (self *Canonicalizer) findOrInsertDestroyOnCFGEdge(predBB *oir.BasicBlock, succBB *oir.BasicBlock) {
    if len(succBB.Pred) != 1 || succBB.Pred[0] != predBB {
        invariant("destroy-placement", "value is live-out on another bb_%d successor: critical edge?", predBB.Id)
    }

    /* reuse the destroy on the edge if one exists */
    di := findDestroyOnCFGEdge(succBB, self.def)
    if di == nil {
        di = oir.InsertDestroyAt(succBB, 0, self.def)
        self.createdNewInst(di)
        self.stats.DestroysGenerated++
        self.tracef("  destroy on edge bb_%d -> bb_%d", predBB.Id, succBB.Id)
    }
    self.consumes.recordFinalConsume(di)
}

// findOrInsertDestroyInBlock scans a live-within block from the terminator
// upwards for the last interesting user. A consuming last user becomes the
// final consume; otherwise a destroy is placed right after the last user,
// reusing an existing destroy when only ignored instructions intervene.
func (self *Canonicalizer) findOrInsertDestroyInBlock(bb *oir.BasicBlock) {
    defInst := self.def.DefiningInst()
    existing := (*oir.IrDestroy)(nil)
    i := len(bb.Ins)

    for {
        p := instOrTerm(bb, i)

        /* debug observers encountered above the boundary scan are found
         * below the final consume */
        if self.opts.PruneDebug {
            if dvi, ok := p.(*oir.IrDebugValue); ok {
                if _, rec := self.debugVals[dvi]; rec {
                    delete(self.debugVals, dvi)
                    self.consumes.recordDebugAfterConsume(dvi)
                }
            }
        }

        switch self.liveness.interestingUser(p) {
            case _NonUser: {
                break
            }

            /* a non-consuming last user: destroy right after it, or on
             * every outgoing edge when the user is the terminator */
            case _NonLifetimeEndingUse: {
                if i == len(bb.Ins) {
                    for _, succ := range bb.Successors() {
                        self.findOrInsertDestroyOnCFGEdge(bb, succ)
                    }
                } else {
                    self.insertDestroyAt(bb, i + 1, existing)
                }
                return
            }

            /* the last user consumes the value itself */
            case _LifetimeEndingUse: {
                self.consumes.recordFinalConsume(p)
                return
            }
        }

        /* remember the latest reusable destroy of the def while scanning
         * over ignored instructions */
        if !oir.IgnoredByDestroyHoisting(p) {
            existing = nil
        } else if existing == nil {
            if d, ok := p.(*oir.IrDestroy); ok && oir.CanonicalCopiedDef(d.V.Value()) == self.def {
                existing = d
            }
        }

        /* the block starts without an interesting user: the def must be a
         * dead block argument of this very block */
        if i == 0 {
            if defInst != nil || self.def.ParentBlock() != bb {
                invariant("destroy-placement", "no use found above the boundary in bb_%d", bb.Id)
            }
            self.insertDestroyAt(bb, 0, existing)
            return
        }
        i--

        /* reaching the original def means a dead live range: destroy
         * immediately after the def */
        if defInst != nil && bb.Ins[i] == defInst {
            self.insertDestroyAt(bb, i + 1, existing)
            return
        }
    }
}

// insertDestroyAt materializes the final consume of bb before position i,
// preferring an existing destroy over a fresh one.
func (self *Canonicalizer) insertDestroyAt(bb *oir.BasicBlock, i int, existing *oir.IrDestroy) {

    /* the debug observers between the boundary and the reused destroy sit
     * before the consume after all */
    if existing != nil {
        for j := i; bb.Ins[j] != existing; j++ {
            if dvi, ok := bb.Ins[j].(*oir.IrDebugValue); ok {
                self.consumes.popDebugAfterConsume(dvi)
            }
        }
        self.consumes.recordFinalConsume(existing)
        return
    }

    /* artificially extend the lifetime up to the next non-ignored
     * instruction when requested */
    if self.opts.MaximizeLifetimes {
        for i < len(bb.Ins) && oir.IgnoredByDestroyHoisting(bb.Ins[i]) {
            if dvi, ok := bb.Ins[i].(*oir.IrDebugValue); ok {
                self.consumes.popDebugAfterConsume(dvi)
            }
            i++
        }
    }

    di := oir.InsertDestroyAt(bb, i, self.def)
    self.createdNewInst(di)
    self.consumes.recordFinalConsume(di)
    self.stats.DestroysGenerated++
    self.tracef("  destroy at boundary in bb_%d", bb.Id)
}
