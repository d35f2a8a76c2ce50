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

// copyLiveUse gives a consuming use its own copy of the used value, since
// the lifetime extends beyond it. The use snapshot being walked stays
// valid.
func (self *Canonicalizer) copyLiveUse(use *oir.Operand) {
    cp := oir.InsertCopyBefore(use.User(), use.Value())
    self.createdNewInst(cp)
    use.SetValue(cp.R)
    self.stats.CopiesGenerated++
    self.tracef("  copying at last use %s", cp)
}

// rewriteCopies revisits the def-use chain of the current def, deleting the
// original copies and destroys that the final consumes made redundant, and
// inserting fresh copies at interior uses that still require ownership of
// their operand.
func (self *Canonicalizer) rewriteCopies() {
    if self.def.Kind() != oir.OwnOwned {
        invariant("copy-rewrite", "rewriting a non-owned definition %s", self.def)
    }

    del := newInstSet()
    self.defUse.clear()

    /* Returns true if the operand may keep using the current definition,
     * false if it requires a copy. */
    visitUse := func(use *oir.Operand) bool {
        user := use.User()

        /* recurse through copies */
        if cp, ok := user.(*oir.IrCopy); ok {
            self.defUse.push(cp.R)
            return true
        }

        /* destroys are kept only when claimed as a final consume */
        if d, ok := user.(*oir.IrDestroy); ok {
            if !self.consumes.claimConsume(d) {
                if del.insert(d) {
                    self.stats.DestroysEliminated++
                    self.tracef("  removing %s", d)
                }
            }
            return true
        }

        /* non-consuming uses need no copy; scope-ending uses were filtered
         * out in step 1, so a lifetime-ending use here is a real consume */
        if !use.IsLifetimeEnding() {
            return true
        }

        /* an unclaimed consume keeps the value alive beyond itself */
        if !self.consumes.claimConsume(user) {
            self.notifyMoveOnlyCopy(use)
            return false
        }

        /* a final consuming user that is not a destroy */
        self.notifyFinalConsumingUse(use)
        return true
    }

    /* direct uses of the def */
    for _, use := range self.def.Uses() {
        if !visitUse(use) {
            self.copyLiveUse(use)
        }
    }

    /* then the uses of every discovered copy, reusing a copy in place when
     * exactly one same-block use still needs it */
    for v := self.defUse.pop(); v != nil; v = self.defUse.pop() {
        srcCopy := v.DefiningInst().(*oir.IrCopy)
        reused := (*oir.Operand)(nil)

        for _, use := range v.Uses() {
            if !visitUse(use) {
                if reused == nil && srcCopy.ParentBlock() == use.User().ParentBlock() {
                    reused = use
                } else {
                    self.copyLiveUse(use)
                }
            }
        }

        /* a copy serving exactly its one reused consume stays as it is */
        if reused != nil && v.HasOneUse() {
            continue
        }

        /* short-circuit the chain, then either retarget the reused consume
         * back to the copy or delete it */
        oir.ReplaceAllUses(v, srcCopy.V.Value())
        self.replacedValueUses(v, srcCopy.V.Value())
        if reused != nil {
            reused.SetValue(v)
        } else if del.insert(srcCopy) {
            self.stats.CopiesEliminated++
            self.tracef("  removing %s", srcCopy)
        }
    }

    /* every final consume must have been claimed by now */
    if self.consumes.hasUnclaimedConsumes() {
        invariant("copy-rewrite", "unclaimed consumes left after rewriting %s", self.def)
    }

    /* debug observers in dead blocks sit after the final consume */
    for dvi := range self.debugVals {
        if self.liveness.blockLiveness(dvi.ParentBlock()) == _Dead {
            self.consumes.recordDebugAfterConsume(dvi)
        }
    }

    /* drop the dead, unrecovered observers */
    for _, dvi := range self.consumes.debugInsts() {
        self.tracef("  removing %s", dvi)
        oir.ForceDelete(dvi)
    }

    /* and the leftover copies and destroys */
    for _, p := range del.list() {
        oir.ForceDelete(p)
    }
}
