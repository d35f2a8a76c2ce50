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

// Package canon canonicalizes the extended lifetimes of owned OSSA values.
//
// Each call to CanonicalizeValueLifetime performs three steps on a single
// owned def:
//
//  1. Compute pruned liveness of the def and its copies, ignoring original
//     destroys, then extend it over partially overlapping exclusive-access
//     scopes.
//  2. Place final destroys on the pruned liveness boundary: on CFG edges
//     leaving the live region and after the last use inside live-within
//     blocks.
//  3. Rewrite the def-use chain: delete unclaimed copies and destroys, and
//     insert fresh copies at the uses that still require independent
//     ownership.
package canon

import (
    `fmt`

    `github.com/cloudwego/ossa/internal/oir`
    `github.com/cloudwego/ossa/internal/opts`
)

// Stats counts the copies and destroys churned by one canonicalizer. The
// counters are plain integers: coordinating them across concurrent hosts is
// the host's responsibility.
type Stats struct {
    CopiesGenerated    int
    CopiesEliminated   int
    DestroysGenerated  int
    DestroysEliminated int
}

// Callbacks notify the host about instruction modifications. All fields are
// optional. The canonicalizer performs the mutations itself and notifies
// afterwards; will-be-deleted or set-use observers are deliberately not
// offered, they are incompatible with the rewrite order.
type Callbacks struct {
    CreatedNewInst          func(oir.Inst)
    ReplaceValueUsesWith    func(oldv *oir.Value, newv *oir.Value)
    NotifyMoveOnlyCopy      func(*oir.Operand)
    NotifyFinalConsumingUse func(*oir.Operand)
}

// Canonicalizer rewrites extended lifetimes of owned values within one
// function. It is single-threaded; the caller owns the function for the
// duration of every call.
type Canonicalizer struct {
    cfg    *oir.CFG
    dom    *oir.DominatorTree
    access *oir.AccessBlocks
    opts   opts.Options
    calls  Callbacks
    stats  Stats

    /* per-def state, cleared between defs */
    def       *oir.Value
    defUse    _ValueWorklist
    liveness  _PrunedLiveness
    consumes  _ConsumeInfo
    consuming _BlockSet
    destroys  map[oir.Inst]struct{}
    debugVals map[*oir.IrDebugValue]struct{}
}

func NewCanonicalizer(cfg *oir.CFG, dom *oir.DominatorTree, access *oir.AccessBlocks, o opts.Options, calls Callbacks) *Canonicalizer {
    return &Canonicalizer {
        cfg       : cfg,
        dom       : dom,
        access    : access,
        opts      : o,
        calls     : calls,
        defUse    : newValueWorklist(),
        liveness  : newPrunedLiveness(),
        consumes  : newConsumeInfo(),
        consuming : newBlockSet(),
        destroys  : make(map[oir.Inst]struct{}),
        debugVals : make(map[*oir.IrDebugValue]struct{}),
    }
}

// Stats returns the running counters of this canonicalizer.
func (self *Canonicalizer) Stats() Stats {
    return self.stats
}

// CanonicalizeValueLifetime rewrites the extended lifetime of def. It
// returns true if canonicalization ran to completion, and false if the def
// was skipped (not owned, lexical) or the liveness computation bailed out;
// in both false cases the IR is left untouched.
func (self *Canonicalizer) CanonicalizeValueLifetime(def *oir.Value) bool {
    if def.Kind() != oir.OwnOwned {
        return false
    }
    if def.IsLexical() {
        return false
    }

    /* Step 1: compute pruned liveness */
    self.initDef(def)
    self.tracef("canonicalizing %s", def)

    /* nothing has been mutated yet when liveness bails out */
    if !self.computeCanonicalLiveness() {
        self.tracef("  bail: liveness is not computable for %s", def)
        self.clearState()
        return false
    }

    /* a destroy must never be hoisted into an access scope that did not
     * already contain one */
    self.extendLivenessThroughOverlappingAccess()
    self.dumpLiveness()

    /* Step 2: record final destroys */
    self.findOrInsertDestroys()

    /* Step 3: rewrite copies and delete extra destroys */
    self.rewriteCopies()
    self.clearState()
    return true
}

func (self *Canonicalizer) initDef(def *oir.Value) {
    self.def = def
    self.liveness.initDefBlock(def.ParentBlock())
}

func (self *Canonicalizer) clearState() {
    self.def = nil
    self.defUse.clear()
    self.liveness.clear()
    self.consumes.clear()
    self.consuming.clear()
    self.destroys = make(map[oir.Inst]struct{})
    self.debugVals = make(map[*oir.IrDebugValue]struct{})
}

func (self *Canonicalizer) isOriginalDestroy(p oir.Inst) bool {
    _, ok := self.destroys[p]
    return ok
}

func (self *Canonicalizer) tracef(format string, args ...interface{}) {
    if self.opts.Tracing() {
        fmt.Fprintf(self.opts.DebugWriter, "canon: "+format+"\n", args...)
    }
}

func (self *Canonicalizer) createdNewInst(p oir.Inst) {
    if self.calls.CreatedNewInst != nil {
        self.calls.CreatedNewInst(p)
    }
}

func (self *Canonicalizer) replacedValueUses(oldv *oir.Value, newv *oir.Value) {
    if self.calls.ReplaceValueUsesWith != nil {
        self.calls.ReplaceValueUsesWith(oldv, newv)
    }
}

func (self *Canonicalizer) notifyMoveOnlyCopy(use *oir.Operand) {
    if self.calls.NotifyMoveOnlyCopy != nil {
        self.calls.NotifyMoveOnlyCopy(use)
    }
}

func (self *Canonicalizer) notifyFinalConsumingUse(use *oir.Operand) {
    if self.calls.NotifyFinalConsumingUse != nil {
        self.calls.NotifyFinalConsumingUse(use)
    }
}
