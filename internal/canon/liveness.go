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

type _BlockLiveness uint8

const (
    _Dead _BlockLiveness = iota
    _LiveWithin
    _LiveOut
)

func (self _BlockLiveness) String() string {
    switch self {
        case _Dead       : return "dead"
        case _LiveWithin : return "live-within"
        case _LiveOut    : return "live-out"
        default          : panic("unreachable")
    }
}

type _UserKind uint8

const (
    _NonUser _UserKind = iota
    _NonLifetimeEndingUse
    _LifetimeEndingUse
)

// _PrunedLiveness is the liveness of an extended lifetime computed while
// ignoring pre-existing destroys. Both the per-block states and the
// per-instruction user labels only ever grow.
type _PrunedLiveness struct {
    blocks map[int]_BlockLiveness
    users  map[oir.Inst]bool
}

func newPrunedLiveness() _PrunedLiveness {
    return _PrunedLiveness {
        blocks: make(map[int]_BlockLiveness),
        users : make(map[oir.Inst]bool),
    }
}

func (self *_PrunedLiveness) initDefBlock(bb *oir.BasicBlock) {
    self.blocks[bb.Id] = _LiveWithin
}

func (self *_PrunedLiveness) blockLiveness(bb *oir.BasicBlock) _BlockLiveness {
    return self.blocks[bb.Id]
}

// markBlockLive raises the block state, propagating live-out into the
// predecessors the first time a block becomes live. Propagation naturally
// stops at the seeded def block and at anything already live.
func (self *_PrunedLiveness) markBlockLive(bb *oir.BasicBlock, liveOut bool) {
    state := _LiveWithin
    if liveOut {
        state = _LiveOut
    }

    /* monotonic: never lower a state */
    old := self.blocks[bb.Id]
    if state <= old {
        return
    }
    self.blocks[bb.Id] = state

    /* newly live blocks extend liveness through every predecessor */
    if old == _Dead {
        for _, p := range bb.Pred {
            self.markBlockLive(p, true)
        }
    }
}

// updateForUse records a use of the extended lifetime.
func (self *_PrunedLiveness) updateForUse(p oir.Inst, lifetimeEnding bool) {
    self.markBlockLive(p.ParentBlock(), false)
    self.users[p] = self.users[p] || lifetimeEnding
}

func (self *_PrunedLiveness) interestingUser(p oir.Inst) _UserKind {
    if ending, ok := self.users[p]; !ok {
        return _NonUser
    } else if ending {
        return _LifetimeEndingUse
    } else {
        return _NonLifetimeEndingUse
    }
}

func (self *_PrunedLiveness) clear() {
    self.blocks = make(map[int]_BlockLiveness)
    self.users = make(map[oir.Inst]bool)
}

// computeCanonicalLiveness walks the def-use closure of the current def
// over copies and adjacent reborrow phis, recording pruned liveness,
// original consumes, pre-existing destroys and debug observers. It returns
// false when canonicalization must bail out.
func (self *Canonicalizer) computeCanonicalLiveness() bool {
    self.defUse.push(self.def)

    for v := self.defUse.pop(); v != nil; v = self.defUse.pop() {

        /* the lifetimes of reborrow phis adjacent to an owned phi depend
         * on the owned phi itself */
        if v.IsPhi() && v.Kind() == oir.OwnOwned {
            for _, rb := range oir.AdjacentReborrows(v) {
                self.defUse.push(rb)
            }
        }

        /* visit a snapshot of the uses */
        for _, use := range v.Uses() {
            user := use.User()

            /* recurse through copies */
            if cp, ok := user.(*oir.IrCopy); ok {
                self.defUse.push(cp.R)
                continue
            }

            /* debug observers outside the current live-out region are
             * interesting: phase 2 decides their fate */
            if self.opts.PruneDebug {
                if dvi, ok := user.(*oir.IrDebugValue); ok {
                    if self.liveness.blockLiveness(dvi.ParentBlock()) != _LiveOut {
                        self.debugVals[dvi] = struct{}{}
                    }
                    continue
                }
            }

            switch use.Ownership() {
                case oir.OperNonUse: {
                    break
                }

                /* owned values cannot appear in ownership-incompatible slots */
                case oir.OperTrivialUse: {
                    invariant("liveness", "trivial use of an owned value: %s", user)
                }

                /* conservatively treat unowned conversions like escapes */
                case oir.OperForwardingUnowned, oir.OperPointerEscape: {
                    return false
                }

                case oir.OperInstantaneousUse, oir.OperUnownedInstantaneousUse, oir.OperBitwiseEscape: {
                    self.liveness.updateForUse(user, false)
                }

                case oir.OperForwardingConsume: {
                    self.recordConsumingUse(use)
                    self.liveness.updateForUse(user, true)
                }

                /* a destroy does not force pruned liveness, a consuming
                 * store or call does */
                case oir.OperDestroyingConsume: {
                    if d, ok := user.(*oir.IrDestroy); ok {
                        self.destroys[d] = struct{}{}
                    } else {
                        self.liveness.updateForUse(user, true)
                    }
                    self.recordConsumingUse(use)
                }

                case oir.OperBorrow: {
                    if !self.updateForBorrowingOperand(use) {
                        return false
                    }
                }

                case oir.OperInteriorPointer, oir.OperForwardingBorrow, oir.OperEndBorrow: {
                    self.liveness.updateForUse(user, false)
                }

                case oir.OperReborrow: {
                    self.updateForReborrow(use)
                }
            }
        }
    }
    return true
}

func (self *Canonicalizer) recordConsumingUse(use *oir.Operand) {
    self.consuming.insert(use.User().ParentBlock())
}

// updateForBorrowingOperand extends liveness over a borrow scope by
// recording its scope-ending uses. Reborrowed or unresolved scopes are not
// supported and make the caller bail out.
func (self *Canonicalizer) updateForBorrowingOperand(use *oir.Operand) bool {
    bi, ok := use.User().(*oir.IrBorrow)
    if !ok {
        return false
    }

    /* find the scope ends; interior uses of the borrow are covered by them */
    found := false
    for _, u := range bi.R.Uses() {
        switch u.Ownership() {
            case oir.OperEndBorrow : self.liveness.updateForUse(u.User(), false); found = true
            case oir.OperReborrow  : return false
        }
    }
    return found
}

func (self *Canonicalizer) updateForReborrow(use *oir.Operand) {
    br, ok := use.User().(*oir.IrBranch)

    /* non-phi reborrows never end the lifetime of the owned value */
    if !ok {
        self.liveness.updateForUse(use.User(), false)
        for _, r := range use.User().Results() {
            self.defUse.push(r)
        }
        return
    }

    /* an adjacent phi consumes the value being reborrowed: this use does
     * not end the lifetime, but the branch does */
    if br.HasOperandValue(self.def) {
        self.liveness.updateForUse(br, true)
        return
    }

    /* the reborrowing phi's lifetime depends on the current def, its uses
     * extend liveness */
    self.liveness.updateForUse(br, false)
    self.defUse.push(br.ParamFor(use))
}
