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

// CanonicalCopiedDef follows copy chains back to the canonical producer of
// an extended lifetime.
func CanonicalCopiedDef(v *Value) *Value {
    for {
        if cp, ok := v.DefiningInst().(*IrCopy); ok {
            v = cp.V.Value()
        } else {
            return v
        }
    }
}

// IncidentalUse reports whether an instruction merely observes its operands
// (it can be skipped when matching a destroy at a block entry).
func IncidentalUse(p Inst) bool {
    _, ok := p.(*IrDebugValue)
    return ok
}

// IgnoredByDestroyHoisting reports whether destroy placement may scan past
// an instruction without giving up on reusing an existing destroy.
func IgnoredByDestroyHoisting(p Inst) bool {
    switch p.(type) {
        case *IrDestroy    : return true
        case *IrDebugValue : return true
        default            : return false
    }
}

// AdjacentReborrows finds the guaranteed parameters of an owned phi's block
// that are fed, on some predecessor branch, by a borrow of the owned phi's
// incoming value on that same branch. The lifetime of such a reborrow phi
// is dependent on the owned phi.
func AdjacentReborrows(phi *Value) []*Value {
    bb := phi.ParentBlock()
    own := paramIndex(bb, phi)
    ret := []*Value(nil)

    /* check every other guaranteed parameter */
    for i, p := range bb.Params {
        if i != own && p.Kind() == OwnGuaranteed && isReborrowOf(bb, own, i) {
            ret = append(ret, p)
        }
    }
    return ret
}

func paramIndex(bb *BasicBlock, v *Value) int {
    for i, p := range bb.Params {
        if p == v {
            return i
        }
    }
    panic("oir: value is not a parameter of this block")
}

func isReborrowOf(bb *BasicBlock, own int, idx int) bool {
    for _, pred := range bb.Pred {
        br, ok := pred.Term.(*IrBranch)
        if !ok || br.To != bb {
            continue
        }

        /* the guaranteed argument must be a borrow of the owned argument */
        vi := br.In[own].Value()
        bi, ok := br.In[idx].Value().DefiningInst().(*IrBorrow)
        if ok && CanonicalCopiedDef(bi.V.Value()) == CanonicalCopiedDef(vi) {
            return true
        }
    }
    return false
}
