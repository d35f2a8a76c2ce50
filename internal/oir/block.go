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
)

type BasicBlock struct {
    Id     int
    Params []*Value
    Ins    []Inst
    Term   Terminator
    Pred   []*BasicBlock
    cfg    *CFG
}

// Successors returns the successor blocks of the terminator, or nil for an
// unterminated or returning block.
func (self *BasicBlock) Successors() []*BasicBlock {
    if self.Term == nil {
        return nil
    } else {
        return self.Term.Successors()
    }
}

// IndexOf locates a non-terminator instruction within the block.
func (self *BasicBlock) IndexOf(p Inst) int {
    for i, v := range self.Ins {
        if v == p {
            return i
        }
    }
    panic("oir: instruction is not in this block")
}

func (self *BasicBlock) insertAt(i int, p Inst) {
    self.Ins = append(self.Ins, nil)
    copy(self.Ins[i+1:], self.Ins[i:])
    self.Ins[i] = p
}

func (self *BasicBlock) removeInst(p Inst) {
    i := self.IndexOf(p)
    self.Ins = append(self.Ins[:i], self.Ins[i+1:]...)
}

func (self *BasicBlock) append(p Inst) {
    if self.Term != nil {
        panic("oir: appending to a terminated block")
    }
    self.Ins = append(self.Ins, p)
}

func (self *BasicBlock) String() string {
    buf := make([]string, 0, len(self.Ins) + 2)

    /* dump the parameter list */
    if len(self.Params) == 0 {
        buf = append(buf, fmt.Sprintf("bb_%d:", self.Id))
    } else {
        args := make([]string, 0, len(self.Params))
        for _, p := range self.Params {
            args = append(args, fmt.Sprintf("%s: %s", p, p.Kind()))
        }
        buf = append(buf, fmt.Sprintf("bb_%d(%s):", self.Id, strings.Join(args, ", ")))
    }

    /* dump instructions and the terminator */
    for _, p := range self.Ins {
        buf = append(buf, "    " + p.String())
    }
    if self.Term != nil {
        buf = append(buf, "    " + self.Term.String())
    }
    return strings.Join(buf, "\n")
}

// AddParam appends a new block parameter of the given ownership kind.
func (self *BasicBlock) AddParam(own Ownership) *Value {
    v := self.cfg.newValue(own, nil, self)
    self.Params = append(self.Params, v)
    return v
}

// CallArg pairs a call argument with its ownership convention.
type CallArg struct {
    V    *Value
    Conv ArgConv
}

func Consumed(v *Value) CallArg   { return CallArg{V: v, Conv: ConvConsume} }
func Borrowed(v *Value) CallArg   { return CallArg{V: v, Conv: ConvGuaranteed} }
func UnownedArg(v *Value) CallArg { return CallArg{V: v, Conv: ConvUnowned} }
func TrivialArg(v *Value) CallArg { return CallArg{V: v, Conv: ConvTrivial} }

// Call appends an opaque call producing one result of the given ownership.
func (self *BasicBlock) Call(fn string, ret Ownership, args ...CallArg) *Value {
    p := &IrCall{instbase: instbase{bb: self}, Fn: fn}
    for i, a := range args {
        p.In = append(p.In, newOperand(p, a.V, i))
        p.Conv = append(p.Conv, a.Conv)
    }
    p.R = self.cfg.newValue(ret, p, self)
    self.append(p)
    return p.R
}

// Copy appends a copy of an owned value.
func (self *BasicBlock) Copy(v *Value) *Value {
    p := &IrCopy{instbase: instbase{bb: self}}
    p.V = newOperand(p, v, 0)
    p.R = self.cfg.newValue(OwnOwned, p, self)
    self.append(p)
    return p.R
}

// Destroy appends a destroy of an owned value.
func (self *BasicBlock) Destroy(v *Value) *IrDestroy {
    p := &IrDestroy{instbase: instbase{bb: self}}
    p.V = newOperand(p, v, 0)
    self.append(p)
    return p
}

// DebugValue appends a debug observer of a value.
func (self *BasicBlock) DebugValue(v *Value, name string) *IrDebugValue {
    p := &IrDebugValue{instbase: instbase{bb: self}, Name: name}
    p.V = newOperand(p, v, 0)
    self.append(p)
    return p
}

// Store appends a consuming store into an opaque slot.
func (self *BasicBlock) Store(v *Value, slot string) *IrStore {
    p := &IrStore{instbase: instbase{bb: self}, Slot: slot}
    p.V = newOperand(p, v, 0)
    self.append(p)
    return p
}

// Forward appends an ownership-forwarding consume of an owned value.
func (self *BasicBlock) Forward(v *Value) *Value {
    p := &IrForward{instbase: instbase{bb: self}}
    p.V = newOperand(p, v, 0)
    p.R = self.cfg.newValue(OwnOwned, p, self)
    self.append(p)
    return p.R
}

// Borrow appends a scoped borrow of a value.
func (self *BasicBlock) Borrow(v *Value) *Value {
    p := &IrBorrow{instbase: instbase{bb: self}}
    p.V = newOperand(p, v, 0)
    p.R = self.cfg.newValue(OwnGuaranteed, p, self)
    self.append(p)
    return p.R
}

// EndBorrow appends the scope end of a borrow.
func (self *BasicBlock) EndBorrow(g *Value) *IrEndBorrow {
    p := &IrEndBorrow{instbase: instbase{bb: self}}
    p.V = newOperand(p, g, 0)
    self.append(p)
    return p
}

// GuaranteedForward appends a projection of a guaranteed value.
func (self *BasicBlock) GuaranteedForward(g *Value) *Value {
    p := &IrGuaranteedForward{instbase: instbase{bb: self}}
    p.V = newOperand(p, g, 0)
    p.R = self.cfg.newValue(OwnGuaranteed, p, self)
    self.append(p)
    return p.R
}

// InteriorPointer appends a dependent address projection.
func (self *BasicBlock) InteriorPointer(v *Value) *Value {
    p := &IrInteriorPointer{instbase: instbase{bb: self}}
    p.V = newOperand(p, v, 0)
    p.R = self.cfg.newValue(OwnNone, p, self)
    self.append(p)
    return p.R
}

// PointerEscape appends an untracked pointer escape.
func (self *BasicBlock) PointerEscape(v *Value) *Value {
    p := &IrPointerEscape{instbase: instbase{bb: self}}
    p.V = newOperand(p, v, 0)
    p.R = self.cfg.newValue(OwnNone, p, self)
    self.append(p)
    return p.R
}

// BitwiseEscape appends a bit-pattern extraction.
func (self *BasicBlock) BitwiseEscape(v *Value) *Value {
    p := &IrBitwiseEscape{instbase: instbase{bb: self}}
    p.V = newOperand(p, v, 0)
    p.R = self.cfg.newValue(OwnUnowned, p, self)
    self.append(p)
    return p.R
}

// UnownedForward appends a conversion to an unowned reference.
func (self *BasicBlock) UnownedForward(v *Value) *Value {
    p := &IrUnownedForward{instbase: instbase{bb: self}}
    p.V = newOperand(p, v, 0)
    p.R = self.cfg.newValue(OwnUnowned, p, self)
    self.append(p)
    return p.R
}

// BeginAccess opens an exclusive-access scope, returning its token.
func (self *BasicBlock) BeginAccess(scope string) *Value {
    p := &IrBeginAccess{instbase: instbase{bb: self}, Scope: scope}
    p.R = self.cfg.newValue(OwnNone, p, self)
    self.append(p)
    return p.R
}

// EndAccess closes the scope identified by tok.
func (self *BasicBlock) EndAccess(tok *Value) *IrEndAccess {
    p := &IrEndAccess{instbase: instbase{bb: self}}
    p.Tok = newOperand(p, tok, 0)
    self.append(p)
    return p
}

// EndUnpairedAccess closes a dynamically-paired access scope.
func (self *BasicBlock) EndUnpairedAccess() *IrEndUnpairedAccess {
    p := &IrEndUnpairedAccess{instbase: instbase{bb: self}}
    self.append(p)
    return p
}

// Jump terminates the block with an unconditional branch, passing args to
// the destination's block parameters.
func (self *BasicBlock) Jump(to *BasicBlock, args ...*Value) *IrBranch {
    if len(args) != len(to.Params) {
        panic("oir: branch argument count does not match destination parameters")
    }
    p := &IrBranch{instbase: instbase{bb: self}, To: to}
    for i, a := range args {
        p.In = append(p.In, newOperand(p, a, i))
    }
    self.setTerm(p)
    to.Pred = append(to.Pred, self)
    return p
}

// CondBr terminates the block with a two-way conditional branch.
func (self *BasicBlock) CondBr(cond *Value, then *BasicBlock, els *BasicBlock) *IrCondBr {
    p := &IrCondBr{instbase: instbase{bb: self}, Then: then, Else: els}
    p.V = newOperand(p, cond, 0)
    self.setTerm(p)
    then.Pred = append(then.Pred, self)
    els.Pred = append(els.Pred, self)
    return p
}

// Ret terminates the block with a return; v may be nil.
func (self *BasicBlock) Ret(v *Value) *IrReturn {
    p := &IrReturn{instbase: instbase{bb: self}}
    if v != nil {
        p.V = newOperand(p, v, 0)
    }
    self.setTerm(p)
    return p
}

func (self *BasicBlock) setTerm(p Terminator) {
    if self.Term != nil {
        panic("oir: block is already terminated")
    }
    self.Term = p
}

// InsertDestroyAt builds a destroy of v before position i of bb. Position
// len(bb.Ins) inserts immediately before the terminator.
func InsertDestroyAt(bb *BasicBlock, i int, v *Value) *IrDestroy {
    p := &IrDestroy{instbase: instbase{bb: bb}}
    p.V = newOperand(p, v, 0)
    bb.insertAt(i, p)
    return p
}

// InsertCopyBefore builds a copy of v immediately before user, which may be
// a terminator. The new value is defined in user's block.
func InsertCopyBefore(user Inst, v *Value) *IrCopy {
    bb := user.ParentBlock()
    p := &IrCopy{instbase: instbase{bb: bb}}
    p.V = newOperand(p, v, 0)
    p.R = bb.cfg.newValue(OwnOwned, p, bb)
    if user == bb.Term {
        bb.insertAt(len(bb.Ins), p)
    } else {
        bb.insertAt(bb.IndexOf(user), p)
    }
    return p
}
