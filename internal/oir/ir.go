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

// Package oir implements an Ownership-SSA intermediate representation: an
// SSA-form CFG in which every value carries a static ownership kind and
// every operand a static operand-ownership classification. Block parameters
// serve as phi nodes, branch instructions carry the incoming values.
package oir

import (
    `fmt`
)

// Ownership is the static ownership kind of a value.
type Ownership uint8

const (
    OwnNone Ownership = iota
    OwnOwned
    OwnGuaranteed
    OwnUnowned
)

func (self Ownership) String() string {
    switch self {
        case OwnNone       : return "none"
        case OwnOwned      : return "owned"
        case OwnGuaranteed : return "guaranteed"
        case OwnUnowned    : return "unowned"
        default            : panic("unreachable")
    }
}

// OperandOwnership classifies the constraint an operand places on the
// lifetime of the value it uses.
type OperandOwnership uint8

const (
    OperNonUse OperandOwnership = iota
    OperTrivialUse
    OperInstantaneousUse
    OperUnownedInstantaneousUse
    OperForwardingUnowned
    OperPointerEscape
    OperBitwiseEscape
    OperBorrow
    OperDestroyingConsume
    OperForwardingConsume
    OperInteriorPointer
    OperForwardingBorrow
    OperEndBorrow
    OperReborrow
)

func (self OperandOwnership) String() string {
    switch self {
        case OperNonUse                 : return "non-use"
        case OperTrivialUse             : return "trivial-use"
        case OperInstantaneousUse       : return "instantaneous-use"
        case OperUnownedInstantaneousUse: return "unowned-instantaneous-use"
        case OperForwardingUnowned      : return "forwarding-unowned"
        case OperPointerEscape          : return "pointer-escape"
        case OperBitwiseEscape          : return "bitwise-escape"
        case OperBorrow                 : return "borrow"
        case OperDestroyingConsume      : return "destroying-consume"
        case OperForwardingConsume      : return "forwarding-consume"
        case OperInteriorPointer        : return "interior-pointer"
        case OperForwardingBorrow       : return "forwarding-borrow"
        case OperEndBorrow              : return "end-borrow"
        case OperReborrow               : return "reborrow"
        default                         : panic("unreachable")
    }
}

// IsLifetimeEnding reports whether an operand of this classification ends
// the lifetime of an owned value.
func (self OperandOwnership) IsLifetimeEnding() bool {
    return self == OperDestroyingConsume || self == OperForwardingConsume
}

// Value is a single SSA value: either the result of an instruction or a
// block parameter.
type Value struct {
    id      int
    own     Ownership
    lexical bool
    def     Inst
    bb      *BasicBlock
    uses    []*Operand
}

func (self *Value) Id() int {
    return self.id
}

func (self *Value) Kind() Ownership {
    return self.own
}

// DefiningInst returns the defining instruction, or nil for block parameters.
func (self *Value) DefiningInst() Inst {
    return self.def
}

// ParentBlock returns the block the value is defined in.
func (self *Value) ParentBlock() *BasicBlock {
    return self.bb
}

// IsPhi reports whether the value is a block parameter fed by branches.
// Parameters of the entry block are function arguments, not phis.
func (self *Value) IsPhi() bool {
    return self.def == nil && len(self.bb.Pred) != 0
}

// MarkLexical pins the value to its source-visible lifetime. Lexical values
// are skipped by lifetime canonicalization.
func (self *Value) MarkLexical() *Value {
    self.lexical = true
    return self
}

func (self *Value) IsLexical() bool {
    return self.lexical
}

// Uses returns a snapshot of the value's use list. The returned slice stays
// valid while uses are retargeted or added, which makes it safe to mutate
// the chain during a walk.
func (self *Value) Uses() []*Operand {
    r := make([]*Operand, len(self.uses))
    copy(r, self.uses)
    return r
}

func (self *Value) NumUses() int {
    return len(self.uses)
}

func (self *Value) HasOneUse() bool {
    return len(self.uses) == 1
}

func (self *Value) String() string {
    return fmt.Sprintf("%%%d", self.id)
}

func (self *Value) addUse(op *Operand) {
    self.uses = append(self.uses, op)
}

func (self *Value) dropUse(op *Operand) {
    for i, u := range self.uses {
        if u == op {
            self.uses = append(self.uses[:i], self.uses[i+1:]...)
            return
        }
    }
    panic("oir: dropping an unregistered use")
}

// Operand is a single use of a value by an instruction.
type Operand struct {
    user Inst
    v    *Value
    idx  int
}

func newOperand(user Inst, v *Value, idx int) *Operand {
    op := &Operand{user: user, v: v, idx: idx}
    v.addUse(op)
    return op
}

func (self *Operand) User() Inst {
    return self.user
}

func (self *Operand) Value() *Value {
    return self.v
}

func (self *Operand) Index() int {
    return self.idx
}

// SetValue retargets the operand to v, maintaining both use lists.
func (self *Operand) SetValue(v *Value) {
    self.v.dropUse(self)
    self.v = v
    v.addUse(self)
}

// IsLifetimeEnding reports whether this use ends the lifetime of the used
// value.
func (self *Operand) IsLifetimeEnding() bool {
    return self.Ownership().IsLifetimeEnding()
}

// Inst is a single instruction. Operands and results are materialized
// slices, not iterators: the canonicalizer mutates use chains while walking
// them.
type Inst interface {
    fmt.Stringer
    Operands() []*Operand
    Results() []*Value
    ParentBlock() *BasicBlock
    irnode()
}

// Terminator is the mandatory last instruction of a basic block.
type Terminator interface {
    Inst
    Successors() []*BasicBlock
    irterminator()
}

type instbase struct {
    bb *BasicBlock
}

func (self *instbase) ParentBlock() *BasicBlock {
    return self.bb
}

func (self *instbase) Results() []*Value {
    return nil
}

func (self *instbase) Operands() []*Operand {
    return nil
}
