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

// CFG is a single function: a graph of basic blocks rooted at the entry
// block.
type CFG struct {
    Name string
    Root *BasicBlock
    nb   int
    nv   int
}

// CreateCFG builds an empty function with a fresh entry block.
func CreateCFG(name string) *CFG {
    cfg := &CFG{Name: name}
    cfg.Root = cfg.CreateBlock()
    return cfg
}

// CreateBlock adds a new, unlinked basic block.
func (self *CFG) CreateBlock() *BasicBlock {
    bb := &BasicBlock{Id: self.nb, cfg: self}
    self.nb++
    return bb
}

func (self *CFG) newValue(own Ownership, def Inst, bb *BasicBlock) *Value {
    v := &Value{id: self.nv, own: own, def: def, bb: bb}
    self.nv++
    return v
}

// Rebuild recomputes every predecessor list from the terminators.
func (self *CFG) Rebuild() {
    seen := make(map[int]*BasicBlock)

    /* drop the stale lists */
    self.dfs(self.Root, seen)
    for _, bb := range seen {
        bb.Pred = bb.Pred[:0]
    }

    /* re-link from the terminators */
    for _, bb := range seen {
        for _, p := range bb.Successors() {
            p.Pred = append(p.Pred, bb)
        }
    }
}

func (self *CFG) dfs(bb *BasicBlock, seen map[int]*BasicBlock) {
    if _, ok := seen[bb.Id]; !ok {
        seen[bb.Id] = bb
        for _, p := range bb.Successors() {
            self.dfs(p, seen)
        }
    }
}

func (self *CFG) String() string {
    buf := make([]string, 0, 16)
    for _, bb := range self.PostOrder().Reversed() {
        buf = append(buf, bb.String())
    }
    return fmt.Sprintf("func %s {\n%s\n}", self.Name, strings.Join(buf, "\n"))
}

// ReplaceAllUses retargets every use of old to new.
func ReplaceAllUses(old *Value, new *Value) {
    for _, use := range old.Uses() {
        use.SetValue(new)
    }
}

// ForceDelete unlinks an instruction from its block and drops its operand
// uses. Deletion order between instructions is arbitrary, but results must
// be unused.
func ForceDelete(p Inst) {
    for _, r := range p.Results() {
        if r.NumUses() != 0 {
            panic("oir: force-deleting the definition of a used value")
        }
    }
    for _, op := range p.Operands() {
        op.Value().dropUse(op)
    }
    p.ParentBlock().removeInst(p)
}
