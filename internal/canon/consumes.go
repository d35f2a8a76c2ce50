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

// _ConsumeInfo tracks the claimed final consume of every block on the
// lifetime boundary, and the debug observers found after it.
type _ConsumeInfo struct {
    finalBlockConsumes map[int]oir.Inst
    debugAfterConsume  []*oir.IrDebugValue
    debugMembers       map[*oir.IrDebugValue]struct{}
}

func newConsumeInfo() _ConsumeInfo {
    return _ConsumeInfo {
        finalBlockConsumes: make(map[int]oir.Inst),
        debugMembers      : make(map[*oir.IrDebugValue]struct{}),
    }
}

// recordFinalConsume registers p as the single final consume of its block.
func (self *_ConsumeInfo) recordFinalConsume(p oir.Inst) {
    bid := p.ParentBlock().Id
    if old, ok := self.finalBlockConsumes[bid]; ok && old != p {
        invariant("destroy-placement", "two final consumes in bb_%d", bid)
    }
    self.finalBlockConsumes[bid] = p
}

// claimConsume returns true iff p is the recorded final consume of its
// block and was not yet claimed. A claim is single-shot.
func (self *_ConsumeInfo) claimConsume(p oir.Inst) bool {
    bid := p.ParentBlock().Id
    if self.finalBlockConsumes[bid] != p {
        return false
    }
    delete(self.finalBlockConsumes, bid)
    return true
}

func (self *_ConsumeInfo) hasUnclaimedConsumes() bool {
    return len(self.finalBlockConsumes) != 0
}

func (self *_ConsumeInfo) recordDebugAfterConsume(dvi *oir.IrDebugValue) {
    if _, ok := self.debugMembers[dvi]; !ok {
        self.debugMembers[dvi] = struct{}{}
        self.debugAfterConsume = append(self.debugAfterConsume, dvi)
    }
}

func (self *_ConsumeInfo) popDebugAfterConsume(dvi *oir.IrDebugValue) {
    if _, ok := self.debugMembers[dvi]; ok {
        delete(self.debugMembers, dvi)
        for i, p := range self.debugAfterConsume {
            if p == dvi {
                self.debugAfterConsume = append(self.debugAfterConsume[:i], self.debugAfterConsume[i+1:]...)
                break
            }
        }
    }
}

func (self *_ConsumeInfo) debugInsts() []*oir.IrDebugValue {
    return self.debugAfterConsume
}

func (self *_ConsumeInfo) clear() {
    self.finalBlockConsumes = make(map[int]oir.Inst)
    self.debugAfterConsume = nil
    self.debugMembers = make(map[*oir.IrDebugValue]struct{})
}
