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
    `github.com/oleiade/lane`

    `github.com/cloudwego/ossa/internal/oir`
)

// _ValueWorklist is a deduplicating FIFO of SSA values: a value is visited
// at most once per clear, no matter how many times it is pushed. Owned phi
// cycles through adjacent reborrows rely on this.
type _ValueWorklist struct {
    q *lane.Queue
    v map[int]struct{}
}

func newValueWorklist() _ValueWorklist {
    return _ValueWorklist {
        q: lane.NewQueue(),
        v: make(map[int]struct{}),
    }
}

func (self *_ValueWorklist) push(v *oir.Value) {
    if _, ok := self.v[v.Id()]; !ok {
        self.v[v.Id()] = struct{}{}
        self.q.Enqueue(v)
    }
}

func (self *_ValueWorklist) pop() *oir.Value {
    if self.q.Empty() {
        return nil
    } else {
        return self.q.Dequeue().(*oir.Value)
    }
}

func (self *_ValueWorklist) clear() {
    self.q = lane.NewQueue()
    self.v = make(map[int]struct{})
}

// _BlockWorklist is a deduplicating FIFO of basic blocks.
type _BlockWorklist struct {
    q *lane.Queue
    v map[int]struct{}
}

func newBlockWorklist() _BlockWorklist {
    return _BlockWorklist {
        q: lane.NewQueue(),
        v: make(map[int]struct{}),
    }
}

func (self *_BlockWorklist) push(bb *oir.BasicBlock) {
    if _, ok := self.v[bb.Id]; !ok {
        self.v[bb.Id] = struct{}{}
        self.q.Enqueue(bb)
    }
}

func (self *_BlockWorklist) pop() *oir.BasicBlock {
    if self.q.Empty() {
        return nil
    } else {
        return self.q.Dequeue().(*oir.BasicBlock)
    }
}

// _BlockSet is an ordered block set that may grow while being iterated by
// index, which the access-scope extender depends on.
type _BlockSet struct {
    l []*oir.BasicBlock
    m map[int]struct{}
}

func newBlockSet() _BlockSet {
    return _BlockSet {
        m: make(map[int]struct{}),
    }
}

func (self *_BlockSet) insert(bb *oir.BasicBlock) {
    if _, ok := self.m[bb.Id]; !ok {
        self.m[bb.Id] = struct{}{}
        self.l = append(self.l, bb)
    }
}

func (self *_BlockSet) contains(bb *oir.BasicBlock) bool {
    _, ok := self.m[bb.Id]
    return ok
}

func (self *_BlockSet) size() int {
    return len(self.l)
}

func (self *_BlockSet) at(i int) *oir.BasicBlock {
    return self.l[i]
}

func (self *_BlockSet) clear() {
    self.l = self.l[:0]
    self.m = make(map[int]struct{})
}

// _InstSet is an ordered instruction set used to batch deletions.
type _InstSet struct {
    l []oir.Inst
    m map[oir.Inst]struct{}
}

func newInstSet() _InstSet {
    return _InstSet {
        m: make(map[oir.Inst]struct{}),
    }
}

func (self *_InstSet) insert(p oir.Inst) bool {
    if _, ok := self.m[p]; ok {
        return false
    }
    self.m[p] = struct{}{}
    self.l = append(self.l, p)
    return true
}

func (self *_InstSet) list() []oir.Inst {
    return self.l
}
