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
)

// Verify checks the fundamental OSSA invariant for every owned value: each
// program path from the definition reaches a lifetime-ending use, and no
// use follows that lifetime-ending use within the same block. The walk stops
// at the block that ends the lifetime: uses or second consumes in the blocks
// after it are not detected.
func Verify(cfg *CFG) error {
    var vals []*Value

    /* collect every owned value */
    cfg.PostOrder().ForEach(func(bb *BasicBlock) {
        for _, p := range bb.Params {
            if p.Kind() == OwnOwned {
                vals = append(vals, p)
            }
        }
        for _, ins := range bb.Ins {
            for _, r := range ins.Results() {
                if r.Kind() == OwnOwned {
                    vals = append(vals, r)
                }
            }
        }
    })

    /* check them one by one */
    for _, v := range vals {
        if err := verifyValue(v); err != nil {
            return err
        }
    }
    return nil
}

func verifyValue(v *Value) error {
    bb := v.ParentBlock()
    start := 0

    /* results become live after the defining instruction */
    if v.DefiningInst() != nil {
        start = bb.IndexOf(v.DefiningInst()) + 1
    }
    return walkAlive(v, bb, start, make(map[int]struct{}))
}

func walkAlive(v *Value, bb *BasicBlock, start int, seen map[int]struct{}) error {
    alive := true

    /* scan the block body and the terminator */
    for i := start; i <= len(bb.Ins); i++ {
        var p Inst
        if i < len(bb.Ins) {
            p = bb.Ins[i]
        } else if bb.Term != nil {
            p = bb.Term
        } else {
            break
        }

        /* every operand on v requires it to still be alive */
        for _, op := range p.Operands() {
            if op.Value() != v {
                continue
            }
            if !alive {
                return fmt.Errorf("oir: use of %s after its lifetime ended: %s", v, p)
            }
            if op.IsLifetimeEnding() {
                alive = false
            }
        }
    }

    /* dead here, the path is complete */
    if !alive {
        return nil
    }

    /* a live value must not fall off a return path */
    if _, ok := bb.Term.(*IrReturn); ok || bb.Term == nil {
        return fmt.Errorf("oir: owned value %s leaks out of bb_%d", v, bb.Id)
    }

    /* still alive, every successor path must consume it */
    for _, succ := range bb.Successors() {
        if _, ok := seen[succ.Id]; !ok {
            seen[succ.Id] = struct{}{}
            if err := walkAlive(v, succ, 0, seen); err != nil {
                return err
            }
        }
    }
    return nil
}
