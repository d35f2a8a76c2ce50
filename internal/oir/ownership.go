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

// Ownership returns the operand-ownership classification of this use. The
// classification is a total function of the user's kind (and, for calls and
// branches, of the operand slot), never an open extension point.
func (self *Operand) Ownership() OperandOwnership {
    switch p := self.user.(type) {
        default: {
            panic("oir: unclassified operand user")
        }

        /* calls classify per argument convention */
        case *IrCall: {
            switch p.Conv[self.idx] {
                case ConvTrivial    : return OperTrivialUse
                case ConvConsume    : return OperDestroyingConsume
                case ConvGuaranteed : return OperInstantaneousUse
                case ConvUnowned    : return OperUnownedInstantaneousUse
                default             : panic("unreachable")
            }
        }

        /* branch operands classify from the destination parameter */
        case *IrBranch: {
            switch p.To.Params[self.idx].Kind() {
                case OwnOwned      : return OperForwardingConsume
                case OwnGuaranteed : return OperReborrow
                case OwnUnowned    : return OperForwardingUnowned
                default            : return OperTrivialUse
            }
        }

        /* returns forward ownership out of the function */
        case *IrReturn: {
            switch self.v.Kind() {
                case OwnOwned : return OperForwardingConsume
                case OwnNone  : return OperTrivialUse
                default       : return OperForwardingUnowned
            }
        }

        case *IrCopy              : return OperInstantaneousUse
        case *IrDebugValue        : return OperInstantaneousUse
        case *IrDestroy           : return OperDestroyingConsume
        case *IrStore             : return OperDestroyingConsume
        case *IrForward           : return OperForwardingConsume
        case *IrBorrow            : return OperBorrow
        case *IrEndBorrow         : return OperEndBorrow
        case *IrGuaranteedForward : return OperForwardingBorrow
        case *IrInteriorPointer   : return OperInteriorPointer
        case *IrPointerEscape     : return OperPointerEscape
        case *IrBitwiseEscape     : return OperBitwiseEscape
        case *IrUnownedForward    : return OperForwardingUnowned
        case *IrEndAccess         : return OperTrivialUse
        case *IrCondBr            : return OperTrivialUse
    }
}
