package vm

import (
	"math/big"

	"github.com/animicaorg/animica-node/address"
)

// State is the call's position in CANONICAL §4.2's
// IDLE → VALIDATE → EXEC → (COMMIT | REVERT | OOG | FAIL) state machine.
type State string

const (
	StateIdle     State = "IDLE"
	StateValidate State = "VALIDATE"
	StateExec     State = "EXEC"
	StateCommit   State = "COMMIT"
	StateRevert   State = "REVERT"
	StateOOG      State = "OOG"
	StateFail     State = "FAIL"
)

// CallContext carries the fixed, deterministic inputs to one call: nothing
// here may be sampled from ambient environment state.
type CallContext struct {
	Contract  address.Address
	Caller    address.Address
	TxHash    [32]byte
	CallIndex uint64
	GasLimit  uint64
	Depth     int
}

// Result is the terminal outcome of a call.
type Result struct {
	State      State
	GasUsed    uint64
	ReturnData []byte
	Events     []Event
	Err        error
}

// VM executes one Program against a Host under a gas meter and the fixed
// capacity caps. It is single-threaded and holds no state across calls.
type VM struct {
	stack   [][]byte
	gasUsed uint64
	gasCap  uint64
	steps   uint64
	rng     *PRNG
	host    Host
	ctx     CallContext
	events  []Event
	evBytes int
}

// Run validates prog and, if valid, executes it to a terminal state.
func Run(prog Program, host Host, ctx CallContext) Result {
	if ctx.Depth > MaxDepth {
		return Result{State: StateFail, Err: newVMErr(ErrDepthLimit, "call depth exceeded")}
	}
	if err := validate(prog); err != nil {
		return Result{State: StateFail, Err: err}
	}

	vm := &VM{
		gasCap: ctx.GasLimit,
		rng:    NewPRNG(ctx.TxHash, ctx.CallIndex),
		host:   host,
		ctx:    ctx,
	}
	return vm.exec(prog)
}

// validate implements the VALIDATE phase: structural checks that must pass
// before a single instruction executes, so a malformed program never burns
// gas or touches the host.
func validate(prog Program) error {
	if len(prog) == 0 {
		return newVMErr(ErrInvalidProgram, "empty program")
	}
	if len(prog) > MaxProgramInstructions {
		return newVMErr(ErrInvalidProgram, "program exceeds max instruction count")
	}
	for _, in := range prog {
		if _, ok := opcodeNames[in.Op]; !ok {
			return newVMErr(ErrUnknownOpcode, in.Op.String())
		}
		switch in.Op {
		case OpJump, OpJumpI:
			target := int(beUint64(in.Arg))
			if target < 0 || target >= len(prog) {
				return newVMErr(ErrInvalidJump, "jump target out of range")
			}
		case OpEmit:
			if len(in.Arg) == 0 {
				return newVMErr(ErrInvalidProgram, "emit requires a non-empty event name")
			}
		}
	}
	return nil
}

func (vm *VM) charge(cost uint64) error {
	vm.gasUsed += cost
	if vm.gasUsed > vm.gasCap {
		return newVMErr(ErrOutOfGas, "gas limit exceeded")
	}
	return nil
}

func (vm *VM) push(v []byte) error {
	if len(vm.stack) >= MaxStackDepth {
		return newVMErr(ErrStackOverflow, "")
	}
	if len(v) > MaxABIValueBytes {
		return newVMErr(ErrValueTooLarge, "")
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VM) pop() ([]byte, error) {
	n := len(vm.stack)
	if n == 0 {
		return nil, newVMErr(ErrStackUnderflow, "")
	}
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v, nil
}

func (vm *VM) exec(prog Program) Result {
	pc := 0
	for pc < len(prog) {
		vm.steps++
		if vm.steps > MaxSteps {
			return vm.fail(StateOOG, newVMErr(ErrStepLimit, "step limit exceeded"))
		}

		in := prog[pc]
		next := pc + 1

		switch in.Op {
		case OpConst:
			if err := vm.charge(GasConst); err != nil {
				return vm.fail(StateOOG, err)
			}
			if err := vm.push(append([]byte(nil), in.Arg...)); err != nil {
				return vm.fail(StateFail, err)
			}

		case OpPop:
			if err := vm.charge(GasPop); err != nil {
				return vm.fail(StateOOG, err)
			}
			if _, err := vm.pop(); err != nil {
				return vm.fail(StateFail, err)
			}

		case OpDup:
			if err := vm.charge(GasDup); err != nil {
				return vm.fail(StateOOG, err)
			}
			v, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			_ = vm.push(append([]byte(nil), v...))
			if err := vm.push(append([]byte(nil), v...)); err != nil {
				return vm.fail(StateFail, err)
			}

		case OpSwap:
			if err := vm.charge(GasSwap); err != nil {
				return vm.fail(StateOOG, err)
			}
			a, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			b, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			_ = vm.push(a)
			_ = vm.push(b)

		case OpAdd, OpSub, OpMul, OpDiv, OpMod:
			if res, err := vm.arith(in.Op); err != nil {
				if ve, ok := err.(*VMError); ok && ve.Code == ErrOutOfGas {
					return vm.fail(StateOOG, err)
				}
				return vm.fail(StateFail, err)
			} else {
				_ = vm.push(res)
			}

		case OpEq, OpLt, OpGt:
			if res, err := vm.compare(in.Op); err != nil {
				if ve, ok := err.(*VMError); ok && ve.Code == ErrOutOfGas {
					return vm.fail(StateOOG, err)
				}
				return vm.fail(StateFail, err)
			} else {
				_ = vm.push(res)
			}

		case OpJump:
			if err := vm.charge(GasJump); err != nil {
				return vm.fail(StateOOG, err)
			}
			next = int(beUint64(in.Arg))

		case OpJumpI:
			if err := vm.charge(GasJumpI); err != nil {
				return vm.fail(StateOOG, err)
			}
			cond, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			if !isZero(cond) {
				next = int(beUint64(in.Arg))
			}

		case OpLen:
			if err := vm.charge(GasLen); err != nil {
				return vm.fail(StateOOG, err)
			}
			v, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			_ = vm.push(EncodeScalar(big.NewInt(int64(len(v)))))

		case OpConcat:
			a, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			b, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			out := append(append([]byte(nil), b...), a...)
			if err := vm.charge(GasConcatBase + GasConcatSlope*uint64(len(out))); err != nil {
				return vm.fail(StateOOG, err)
			}
			if err := vm.push(out); err != nil {
				return vm.fail(StateFail, err)
			}

		case OpSlice:
			endB, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			startB, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			v, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			start := int(beUint64(startB))
			end := int(beUint64(endB))
			if start < 0 || end > len(v) || start > end {
				return vm.fail(StateFail, newVMErr(ErrInvalidProgram, "slice out of range"))
			}
			if err := vm.charge(GasSliceBase + GasSliceSlope*uint64(end-start)); err != nil {
				return vm.fail(StateOOG, err)
			}
			_ = vm.push(append([]byte(nil), v[start:end]...))

		case OpABIEnc:
			v, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			enc := EncodeBytes(v)
			if err := vm.charge(GasABIEncBase + GasABIEncSlope*uint64(len(enc))); err != nil {
				return vm.fail(StateOOG, err)
			}
			if err := vm.push(enc); err != nil {
				return vm.fail(StateFail, err)
			}

		case OpABIDec:
			v, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			dec, _, err := DecodeBytes(v)
			if err != nil {
				return vm.fail(StateFail, err)
			}
			if err := vm.charge(GasABIDecBase + GasABIDecSlope*uint64(len(dec))); err != nil {
				return vm.fail(StateOOG, err)
			}
			_ = vm.push(dec)

		case OpSHA3_256, OpSHA3_512, OpKeccak256:
			v, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			if err := vm.charge(hashGas(in.Op, len(v))); err != nil {
				return vm.fail(StateOOG, err)
			}
			_ = vm.push(hashBytes(in.Op, v))

		case OpSLoad:
			key, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			if len(key) > MaxStorageKeyBytes {
				return vm.fail(StateFail, newVMErr(ErrStorageKeyTooLarge, ""))
			}
			val, _, err := vm.host.SLoad(vm.ctx.Contract, key)
			if err != nil {
				return vm.fail(StateFail, newVMErr(ErrHostError, err.Error()))
			}
			if err := vm.charge(GasSLoadBase + GasSLoadKeySlope*uint64(len(key)) + GasSLoadValSlope*uint64(len(val))); err != nil {
				return vm.fail(StateOOG, err)
			}
			_ = vm.push(val)

		case OpSStore:
			val, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			key, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			if len(key) > MaxStorageKeyBytes {
				return vm.fail(StateFail, newVMErr(ErrStorageKeyTooLarge, ""))
			}
			if len(val) > MaxStorageValueBytes {
				return vm.fail(StateFail, newVMErr(ErrStorageValTooLarge, ""))
			}
			if err := vm.charge(GasSStoreBase + GasSStoreKeySlope*uint64(len(key)) + GasSStoreValSlope*uint64(len(val))); err != nil {
				return vm.fail(StateOOG, err)
			}
			if err := vm.host.SStore(vm.ctx.Contract, key, val); err != nil {
				return vm.fail(StateFail, newVMErr(ErrHostError, err.Error()))
			}

		case OpSDelete:
			key, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			if err := vm.charge(GasSDeleteBase + GasSDeleteKeySlope*uint64(len(key))); err != nil {
				return vm.fail(StateOOG, err)
			}
			if err := vm.host.SDelete(vm.ctx.Contract, key); err != nil {
				return vm.fail(StateFail, newVMErr(ErrHostError, err.Error()))
			}

		case OpEmit:
			// in.Arg is the event name; the stack carries only the canonical
			// args payload, since the interpreter itself derives both topics
			// from (name, payload) rather than trusting caller-pushed topics.
			payload, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			if len(vm.events) >= MaxEventsPerCall {
				return vm.fail(StateFail, newVMErr(ErrEventLimit, "too many events"))
			}
			vm.evBytes += len(payload)
			if vm.evBytes > MaxEventDataTotal {
				return vm.fail(StateFail, newVMErr(ErrEventLimit, "event data budget exceeded"))
			}
			name := string(in.Arg)
			topic0, topic1 := EventTopics(name, payload)
			topicGas := hashGas(OpSHA3_256, len("event:"+name)) + hashGas(OpSHA3_256, len(payload))
			if err := vm.charge(GasEventOverhead + topicGas + GasEventBase + GasEventSlope*uint64(len(payload))); err != nil {
				return vm.fail(StateOOG, err)
			}
			ev := Event{Contract: vm.ctx.Contract, Topics: [][]byte{topic0[:], topic1[:]}, Data: payload}
			if err := vm.host.Emit(ev); err != nil {
				return vm.fail(StateFail, newVMErr(ErrHostError, err.Error()))
			}
			vm.events = append(vm.events, ev)

		case OpTransfer:
			amtB, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			toB, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			to, err := address.FromBytes(toB)
			if err != nil {
				return vm.fail(StateFail, newVMErr(ErrInvalidProgram, err.Error()))
			}
			if err := vm.charge(GasTransfer); err != nil {
				return vm.fail(StateOOG, err)
			}
			if err := vm.host.Transfer(vm.ctx.Contract, to, DecodeScalar(amtB)); err != nil {
				return vm.fail(StateFail, newVMErr(ErrHostError, err.Error()))
			}

		case OpRand:
			if err := vm.charge(GasRand); err != nil {
				return vm.fail(StateOOG, err)
			}
			block := vm.rng.Next()
			_ = vm.push(block[:])

		case OpReturn:
			v, err := vm.pop()
			if err != nil {
				return vm.fail(StateFail, err)
			}
			return Result{State: StateCommit, GasUsed: vm.gasUsed, ReturnData: v, Events: vm.events}

		case OpRevert:
			v, _ := vm.pop()
			return Result{State: StateRevert, GasUsed: vm.gasUsed, ReturnData: v, Err: newVMErr(ErrReverted, "")}

		default:
			return vm.fail(StateFail, newVMErr(ErrUnknownOpcode, in.Op.String()))
		}

		pc = next
	}
	// falling off the end of the program without RETURN/REVERT commits with
	// an empty return value.
	return Result{State: StateCommit, GasUsed: vm.gasUsed, Events: vm.events}
}

func (vm *VM) fail(state State, err error) Result {
	return Result{State: state, GasUsed: vm.gasUsed, Events: vm.events, Err: err}
}

func (vm *VM) arith(op Opcode) ([]byte, error) {
	cost := map[Opcode]uint64{OpAdd: GasAdd, OpSub: GasSub, OpMul: GasMul, OpDiv: GasDiv, OpMod: GasMod}[op]
	if err := vm.charge(cost); err != nil {
		return nil, err
	}
	b, err := vm.pop()
	if err != nil {
		return nil, err
	}
	a, err := vm.pop()
	if err != nil {
		return nil, err
	}
	x := DecodeScalar(a)
	y := DecodeScalar(b)
	z := new(big.Int)
	switch op {
	case OpAdd:
		z.Add(x, y)
	case OpSub:
		z.Sub(x, y)
		if z.Sign() < 0 {
			return nil, newVMErr(ErrInvalidProgram, "subtraction underflow")
		}
	case OpMul:
		z.Mul(x, y)
	case OpDiv:
		if y.Sign() == 0 {
			return nil, newVMErr(ErrDivByZero, "")
		}
		z.Div(x, y)
	case OpMod:
		if y.Sign() == 0 {
			return nil, newVMErr(ErrDivByZero, "")
		}
		z.Mod(x, y)
	}
	if z.Cmp(MaxUint256) > 0 {
		return nil, newVMErr(ErrOverflow, "result exceeds 256-bit numeric cap")
	}
	return EncodeScalar(z), nil
}

func (vm *VM) compare(op Opcode) ([]byte, error) {
	cost := map[Opcode]uint64{OpEq: GasEq, OpLt: GasLt, OpGt: GasGt}[op]
	if err := vm.charge(cost); err != nil {
		return nil, err
	}
	b, err := vm.pop()
	if err != nil {
		return nil, err
	}
	a, err := vm.pop()
	if err != nil {
		return nil, err
	}
	x := DecodeScalar(a)
	y := DecodeScalar(b)
	var result bool
	switch op {
	case OpEq:
		result = x.Cmp(y) == 0
	case OpLt:
		result = x.Cmp(y) < 0
	case OpGt:
		result = x.Cmp(y) > 0
	}
	if result {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
