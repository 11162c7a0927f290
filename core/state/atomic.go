package state

import "sync/atomic"

type atomicState struct {
	v atomic.Int32
}

func (a *atomicState) Load() BotState {
	return BotState(a.v.Load())
}

func (a *atomicState) Swap(s BotState) BotState {
	return BotState(a.v.Swap(int32(s)))
}

func (a *atomicState) CompareAndSwap(old, s BotState) bool {
	return a.v.CompareAndSwap(int32(old), int32(s))
}
