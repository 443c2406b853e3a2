// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package statemachine

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrInvalidTransition is returned (wrapped) when a transition is not registered.
var ErrInvalidTransition = errors.New("invalid transition")

// Event names what triggered a transition. It is optional.
type Event string

// TransitionHook is triggered when a state transition occurs.
type TransitionHook[T comparable] func(from, to T, event Event) error

// TransitionValidator validates whether a state transition is allowed.
type TransitionValidator[T comparable] func(from, to T, event Event) error

// StateMachine is a generic finite state machine.
//
// It can be used in two ways: as a stateful machine tracking Current, or as a shared
// rule table whose Check validates a transition for an externally stored state.
// The StateMachine is safe for concurrent use.
type StateMachine[T comparable] struct {
	mu sync.RWMutex

	currentState T
	initialState T

	validTransitions map[T][]T
	onTransition     []TransitionHook[T]
	validators       []TransitionValidator[T]
}

func New[T comparable]() *StateMachine[T] {
	return &StateMachine[T]{
		validTransitions: make(map[T][]T),
	}
}

func NewWithState[T comparable](initialState T) *StateMachine[T] {
	sm := New[T]()
	sm.currentState = initialState
	sm.initialState = initialState
	return sm
}

// Allow registers valid transitions from a source state.
func (sm *StateMachine[T]) Allow(from T, to ...T) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, target := range to {
		if !slices.Contains(sm.validTransitions[from], target) {
			sm.validTransitions[from] = append(sm.validTransitions[from], target)
		}
	}
	return sm
}

func (sm *StateMachine[T]) CanTransition(from, to T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Contains(sm.validTransitions[from], to)
}

// IsTerminal reports whether no transition leaves state.
func (sm *StateMachine[T]) IsTerminal(state T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.validTransitions[state]) == 0
}

func (sm *StateMachine[T]) GetValidNextStates(from T) []T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Clone(sm.validTransitions[from])
}

func (sm *StateMachine[T]) Current() T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

func (sm *StateMachine[T]) Initial() T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.initialState
}

func (sm *StateMachine[T]) OnTransition(h TransitionHook[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onTransition = append(sm.onTransition, h)
	return sm
}

func (sm *StateMachine[T]) AddValidator(v TransitionValidator[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.validators = append(sm.validators, v)
	return sm
}

// Check validates from -> to against the table and validators without touching Current
// or firing hooks.
func (sm *StateMachine[T]) Check(from, to T, event Event) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.check(from, to, event)
}

func (sm *StateMachine[T]) check(from, to T, event Event) error {
	if !slices.Contains(sm.validTransitions[from], to) {
		return fmt.Errorf("%w: %v -> %v", ErrInvalidTransition, from, to)
	}
	for _, validator := range sm.validators {
		if err := validator(from, to, event); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}

// Transition validates from -> to, fires hooks and moves Current to to.
func (sm *StateMachine[T]) Transition(from, to T, event Event) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if err := sm.check(from, to, event); err != nil {
		return err
	}
	for _, h := range sm.onTransition {
		if err := h(from, to, event); err != nil {
			return fmt.Errorf("transition hook failed: %w", err)
		}
	}
	sm.currentState = to
	return nil
}

// TransitionTo transitions from the current state.
func (sm *StateMachine[T]) TransitionTo(to T) error {
	return sm.Transition(sm.Current(), to, "")
}
