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

type DelegationStatus string

const (
	DelegationPending  DelegationStatus = "pending"
	DelegationAccepted DelegationStatus = "accepted"
	DelegationRejected DelegationStatus = "rejected"
)

const (
	EventAccept Event = "accept"
	EventReject Event = "reject"
)

// NewDelegationStateMachine returns the delegation request lifecycle:
// pending -> accepted | rejected, both terminal.
func NewDelegationStateMachine() *StateMachine[DelegationStatus] {
	sm := NewWithState(DelegationPending)
	sm.Allow(DelegationPending, DelegationAccepted, DelegationRejected)
	return sm
}

// DelegationTarget maps a resolve action to its target status.
func DelegationTarget(event Event) (DelegationStatus, bool) {
	switch event {
	case EventAccept:
		return DelegationAccepted, true
	case EventReject:
		return DelegationRejected, true
	}
	return "", false
}
