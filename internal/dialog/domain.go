package dialog

import (
	"fmt"
	"strconv"
	"strings"

	"habitbot-api/internal/journal"
)

// StateTag identifies which input a chat is currently waiting for.
type StateTag int

const (
	StateNone StateTag = iota
	StateAwaitingMomentText
	StateAwaitingReviewText
	StateAwaitingTimeText
	StateAwaitingTimezone
	StateAwaitingName
	StateAwaitingGender
	StateAwaitingCheckinNote
	StateAwaitingNoReason
	StateAwaitingBroadcastText
)

// Session is the pending-dialog slot for one chat. Events and Cursor are
// only meaningful in StateAwaitingReviewText; StashedUserID only in the
// check-in note and no-reason states.
type Session struct {
	Tag           StateTag
	Events        []*journal.Event
	Cursor        int
	StashedUserID int64
}

// ActionKind enumerates the button actions a callback payload can carry.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionYes
	ActionNo
	ActionCheckinOK
	ActionCheckinBad
	ActionTimezone
	ActionGender
	ActionTrial
	ActionPay
)

// callback action names as they appear on the wire
const (
	callbackYes        = "yes"
	callbackNo         = "no"
	callbackCheckinOK  = "ok"
	callbackCheckinBad = "bad"
	callbackTimezone   = "tz"
	callbackGender     = "gender"
	callbackTrial      = "trial"
	callbackPay        = "pay"
)

// CallbackAction is a callback payload decoded once at the boundary.
// Arg carries the embedded integer: a user id for yes/no/check-in,
// an offset for timezone, 0/1 for gender.
type CallbackAction struct {
	Kind ActionKind
	Arg  int64
}

// encodeCallback renders an action and its argument as "name_arg" for
// callback data. Argument-less actions encode as the bare name.
func encodeCallback(kind ActionKind, arg int64) string {
	name := callbackName(kind)
	if kind == ActionTrial || kind == ActionPay {
		return name
	}
	return fmt.Sprintf("%s_%d", name, arg)
}

func callbackName(kind ActionKind) string {
	switch kind {
	case ActionYes:
		return callbackYes
	case ActionNo:
		return callbackNo
	case ActionCheckinOK:
		return callbackCheckinOK
	case ActionCheckinBad:
		return callbackCheckinBad
	case ActionTimezone:
		return callbackTimezone
	case ActionGender:
		return callbackGender
	case ActionTrial:
		return callbackTrial
	case ActionPay:
		return callbackPay
	}
	return ""
}

// decodeCallback parses callback data of the form "name" or "name_arg".
func decodeCallback(data string) CallbackAction {
	name := data
	var arg int64
	if i := strings.LastIndex(data, "_"); i > 0 {
		if n, err := strconv.ParseInt(data[i+1:], 10, 64); err == nil {
			name = data[:i]
			arg = n
		}
	}

	kinds := map[string]ActionKind{
		callbackYes:        ActionYes,
		callbackNo:         ActionNo,
		callbackCheckinOK:  ActionCheckinOK,
		callbackCheckinBad: ActionCheckinBad,
		callbackTimezone:   ActionTimezone,
		callbackGender:     ActionGender,
		callbackTrial:      ActionTrial,
		callbackPay:        ActionPay,
	}
	kind, ok := kinds[name]
	if !ok {
		return CallbackAction{Kind: ActionUnknown}
	}
	return CallbackAction{Kind: kind, Arg: arg}
}
