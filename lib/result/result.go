// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package result

import (
	"errors"
	"fmt"
)

// Namespace groups codes by the interface that reports them.
type Namespace uint16

const (
	NamespaceMist               Namespace = 1
	NamespaceSteamApps          Namespace = 100
	NamespaceSteamFriends       Namespace = 105
	NamespaceSteamInput         Namespace = 111
	NamespaceSteamRemoteStorage Namespace = 123
	NamespaceSteamUtils         Namespace = 128
)

var namespaceNames = map[Namespace]string{
	NamespaceMist:               "mist",
	NamespaceSteamApps:          "steam_apps",
	NamespaceSteamFriends:       "steam_friends",
	NamespaceSteamInput:         "steam_input",
	NamespaceSteamRemoteStorage: "steam_remote_storage",
	NamespaceSteamUtils:         "steam_utils",
}

func (n Namespace) String() string {
	if name, ok := namespaceNames[n]; ok {
		return name
	}
	return fmt.Sprintf("namespace(%d)", uint16(n))
}

// Code is a namespace-local failure code.
type Code uint16

// Error is a typed failure.
type Error struct {
	Namespace Namespace
	Code      Code
	Message   string

	cause error
}

func (e *Error) Error() string {
	return e.Name() + ": " + e.Detail()
}

// Detail returns the message and cause without the kind prefix.
func (e *Error) Detail() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Name returns "namespace/code_name", e.g. "mist/subprocess_lost".
func (e *Error) Name() string {
	if name, ok := codeNames[key{e.Namespace, e.Code}]; ok {
		return e.Namespace.String() + "/" + name
	}
	return fmt.Sprintf("%s/%d", e.Namespace, e.Code)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same namespace and code, ignoring
// the message.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Namespace == e.Namespace && other.Code == e.Code
}

// Result packs it.
func (e *Error) Result() Result {
	return Pack(e.Namespace, e.Code)
}

// New returns an error of the same kind as sentinel with a specific
// message.
func New(sentinel *Error, format string, args ...any) *Error {
	return &Error{
		Namespace: sentinel.Namespace,
		Code:      sentinel.Code,
		Message:   fmt.Sprintf(format, args...),
	}
}

// Wrap returns an error of the same kind as sentinel that unwraps to
// cause. Wrap(sentinel, nil) returns sentinel.
func Wrap(sentinel *Error, cause error) *Error {
	if cause == nil {
		return sentinel
	}
	return &Error{
		Namespace: sentinel.Namespace,
		Code:      sentinel.Code,
		Message:   sentinel.Message,
		cause:     cause,
	}
}

// Result is the packed 32-bit form of an error.
type Result uint32

// Success is the Result of a nil error.
const Success Result = 0

// Pack builds a Result from its parts.
func Pack(namespace Namespace, code Code) Result {
	return Result(uint32(code)<<16 | uint32(namespace))
}

// Namespace returns the low 16 bits.
func (r Result) Namespace() Namespace { return Namespace(r & 0xFFFF) }

// Code returns the high 16 bits.
func (r Result) Code() Code { return Code(r >> 16) }

// Err expands r back into an error. Success returns nil.
func (r Result) Err() error {
	if r == Success {
		return nil
	}
	namespace, code := r.Namespace(), r.Code()
	if sentinel, ok := sentinels[key{namespace, code}]; ok {
		return sentinel
	}
	return &Error{Namespace: namespace, Code: code, Message: "unknown failure"}
}

func (r Result) String() string {
	if r == Success {
		return "success"
	}
	var typed *Error
	errors.As(r.Err(), &typed)
	return typed.Name()
}

// Of packs any error. Errors that are not *Error anywhere in their
// chain count as internal errors.
func Of(err error) Result {
	if err == nil {
		return Success
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Result()
	}
	return ErrInternal.Result()
}

// As returns the *Error in err's chain, or an internal error wrapping
// err when there is none. As(nil) is nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return Wrap(ErrInternal, err)
}
