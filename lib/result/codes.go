// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package result

type key struct {
	namespace Namespace
	code      Code
}

var (
	codeNames = map[key]string{}
	sentinels = map[key]*Error{}
)

func define(namespace Namespace, code Code, name, message string) *Error {
	sentinel := &Error{Namespace: namespace, Code: code, Message: message}
	codeNames[key{namespace, code}] = name
	sentinels[key{namespace, code}] = sentinel
	return sentinel
}

// Mist failures.
var (
	ErrInternal           = define(NamespaceMist, 0, "internal_error", "internal error")
	ErrTimeout            = define(NamespaceMist, 1, "timeout", "timed out waiting for the worker")
	ErrLost               = define(NamespaceMist, 10, "subprocess_lost", "worker process lost")
	ErrNotInitialized     = define(NamespaceMist, 11, "subprocess_not_initialized", "worker not initialized")
	ErrAlreadyInitialized = define(NamespaceMist, 12, "subprocess_already_initialized", "worker already initialized")
	ErrSpawn              = define(NamespaceMist, 13, "subprocess_spawn_error", "failed to start worker")
	ErrInitialization     = define(NamespaceMist, 14, "subprocess_initialization_error", "worker failed to initialize")
	ErrUnkillable         = define(NamespaceMist, 15, "subprocess_unkillable", "worker could not be terminated")
	ErrNotFound           = define(NamespaceMist, 16, "subprocess_not_found", "worker executable not found")
	ErrInvalidString      = define(NamespaceMist, 20, "invalid_string", "string is not valid")
)

// Platform SDK failures, reported by the worker's handlers.
var (
	ErrInvalidDlcIndex                 = define(NamespaceSteamApps, 0, "invalid_dlc_index", "invalid DLC index")
	ErrInvalidRichPresence             = define(NamespaceSteamFriends, 0, "invalid_rich_presence", "rich presence key or value rejected")
	ErrInputNotInitialized             = define(NamespaceSteamInput, 0, "not_initialized", "input not initialized")
	ErrInputShmem                      = define(NamespaceSteamInput, 1, "shmem_error", "input shared memory unavailable")
	ErrFileWriteBatchAlreadyInProgress = define(NamespaceSteamRemoteStorage, 0, "file_write_batch_already_in_progress", "file write batch already in progress")
	ErrFileWriteBatchNotInProgress     = define(NamespaceSteamRemoteStorage, 1, "file_write_batch_not_in_progress", "no file write batch in progress")
	ErrNoGamepadTextEntered            = define(NamespaceSteamUtils, 0, "no_gamepad_text_entered", "no gamepad text entered")
)
