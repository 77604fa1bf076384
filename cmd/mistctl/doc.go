// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// mistctl is a host-side diagnostic tool. It drives a worker the same
// way a game does, through lib/mist, so it can check an installation
// without the game:
//
//	mistctl status                       start the worker, print the app, stop it
//	mistctl call get_dlc_data_by_index 0 invoke one operation, print its result as JSON
//	mistctl callbacks --duration 30s     print callbacks as JSON lines
//	mistctl app-install-dir 480          print an app's install directory
//	mistctl watch --analog move          live view of controllers and callbacks
//	mistctl catalog                      list every operation
//
// Call arguments are JSON with comments (JSONC). An argument starting
// with @ names a file to read them from.
package main
