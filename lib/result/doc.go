// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package result defines mist's error taxonomy.
//
// Every failure a host can observe is an [*Error] carrying a
// [Namespace] and a namespace-local [Code]. Mist's own failures
// (transport, supervisor, liveness, timeout) live in [NamespaceMist];
// failures reported by the platform SDK's handlers live in the
// namespace of the SDK interface that produced them and cross the
// process boundary unchanged.
//
// Hosts that cannot consume Go errors use the packed [Result]:
//
//	bits 31..16  code
//	bits 15..0   namespace
//
// Zero is [Success]; no namespace is zero, so no failure packs to zero.
//
// The package-level sentinels match with errors.Is on namespace and
// code, so a worker-reported failure decoded from the wire still
// satisfies errors.Is(err, result.ErrInvalidDlcIndex).
package result
