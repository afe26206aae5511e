// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides the Must* helpers it builds fake Python interpreters (FakePython)
// and virtualenv directory layouts (MakeVirtualenv) so the probing and
// discovery code can be exercised without a real Python installation. Each
// fake records its invocations, which tests use to assert how many
// subprocesses were spawned.
package testutil
