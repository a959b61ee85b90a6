// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package game

import "github.com/samber/oops"

// Error codes attached to every error this package returns. Each one is
// contained to the offending plugin; none is fatal to the host.
const (
	// CodeValidation marks an unsafe or malformed id or entry path.
	CodeValidation = "GAME_VALIDATION"
	// CodeLoad marks code that failed to read, compile, or execute at load.
	CodeLoad = "GAME_LOAD"
	// CodeContract marks a missing capability or malformed metadata.
	CodeContract = "GAME_CONTRACT"
	// CodeRuntime marks a failure raised while a game was running.
	CodeRuntime = "GAME_RUNTIME"
	// CodeNotFound marks a launch of an id absent from the catalog.
	CodeNotFound = "GAME_NOT_FOUND"
)

func errorf(code, id string) oops.OopsErrorBuilder {
	return oops.In("game").Code(code).With("game", id)
}
