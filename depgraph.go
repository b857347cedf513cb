// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package depgraph plans package installs, upgrades, downgrades and removals
for a PyPI-style packaging system.

A Graph is loaded with the currently installed distributions and their
dependency edges. AddRequirement and RemovePackage then mark nodes for
install, change or removal, satisfying version constraints transitively
against the versions a repository has available. Marks extracts the
accumulated marks as an ordered plan that an installer can execute
without leaving broken dependencies behind if it is interrupted.

The Client interface describes how to enumerate installed distributions
and the versions available from a repository. LocalClient is an
in-memory implementation, and APIClient serves the repository side from
the deps.dev Insights API.

The resolver is greedy: the highest version satisfying the combined
constraint set wins, and there is no backtracking across candidates. A
constraint conflict therefore surfaces as a NotFoundError listing the
requirements that could not be satisfied together.
*/
package depgraph

import (
	"context"
	"errors"
	"fmt"
)

// Distribution describes a single version of a package, either installed
// or available from a repository. Name must be canonical (see
// pypi.CanonPackageName) and Version must order according to PEP 440.
type Distribution interface {
	// Name returns the canonical package name.
	Name() string
	// Version returns the printable version string.
	Version() string
	// FullName returns a display name, conventionally "name-version".
	FullName() string
	// Requirements returns the version's direct requirements: the
	// default set (unless excludeDefault is set) plus the sets
	// contributed by the named extras.
	Requirements(extras []string, excludeDefault bool) []Requirement
}

// Client defines an interface to fetch the data needed to plan installs:
// the local install state and the repository of available versions.
type Client interface {
	// InstalledDistributions returns the installed distributions, at
	// most one per canonical name.
	InstalledDistributions(ctx context.Context) ([]Distribution, error)
	// AvailableDistributions returns the versions of the named package
	// the repository can install, newest first. An unknown name yields
	// an empty list, not an error.
	AvailableDistributions(ctx context.Context, name string) ([]Distribution, error)
}

// ErrNotFound is returned by Clients to indicate the requested data could
// not be located.
var ErrNotFound = errors.New("not found")

// NotFoundError is returned by AddRequirement when no available
// distribution satisfies a requirement, or the combined set of
// requirements recorded for a package.
type NotFoundError struct {
	// Requirement is the requirement, or comma-joined requirements,
	// that could not be satisfied.
	Requirement string
	// RequiredBy names the dependent that imposed the requirement, if
	// it was reached transitively.
	RequiredBy string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("no distribution for %q found", e.Requirement)
	if e.RequiredBy != "" {
		msg += fmt.Sprintf("; required by %q", e.RequiredBy)
	}
	return msg
}
