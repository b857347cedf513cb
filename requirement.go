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

package depgraph

import (
	"fmt"
	"strings"

	"deps.dev/util/pypi"
	"deps.dev/util/semver"
)

// Requirement is a constraint on a single package: a canonical name, an
// optional set of extras, and a version constraint.
type Requirement struct {
	// Name is the canonical name of the required package.
	Name string
	// Extras holds the extras requested from the package, lowercased.
	Extras []string
	// Constraint is the PEP 440 version constraint. A nil Constraint
	// matches every version.
	Constraint *semver.Constraint

	// str holds the string the requirement was parsed from, for
	// display.
	str string
}

// ParseRequirement parses a requirement statement such as
// "fabric", "pycrypto<=2.1" or "requests[security] >=2.0,<3.0".
// The accepted syntax is PEP 508, apart from URL requirements;
// environment markers are parsed but ignored.
func ParseRequirement(s string) (Requirement, error) {
	d, err := pypi.ParseDependency(s)
	if err != nil {
		return Requirement{}, err
	}
	c, err := semver.PyPI.ParseConstraint(d.Constraint)
	if err != nil {
		return Requirement{}, fmt.Errorf("requirement %q: parsing constraint: %w", s, err)
	}
	var extras []string
	if d.Extras != "" {
		for _, e := range strings.Split(d.Extras, ",") {
			if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
				extras = append(extras, e)
			}
		}
	}
	return Requirement{
		Name:       d.Name,
		Extras:     extras,
		Constraint: c,
		str:        strings.TrimSpace(s),
	}, nil
}

// Matches reports whether the given version satisfies the requirement's
// constraint.
func (r Requirement) Matches(version string) bool {
	return r.Constraint == nil || r.Constraint.Match(version)
}

func (r Requirement) String() string {
	if r.str != "" {
		return r.str
	}
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	if r.Constraint != nil {
		b.WriteString(r.Constraint.String())
	}
	return b.String()
}

// reqsString joins requirements for error messages and display, so a
// user can see the full constraint set that was in play.
func reqsString(rs []Requirement) string {
	ss := make([]string, len(rs))
	for i, r := range rs {
		ss[i] = r.String()
	}
	return strings.Join(ss, ", ")
}
