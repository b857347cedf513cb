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
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func versions(ds []Distribution) []string {
	vs := make([]string, len(ds))
	for i, d := range ds {
		vs[i] = d.Version()
	}
	return vs
}

func TestLocalClientOrdering(t *testing.T) {
	lc := NewLocalClient()
	for _, v := range []string{"2.1", "0.9", "2.3", "2.2.1"} {
		lc.AddAvailable(mustDist(t, "pycrypto", v, nil))
	}
	ds, err := lc.AvailableDistributions(context.Background(), "pycrypto")
	if err != nil {
		t.Fatalf("AvailableDistributions: %v", err)
	}
	want := []string{"2.3", "2.2.1", "2.1", "0.9"}
	if diff := cmp.Diff(want, versions(ds)); diff != "" {
		t.Errorf("versions (-want, +got):\n%s", diff)
	}
}

func TestLocalClientUnknownPackage(t *testing.T) {
	lc := NewLocalClient()
	ds, err := lc.AvailableDistributions(context.Background(), "nonesuch")
	if err != nil {
		t.Fatalf("AvailableDistributions: %v", err)
	}
	if len(ds) != 0 {
		t.Errorf("unknown package: want empty list, got %v", ds)
	}
}

func TestLocalClientCanonicalName(t *testing.T) {
	lc := NewLocalClient()
	lc.AddAvailable(mustDist(t, "Django_REST-Framework", "3.14.0", nil))
	ds, err := lc.AvailableDistributions(context.Background(), "django.rest.framework")
	if err != nil {
		t.Fatalf("AvailableDistributions: %v", err)
	}
	if len(ds) != 1 || ds[0].Name() != "django-rest-framework" {
		t.Errorf("canonical lookup failed: got %v", ds)
	}
}

func TestLocalDistributionRequirements(t *testing.T) {
	d := mustDist(t, "requests", "2.25.1", map[string][]string{
		"":         {"urllib3", "idna"},
		"security": {"pyopenssl>=0.14", "cryptography>=1.3.4"},
		"socks":    {"pysocks"},
	})

	names := func(rs []Requirement) []string {
		ns := make([]string, len(rs))
		for i, r := range rs {
			ns[i] = r.Name
		}
		return ns
	}

	if diff := cmp.Diff([]string{"urllib3", "idna"}, names(d.Requirements(nil, false))); diff != "" {
		t.Errorf("default requirements (-want, +got):\n%s", diff)
	}
	got := names(d.Requirements([]string{"security"}, false))
	want := []string{"urllib3", "idna", "pyopenssl", "cryptography"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("security extra (-want, +got):\n%s", diff)
	}
	// Extras alone, excluding the default set.
	got = names(d.Requirements([]string{"socks"}, true))
	if diff := cmp.Diff([]string{"pysocks"}, got); diff != "" {
		t.Errorf("socks extra only (-want, +got):\n%s", diff)
	}
	// Unknown and duplicate extras contribute nothing.
	got = names(d.Requirements([]string{"socks", "socks", "nonesuch"}, true))
	if diff := cmp.Diff([]string{"pysocks"}, got); diff != "" {
		t.Errorf("duplicate extras (-want, +got):\n%s", diff)
	}
}
