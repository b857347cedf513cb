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
	"log"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "deps.dev/api/v3"
	"deps.dev/util/pypi"
	"deps.dev/util/semver"

	"deps.dev/util/depgraph/internal/lru"
)

// requirementsCacheSize bounds the per-version requirement lists an
// APIClient remembers.
const requirementsCacheSize = 10000

// APIClient is a Client that serves the repository side from the
// deps.dev API. It represents a fresh environment: it reports no
// installed distributions, so a Graph built over it plans installs from
// scratch. Version metadata is fetched per call, which can be slow on
// large graphs; direct requirements are memoised per version. It is
// safe for concurrent use.
type APIClient struct {
	c pb.InsightsClient

	// mu controls access to reqs.
	mu sync.Mutex
	// reqs caches the direct requirements of versions already fetched,
	// keyed by "name version".
	reqs *lru.Cache[string, []Requirement]
}

// NewAPIClient creates a new APIClient using the provided gRPC client
// to call the deps.dev Insights service.
func NewAPIClient(c pb.InsightsClient) *APIClient {
	return &APIClient{c: c, reqs: lru.New[string, []Requirement](requirementsCacheSize)}
}

// InstalledDistributions implements Client. An API universe carries no
// local install state, so the installed set is always empty.
func (a *APIClient) InstalledDistributions(ctx context.Context) ([]Distribution, error) {
	return nil, nil
}

// AvailableDistributions implements Client, returning the known
// versions of the named PyPI package, newest first. Unknown packages
// yield an empty list.
func (a *APIClient) AvailableDistributions(ctx context.Context, name string) ([]Distribution, error) {
	name = pypi.CanonPackageName(name)
	resp, err := a.c.GetPackage(ctx, &pb.GetPackageRequest{
		PackageKey: &pb.PackageKey{
			System: pb.System_PYPI,
			Name:   name,
		},
	})
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dists := make([]Distribution, 0, len(resp.Versions))
	for _, v := range resp.Versions {
		dists = append(dists, &apiDistribution{
			client:  a,
			ctx:     ctx,
			name:    name,
			version: v.VersionKey.Version,
		})
	}
	sortDistributions(dists)
	return dists, nil
}

// requirements returns the direct requirements of the given version,
// derived from the root edges of its resolved dependency graph.
func (a *APIClient) requirements(ctx context.Context, name, version string) ([]Requirement, error) {
	key := name + " " + version
	a.mu.Lock()
	rs, ok := a.reqs.Get(key)
	a.mu.Unlock()
	if ok {
		return rs, nil
	}

	resp, err := a.c.GetDependencies(ctx, &pb.GetDependenciesRequest{
		VersionKey: &pb.VersionKey{
			System:  pb.System_PYPI,
			Name:    name,
			Version: version,
		},
	})
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for _, e := range resp.Edges {
		if e.FromNode != 0 || int(e.ToNode) >= len(resp.Nodes) {
			continue
		}
		to := resp.Nodes[e.ToNode]
		r, err := edgeRequirement(to.VersionKey.Name, e.Requirement)
		if err != nil {
			log.Printf("depgraph: requirement %q of %s-%s: %v", e.Requirement, name, version, err)
			continue
		}
		rs = append(rs, r)
	}

	a.mu.Lock()
	a.reqs.Put(key, rs)
	a.mu.Unlock()
	return rs, nil
}

// edgeRequirement builds a Requirement from a dependency edge: the
// requirement string is usually just a constraint on the target
// package, but may also be a full requirement statement.
func edgeRequirement(name, req string) (Requirement, error) {
	name = pypi.CanonPackageName(name)
	if r, err := ParseRequirement(req); err == nil && r.Name == name {
		return r, nil
	}
	c, err := semver.PyPI.ParseConstraint(req)
	if err != nil {
		return Requirement{}, err
	}
	return Requirement{Name: name, Constraint: c, str: name + req}, nil
}

// apiDistribution is a version of a PyPI package known to the deps.dev
// API.
type apiDistribution struct {
	client *APIClient
	// ctx is the context AvailableDistributions was called with,
	// retained because the Distribution contract fetches metadata
	// synchronously.
	ctx context.Context

	name, version string
}

// Name implements Distribution.
func (d *apiDistribution) Name() string { return d.name }

// Version implements Distribution.
func (d *apiDistribution) Version() string { return d.version }

// FullName implements Distribution.
func (d *apiDistribution) FullName() string { return d.name + "-" + d.version }

// Requirements implements Distribution. The API serves resolved
// dependency graphs with extras already applied, so the extras split is
// not recoverable: extras requests return the same base set, and
// excludeDefault yields nothing.
func (d *apiDistribution) Requirements(extras []string, excludeDefault bool) []Requirement {
	if excludeDefault {
		return nil
	}
	rs, err := d.client.requirements(d.ctx, d.name, d.version)
	if err != nil {
		log.Printf("depgraph: requirements for %s: %v", d.FullName(), err)
		return nil
	}
	return rs
}
